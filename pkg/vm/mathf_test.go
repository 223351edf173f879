package vm

import (
	"math"
	"testing"
)

func TestSeries(t *testing.T) {
	inputs := []float64{0, 0.1, -0.5, 1, Pi / 2, Pi, -Pi, 3 * Pi / 2, 2 * Pi, 5, -7.25, 100, -1000}
	for _, x := range inputs {
		if got, want := Sin(x), math.Sin(x); math.Abs(got-want) > 1e-9 {
			t.Errorf("Sin(%v): expected %v, got %v", x, want, got)
		}
		if got, want := Cos(x), math.Cos(x); math.Abs(got-want) > 1e-9 {
			t.Errorf("Cos(%v): expected %v, got %v", x, want, got)
		}
	}
}

func TestRemf(t *testing.T) {
	tests := []struct {
		name     string
		x, y     float64
		expected float64
	}{
		{"Positive", 7, 3, 1},
		{"Negative_KeepsSign", -7, 3, -1},
		{"Exact", -2 * Pi, 2 * Pi, 0},
		{"Smaller", 1.5, 2, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := remf(tt.x, tt.y); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("remf(%v, %v): expected %v, got %v", tt.x, tt.y, tt.expected, got)
			}
		})
	}
}

func TestRadians(t *testing.T) {
	if got := Radians(180); math.Abs(got-Pi) > 1e-15 {
		t.Errorf("Radians(180): expected %v, got %v", Pi, got)
	}
	if got := Radians(-90); math.Abs(got+Pi/2) > 1e-15 {
		t.Errorf("Radians(-90): expected %v, got %v", -Pi/2, got)
	}
}
