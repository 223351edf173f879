package main

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"gopen/pkg/compiler"
	"gopen/pkg/config"
	"gopen/pkg/pen"
	"gopen/pkg/render"
	"gopen/pkg/utils"
	"gopen/pkg/vm"
)

func TestCompilerAndVM(t *testing.T) {
	// 1. Define the script
	source := `
fn fib(n) {
	if n < 2 { return n }
	return fib(n - 1) + fib(n - 2)
}

limit = 6
result = fib(limit)
move(result)
`

	// 2. Compile
	prog, err := compiler.Compile(source)
	if err != nil {
		t.Fatalf("Compilation failed: %v", err)
	}
	t.Logf("Generated bytecode:\n%s", prog)

	// 3. Run
	m := vm.NewMachine(prog.Limits)
	if err := m.Run(prog); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// 4. Assertions

	// 8 is the 6th Fibonacci number: 0, 1, 1, 2, 3, 5, 8
	v, _ := m.Global("result")
	if f, _ := v.AsFloat(); f != 8 {
		t.Errorf("Expected result to be 8, got %v", v)
	}
	pts := m.Points()
	if len(pts) != 2 || pts[1].X != 8 {
		t.Errorf("Expected a single 8 unit move, got %v", pts)
	}

	// Every frame is unwound.
	if m.StackDepth() != 0 {
		t.Errorf("Expected an empty stack, got depth %d", m.StackDepth())
	}
}

func TestExampleScripts(t *testing.T) {
	scripts, err := filepath.Glob(filepath.Join("..", "examples", "*.pen"))
	if err != nil {
		t.Fatal(err)
	}
	if len(scripts) == 0 {
		t.Fatal("no example scripts found")
	}

	cfg := config.Default()
	cfg.Width, cfg.Height = 200, 150
	outDir := t.TempDir()

	for _, script := range scripts {
		t.Run(filepath.Base(script), func(t *testing.T) {
			full, source, err := utils.ReadSource(script)
			if err != nil {
				t.Fatal(err)
			}

			p := pen.New(pen.Options{Limits: cfg.Limits, Natives: pen.StandardNatives()})
			if err := p.Recompile(source); err != nil {
				t.Fatalf("%s: %v", full, err)
			}
			if len(p.Points()) < 2 {
				t.Fatalf("expected the script to draw, got %d points", len(p.Points()))
			}

			canvas := render.NewCanvas(cfg.Width, cfg.Height, cfg.BackgroundColor(), cfg.StrokeColor(), cfg.LineWidth)
			p.Render(canvas, cfg.Width, cfg.Height)

			out := utils.OutputPath(full, outDir, ".png")
			if err := canvas.SavePNG(out); err != nil {
				t.Fatal(err)
			}
			if !hasInk(t, out, cfg.BackgroundColor()) {
				t.Errorf("%s: rendered image is blank", out)
			}
		})
	}
}

// hasInk reports whether the PNG at path has any pixel that differs from the
// background.
func hasInk(t *testing.T, path string, background color.Color) bool {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}

	br, bg, bb, ba := background.RGBA()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			if r != br || g != bg || bl != bb || a != ba {
				return true
			}
		}
	}
	return false
}

func TestHotReloadCycle(t *testing.T) {
	p := pen.New(pen.Options{Sink: pen.LogSink{}})

	steps := []struct {
		source  string
		wantErr bool
		points  int
	}{
		{"move(10)", false, 2},
		{"move(10) rotate(", true, 2},
		{"move(10) rotate(90) move(10)", false, 3},
		{"undefined_fn(1)", true, 3},
		{"", false, 1},
	}
	for i, s := range steps {
		err := p.Recompile(s.source)
		if (err != nil) != s.wantErr {
			t.Fatalf("step %d: error = %v, wantErr %v", i, err, s.wantErr)
		}
		if n := len(p.Points()); n != s.points {
			t.Errorf("step %d: expected %d points, got %d", i, s.points, n)
		}
	}
}
