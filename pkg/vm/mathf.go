package vm

// Trigonometry for the turtle. Sine and cosine are summed as power series
// until the next term no longer changes the sum.

const (
	Pi = 3.14159265358979323846

	seriesEps      = 1e-15
	seriesMaxTerms = 64
)

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// remf is the truncating floating remainder of x / y. The result has the sign
// of x.
func remf(x, y float64) float64 {
	return x - float64(int64(x/y))*y
}

// Sin evaluates the Maclaurin series of sine.
func Sin(x float64) float64 {
	x = remf(x, 2*Pi)
	s, t := x, x
	for i := 1; i < seriesMaxTerms && absf(t/s) > seriesEps; i++ {
		t *= -x * x / float64((2*i+1)*2*i)
		s += t
	}
	return s
}

// Cos evaluates the Maclaurin series of cosine.
func Cos(x float64) float64 {
	x = remf(x, 2*Pi)
	s, t := 1.0, 1.0
	for i := 1; i < seriesMaxTerms && absf(t/s) > seriesEps; i++ {
		t *= -x * x / float64((2*i-1)*2*i)
		s += t
	}
	return s
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * Pi / 180
}
