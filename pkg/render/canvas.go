// Package render provides an off-screen pen.Surface backed by an RGBA image.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/vector"
)

// Canvas rasterizes segments into an in-memory image.
type Canvas struct {
	Background color.Color
	Stroke     color.Color
	LineWidth  float32

	img *image.RGBA
	ras *vector.Rasterizer
}

func NewCanvas(width, height int, background, stroke color.Color, lineWidth float32) *Canvas {
	if lineWidth <= 0 {
		lineWidth = 1
	}
	return &Canvas{
		Background: background,
		Stroke:     stroke,
		LineWidth:  lineWidth,
		img:        image.NewRGBA(image.Rect(0, 0, width, height)),
		ras:        vector.NewRasterizer(width, height),
	}
}

func (c *Canvas) Bounds() image.Rectangle {
	return c.img.Bounds()
}

// Image returns the backing image. It is overwritten by later draws.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(c.Background), image.Point{}, draw.Src)
}

// DrawSegment fills the rectangle of LineWidth around the segment. A zero
// length segment draws a square dot.
func (c *Canvas) DrawSegment(x1, y1, x2, y2 int) {
	ax, ay := float32(x1)+0.5, float32(y1)+0.5
	bx, by := float32(x2)+0.5, float32(y2)+0.5
	half := c.LineWidth / 2

	dx, dy := bx-ax, by-ay
	length := float32(math.Hypot(float64(dx), float64(dy)))
	var ux, uy float32
	if length == 0 {
		ux, uy = 1, 0
	} else {
		ux, uy = dx/length, dy/length
	}
	// Extend by half a width on both ends so joints meet.
	ax, ay = ax-ux*half, ay-uy*half
	bx, by = bx+ux*half, by+uy*half
	nx, ny := -uy*half, ux*half

	b := c.img.Bounds()
	c.ras.Reset(b.Dx(), b.Dy())
	c.ras.DrawOp = draw.Over
	c.ras.MoveTo(ax+nx, ay+ny)
	c.ras.LineTo(bx+nx, by+ny)
	c.ras.LineTo(bx-nx, by-ny)
	c.ras.LineTo(ax-nx, ay-ny)
	c.ras.ClosePath()
	c.ras.Draw(c.img, b, image.NewUniform(c.Stroke), image.Point{})
}

// SavePNG encodes the current image as a PNG and writes it to filename.
func (c *Canvas) SavePNG(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(f, c.img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
