// Package config loads the host settings shared by the desktop and console
// front ends.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v2"

	"gopen/pkg/vm"
)

var (
	ErrInvalidColor = errors.New("invalid color")
	ErrInvalidSize  = errors.New("invalid surface size")
)

type Config struct {
	Width      int       `yaml:"width"`
	Height     int       `yaml:"height"`
	Background string    `yaml:"background"`
	Stroke     string    `yaml:"stroke"`
	LineWidth  float32   `yaml:"line_width"`
	ReloadKey  string    `yaml:"reload_key"`
	Natives    bool      `yaml:"natives"`
	Limits     vm.Limits `yaml:"limits"`
}

// Default is an 800×600 white surface with black strokes.
func Default() Config {
	limits := vm.DefaultLimits()
	limits.Steps = 1 << 20
	return Config{
		Width:      800,
		Height:     600,
		Background: "white",
		Stroke:     "black",
		LineWidth:  1,
		ReloadKey:  "R",
		Natives:    true,
		Limits:     limits,
	}
}

// Load reads a YAML file on top of Default. Fields missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, c.Width, c.Height)
	}
	if _, err := ParseColor(c.Background); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	if _, err := ParseColor(c.Stroke); err != nil {
		return fmt.Errorf("stroke: %w", err)
	}
	l := c.Limits
	if l.Ops <= 0 || l.Functions <= 0 || l.Variables <= 0 || l.Stack <= 0 || l.Points <= 0 || l.Steps < 0 {
		return fmt.Errorf("limits must be positive: %+v", l)
	}
	return nil
}

func (c Config) BackgroundColor() color.Color {
	col, _ := ParseColor(c.Background)
	return col
}

func (c Config) StrokeColor() color.Color {
	col, _ := ParseColor(c.Stroke)
	return col
}

// ParseColor accepts an SVG color name ("black", "cornflowerblue") or a hex
// color "#RRGGBB" / "#RRGGBBAA".
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if col, ok := colornames.Map[strings.ToLower(s)]; ok {
		return col, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if hex == s || (len(hex) != 6 && len(hex) != 8) {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	nc := color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}
	return color.RGBAModel.Convert(nc).(color.RGBA), nil
}
