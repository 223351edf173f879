package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"gopen/pkg/config"
	"gopen/pkg/pen"
	"gopen/pkg/render"
	"gopen/pkg/utils"
)

// renderFile compiles, runs and rasterizes one script. Each call owns its own
// Pen, so calls may run in parallel.
func renderFile(cfg config.Config, src, outDir string) (string, int, error) {
	fullPath, source, err := utils.ReadSource(src)
	if err != nil {
		return "", 0, err
	}

	natives := pen.StandardNatives()
	if !cfg.Natives {
		natives = nil
	}
	p := pen.New(pen.Options{
		Limits:  cfg.Limits,
		Natives: natives,
		Sink:    pen.NewLogSink(fullPath + ": "),
	})
	if err := p.Recompile(source); err != nil {
		return "", 0, fmt.Errorf("%s: %w", src, err)
	}

	canvas := render.NewCanvas(cfg.Width, cfg.Height, cfg.BackgroundColor(), cfg.StrokeColor(), cfg.LineWidth)
	p.Render(canvas, cfg.Width, cfg.Height)

	out := utils.OutputPath(fullPath, outDir, ".png")
	if err := canvas.SavePNG(out); err != nil {
		return "", 0, err
	}
	return out, len(p.Points()), nil
}

func main() {
	outDir := flag.String("out", "", "directory for the PNG files (default: next to each script)")
	configPath := flag.String("config", "", "YAML host configuration")
	jobs := flag.Int("jobs", runtime.NumCPU(), "number of scripts rendered at once")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: console [-out dir] [-config file] script...")
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	if *jobs < 1 {
		*jobs = 1
	}
	var g errgroup.Group
	g.SetLimit(*jobs)
	for _, src := range flag.Args() {
		src := src
		g.Go(func() error {
			out, n, err := renderFile(cfg, src, *outDir)
			if err != nil {
				return err
			}
			log.Printf("rendered %s: %d points -> %s", src, n, out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("Rendering failed: %v", err)
	}
}
