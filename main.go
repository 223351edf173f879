//go:build !js

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"gopen/pkg/compiler"
	"gopen/pkg/config"
	"gopen/pkg/pen"
	"gopen/pkg/render"
	"gopen/pkg/utils"
)

func main() {
	inPath := flag.String("in", "", "input script path")
	showTokens := flag.Bool("tokens", false, "print the token stream")
	showOps := flag.Bool("ops", false, "print the compiled bytecode")
	showSymbols := flag.Bool("symbols", false, "print the variables visible at the end of compilation")
	runProgram := flag.Bool("run", false, "run the script and print the point buffer as JSON")
	pngPath := flag.String("png", "", "run the script and render it to a PNG file")
	configPath := flag.String("config", "", "YAML host configuration")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in <script>")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
	}

	fullPath, source, err := utils.ReadSource(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", *inPath, err)
		os.Exit(1)
	}

	if *showTokens {
		tokens, err := compiler.Lex(source)
		for _, tok := range tokens {
			fmt.Println(" ", tok)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	natives := pen.StandardNatives()
	if !cfg.Natives {
		natives = nil
	}

	if *showOps || *showSymbols {
		c := compiler.New(cfg.Limits, natives...)
		prog, err := c.Compile(source)
		if err != nil {
			fmt.Fprintf(os.Stderr, "compilation failed: %v\n", err)
			os.Exit(1)
		}
		if *showOps {
			fmt.Printf("%s (%d ops)\n", fullPath, len(prog.Ops))
			fmt.Print(prog)
		}
		if *showSymbols {
			fmt.Print(c.Symbols())
		}
	}

	if !*runProgram && *pngPath == "" {
		return
	}

	p := pen.New(pen.Options{Limits: cfg.Limits, Natives: natives, Sink: pen.NewLogSink("pen: ")})
	if err := p.Recompile(source); err != nil {
		os.Exit(1)
	}

	if *runProgram {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p.Points()); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write points: %v\n", err)
			os.Exit(1)
		}
	}

	if *pngPath != "" {
		canvas := render.NewCanvas(cfg.Width, cfg.Height, cfg.BackgroundColor(), cfg.StrokeColor(), cfg.LineWidth)
		p.Render(canvas, cfg.Width, cfg.Height)
		if err := canvas.SavePNG(*pngPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %q: %v\n", *pngPath, err)
			os.Exit(1)
		}
		fmt.Printf("rendered %d points -> %s\n", len(p.Points()), *pngPath)
	}
}
