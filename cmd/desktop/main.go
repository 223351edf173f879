package main

import (
	"flag"
	"image/color"
	"log"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"gopen/pkg/config"
	"gopen/pkg/pen"
	"gopen/pkg/utils"
)

// screenSurface adapts an ebiten frame to pen.Surface.
type screenSurface struct {
	screen     *ebiten.Image
	background color.Color
	stroke     color.Color
	lineWidth  float32
}

func (s screenSurface) Clear() {
	s.screen.Fill(s.background)
}

func (s screenSurface) DrawSegment(x1, y1, x2, y2 int) {
	vector.StrokeLine(s.screen, float32(x1), float32(y1), float32(x2), float32(y2), s.lineWidth, s.stroke, true)
}

// displaySink logs each diagnostic and keeps the latest one for the overlay.
type displaySink struct {
	log  pen.LogSink
	last string
}

func (d *displaySink) ReportError(msg string) {
	d.last = msg
	d.log.ReportError(msg)
}

type Game struct {
	cfg       config.Config
	path      string
	pen       *pen.Pen
	sink      *displaySink
	reloadKey ebiten.Key
}

// reload reads the script from disk and recompiles it. A failed compile
// keeps the previous drawing on screen.
func (g *Game) reload() {
	_, source, err := utils.ReadSource(g.path)
	if err != nil {
		g.sink.ReportError(err.Error())
		return
	}
	g.sink.last = ""
	_ = g.pen.Recompile(source)
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(g.reloadKey) {
		g.reload()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	g.pen.Render(screenSurface{
		screen:     screen,
		background: g.cfg.BackgroundColor(),
		stroke:     g.cfg.StrokeColor(),
		lineWidth:  g.cfg.LineWidth,
	}, b.Dx(), b.Dy())

	if g.sink.last != "" {
		lines := strings.Count(g.sink.last, "\n") + 1
		ebitenutil.DebugPrintAt(screen, "Error: "+g.sink.last, 4, b.Dy()-16*lines-4)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func parseKey(name string) ebiten.Key {
	var k ebiten.Key
	if err := k.UnmarshalText([]byte(name)); err != nil {
		log.Printf("unknown reload key %q, using R", name)
		return ebiten.KeyR
	}
	return k
}

func main() {
	configPath := flag.String("config", "", "YAML host configuration")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Printf("ERROR: file path not provided")
		log.Printf("USAGE: %s [-config file] <file>", os.Args[0])
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	natives := pen.StandardNatives()
	if !cfg.Natives {
		natives = nil
	}
	sink := &displaySink{log: pen.NewLogSink("pen: ")}
	game := &Game{
		cfg:       cfg,
		path:      flag.Arg(0),
		pen:       pen.New(pen.Options{Limits: cfg.Limits, Natives: natives, Sink: sink}),
		sink:      sink,
		reloadKey: parseKey(cfg.ReloadKey),
	}
	game.reload()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle("Pen")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
