package main

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"gopen/pkg/config"
	"gopen/pkg/pen"
)

func newTestGame(t *testing.T, script string) (*Game, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "drawing.pen")
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	sink := &displaySink{log: pen.LogSink{Logger: log.New(&buf, "", 0)}}
	cfg := config.Default()
	return &Game{
		cfg:       cfg,
		path:      path,
		pen:       pen.New(pen.Options{Limits: cfg.Limits, Natives: pen.StandardNatives(), Sink: sink}),
		sink:      sink,
		reloadKey: ebiten.KeyR,
	}, &buf
}

func TestReloadWiring(t *testing.T) {
	g, logs := newTestGame(t, "move(10)\nrotate(90)\nmove(10)")
	g.reload()
	if n := len(g.pen.Points()); n != 3 {
		t.Fatalf("expected 3 points, got %d", n)
	}
	if g.sink.last != "" || logs.Len() != 0 {
		t.Errorf("unexpected diagnostic %q", g.sink.last)
	}

	// A broken edit keeps the drawing and surfaces the error.
	if err := os.WriteFile(g.path, []byte("move(10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	g.reload()
	if n := len(g.pen.Points()); n != 3 {
		t.Errorf("points should survive a failed compile, got %d", n)
	}
	if !strings.Contains(g.sink.last, "syntax error") {
		t.Errorf("overlay should show the error, got %q", g.sink.last)
	}
	if strings.Count(logs.String(), "ERROR:") != 1 {
		t.Errorf("expected one logged error, got %q", logs.String())
	}

	// Fixing the file clears the overlay.
	if err := os.WriteFile(g.path, []byte("move(1)"), 0o644); err != nil {
		t.Fatal(err)
	}
	g.reload()
	if g.sink.last != "" {
		t.Errorf("overlay should be cleared, got %q", g.sink.last)
	}
	if n := len(g.pen.Points()); n != 2 {
		t.Errorf("expected 2 points, got %d", n)
	}
}

func TestReloadMissingFile(t *testing.T) {
	g, _ := newTestGame(t, "")
	g.path = filepath.Join(t.TempDir(), "gone.pen")
	g.reload()
	if g.sink.last == "" {
		t.Error("a missing script should be reported")
	}
}

func TestParseKey(t *testing.T) {
	if k := parseKey("F5"); k != ebiten.KeyF5 {
		t.Errorf("expected F5, got %v", k)
	}
	if k := parseKey("NoSuchKey"); k != ebiten.KeyR {
		t.Errorf("unknown names should fall back to R, got %v", k)
	}
}

func TestLayout(t *testing.T) {
	g := &Game{}
	if w, h := g.Layout(640, 480); w != 640 || h != 480 {
		t.Errorf("layout should follow the window, got %dx%d", w, h)
	}
}
