// Package pen is the host-facing side of the language: it recompiles and runs
// a script in one step and renders the resulting polyline onto a Surface.
package pen

import (
	"log"
	"os"

	"gopen/pkg/compiler"
	"gopen/pkg/vm"
)

// Surface is what a rendering backend provides.
type Surface interface {
	Clear()
	DrawSegment(x1, y1, x2, y2 int)
}

// ErrorSink receives each compile or runtime diagnostic exactly once.
type ErrorSink interface {
	ReportError(msg string)
}

// LogSink reports diagnostics through a standard logger.
type LogSink struct {
	Logger *log.Logger
}

func (s LogSink) ReportError(msg string) {
	if s.Logger == nil {
		log.Printf("ERROR: %s", msg)
		return
	}
	s.Logger.Printf("ERROR: %s", msg)
}

// NewLogSink logs to stderr with the given prefix.
func NewLogSink(prefix string) LogSink {
	return LogSink{Logger: log.New(os.Stderr, prefix, log.LstdFlags)}
}

// Options configures a Pen. A zero Limits means vm.DefaultLimits.
type Options struct {
	Limits  vm.Limits
	Natives []vm.Native
	Sink    ErrorSink
}

// Pen owns the visible point buffer. Every Recompile builds a fresh compiler
// and machine, so separate Pens share nothing. A single Pen is not safe for
// concurrent use.
type Pen struct {
	limits  vm.Limits
	natives []vm.Native
	sink    ErrorSink

	points  []vm.Point
	program *vm.Program
	lastErr error
}

func New(opts Options) *Pen {
	limits := opts.Limits
	if limits == (vm.Limits{}) {
		limits = vm.DefaultLimits()
	}
	sink := opts.Sink
	if sink == nil {
		sink = LogSink{}
	}
	return &Pen{limits: limits, natives: opts.Natives, sink: sink}
}

// Recompile compiles and runs source. If compilation fails, the previously
// visible points stay untouched. If evaluation fails, the points recorded up
// to the failure become visible. Either way the error is reported to the sink
// and returned.
func (p *Pen) Recompile(source string) error {
	prog, err := compiler.New(p.limits, p.natives...).Compile(source)
	if err != nil {
		return p.fail(err)
	}
	p.program = prog

	m := vm.NewMachine(p.limits)
	err = m.Run(prog)
	p.points = append(p.points[:0], m.Points()...)
	if err != nil {
		return p.fail(err)
	}
	p.lastErr = nil
	return nil
}

func (p *Pen) fail(err error) error {
	p.lastErr = err
	p.sink.ReportError(err.Error())
	return err
}

// Render clears s and draws one segment per consecutive pair of points,
// centered on a width × height surface.
func (p *Pen) Render(s Surface, width, height int) {
	cx, cy := width/2, height/2

	s.Clear()
	for i := 1; i < len(p.points); i++ {
		a, b := p.points[i-1], p.points[i]
		s.DrawSegment(cx+int(a.X), cy+int(a.Y), cx+int(b.X), cy+int(b.Y))
	}
}

// Points returns a copy of the visible point buffer.
func (p *Pen) Points() []vm.Point {
	return append([]vm.Point(nil), p.points...)
}

// Program returns the last successfully compiled program, or nil.
func (p *Pen) Program() *vm.Program {
	return p.program
}

// Err returns the error of the last Recompile, or nil if it succeeded.
func (p *Pen) Err() error {
	return p.lastErr
}
