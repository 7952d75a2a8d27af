// Package loop drives a field frame by frame. The driver is the single owner
// of its field; other goroutines reach it only by posting events.
package loop

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/iburimskiy/backdrop/internal/field"
)

// Event is an input applied to the field between frames.
type Event interface {
	apply(f *field.Field)
}

// PointerMoved reports a new cursor position in viewport pixels.
type PointerMoved struct{ X, Y float64 }

// Resized reports a new viewport size. The particle set is regenerated.
type Resized struct{ Width, Height int }

// Regenerate respawns the particle set at the current size.
type Regenerate struct{}

// Pulse sets the audio level that modulates the glow.
type Pulse struct{ Level float64 }

func (e PointerMoved) apply(f *field.Field) { f.MovePointer(e.X, e.Y) }
func (e Resized) apply(f *field.Field)      { f.Resize(e.Width, e.Height) }
func (Regenerate) apply(f *field.Field)     { f.Regenerate() }
func (e Pulse) apply(f *field.Field)        { f.SetPulse(e.Level) }

// RunOptions configures a headless run.
type RunOptions struct {
	// Frames stops the loop after this many frames; zero runs until the
	// context is done.
	Frames int
	// FPS paces the loop; zero runs as fast as possible.
	FPS float64
	// Surface receives every frame. Nil skips drawing.
	Surface field.Surface
}

// Driver advances and renders a field.
type Driver struct {
	field  *field.Field
	log    *zap.Logger
	events chan Event
	frames atomic.Uint64
}

// New wraps f. queue is the capacity of the cross-goroutine event queue.
func New(f *field.Field, log *zap.Logger, queue int) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	if queue < 1 {
		queue = 1
	}
	return &Driver{
		field:  f,
		log:    log.Named("loop"),
		events: make(chan Event, queue),
	}
}

// Field returns the driven field. Only the owning goroutine may touch it.
func (d *Driver) Field() *field.Field { return d.field }

// Frames returns the number of completed frames.
func (d *Driver) Frames() uint64 { return d.frames.Load() }

// Apply handles ev immediately. Call it from the owning goroutine only.
func (d *Driver) Apply(ev Event) {
	if r, ok := ev.(Resized); ok {
		d.log.Debug("viewport resized", zap.Int("width", r.Width), zap.Int("height", r.Height))
	}
	ev.apply(d.field)
}

// Post queues ev for the next frame. It blocks until there is room or ctx is
// done.
func (d *Driver) Post(ctx context.Context, ev Event) error {
	select {
	case d.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Advance applies queued events and steps the field once.
func (d *Driver) Advance() {
	for drained := false; !drained; {
		select {
		case ev := <-d.events:
			d.Apply(ev)
		default:
			drained = true
		}
	}
	d.field.Step()
}

// Render draws the current frame and counts it.
func (d *Driver) Render(s field.Surface) {
	d.field.Draw(s)
	d.frames.Add(1)
}

// Run steps and draws until opts.Frames frames are done or ctx ends. Each
// frame starts only after the previous one has been drawn.
func (d *Driver) Run(ctx context.Context, opts RunOptions) error {
	var limiter *rate.Limiter
	if opts.FPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.FPS), 1)
	}
	d.log.Info("headless loop started", zap.Int("frames", opts.Frames), zap.Float64("fps", opts.FPS))

	for n := 0; opts.Frames <= 0 || n < opts.Frames; n++ {
		if err := ctx.Err(); err != nil {
			d.log.Info("headless loop cancelled", zap.Uint64("frames", d.Frames()))
			return err
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				d.log.Info("headless loop cancelled", zap.Uint64("frames", d.Frames()))
				return err
			}
		}
		d.Advance()
		d.Render(opts.Surface)
	}
	d.log.Info("headless loop finished", zap.Uint64("frames", d.Frames()))
	return nil
}
