// Package field implements the particle background: a fixed set of points
// repelled by the pointer, easing back to a drifting home point and linked to
// their neighbours by fading lines.
package field

import (
	"image/color"
	"math"
	"math/rand"
	"time"
)

// Field owns one particle set and the state shared by its frames. It is not
// safe for concurrent use; drive it from a single goroutine.
type Field struct {
	params Params
	rng    *rand.Rand

	width, height float64
	particles     []Particle
	signals       []Signal

	pointer Pointer
	pulse   float64
	hue     float64
	frames  uint64
}

// Stats summarises the current frame.
type Stats struct {
	Frames        uint64
	Particles     int
	Signals       int
	Connections   int
	MeanHomeDist  float64
	MaxHomeDist   float64
	Width, Height float64
	PointerX      float64
	PointerY      float64
}

// New returns an empty field. Call Resize to give it a viewport. A nil rng is
// replaced by a time-seeded one.
func New(p Params, rng *rand.Rand) *Field {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Field{
		params:  p,
		rng:     rng,
		pointer: Offscreen,
	}
}

// Params returns the parameters the field was built with.
func (f *Field) Params() Params { return f.params }

// Size returns the current viewport size.
func (f *Field) Size() (float64, float64) { return f.width, f.height }

// Particles exposes the live particle slice. It is replaced wholesale on
// every Resize.
func (f *Field) Particles() []Particle { return f.particles }

// Signals exposes the live signal tokens.
func (f *Field) Signals() []Signal { return f.signals }

// Pointer returns the last pointer position.
func (f *Field) Pointer() Pointer { return f.pointer }

// Resize discards the particle set and spawns a fresh one for the new
// viewport. Positions are not rescaled.
func (f *Field) Resize(width, height int) {
	f.width, f.height = float64(width), float64(height)
	f.Regenerate()
}

// Regenerate respawns the particle set for the current viewport.
func (f *Field) Regenerate() {
	f.particles = Spawn(f.rng, f.width, f.height, f.params)
	f.signals = spawnSignals(f.rng, f.particles, f.params)
}

// MovePointer records a pointer-move event.
func (f *Field) MovePointer(x, y float64) {
	f.pointer = Pointer{X: x, Y: y}
}

// SetPulse sets the audio pulse level, clamped to [0,1].
func (f *Field) SetPulse(level float64) {
	f.pulse = clamp01(level)
}

// Step advances every particle and signal by one frame.
func (f *Field) Step() {
	if len(f.particles) == 0 {
		return
	}
	for i := range f.particles {
		f.particles[i].step(f.pointer, f.width, f.height, f.params)
	}
	for i := range f.signals {
		s := &f.signals[i]
		s.Progress += s.Speed
		if s.Progress >= 1 {
			s.Progress = 0
		}
	}
	f.hue = math.Mod(f.hue+f.params.HueDrift, 1)
	f.frames++
}

// Draw renders the current frame. A nil surface is ignored.
func (f *Field) Draw(s Surface) {
	if s == nil || f.width <= 0 || f.height <= 0 {
		return
	}
	p := f.params

	if p.Trail > 0 {
		s.FillRect(0, 0, f.width, f.height, withAlpha(p.Background, p.Trail))
	} else {
		s.Fill(p.Background)
	}

	boost := 1 + f.pulse*p.PulseGain
	for i := range f.particles {
		pt := &f.particles[i]
		tint := rotateHue(f.tint(pt.Tint), f.hue)
		s.FillCircle(pt.X, pt.Y, pt.Radius, withAlpha(tint, pt.Alpha*boost))
		if p.Glow > 0 {
			s.StrokeCircle(pt.X, pt.Y, pt.Radius+p.Glow*boost, 1, withAlpha(tint, pt.Alpha*0.35*boost))
		}
	}

	f.Connections(func(a, b *Particle, alpha float64) {
		s.StrokeLine(a.X, a.Y, b.X, b.Y, p.LinkWidth, withAlpha(p.LinkColor, alpha))
	})

	for _, sig := range f.signals {
		a, b := f.particles[sig.From], f.particles[sig.To]
		x := a.X + (b.X-a.X)*sig.Progress
		y := a.Y + (b.Y-a.Y)*sig.Progress
		s.FillCircle(x, y, p.SignalRadius, p.SignalColor)
	}
}

func (f *Field) tint(i int) color.NRGBA {
	if i < 0 || i >= len(f.params.Palette) {
		return white
	}
	return f.params.Palette[i]
}

// Connections calls fn for every unordered pair of particles closer than the
// link threshold and returns how many there were. fn may be nil.
func (f *Field) Connections(fn func(a, b *Particle, alpha float64)) int {
	t2 := f.linkThreshold2()
	n := 0
	ps := f.particles
	for i := range ps {
		for j := i + 1; j < len(ps); j++ {
			dx := ps[i].X - ps[j].X
			dy := ps[i].Y - ps[j].Y
			d2 := dx*dx + dy*dy
			if d2 >= t2 {
				continue
			}
			n++
			if fn != nil {
				fn(&ps[i], &ps[j], LinkAlpha(d2, t2, f.params.LinkOpacity))
			}
		}
	}
	return n
}

func (f *Field) linkThreshold2() float64 {
	if d := f.params.LinkDistance; d > 0 {
		return d * d
	}
	return (f.width / 7) * (f.height / 7)
}

// LinkAlpha is the stroke opacity of a link between two particles whose
// squared distance is d2, given the squared threshold t2. It falls linearly
// from base at d2 == 0 to 0 at the threshold.
func LinkAlpha(d2, t2, base float64) float64 {
	if t2 <= 0 || d2 >= t2 {
		return 0
	}
	return base * (1 - d2/t2)
}

// Stats computes a summary of the current frame.
func (f *Field) Stats() Stats {
	st := Stats{
		Frames:    f.frames,
		Particles: len(f.particles),
		Signals:   len(f.signals),
		Width:     f.width,
		Height:    f.height,
		PointerX:  f.pointer.X,
		PointerY:  f.pointer.Y,
	}
	if len(f.particles) == 0 {
		return st
	}
	st.Connections = f.Connections(nil)
	var sum float64
	for _, pt := range f.particles {
		d := pt.HomeDistance(f.width, f.height)
		sum += d
		st.MaxHomeDist = math.Max(st.MaxHomeDist, d)
	}
	st.MeanHomeDist = sum / float64(len(f.particles))
	return st
}
