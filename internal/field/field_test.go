package field

import (
	"errors"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Surface that remembers every call.
type recorder struct {
	ops []op
}

type op struct {
	kind string
	args []float64
	c    color.Color
}

func (r *recorder) Fill(c color.Color) { r.ops = append(r.ops, op{kind: "fill", c: c}) }

func (r *recorder) FillRect(x, y, w, h float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "rect", args: []float64{x, y, w, h}, c: c})
}

func (r *recorder) FillCircle(cx, cy, rad float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "circle", args: []float64{cx, cy, rad}, c: c})
}

func (r *recorder) StrokeCircle(cx, cy, rad, width float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "ring", args: []float64{cx, cy, rad, width}, c: c})
}

func (r *recorder) StrokeLine(x0, y0, x1, y1, width float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "line", args: []float64{x0, y0, x1, y1, width}, c: c})
}

func (r *recorder) count(kind string) int {
	n := 0
	for _, o := range r.ops {
		if o.kind == kind {
			n++
		}
	}
	return n
}

func monochrome(t *testing.T) Params {
	t.Helper()
	p, err := Theme("monochrome")
	require.NoError(t, err)
	return p
}

func newField(t *testing.T, p Params, w, h int) *Field {
	t.Helper()
	f := New(p, rand.New(rand.NewSource(42)))
	f.Resize(w, h)
	return f
}

func TestSpawn(t *testing.T) {
	p := monochrome(t)
	rng := rand.New(rand.NewSource(1))

	ps := Spawn(rng, 800, 600, p)
	require.Len(t, ps, p.Count)
	for _, pt := range ps {
		assert.True(t, pt.X >= 0 && pt.X < 800)
		assert.True(t, pt.Y >= 0 && pt.Y < 600)
		assert.Equal(t, pt.X, pt.HomeX)
		assert.Equal(t, pt.Y, pt.HomeY)
		assert.LessOrEqual(t, math.Abs(pt.VX), p.Speed/2)
		assert.LessOrEqual(t, math.Abs(pt.VY), p.Speed/2)
		assert.True(t, pt.Radius >= p.MinRadius && pt.Radius < p.MaxRadius)
		assert.True(t, pt.Density >= 1 && pt.Density <= 1+p.DensitySpread)
	}

	t.Run("no surface", func(t *testing.T) {
		assert.Nil(t, Spawn(rng, 0, 600, p))
		assert.Nil(t, Spawn(rng, 800, -1, p))
	})
}

func TestStepKeepsParticlesInViewport(t *testing.T) {
	p := monochrome(t)
	p.Speed = 6
	f := newField(t, p, 320, 240)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		if i%10 == 0 {
			f.MovePointer(rng.Float64()*400-40, rng.Float64()*300-30)
		}
		f.Step()
		for _, pt := range f.Particles() {
			require.True(t, pt.X >= 0 && pt.X < 320, "x=%v", pt.X)
			require.True(t, pt.Y >= 0 && pt.Y < 240, "y=%v", pt.Y)
		}
	}
}

func TestIdlePointerNeverMovesParticlesAwayFromHome(t *testing.T) {
	f := newField(t, monochrome(t), 640, 480)
	require.Equal(t, Offscreen, f.Pointer())

	prev := make([]float64, len(f.Particles()))
	for i := range prev {
		prev[i] = math.Inf(1)
	}
	for step := 0; step < 200; step++ {
		f.Step()
		for i, pt := range f.Particles() {
			d := pt.HomeDistance(640, 480)
			require.LessOrEqual(t, d, prev[i]+1e-9)
			prev[i] = d
		}
	}
}

func TestRepelledParticleEasesBackMonotonically(t *testing.T) {
	p := monochrome(t)
	p.Count = 1
	f := newField(t, p, 800, 600)
	pt := f.Particles()[0]

	f.MovePointer(pt.X+10, pt.Y+5)
	f.Step()
	pushed := f.Particles()[0].HomeDistance(800, 600)
	require.Greater(t, pushed, 1.0, "particle should have been pushed away")

	f.MovePointer(Offscreen.X, Offscreen.Y)
	prev := pushed
	for i := 0; i < 400; i++ {
		f.Step()
		d := f.Particles()[0].HomeDistance(800, 600)
		require.LessOrEqual(t, d, prev+1e-9)
		prev = d
	}
	assert.Less(t, prev, 0.01)
}

func TestRepulsionPushesAwayFromPointer(t *testing.T) {
	p := monochrome(t)
	p.Count = 1
	p.Speed = 0
	f := newField(t, p, 800, 600)
	f.particles[0].X, f.particles[0].Y = 400, 300
	f.particles[0].HomeX, f.particles[0].HomeY = 400, 300
	f.particles[0].Density = 1

	f.MovePointer(450, 300)
	f.Step()

	got := f.Particles()[0]
	want := 400 - (250.0-50)/250*1*3
	assert.InDelta(t, want, got.X, 1e-9)
	assert.InDelta(t, 300, got.Y, 1e-9)
}

func TestPointerOnParticleProducesNoNaN(t *testing.T) {
	p := monochrome(t)
	p.Count = 5
	p.Speed = 0
	f := newField(t, p, 200, 200)
	target := f.Particles()[2]

	f.MovePointer(target.X, target.Y)
	f.Step()

	got := f.Particles()[2]
	assert.False(t, math.IsNaN(got.X) || math.IsNaN(got.Y))
	assert.Equal(t, target.X, got.X)
	assert.Equal(t, target.Y, got.Y)
}

func TestResizeReplacesParticleSet(t *testing.T) {
	p := monochrome(t)
	f := newField(t, p, 800, 600)
	old := f.Particles()
	snapshot := append([]Particle(nil), old...)

	f.Resize(1024, 768)
	fresh := f.Particles()

	require.Len(t, fresh, p.Count)
	assert.NotSame(t, &old[0], &fresh[0])
	assert.Equal(t, snapshot, old, "the discarded set must not be touched")
	w, h := f.Size()
	assert.Equal(t, 1024.0, w)
	assert.Equal(t, 768.0, h)

	t.Run("to nothing", func(t *testing.T) {
		f.Resize(0, 0)
		assert.Empty(t, f.Particles())
		f.Step()
		f.Draw(&recorder{})
	})
}

func TestLinkAlpha(t *testing.T) {
	assert.Equal(t, 0.0, LinkAlpha(100, 100, 0.3), "at the threshold")
	assert.Equal(t, 0.3, LinkAlpha(0, 100, 0.3), "coincident")
	assert.InDelta(t, 0.15, LinkAlpha(50, 100, 0.3), 1e-12)
	assert.Equal(t, 0.0, LinkAlpha(150, 100, 0.3), "beyond")
	assert.Equal(t, 0.0, LinkAlpha(0, 0, 0.3), "no threshold")
}

func TestConnectionsSkipSelfAndFarPairs(t *testing.T) {
	p := monochrome(t)
	p.Count = 3
	p.LinkDistance = 10
	f := newField(t, p, 100, 100)
	f.particles[0].X, f.particles[0].Y = 10, 10
	f.particles[1].X, f.particles[1].Y = 15, 10
	f.particles[2].X, f.particles[2].Y = 90, 90

	var alphas []float64
	n := f.Connections(func(a, b *Particle, alpha float64) {
		assert.NotSame(t, a, b)
		alphas = append(alphas, alpha)
	})
	require.Equal(t, 1, n)
	assert.InDelta(t, 0.3*(1-25.0/100), alphas[0], 1e-12)
}

func TestDefaultLinkThresholdFollowsViewport(t *testing.T) {
	f := newField(t, monochrome(t), 700, 350)
	assert.Equal(t, 100.0*50.0, f.linkThreshold2())
}

func TestDraw(t *testing.T) {
	t.Run("nil surface", func(t *testing.T) {
		f := newField(t, monochrome(t), 100, 100)
		assert.NotPanics(t, func() { f.Draw(nil) })
	})

	t.Run("clears then draws particles and links", func(t *testing.T) {
		p := monochrome(t)
		p.Count = 4
		f := newField(t, p, 100, 100)
		rec := &recorder{}
		f.Draw(rec)

		require.NotEmpty(t, rec.ops)
		assert.Equal(t, "fill", rec.ops[0].kind)
		assert.Equal(t, 4, rec.count("circle"))
		assert.Equal(t, f.Connections(nil), rec.count("line"))
		assert.Zero(t, rec.count("ring"))
	})

	t.Run("trail veil and glow", func(t *testing.T) {
		p, err := Theme("aurora")
		require.NoError(t, err)
		f := newField(t, p, 300, 200)
		rec := &recorder{}
		f.Draw(rec)

		require.Equal(t, "rect", rec.ops[0].kind)
		assert.Equal(t, []float64{0, 0, 300, 200}, rec.ops[0].args)
		assert.Equal(t, uint8(51), rec.ops[0].c.(color.NRGBA).A)
		assert.Equal(t, p.Count, rec.count("ring"))
	})

	t.Run("signal tokens", func(t *testing.T) {
		p, err := Theme("circuit")
		require.NoError(t, err)
		f := newField(t, p, 400, 300)
		rec := &recorder{}
		f.Draw(rec)
		assert.Equal(t, p.Count+p.Signals, rec.count("circle"))
	})
}

func TestPulseBrightensGlow(t *testing.T) {
	p, err := Theme("aurora")
	require.NoError(t, err)
	p.Count = 1
	p.HueDrift = 0
	f := newField(t, p, 100, 100)

	quiet := &recorder{}
	f.Draw(quiet)
	f.SetPulse(2)
	loud := &recorder{}
	f.Draw(loud)

	ring := func(r *recorder) op {
		for _, o := range r.ops {
			if o.kind == "ring" {
				return o
			}
		}
		t.Fatal("no glow ring drawn")
		return op{}
	}
	assert.Greater(t, ring(loud).args[2], ring(quiet).args[2])
}

func TestSignalsCycle(t *testing.T) {
	p, err := Theme("circuit")
	require.NoError(t, err)
	f := newField(t, p, 400, 300)
	require.Len(t, f.Signals(), p.Signals)

	for _, s := range f.Signals() {
		assert.NotEqual(t, s.From, s.To)
	}
	for i := 0; i < 300; i++ {
		f.Step()
		for _, s := range f.Signals() {
			require.True(t, s.Progress >= 0 && s.Progress < 1, "progress=%v", s.Progress)
		}
	}
}

func TestSettlingScenario(t *testing.T) {
	p := monochrome(t)
	p.Count = 3
	f := newField(t, p, 100, 100)

	f.Step()
	first := make([]float64, 3)
	for i, pt := range f.Particles() {
		first[i] = pt.HomeDistance(100, 100)
	}
	for i := 1; i < 1000; i++ {
		f.Step()
	}
	for i, pt := range f.Particles() {
		assert.True(t, pt.X >= 0 && pt.X < 100)
		assert.True(t, pt.Y >= 0 && pt.Y < 100)
		assert.LessOrEqual(t, pt.HomeDistance(100, 100), first[i]+1e-9)
	}
	assert.Equal(t, uint64(1000), f.Stats().Frames)
}

func TestStats(t *testing.T) {
	p := monochrome(t)
	p.Count = 10
	f := newField(t, p, 200, 100)
	st := f.Stats()
	assert.Equal(t, 10, st.Particles)
	assert.Zero(t, st.MeanHomeDist)
	assert.Equal(t, Offscreen.X, st.PointerX)
	assert.Equal(t, f.Connections(nil), st.Connections)
}

func TestThemes(t *testing.T) {
	for _, name := range Themes() {
		t.Run(name, func(t *testing.T) {
			p, err := Theme(name)
			require.NoError(t, err)
			assert.NoError(t, p.Validate())
		})
	}

	_, err := Theme("vaporwave")
	assert.True(t, errors.Is(err, ErrUnknownTheme))
}

func TestParamsValidate(t *testing.T) {
	base := monochrome(t)
	cases := map[string]func(p *Params){
		"count":     func(p *Params) { p.Count = 0 },
		"radius":    func(p *Params) { p.InfluenceRadius = 1000 },
		"damping":   func(p *Params) { p.Damping = 0.5 },
		"palette":   func(p *Params) { p.Palette = nil },
		"trail":     func(p *Params) { p.Trail = 2 },
		"particles": func(p *Params) { p.MinRadius = 0 },
		"force":     func(p *Params) { p.ForceStrength = -1 },
		"speed":     func(p *Params) { p.Speed = -0.1 },
		"opacity":   func(p *Params) { p.LinkOpacity = 1.5 },
		"no links":  func(p *Params) { p.LinkOpacity = -0.1 },
	}
	require.NoError(t, base.Validate())
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := base
			mutate(&p)
			assert.Error(t, p.Validate())
		})
	}

	t.Run("zero force is allowed", func(t *testing.T) {
		p := base
		p.ForceStrength = 0
		assert.NoError(t, p.Validate())
	})
}

func TestWrap(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{99.5, 99.5},
		{100, 0},
		{101, 1},
		{-1, 99},
		{-250, 50},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, wrap(c.in, 100), 1e-9, "wrap(%v)", c.in)
	}
	assert.Less(t, wrap(-1e-18, 100), 100.0)
}

func TestSeamDelta(t *testing.T) {
	assert.Equal(t, 10.0, seamDelta(20, 10, 100))
	assert.Equal(t, -5.0, seamDelta(98, 3, 100))
	assert.Equal(t, 5.0, seamDelta(3, 98, 100))
}

func TestPalette(t *testing.T) {
	c, err := ParseHex("#4fd1c5")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x4f, G: 0xd1, B: 0xc5, A: 255}, c)

	_, err = ParseHex("teal")
	assert.Error(t, err)

	red := color.NRGBA{R: 255, A: 128}
	assert.Equal(t, red, rotateHue(red, 0))
	assert.Equal(t, red, rotateHue(red, 1))
	green := rotateHue(red, 1.0/3)
	assert.Equal(t, uint8(255), green.G)
	assert.Equal(t, uint8(128), green.A)

	assert.Equal(t, uint8(255), withAlpha(red, 3).A)
	assert.Equal(t, uint8(0), withAlpha(red, -1).A)
}
