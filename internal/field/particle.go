package field

import (
	"math"
	"math/rand"
)

// Offscreen is the pointer position before any pointer-move event. It lies far
// enough outside the viewport that no particle is ever within reach of it.
var Offscreen = Pointer{X: -1000, Y: -1000}

// epsilon is the distance below which the pointer exerts no force.
const epsilon = 1e-9

// Pointer is the last known cursor position in viewport pixels.
type Pointer struct {
	X, Y float64
}

// Particle is one point of the field. The home point starts at the spawn
// position and drifts with the particle's velocity; the particle eases back
// to it whenever the pointer is out of reach. HomeX and HomeY therefore move
// every frame rather than staying where the particle was created.
type Particle struct {
	X, Y         float64
	HomeX, HomeY float64
	VX, VY       float64
	Radius       float64
	Alpha        float64
	Density      float64
	Tint         int
}

// Signal is a token travelling along the edge From->To. Progress cycles
// through [0,1).
type Signal struct {
	From, To int
	Progress float64
	Speed    float64
}

// Spawn creates p.Count particles spread uniformly over the viewport. It
// returns nil when there is no surface to draw on.
func Spawn(rng *rand.Rand, width, height float64, p Params) []Particle {
	if width <= 0 || height <= 0 || p.Count <= 0 {
		return nil
	}
	ps := make([]Particle, p.Count)
	for i := range ps {
		x := rng.Float64() * width
		y := rng.Float64() * height
		tint := 0
		if len(p.Palette) > 1 {
			tint = rng.Intn(len(p.Palette))
		}
		ps[i] = Particle{
			X:       x,
			Y:       y,
			HomeX:   x,
			HomeY:   y,
			VX:      (rng.Float64() - 0.5) * p.Speed,
			VY:      (rng.Float64() - 0.5) * p.Speed,
			Radius:  p.MinRadius + rng.Float64()*(p.MaxRadius-p.MinRadius),
			Alpha:   p.MinAlpha + rng.Float64()*(p.MaxAlpha-p.MinAlpha),
			Density: 1 + rng.Float64()*p.DensitySpread,
			Tint:    tint,
		}
	}
	return ps
}

// spawnSignals wires each token from a random node to that node's nearest
// neighbour.
func spawnSignals(rng *rand.Rand, ps []Particle, p Params) []Signal {
	if p.Signals <= 0 || len(ps) < 2 {
		return nil
	}
	sigs := make([]Signal, p.Signals)
	for i := range sigs {
		from := rng.Intn(len(ps))
		sigs[i] = Signal{
			From:     from,
			To:       nearest(ps, from),
			Progress: rng.Float64(),
			Speed:    p.SignalSpeed * (0.5 + rng.Float64()),
		}
	}
	return sigs
}

func nearest(ps []Particle, i int) int {
	best, bestD2 := -1, math.Inf(1)
	for j := range ps {
		if j == i {
			continue
		}
		dx, dy := ps[j].X-ps[i].X, ps[j].Y-ps[i].Y
		if d2 := dx*dx + dy*dy; d2 < bestD2 {
			best, bestD2 = j, d2
		}
	}
	return best
}

// step advances one particle by a frame.
func (pt *Particle) step(ptr Pointer, width, height float64, p Params) {
	pt.X += pt.VX
	pt.Y += pt.VY
	pt.HomeX += pt.VX
	pt.HomeY += pt.VY

	dx := ptr.X - pt.X
	dy := ptr.Y - pt.Y
	d := math.Hypot(dx, dy)
	if d < p.InfluenceRadius {
		if d > epsilon {
			force := (p.InfluenceRadius - d) / p.InfluenceRadius * pt.Density * p.ForceStrength
			pt.X -= dx / d * force
			pt.Y -= dy / d * force
		}
	} else {
		pt.X += seamDelta(pt.HomeX, pt.X, width) / p.Damping
		pt.Y += seamDelta(pt.HomeY, pt.Y, height) / p.Damping
	}

	pt.X = wrap(pt.X, width)
	pt.Y = wrap(pt.Y, height)
	pt.HomeX = wrap(pt.HomeX, width)
	pt.HomeY = wrap(pt.HomeY, height)
}

// HomeDistance is the distance from the particle to its home point, measured
// across the wrap seam when that is shorter.
func (pt Particle) HomeDistance(width, height float64) float64 {
	return math.Hypot(seamDelta(pt.HomeX, pt.X, width), seamDelta(pt.HomeY, pt.Y, height))
}

// wrap folds v into [0, size).
func wrap(v, size float64) float64 {
	if v >= 0 && v < size {
		return v
	}
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	if v >= size {
		v = 0
	}
	return v
}

// seamDelta is to-from on a ring of the given size, choosing the shorter way.
func seamDelta(to, from, size float64) float64 {
	d := to - from
	switch {
	case d > size/2:
		d -= size
	case d < -size/2:
		d += size
	}
	return d
}
