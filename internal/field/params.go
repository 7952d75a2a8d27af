package field

import (
	"errors"
	"fmt"
	"image/color"
)

// ErrUnknownTheme is returned by Theme for names without a preset.
var ErrUnknownTheme = errors.New("unknown theme")

// Params configures one field. A theme preset fills every value; config
// overrides individual fields on top of it.
type Params struct {
	Count         int
	Speed         float64 // velocity components are drawn from [-Speed/2, Speed/2)
	MinRadius     float64
	MaxRadius     float64
	MinAlpha      float64
	MaxAlpha      float64
	DensitySpread float64

	InfluenceRadius float64
	ForceStrength   float64
	Damping         float64

	// LinkDistance is the connection threshold in pixels. Zero derives it from
	// the viewport as sqrt((w/7)*(h/7)).
	LinkDistance float64
	LinkOpacity  float64
	LinkWidth    float64
	LinkColor    color.NRGBA

	Palette    []color.NRGBA
	Background color.NRGBA
	Trail      float64 // 0 clears every frame, otherwise veil alpha
	Glow       float64 // glow ring offset in pixels, 0 disables
	PulseGain  float64
	HueDrift   float64 // palette hue turns per frame

	Signals      int
	SignalSpeed  float64
	SignalRadius float64
	SignalColor  color.NRGBA
}

// Validate reports the first parameter that would break the simulation.
func (p Params) Validate() error {
	switch {
	case p.Count < 1:
		return fmt.Errorf("count must be positive, got %d", p.Count)
	case p.InfluenceRadius <= 0 || p.InfluenceRadius >= -Offscreen.X:
		return fmt.Errorf("influence radius must be in (0, %g), got %g", -Offscreen.X, p.InfluenceRadius)
	case p.ForceStrength < 0:
		return fmt.Errorf("force strength must not be negative, got %g", p.ForceStrength)
	case p.Speed < 0:
		return fmt.Errorf("speed must not be negative, got %g", p.Speed)
	case p.Damping < 1:
		return fmt.Errorf("damping must be at least 1, got %g", p.Damping)
	case p.MinRadius <= 0 || p.MaxRadius < p.MinRadius:
		return fmt.Errorf("radius range [%g, %g) is invalid", p.MinRadius, p.MaxRadius)
	case p.MinAlpha < 0 || p.MaxAlpha > 1 || p.MaxAlpha < p.MinAlpha:
		return fmt.Errorf("alpha range [%g, %g] is invalid", p.MinAlpha, p.MaxAlpha)
	case len(p.Palette) == 0:
		return errors.New("palette is empty")
	case p.LinkOpacity < 0 || p.LinkOpacity > 1:
		return fmt.Errorf("link opacity must be in [0, 1], got %g", p.LinkOpacity)
	case p.Trail < 0 || p.Trail > 1:
		return fmt.Errorf("trail must be in [0, 1], got %g", p.Trail)
	case p.Signals < 0:
		return fmt.Errorf("signals must not be negative, got %d", p.Signals)
	}
	return nil
}

var white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// Theme returns the preset with the given name.
func Theme(name string) (Params, error) {
	switch name {
	case "", "monochrome":
		return Params{
			Count:           200,
			Speed:           0.8,
			MinRadius:       1,
			MaxRadius:       3.5,
			MinAlpha:        0.6,
			MaxAlpha:        0.6,
			DensitySpread:   40,
			InfluenceRadius: 250,
			ForceStrength:   3,
			Damping:         40,
			LinkOpacity:     0.3,
			LinkWidth:       1,
			LinkColor:       white,
			Palette:         []color.NRGBA{white},
			Background:      color.NRGBA{A: 255},
		}, nil
	case "aurora":
		return Params{
			Count:           140,
			Speed:           0.5,
			MinRadius:       1.5,
			MaxRadius:       4,
			MinAlpha:        0.5,
			MaxAlpha:        0.9,
			DensitySpread:   25,
			InfluenceRadius: 180,
			ForceStrength:   2,
			Damping:         30,
			LinkDistance:    120,
			LinkOpacity:     0.25,
			LinkWidth:       1,
			LinkColor:       color.NRGBA{R: 160, G: 220, B: 255, A: 255},
			Palette: []color.NRGBA{
				{R: 0x4f, G: 0xd1, B: 0xc5, A: 255},
				{R: 0x7f, G: 0x5a, B: 0xf0, A: 255},
				{R: 0xf2, G: 0x5f, B: 0x9a, A: 255},
				{R: 0xff, G: 0xc8, B: 0x57, A: 255},
			},
			Background: color.NRGBA{R: 8, G: 10, B: 24, A: 255},
			Trail:      0.2,
			Glow:       3,
			PulseGain:  1.5,
			HueDrift:   0.0005,
		}, nil
	case "circuit":
		return Params{
			Count:           90,
			Speed:           0.3,
			MinRadius:       2,
			MaxRadius:       3,
			MinAlpha:        0.8,
			MaxAlpha:        1,
			DensitySpread:   20,
			InfluenceRadius: 150,
			ForceStrength:   2,
			Damping:         25,
			LinkDistance:    140,
			LinkOpacity:     0.4,
			LinkWidth:       1.5,
			LinkColor:       color.NRGBA{R: 0, G: 200, B: 120, A: 255},
			Palette: []color.NRGBA{
				{R: 0, G: 255, B: 150, A: 255},
				{R: 0, G: 180, B: 255, A: 255},
			},
			Background:   color.NRGBA{R: 2, G: 12, B: 8, A: 255},
			Glow:         2,
			PulseGain:    1,
			Signals:      24,
			SignalSpeed:  0.02,
			SignalRadius: 2,
			SignalColor:  color.NRGBA{R: 220, G: 255, B: 120, A: 255},
		}, nil
	}
	return Params{}, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
}

// Themes lists the preset names.
func Themes() []string {
	return []string{"monochrome", "aurora", "circuit"}
}
