// Package game hosts the field in an ebiten window.
package game

import (
	"context"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/iburimskiy/backdrop/internal/loop"
)

// Soundtrack is the audio source behind the glow pulse.
type Soundtrack interface {
	Load(path string) error
	TogglePause() bool
	Playing() bool
	Level() float64
}

// Options wires a Game.
type Options struct {
	Driver     *loop.Driver
	Soundtrack Soundtrack             // optional
	Pick       func() (string, error) // optional file dialog
	HUD        bool
	Trail      bool // the field paints a veil over the previous frame
	Log        *zap.Logger
}

// Game implements ebiten.Game. Update and Layout feed pointer and resize
// events to the driver; Draw renders one frame.
type Game struct {
	ctx    context.Context
	driver *loop.Driver
	track  Soundtrack
	pick   func() (string, error)
	log    *zap.Logger

	width, height int
	cursor        image.Point
	cursorKnown   bool
	showHUD       bool
	trail         bool
	lastErr       error
}

// New returns a game that stops when ctx is done.
func New(ctx context.Context, opts Options) *Game {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Game{
		ctx:     ctx,
		driver:  opts.Driver,
		track:   opts.Soundtrack,
		pick:    opts.Pick,
		log:     log.Named("game"),
		showHUD: opts.HUD,
		trail:   opts.Trail,
	}
}

// ClearsScreen reports whether ebiten should clear the screen before every
// Draw. A trailing field needs the previous frame kept.
func (g *Game) ClearsScreen() bool { return !g.trail }

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	x, y := ebiten.CursorPosition()
	g.trackCursor(image.Pt(x, y))

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.driver.Apply(loop.Regenerate{})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if g.track != nil {
		if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
			g.track.TogglePause()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyO) && g.pick != nil {
			g.lastErr = g.openSoundtrack()
		}
		g.driver.Apply(loop.Pulse{Level: g.track.Level()})
	}

	g.driver.Advance()
	return nil
}

// trackCursor turns cursor polling into pointer-move events. The first poll
// only establishes a baseline, so the pointer stays off screen until the
// cursor actually moves.
func (g *Game) trackCursor(p image.Point) {
	if !g.cursorKnown {
		g.cursor, g.cursorKnown = p, true
		return
	}
	if p == g.cursor {
		return
	}
	g.cursor = p
	g.driver.Apply(loop.PointerMoved{X: float64(p.X), Y: float64(p.Y)})
}

func (g *Game) openSoundtrack() error {
	path, err := g.pick()
	if err != nil || path == "" {
		return err
	}
	if err := g.track.Load(path); err != nil {
		g.log.Warn("failed to load soundtrack", zap.String("path", path), zap.Error(err))
		return err
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.driver.Render(Surface{Image: screen})
	if g.showHUD {
		ebitenutil.DebugPrintAt(screen, g.status(), 12, 12)
	}
}

func (g *Game) status() string {
	n := len(g.driver.Field().Particles())
	s := fmt.Sprintf("%.0f FPS  %d particles  R regenerate  H hide", ebiten.ActualFPS(), n)
	if g.track != nil {
		if g.track.Playing() {
			s += "  Space pause"
		} else {
			s += "  O open soundtrack"
		}
	}
	if g.lastErr != nil {
		s += "  | Error: " + g.lastErr.Error()
	}
	return s
}

// Layout follows the window size. A change regenerates the field.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.driver.Apply(loop.Resized{Width: outsideWidth, Height: outsideHeight})
	}
	return outsideWidth, outsideHeight
}
