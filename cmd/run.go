package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iburimskiy/backdrop/internal/field"
	"github.com/iburimskiy/backdrop/internal/game"
	"github.com/iburimskiy/backdrop/internal/loop"
	"github.com/iburimskiy/backdrop/internal/soundtrack"
)

// runWindow opens the desktop window and runs until it is closed.
func (a *app) runWindow(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	params, err := a.cfg.Field.Params()
	if err != nil {
		return err
	}
	driver := loop.New(field.New(params, a.cfg.Field.Rand()), a.log, 64)

	opts := game.Options{Driver: driver, HUD: a.cfg.Window.HUD, Trail: params.Trail > 0, Log: a.log}
	if a.cfg.Audio.Enabled {
		player := soundtrack.NewPlayer(a.log, a.cfg.Audio.Smoothing)
		defer func() {
			if err := player.Close(); err != nil {
				a.log.Warn("failed to close soundtrack", zap.Error(err))
			}
		}()
		if a.cfg.Audio.File != "" {
			if err := player.Load(a.cfg.Audio.File); err != nil {
				a.log.Warn("soundtrack unavailable", zap.String("path", a.cfg.Audio.File), zap.Error(err))
			}
		}
		opts.Soundtrack = player
		opts.Pick = soundtrack.Pick
	}

	ebiten.SetWindowSize(a.cfg.Window.Width, a.cfg.Window.Height)
	ebiten.SetWindowTitle(a.cfg.Window.Title)
	ebiten.SetTPS(a.cfg.Window.TPS)
	if a.cfg.Window.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	g := game.New(ctx, opts)
	ebiten.SetScreenClearedEveryFrame(g.ClearsScreen())

	a.log.Info("opening window",
		zap.String("theme", a.cfg.Field.Theme),
		zap.Int("particles", params.Count),
		zap.Int("width", a.cfg.Window.Width),
		zap.Int("height", a.cfg.Window.Height),
		zap.Bool("trail", !g.ClearsScreen()),
	)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	a.log.Info("window closed", zap.Uint64("frames", driver.Frames()))
	return nil
}
