package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iburimskiy/backdrop/internal/field"
	"github.com/iburimskiy/backdrop/internal/loop"
)

type simulateOptions struct {
	frames  int
	fps     float64
	width   int
	height  int
	pointer string
}

func newSimulateCmd(a *app) *cobra.Command {
	opts := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the field headless and report how it settles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.simulate(cmd, opts)
		},
	}
	cmd.Flags().IntVar(&opts.frames, "frames", 600, "number of frames to run")
	cmd.Flags().Float64Var(&opts.fps, "fps", 0, "frame rate cap (0 runs unthrottled)")
	cmd.Flags().IntVar(&opts.width, "width", 0, "viewport width (defaults to window.width)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "viewport height (defaults to window.height)")
	cmd.Flags().StringVar(&opts.pointer, "pointer", "", "pointer position as x,y (default: no pointer)")
	return cmd
}

func (a *app) simulate(cmd *cobra.Command, opts *simulateOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	params, err := a.cfg.Field.Params()
	if err != nil {
		return err
	}
	width, height := opts.width, opts.height
	if width <= 0 {
		width = a.cfg.Window.Width
	}
	if height <= 0 {
		height = a.cfg.Window.Height
	}

	driver := loop.New(field.New(params, a.cfg.Field.Rand()), a.log, 4)
	driver.Apply(loop.Resized{Width: width, Height: height})
	if opts.pointer != "" {
		x, y, err := parsePoint(opts.pointer)
		if err != nil {
			return err
		}
		driver.Apply(loop.PointerMoved{X: x, Y: y})
	}

	if err := driver.Run(ctx, loop.RunOptions{Frames: opts.frames, FPS: opts.fps}); err != nil {
		return err
	}

	st := driver.Field().Stats()
	a.log.Info("simulation finished",
		zap.Uint64("frames", st.Frames),
		zap.Int("particles", st.Particles),
		zap.Int("connections", st.Connections),
		zap.Float64("mean_home_distance", st.MeanHomeDist),
		zap.Float64("max_home_distance", st.MaxHomeDist),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "frames=%d particles=%d signals=%d connections=%d mean_home=%.3f max_home=%.3f\n",
		st.Frames, st.Particles, st.Signals, st.Connections, st.MeanHomeDist, st.MaxHomeDist)
	return nil
}

func parsePoint(s string) (float64, float64, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("pointer %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("pointer %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("pointer %q: %w", s, err)
	}
	return x, y, nil
}
