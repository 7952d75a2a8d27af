// Package soundtrack plays an optional audio file and reports its loudness so
// the field can pulse with it.
package soundtrack

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"go.uber.org/zap"
)

const (
	ringSize    = 8192
	windowSize  = 2048
	bufferSlice = time.Second / 20
)

// ErrUnsupportedFormat is returned for files beep cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Player owns the speaker and at most one playing track.
type Player struct {
	log       *zap.Logger
	smoothing float64

	mu       sync.Mutex
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	tap      *tap
	initDone bool
	paused   bool
	level    float64
}

// NewPlayer returns an idle player. smoothing in [0,1) weights the previous
// level against the newly measured one.
func NewPlayer(log *zap.Logger, smoothing float64) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{log: log.Named("soundtrack"), smoothing: smoothing}
}

// Decode picks a decoder by file extension.
func Decode(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext := strings.ToLower(filepath.Ext(f.Name())); ext {
	case ".wav":
		return wav.Decode(f)
	case ".mp3":
		return mp3.Decode(f)
	case ".flac":
		return flac.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Load stops the current track and starts playing path.
func (p *Player) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open soundtrack: %w", err)
	}
	streamer, format, err := Decode(f)
	if err != nil {
		_ = f.Close()
		return err
	}

	t := newTap(streamer, ringSize)
	ctrl := &beep.Ctrl{Streamer: t}
	bufferSize := format.SampleRate.N(bufferSlice)

	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case !p.initDone:
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			_ = streamer.Close()
			_ = f.Close()
			return fmt.Errorf("init speaker: %w", err)
		}
		p.initDone = true
	case p.format.SampleRate != format.SampleRate:
		speaker.Clear()
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			_ = streamer.Close()
			_ = f.Close()
			return fmt.Errorf("init speaker: %w", err)
		}
	default:
		speaker.Clear()
	}
	if err := p.closeLocked(); err != nil {
		p.log.Warn("failed to release previous soundtrack", zap.Error(err))
	}

	p.file = f
	p.streamer = streamer
	p.format = format
	p.ctrl = ctrl
	p.tap = t
	p.paused = false
	p.level = 0

	duration := format.SampleRate.D(streamer.Len())
	p.log.Info("soundtrack loaded", zap.String("path", path), zap.Duration("duration", duration))

	// The callback runs on the speaker goroutine with the speaker locked.
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		go p.finished(ctrl, path)
	})))
	return nil
}

func (p *Player) finished(ctrl *beep.Ctrl, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl != ctrl {
		return
	}
	if err := p.closeLocked(); err != nil {
		p.log.Warn("failed to release soundtrack", zap.Error(err))
	}
	p.log.Info("soundtrack finished", zap.String("path", path))
}

// TogglePause pauses or resumes the current track. It reports the new state.
func (p *Player) TogglePause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return false
	}
	speaker.Lock()
	p.paused = !p.paused
	p.ctrl.Paused = p.paused
	speaker.Unlock()
	return p.paused
}

// Playing reports whether a track is loaded and not paused.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctrl != nil && !p.paused
}

// Level measures the most recent audio window and returns the smoothed
// loudness in [0,1]. It decays to zero when nothing plays.
func (p *Player) Level() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	var mag float64
	if p.tap != nil && !p.paused {
		mag = energy(p.tap.snapshot(windowSize))
	}
	p.level = smooth(p.level, mag, p.smoothing)
	return p.level
}

func smooth(prev, next, factor float64) float64 {
	v := factor*prev + (1-factor)*next
	if v > 1 {
		return 1
	}
	return v
}

// Close stops playback and releases the file.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initDone {
		speaker.Clear()
	}
	return p.closeLocked()
}

func (p *Player) closeLocked() error {
	var errs []error
	if p.streamer != nil {
		errs = append(errs, p.streamer.Close())
		p.streamer = nil
	}
	if p.file != nil {
		errs = append(errs, p.file.Close())
		p.file = nil
	}
	p.ctrl = nil
	p.tap = nil
	return errors.Join(errs...)
}
