// Package config loads backdrop's settings from defaults, an optional YAML
// file and BACKDROP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/viper"

	"github.com/iburimskiy/backdrop/internal/field"
)

// Config is the full application configuration.
type Config struct {
	Logger LoggerConfig `mapstructure:"logger"`
	Window WindowConfig `mapstructure:"window"`
	Field  FieldConfig  `mapstructure:"field"`
	Audio  AudioConfig  `mapstructure:"audio"`
	Server ServerConfig `mapstructure:"server"`
}

// LoggerConfig controls the zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	ServiceName string `mapstructure:"service_name"`
	AddSource   bool   `mapstructure:"add_source"`
	LogFile     string `mapstructure:"log_file"`
	MaxSize     int    `mapstructure:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"`
	Compress    bool   `mapstructure:"compress"`
}

// WindowConfig sizes the desktop window.
type WindowConfig struct {
	Width     int    `mapstructure:"width"`
	Height    int    `mapstructure:"height"`
	Title     string `mapstructure:"title"`
	Resizable bool   `mapstructure:"resizable"`
	TPS       int    `mapstructure:"tps"`
	HUD       bool   `mapstructure:"hud"`
}

// FieldConfig picks a theme and optionally overrides parts of it. Nil
// overrides keep the theme's own setting; an explicit zero is applied.
type FieldConfig struct {
	Theme           string   `mapstructure:"theme"`
	Seed            int64    `mapstructure:"seed"`
	Count           *int     `mapstructure:"count"`
	InfluenceRadius *float64 `mapstructure:"influence_radius"`
	ForceStrength   *float64 `mapstructure:"force_strength"`
	Damping         *float64 `mapstructure:"damping"`
	LinkDistance    *float64 `mapstructure:"link_distance"`
	Trail           *float64 `mapstructure:"trail"`
	Palette         []string `mapstructure:"palette"`
	Background      string   `mapstructure:"background"`
}

// fieldOverrides have no default so that an unset key stays nil.
var fieldOverrides = []string{
	"field.count",
	"field.influence_radius",
	"field.force_strength",
	"field.damping",
	"field.link_distance",
	"field.trail",
}

// AudioConfig controls the soundtrack pulse.
type AudioConfig struct {
	Enabled   bool    `mapstructure:"enabled"`
	File      string  `mapstructure:"file"`
	Smoothing float64 `mapstructure:"smoothing"`
}

// ServerConfig controls the gallery service.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	MediaDir        string        `mapstructure:"media_dir"`
	Manifest        string        `mapstructure:"manifest"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "backdrop")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	v.SetDefault("window.width", 1024)
	v.SetDefault("window.height", 640)
	v.SetDefault("window.title", "backdrop")
	v.SetDefault("window.resizable", true)
	v.SetDefault("window.tps", 60)
	v.SetDefault("window.hud", true)

	v.SetDefault("field.theme", "monochrome")
	v.SetDefault("field.seed", 0)
	v.SetDefault("field.palette", []string{})
	v.SetDefault("field.background", "")

	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.file", "")
	v.SetDefault("audio.smoothing", 0.6)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.media_dir", "")
	v.SetDefault("server.manifest", "")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
}

// BindEnv makes the default-less keys visible to the environment. Call it
// after the env prefix and key replacer are set.
func BindEnv(v *viper.Viper) error {
	for _, key := range fieldOverrides {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewDefaultConfig returns the configuration built from defaults alone.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.TPS <= 0 {
		return fmt.Errorf("window.tps must be positive, got %d", c.Window.TPS)
	}
	if c.Audio.Smoothing < 0 || c.Audio.Smoothing >= 1 {
		return fmt.Errorf("audio.smoothing must be in [0, 1), got %g", c.Audio.Smoothing)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if _, err := c.Field.Params(); err != nil {
		return fmt.Errorf("invalid field config: %w", err)
	}
	return nil
}

// Params resolves the theme and applies the overrides.
func (fc FieldConfig) Params() (field.Params, error) {
	p, err := field.Theme(fc.Theme)
	if err != nil {
		return field.Params{}, err
	}
	if fc.Count != nil {
		p.Count = *fc.Count
	}
	if fc.InfluenceRadius != nil {
		p.InfluenceRadius = *fc.InfluenceRadius
	}
	if fc.ForceStrength != nil {
		p.ForceStrength = *fc.ForceStrength
	}
	if fc.Damping != nil {
		p.Damping = *fc.Damping
	}
	if fc.LinkDistance != nil {
		p.LinkDistance = *fc.LinkDistance
	}
	if fc.Trail != nil {
		p.Trail = *fc.Trail
	}
	if len(fc.Palette) > 0 {
		p.Palette = p.Palette[:0:0]
		for _, hex := range fc.Palette {
			c, err := field.ParseHex(hex)
			if err != nil {
				return field.Params{}, fmt.Errorf("palette colour %q: %w", hex, err)
			}
			p.Palette = append(p.Palette, c)
		}
	}
	if fc.Background != "" {
		c, err := field.ParseHex(fc.Background)
		if err != nil {
			return field.Params{}, fmt.Errorf("background colour %q: %w", fc.Background, err)
		}
		p.Background = c
	}
	return p, p.Validate()
}

// Rand returns the field's random source: seeded from Seed when it is set,
// from the clock otherwise.
func (fc FieldConfig) Rand() *rand.Rand {
	seed := fc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
