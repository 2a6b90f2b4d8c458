package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ivlev/cuesheet/internal/effects"
	"github.com/ivlev/cuesheet/internal/reveal"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	ScenarioPath string        `env:"CUESHEET_SCENARIO"`
	AudioPath    string        `env:"CUESHEET_AUDIO"`
	DeckPath     string        `env:"CUESHEET_DECK"` // PDF or image folder with one backdrop per cue
	OutputVideo  string        `env:"CUESHEET_OUTPUT"`
	SamplePeriod time.Duration `env:"CUESHEET_SAMPLE_PERIOD"`
	RevealMode   string        `env:"CUESHEET_REVEAL_MODE"`
	Volume       float64       `env:"CUESHEET_VOLUME"`
	Width        int           `env:"CUESHEET_WIDTH"`
	Height       int           `env:"CUESHEET_HEIGHT"`
	FPS          int           `env:"CUESHEET_FPS"`
	DPI          int           `env:"CUESHEET_DPI"`
	Preset       string        `env:"CUESHEET_PRESET"`
	VideoEncoder string        `env:"CUESHEET_ENCODER"`
	Quality      int           `env:"CUESHEET_QUALITY"`
	FadeIn       float64       `env:"CUESHEET_FADE_IN"`
	FadeOut      float64       `env:"CUESHEET_FADE_OUT"`
	ShowStats    bool          `env:"CUESHEET_STATS"`
	LogLevel     slog.Level    `env:"CUESHEET_LOG_LEVEL"`
	BuildVersion string
}

// ExportParams is what one offline render needs.
type ExportParams struct {
	Width, Height int
	FPS           int
	Duration      float64
	AudioPath     string
	Output        string
	Encoder       string
	Quality       int
	Fade          effects.Fade
}

// Default returns the settings used when nothing is overridden.
func Default() *Config {
	return &Config{
		SamplePeriod: 50 * time.Millisecond,
		RevealMode:   string(reveal.Stepped),
		Volume:       1,
		Width:        1280,
		Height:       720,
		FPS:          30,
		DPI:          150,
		FadeIn:       0.5,
		FadeOut:      1.5,
		LogLevel:     slog.LevelInfo,
	}
}

// ParseEnv overrides cfg with any CUESHEET_* variables that are set.
func ParseEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ApplyPreset maps a named aspect ratio onto Width and Height. An empty or
// unknown preset leaves them unchanged.
func (c *Config) ApplyPreset() {
	switch c.Preset {
	case "16:9":
		c.Width, c.Height = 1280, 720
	case "9:16":
		c.Width, c.Height = 720, 1280
	case "4:5":
		c.Width, c.Height = 1080, 1350
	}
}

// Validate checks the settings that cannot be recovered from at runtime.
func (c *Config) Validate() error {
	if c.SamplePeriod <= 0 {
		return fmt.Errorf("%w: sample period must be positive, got %s", ErrInvalidConfig, c.SamplePeriod)
	}
	if _, err := reveal.ParseMode(c.RevealMode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: viewport %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidConfig, c.FPS)
	}
	if c.FadeIn < 0 || c.FadeOut < 0 {
		return fmt.Errorf("%w: fades must not be negative", ErrInvalidConfig)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("%w: volume must be within [0,1], got %v", ErrInvalidConfig, c.Volume)
	}
	return nil
}

// Export collects the render parameters for a track of the given length.
func (c *Config) Export(duration float64) ExportParams {
	return ExportParams{
		Width:     c.Width,
		Height:    c.Height,
		FPS:       c.FPS,
		Duration:  duration,
		AudioPath: c.AudioPath,
		Output:    c.OutputVideo,
		Encoder:   c.VideoEncoder,
		Quality:   c.Quality,
		Fade:      effects.Fade{In: c.FadeIn, Out: c.FadeOut},
	}
}
