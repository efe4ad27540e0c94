// Package config provides configuration types and defaults for flvgap.
package config

import (
	"fmt"
	"strings"
)

// Default constants
const (
	// DefaultTolerance is the largest deviation from the expected delta, in
	// milliseconds, that is still treated as continuous.
	DefaultTolerance int64 = 1

	// DefaultWarmupSamples is the number of deltas used to learn a
	// category's nominal cadence before it is frozen.
	DefaultWarmupSamples = 8

	// DefaultVideoDelta is the fallback video frame interval (25 fps).
	DefaultVideoDelta int64 = 40

	// DefaultAudioDelta is the fallback audio frame interval (AAC at 44.1 kHz).
	DefaultAudioDelta int64 = 23

	// MaxTolerance is the largest accepted tolerance.
	MaxTolerance int64 = 60_000

	// MaxWarmupSamples is the largest accepted warmup window.
	MaxWarmupSamples = 1024

	// MaxDelta is the largest accepted fallback delta.
	MaxDelta int64 = 60_000

	// DefaultLogDir is where the CLI writes run logs.
	DefaultLogDir = "logs"
)

// Preset represents a named tolerance profile.
type Preset string

const (
	PresetStrict  Preset = "strict"
	PresetDefault Preset = "default"
	PresetLenient Preset = "lenient"
)

// ParsePreset parses a string into a Preset.
func ParsePreset(s string) (Preset, error) {
	switch strings.ToLower(s) {
	case "strict":
		return PresetStrict, nil
	case "default":
		return PresetDefault, nil
	case "lenient":
		return PresetLenient, nil
	default:
		return "", fmt.Errorf("%w: '%s', valid options: strict, default, lenient", ErrInvalidPreset, s)
	}
}

// String returns the string representation of the preset.
func (p Preset) String() string {
	return string(p)
}

// PresetValues contains bundled parameter values for a preset.
type PresetValues struct {
	Tolerance     int64
	WarmupSamples int
}

// GetPresetValues returns the values for a given preset.
func GetPresetValues(p Preset) PresetValues {
	switch p {
	case PresetStrict:
		// Any deviation at all is a gap.
		return PresetValues{Tolerance: 0, WarmupSamples: DefaultWarmupSamples}
	case PresetLenient:
		// Absorbs the 1-2 ms rounding jitter of 29.97 fps and 48 kHz muxers.
		return PresetValues{Tolerance: 3, WarmupSamples: 16}
	default:
		return PresetValues{Tolerance: DefaultTolerance, WarmupSamples: DefaultWarmupSamples}
	}
}

// Config holds the tuning knobs of a gap check.
type Config struct {
	Tolerance     int64  `yaml:"tolerance"`
	WarmupSamples int    `yaml:"warmup_samples"`
	VideoDelta    int64  `yaml:"video_delta"`
	AudioDelta    int64  `yaml:"audio_delta"`
	Filter        string `yaml:"filter"` // Optional CEL expression selecting reported gaps

	// Selected preset (optional)
	Preset *Preset `yaml:"-"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Tolerance:     DefaultTolerance,
		WarmupSamples: DefaultWarmupSamples,
		VideoDelta:    DefaultVideoDelta,
		AudioDelta:    DefaultAudioDelta,
	}
}

// ApplyPreset applies the given preset to the config.
func (c *Config) ApplyPreset(p Preset) {
	values := GetPresetValues(p)
	c.Preset = &p
	c.Tolerance = values.Tolerance
	c.WarmupSamples = values.WarmupSamples
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Tolerance < 0 || c.Tolerance > MaxTolerance {
		return fmt.Errorf("%w: must be 0-%d, got %d", ErrInvalidTolerance, MaxTolerance, c.Tolerance)
	}

	if c.WarmupSamples < 1 || c.WarmupSamples > MaxWarmupSamples {
		return fmt.Errorf("%w: must be 1-%d, got %d", ErrInvalidWarmup, MaxWarmupSamples, c.WarmupSamples)
	}

	if c.VideoDelta <= 0 || c.VideoDelta > MaxDelta {
		return fmt.Errorf("%w: video_delta must be 1-%d, got %d", ErrInvalidDelta, MaxDelta, c.VideoDelta)
	}

	if c.AudioDelta <= 0 || c.AudioDelta > MaxDelta {
		return fmt.Errorf("%w: audio_delta must be 1-%d, got %d", ErrInvalidDelta, MaxDelta, c.AudioDelta)
	}

	return nil
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	out := *c
	if c.Preset != nil {
		p := *c.Preset
		out.Preset = &p
	}
	return &out
}
