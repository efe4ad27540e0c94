package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Tolerance != DefaultTolerance {
		t.Errorf("expected Tolerance=%d, got %d", DefaultTolerance, cfg.Tolerance)
	}
	if cfg.WarmupSamples != DefaultWarmupSamples {
		t.Errorf("expected WarmupSamples=%d, got %d", DefaultWarmupSamples, cfg.WarmupSamples)
	}
	if cfg.VideoDelta != DefaultVideoDelta || cfg.AudioDelta != DefaultAudioDelta {
		t.Errorf("expected deltas %d/%d, got %d/%d", DefaultVideoDelta, DefaultAudioDelta, cfg.VideoDelta, cfg.AudioDelta)
	}
	if cfg.Filter != "" {
		t.Errorf("expected no filter, got %q", cfg.Filter)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name         string
		modify       func(*Config)
		wantErr      bool
		wantSentinel error
	}{
		{
			name:    "default config is valid",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "zero tolerance is valid",
			modify:  func(c *Config) { c.Tolerance = 0 },
			wantErr: false,
		},
		{
			name:         "negative tolerance is invalid",
			modify:       func(c *Config) { c.Tolerance = -1 },
			wantErr:      true,
			wantSentinel: ErrInvalidTolerance,
		},
		{
			name:         "tolerance above max is invalid",
			modify:       func(c *Config) { c.Tolerance = MaxTolerance + 1 },
			wantErr:      true,
			wantSentinel: ErrInvalidTolerance,
		},
		{
			name:         "zero warmup is invalid",
			modify:       func(c *Config) { c.WarmupSamples = 0 },
			wantErr:      true,
			wantSentinel: ErrInvalidWarmup,
		},
		{
			name:    "warmup of one is valid",
			modify:  func(c *Config) { c.WarmupSamples = 1 },
			wantErr: false,
		},
		{
			name:         "zero video delta is invalid",
			modify:       func(c *Config) { c.VideoDelta = 0 },
			wantErr:      true,
			wantSentinel: ErrInvalidDelta,
		},
		{
			name:         "negative audio delta is invalid",
			modify:       func(c *Config) { c.AudioDelta = -23 },
			wantErr:      true,
			wantSentinel: ErrInvalidDelta,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()

			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantSentinel != nil && !errors.Is(err, tt.wantSentinel) {
				t.Errorf("Validate() error = %v, want sentinel %v", err, tt.wantSentinel)
			}
		})
	}
}

func TestParsePreset(t *testing.T) {
	tests := []struct {
		input   string
		want    Preset
		wantErr bool
	}{
		{"strict", PresetStrict, false},
		{"DEFAULT", PresetDefault, false},
		{"Lenient", PresetLenient, false},
		{"loose", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePreset(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePreset(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidPreset) {
				t.Errorf("expected ErrInvalidPreset, got %v", err)
			}
			if got != tt.want {
				t.Errorf("ParsePreset(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestApplyPreset(t *testing.T) {
	cfg := NewConfig()
	cfg.ApplyPreset(PresetStrict)

	if cfg.Preset == nil || *cfg.Preset != PresetStrict {
		t.Fatalf("expected preset to be recorded, got %v", cfg.Preset)
	}
	if cfg.Tolerance != 0 {
		t.Errorf("strict preset should have zero tolerance, got %d", cfg.Tolerance)
	}

	cfg.ApplyPreset(PresetLenient)
	if cfg.Tolerance <= DefaultTolerance {
		t.Errorf("lenient preset should widen tolerance, got %d", cfg.Tolerance)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset config should validate: %v", err)
	}
}

func TestClone(t *testing.T) {
	cfg := NewConfig()
	cfg.ApplyPreset(PresetStrict)

	clone := cfg.Clone()
	clone.Tolerance = 9
	*clone.Preset = PresetLenient

	if cfg.Tolerance != 0 || *cfg.Preset != PresetStrict {
		t.Error("modifying the clone changed the original")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		yaml         string
		wantErr      bool
		wantSentinel error
		check        func(*testing.T, *Config)
	}{
		{
			name: "empty file keeps defaults",
			yaml: "",
			check: func(t *testing.T, c *Config) {
				if c.Tolerance != DefaultTolerance {
					t.Errorf("Tolerance = %d", c.Tolerance)
				}
			},
		},
		{
			name: "all fields",
			yaml: "tolerance: 4\nwarmup_samples: 12\nvideo_delta: 33\naudio_delta: 21\nfilter: current_offset > 100\n",
			check: func(t *testing.T, c *Config) {
				if c.Tolerance != 4 || c.WarmupSamples != 12 || c.VideoDelta != 33 || c.AudioDelta != 21 {
					t.Errorf("unexpected config %+v", c)
				}
				if c.Filter != "current_offset > 100" {
					t.Errorf("Filter = %q", c.Filter)
				}
			},
		},
		{
			name:    "unknown field",
			yaml:    "tolerence: 4\n",
			wantErr: true,
		},
		{
			name:         "invalid value",
			yaml:         "warmup_samples: 0\n",
			wantErr:      true,
			wantSentinel: ErrInvalidWarmup,
		},
		{
			name:    "malformed yaml",
			yaml:    "tolerance: [1\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantSentinel != nil && !errors.Is(err, tt.wantSentinel) {
				t.Errorf("Parse() error = %v, want sentinel %v", err, tt.wantSentinel)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flvgap.yaml")
	if err := os.WriteFile(path, []byte("tolerance: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Tolerance != 2 {
		t.Errorf("Tolerance = %d, want 2", cfg.Tolerance)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
