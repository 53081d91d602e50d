package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		Whisper: WhisperConfig{
			ModelPath:  "models/ggml-base.en.bin",
			BinaryPath: "./whisper",
		},
		Paths: PathsConfig{
			Output: "data/output",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing model path",
			mutate:  func(c *Config) { c.Whisper.ModelPath = "" },
			wantErr: true,
		},
		{
			name:    "missing binary path",
			mutate:  func(c *Config) { c.Whisper.BinaryPath = "" },
			wantErr: true,
		},
		{
			name:    "missing output path",
			mutate:  func(c *Config) { c.Paths.Output = "" },
			wantErr: true,
		},
		{
			name:    "negative max duration",
			mutate:  func(c *Config) { c.Pipeline.MaxDuration = -5 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Pipeline.MaxDuration != 60 {
		t.Errorf("MaxDuration = %v, want 60", cfg.Pipeline.MaxDuration)
	}
	if cfg.Pipeline.Granularity != 0.5 {
		t.Errorf("Granularity = %v, want 0.5", cfg.Pipeline.Granularity)
	}
	if cfg.Pipeline.SilenceGap != 2.0 {
		t.Errorf("SilenceGap = %v, want 2.0", cfg.Pipeline.SilenceGap)
	}
	if cfg.Pipeline.CaptionMaxChars != 80 {
		t.Errorf("CaptionMaxChars = %v, want 80", cfg.Pipeline.CaptionMaxChars)
	}
	if cfg.FFmpeg.Encoder != "libx264" {
		t.Errorf("Encoder = %q, want libx264", cfg.FFmpeg.Encoder)
	}
	if cfg.Performance.EncodeWorkers != 4 {
		t.Errorf("EncodeWorkers = %v, want 4", cfg.Performance.EncodeWorkers)
	}
}

func TestLoad(t *testing.T) {
	content := `
whisper:
  model_path: models/ggml-base.en.bin
  binary_path: ./whisper
  language: en
pipeline:
  max_duration: 45
  granularity: 0.25
paths:
  output: data/output
logging:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Pipeline.MaxDuration != 45 {
		t.Errorf("MaxDuration = %v, want 45", cfg.Pipeline.MaxDuration)
	}
	if cfg.Pipeline.Granularity != 0.25 {
		t.Errorf("Granularity = %v, want 0.25", cfg.Pipeline.Granularity)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
	// Defaults still apply for omitted fields.
	if cfg.Pipeline.SilenceGap != 2.0 {
		t.Errorf("SilenceGap = %v, want 2.0", cfg.Pipeline.SilenceGap)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("nonexistent.yaml"); err == nil {
		t.Error("Load() expected error for missing file")
	}
}
