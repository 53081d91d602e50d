package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Whisper     WhisperConfig     `yaml:"whisper"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Locator     LocatorConfig     `yaml:"locator"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Paths       PathsConfig       `yaml:"paths"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Report      ReportConfig      `yaml:"report"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
}

type FFmpegConfig struct {
	Encoder      string `yaml:"encoder"`
	VideoBitrate string `yaml:"video_bitrate"`
	AudioCodec   string `yaml:"audio_codec"`
	Preset       string `yaml:"preset"`
	FontFile     string `yaml:"font_file"`
}

type GeminiConfig struct {
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"api_keys"`
}

type LocatorConfig struct {
	BinaryPath string `yaml:"binary_path"`
	Format     string `yaml:"format"`
}

type PipelineConfig struct {
	MaxDuration     float64 `yaml:"max_duration"`      // seconds, default output budget
	Granularity     float64 `yaml:"granularity"`       // seconds, selector budget quantization
	SilenceGap      float64 `yaml:"silence_gap"`       // silence that opens a new candidate
	MaxWindow       float64 `yaml:"max_window"`        // cap on a single candidate's span
	CaptionMaxChars int     `yaml:"caption_max_chars"` // character budget per caption
	FallbackWords   int     `yaml:"fallback_words"`    // transcript words used when captioning fails
	RetryAttempts   int     `yaml:"retry_attempts"`
	RetryBackoffMS  int     `yaml:"retry_backoff_ms"`
	CallTimeoutS    int     `yaml:"call_timeout_s"`
}

type PathsConfig struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Temp   string `yaml:"temp"`
}

type CatalogConfig struct {
	Path string `yaml:"path"` // empty disables run history
}

type ReportConfig struct {
	Markdown bool `yaml:"markdown"`
	Docx     bool `yaml:"docx"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"` // watch mode: videos processed at once
	EncodeWorkers int `yaml:"encode_workers"` // assembler: parallel clip encodes
}

// Load reads a YAML config file and applies defaults via Validate.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Whisper.ModelPath == "" {
		return fmt.Errorf("whisper.model_path is required")
	}
	if c.Whisper.BinaryPath == "" {
		return fmt.Errorf("whisper.binary_path is required")
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}
	if c.Pipeline.MaxDuration < 0 {
		return fmt.Errorf("pipeline.max_duration must not be negative")
	}

	if c.Whisper.Language == "" {
		c.Whisper.Language = "en"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}
	if c.FFmpeg.Encoder == "" {
		c.FFmpeg.Encoder = "libx264"
	}
	if c.FFmpeg.AudioCodec == "" {
		c.FFmpeg.AudioCodec = "aac"
	}
	if c.FFmpeg.Preset == "" {
		c.FFmpeg.Preset = "medium"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if len(c.Gemini.APIKeys) == 0 {
		if env := os.Getenv("GEMINI_API_KEYS"); env != "" {
			for _, k := range strings.Split(env, ",") {
				if k = strings.TrimSpace(k); k != "" {
					c.Gemini.APIKeys = append(c.Gemini.APIKeys, k)
				}
			}
		}
	}
	if c.Locator.BinaryPath == "" {
		c.Locator.BinaryPath = "yt-dlp"
	}
	if c.Locator.Format == "" {
		c.Locator.Format = "mp4"
	}

	if c.Pipeline.MaxDuration == 0 {
		c.Pipeline.MaxDuration = 60
	}
	if c.Pipeline.Granularity <= 0 {
		c.Pipeline.Granularity = 0.5
	}
	if c.Pipeline.SilenceGap <= 0 {
		c.Pipeline.SilenceGap = 2.0
	}
	if c.Pipeline.MaxWindow <= 0 {
		c.Pipeline.MaxWindow = 30
	}
	if c.Pipeline.CaptionMaxChars <= 0 {
		c.Pipeline.CaptionMaxChars = 80
	}
	if c.Pipeline.FallbackWords <= 0 {
		c.Pipeline.FallbackWords = 8
	}
	if c.Pipeline.RetryAttempts <= 0 {
		c.Pipeline.RetryAttempts = 3
	}
	if c.Pipeline.RetryBackoffMS <= 0 {
		c.Pipeline.RetryBackoffMS = 500
	}
	if c.Pipeline.CallTimeoutS <= 0 {
		c.Pipeline.CallTimeoutS = 60
	}

	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}
	if c.Performance.EncodeWorkers == 0 {
		c.Performance.EncodeWorkers = 4
	}

	return nil
}
