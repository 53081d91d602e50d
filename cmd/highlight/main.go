package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nguyentantai21042004/highlight-flow/internal/assemble"
	"github.com/nguyentantai21042004/highlight-flow/internal/caption"
	"github.com/nguyentantai21042004/highlight-flow/internal/catalog"
	"github.com/nguyentantai21042004/highlight-flow/internal/config"
	"github.com/nguyentantai21042004/highlight-flow/internal/locate"
	"github.com/nguyentantai21042004/highlight-flow/internal/logger"
	"github.com/nguyentantai21042004/highlight-flow/internal/pipeline"
	"github.com/nguyentantai21042004/highlight-flow/internal/report"
	"github.com/nguyentantai21042004/highlight-flow/internal/segment"
	"github.com/nguyentantai21042004/highlight-flow/internal/transcribe"
	"github.com/nguyentantai21042004/highlight-flow/internal/watcher"
	"github.com/nguyentantai21042004/highlight-flow/pkg/executor"
	"github.com/nguyentantai21042004/highlight-flow/pkg/retry"
)

func main() {
	var (
		configPath  string
		query       string
		videoPath   string
		maxDuration float64
		outputPath  string
		hintsFlag   string
		watchMode   bool
	)

	flag.StringVar(&configPath, "config", "config.yaml", "Path to YAML config file")
	flag.StringVar(&query, "query", "", "Free-text query resolved to a source video via yt-dlp")
	flag.StringVar(&videoPath, "video", "", "Local source video path (skips the locator)")
	flag.Float64Var(&maxDuration, "max-duration", 0, "Duration budget for the reel in seconds (config default when 0)")
	flag.StringVar(&outputPath, "output", "", "Output video path (derived from the source name when empty)")
	flag.StringVar(&hintsFlag, "hints", "", "Comma-separated step-boundary hints in seconds")
	flag.BoolVar(&watchMode, "watch", false, "Watch paths.input for new videos instead of running once")
	flag.Parse()

	// .env carries GEMINI_API_KEYS; missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if maxDuration == 0 {
		maxDuration = cfg.Pipeline.MaxDuration
	}

	log := logger.New(cfg.Logging.Level)
	ctx := context.Background()

	hints, err := parseHints(hintsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid --hints: %v\n", err)
		os.Exit(1)
	}

	app, err := buildApp(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer app.close()

	if watchMode {
		if err := runWatch(ctx, cfg, log, app, maxDuration); err != nil && err != context.Canceled {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if (query == "") == (videoPath == "") {
		fmt.Fprintln(os.Stderr, "Exactly one of --query or --video is required")
		os.Exit(1)
	}

	source := videoPath
	if source == "" {
		source, err = app.locator.Locate(ctx, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: stage locate: %v\n", err)
			os.Exit(1)
		}
	}

	if err := app.runOne(ctx, pipeline.Request{
		SourcePath:  source,
		OutputPath:  outputPath,
		MaxDuration: maxDuration,
		Hints:       hints,
		Query:       query,
	}, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the wired pipeline and its side-channel sinks.
type app struct {
	pipe     pipeline.Pipeline
	locator  locate.Locator
	reporter *report.Writer
	catalog  *catalog.Catalog
	logger   logger.Logger
}

func buildApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*app, error) {
	exec := executor.New()

	policy := retry.Policy{
		Attempts: cfg.Pipeline.RetryAttempts,
		Backoff:  time.Duration(cfg.Pipeline.RetryBackoffMS) * time.Millisecond,
		Timeout:  time.Duration(cfg.Pipeline.CallTimeoutS) * time.Second,
	}

	transcriber := transcribe.NewWhisper(transcribe.Config{
		ModelPath:  cfg.Whisper.ModelPath,
		BinaryPath: cfg.Whisper.BinaryPath,
		Language:   cfg.Whisper.Language,
		Prompt:     cfg.Whisper.Prompt,
		Threads:    cfg.Whisper.Threads,
		TempDir:    cfg.Paths.Temp,
	}, exec, policy, log)

	var src caption.Source
	if len(cfg.Gemini.APIKeys) > 0 {
		gemini, err := caption.NewGemini(cfg.Gemini.APIKeys, cfg.Gemini.Model, policy, log)
		if err != nil {
			return nil, err
		}
		src = gemini
	} else {
		log.Warn(ctx, "No Gemini API keys configured, captions fall back to transcript text")
	}

	assembler := assemble.New(assemble.Config{
		Encoder:      cfg.FFmpeg.Encoder,
		VideoBitrate: cfg.FFmpeg.VideoBitrate,
		AudioCodec:   cfg.FFmpeg.AudioCodec,
		Preset:       cfg.FFmpeg.Preset,
		FontFile:     cfg.FFmpeg.FontFile,
		TempDir:      cfg.Paths.Temp,
		Workers:      cfg.Performance.EncodeWorkers,
	}, exec, log)

	pipe := pipeline.New(
		transcriber,
		segment.NewBuilder(segment.BuilderConfig{
			SilenceGap: cfg.Pipeline.SilenceGap,
			MaxWindow:  cfg.Pipeline.MaxWindow,
		}, nil),
		segment.NewSelector(cfg.Pipeline.Granularity),
		caption.NewBinder(src, cfg.Pipeline.CaptionMaxChars, cfg.Pipeline.FallbackWords, log),
		assembler,
		log,
	)

	locator := locate.NewYtdlp(locate.Config{
		BinaryPath: cfg.Locator.BinaryPath,
		Format:     cfg.Locator.Format,
		DestDir:    filepath.Join(cfg.Paths.Temp, "downloads"),
	}, exec, policy, log)

	a := &app{
		pipe:     pipe,
		locator:  locator,
		reporter: report.NewWriter(cfg.Report.Markdown, cfg.Report.Docx),
		logger:   log,
	}

	if cfg.Catalog.Path != "" {
		cat, err := catalog.Open(cfg.Catalog.Path)
		if err != nil {
			return nil, fmt.Errorf("open catalog: %w", err)
		}
		a.catalog = cat
	}

	return a, nil
}

func (a *app) close() {
	if a.catalog != nil {
		a.catalog.Close()
	}
}

// runOne executes the pipeline for a single source video and reports the
// artifact path plus the per-segment summary on stdout.
func (a *app) runOne(ctx context.Context, req pipeline.Request, cfg *config.Config) error {
	if req.OutputPath == "" {
		base := strings.TrimSuffix(filepath.Base(req.SourcePath), filepath.Ext(req.SourcePath))
		req.OutputPath = filepath.Join(cfg.Paths.Output, base+"_reel.mp4")
	}

	res, err := a.pipe.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Println(res.Output.Path)
	fmt.Print(res.Summary)

	if written, err := a.reporter.Write(req.Query, res.Output); err != nil {
		a.logger.Warn(ctx, "Failed to write report: %v", err)
	} else {
		for _, path := range written {
			a.logger.Info(ctx, "Report written: %s", path)
		}
	}

	if a.catalog != nil {
		if _, err := a.catalog.Record(ctx, req.Query, req.SourcePath, res.Output.Path, res.Output.TotalDuration, res.Output.Segments); err != nil {
			a.logger.Warn(ctx, "Failed to record run in catalog: %v", err)
		}
	}

	return nil
}

// runWatch processes every video dropped into paths.input until interrupted.
func runWatch(ctx context.Context, cfg *config.Config, log logger.Logger, a *app, maxDuration float64) error {
	if cfg.Paths.Input == "" {
		return fmt.Errorf("paths.input is required for watch mode")
	}
	if err := os.MkdirAll(cfg.Paths.Input, 0755); err != nil {
		return fmt.Errorf("create input dir: %w", err)
	}

	handler := func(ctx context.Context, videoPath string) error {
		return a.runOne(ctx, pipeline.Request{
			SourcePath:  videoPath,
			MaxDuration: maxDuration,
		}, cfg)
	}

	w, err := watcher.New(cfg.Paths.Input, handler, log, cfg.Performance.MaxConcurrent)
	if err != nil {
		return err
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := w.Start(ctx); err != nil && err != context.Canceled {
			errChan <- err
		}
	}()

	log.Info(ctx, "Watching %s, press Ctrl+C to stop", cfg.Paths.Input)

	select {
	case <-sigChan:
		log.Info(ctx, "Shutdown signal received")
		cancel()
		return nil
	case err := <-errChan:
		return err
	}
}

func parseHints(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var hints []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("hint %q: %w", part, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("hint %q: must be non-negative", part)
		}
		hints = append(hints, v)
	}
	return hints, nil
}
