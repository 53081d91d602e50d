package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/highlight-flow/internal/logger"
	"github.com/nguyentantai21042004/highlight-flow/internal/transcript"
	"github.com/nguyentantai21042004/highlight-flow/pkg/executor"
	"github.com/nguyentantai21042004/highlight-flow/pkg/retry"
)

// Config holds whisper.cpp invocation settings.
type Config struct {
	ModelPath  string
	BinaryPath string
	Language   string
	Prompt     string
	Threads    int
	TempDir    string
}

type implWhisper struct {
	cfg      Config
	executor executor.Executor
	policy   retry.Policy
	logger   logger.Logger
}

// NewWhisper creates a Transcriber backed by a local whisper.cpp binary.
func NewWhisper(cfg Config, exec executor.Executor, policy retry.Policy, log logger.Logger) Transcriber {
	if cfg.Threads == 0 {
		cfg.Threads = 8
	}
	return &implWhisper{cfg: cfg, executor: exec, policy: policy, logger: log}
}

// Transcribe extracts 16 kHz mono audio from the media, runs whisper with
// SRT output, and parses the result. Retry exhaustion surfaces as
// *retry.ExternalServiceError, which is fatal to the run.
func (w *implWhisper) Transcribe(ctx context.Context, mediaPath string) (*transcript.Transcript, error) {
	audioPath, err := w.extractAudio(ctx, mediaPath)
	if err != nil {
		return nil, fmt.Errorf("extract audio: %w", err)
	}
	defer w.cleanupTempFile(ctx, audioPath)

	srtPath, err := w.runWhisper(ctx, audioPath)
	if err != nil {
		return nil, &retry.ExternalServiceError{Service: "whisper", Err: err}
	}
	defer w.cleanupTempFile(ctx, srtPath)

	f, err := os.Open(srtPath)
	if err != nil {
		return nil, fmt.Errorf("open transcript %s: %w", srtPath, err)
	}
	defer f.Close()

	utterances, err := transcript.ParseSRT(f)
	if err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}

	tr, err := transcript.New(utterances)
	if err != nil {
		return nil, fmt.Errorf("invalid transcript from whisper: %w", err)
	}

	w.logger.Info(ctx, "Transcribed %s: %d utterances over %.1fs", mediaPath, tr.Len(), tr.Duration())
	return tr, nil
}

// extractAudio converts the media to 16kHz mono WAV, the format whisper
// works best with.
func (w *implWhisper) extractAudio(ctx context.Context, mediaPath string) (string, error) {
	dir := w.cfg.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	audioPath := filepath.Join(dir, base+"_audio.wav")

	w.logger.Info(ctx, "Extracting audio: %s", mediaPath)

	args := []string{
		"-i", mediaPath,
		"-vn",          // No video
		"-ar", "16000", // 16kHz sample rate
		"-ac", "1", // Mono
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		audioPath,
	}

	if _, err := w.executor.Execute(ctx, "ffmpeg", args...); err != nil {
		return "", fmt.Errorf("ffmpeg extract audio: %w", err)
	}

	return audioPath, nil
}

// runWhisper transcribes the audio to SRT, bounded by the retry policy.
func (w *implWhisper) runWhisper(ctx context.Context, audioPath string) (string, error) {
	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))

	args := []string{
		"-m", w.cfg.ModelPath,
		"-f", audioPath,
		"-osrt",
		"-l", w.cfg.Language,
		"-t", strconv.Itoa(w.cfg.Threads),
		"-bo", "5", // Best of 5 for better accuracy
		"--output-file", outputPrefix,
	}
	if w.cfg.Prompt != "" {
		args = append(args, "--prompt", w.cfg.Prompt)
	}

	w.logger.Info(ctx, "Transcribing with %d threads: %s", w.cfg.Threads, audioPath)

	err := w.policy.Do(ctx, func(ctx context.Context) error {
		_, err := w.executor.Execute(ctx, w.cfg.BinaryPath, args...)
		return err
	})
	if err != nil {
		return "", err
	}

	return outputPrefix + ".srt", nil
}

func (w *implWhisper) cleanupTempFile(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil {
		w.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", path, err)
	} else {
		w.logger.Debug(ctx, "Cleaned up temp file: %s", path)
	}
}
