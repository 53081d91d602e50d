package assemble

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/highlight-flow/internal/logger"
	"github.com/nguyentantai21042004/highlight-flow/internal/segment"
	"github.com/nguyentantai21042004/highlight-flow/pkg/executor"
)

// ErrSourceUnavailable reports a source media file that cannot be opened or probed.
var ErrSourceUnavailable = errors.New("source media unavailable")

// EncodingError reports an ffmpeg failure while cutting, overlaying, or
// concatenating clips.
type EncodingError struct {
	Op  string
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding %s: %v", e.Op, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// OutputVideo is the terminal artifact of a run.
type OutputVideo struct {
	Path          string
	TotalDuration float64
	Segments      []segment.Selected
}

// Config holds encoder settings and assembly limits.
type Config struct {
	Encoder      string
	VideoBitrate string
	AudioCodec   string
	Preset       string
	FontFile     string
	TempDir      string // parent for the per-run scratch dir
	Workers      int    // parallel clip encodes
}

// Assembler cuts selected intervals from the source media, burns each
// segment's caption in as a persistent overlay, and concatenates the clips
// into one output file. Per-clip encodes run on a bounded worker pool;
// the concat join is strictly sequential.
type Assembler struct {
	cfg  Config
	exec executor.Executor
	log  logger.Logger
}

// New creates an Assembler.
func New(cfg Config, exec executor.Executor, log logger.Logger) *Assembler {
	if cfg.Encoder == "" {
		cfg.Encoder = "libx264"
	}
	if cfg.AudioCodec == "" {
		cfg.AudioCodec = "aac"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Assembler{cfg: cfg, exec: exec, log: log}
}

// Assemble writes exactly one media file at outputPath. Temporary per-clip
// files live in a scratch dir removed on every exit path; a partially
// written output is removed on failure.
func (a *Assembler) Assemble(ctx context.Context, sourcePath string, selected []segment.Selected, outputPath string) (*OutputVideo, error) {
	if len(selected) == 0 {
		return nil, &EncodingError{Op: "assemble", Err: errors.New("no segments to assemble")}
	}

	if _, err := os.Stat(sourcePath); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, sourcePath, err)
	}
	if _, err := a.probeDuration(ctx, sourcePath); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, sourcePath, err)
	}

	if a.cfg.TempDir != "" {
		if err := os.MkdirAll(a.cfg.TempDir, 0755); err != nil {
			return nil, fmt.Errorf("create temp parent: %w", err)
		}
	}
	workDir, err := os.MkdirTemp(a.cfg.TempDir, "reel-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	absSource, err := filepath.Abs(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("resolve source path: %w", err)
	}

	clips, err := a.encodeClips(ctx, absSource, selected, workDir)
	if err != nil {
		return nil, err
	}

	if err := a.concat(ctx, workDir, clips, outputPath); err != nil {
		os.Remove(outputPath)
		return nil, err
	}

	total, err := a.probeDuration(ctx, outputPath)
	if err != nil {
		os.Remove(outputPath)
		return nil, &EncodingError{Op: "probe output", Err: err}
	}

	a.log.Info(ctx, "Assembled %d clips into %s (%.2fs)", len(clips), outputPath, total)

	return &OutputVideo{Path: outputPath, TotalDuration: total, Segments: selected}, nil
}

// encodeClips cuts and captions every segment concurrently. The first
// failure cancels the in-flight jobs and is the one returned.
func (a *Assembler) encodeClips(ctx context.Context, source string, selected []segment.Selected, workDir string) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	clips := make([]string, len(selected))
	errs := make(chan error, len(selected))
	sem := make(chan struct{}, a.cfg.Workers)
	var wg sync.WaitGroup

	for i, seg := range selected {
		clips[i] = fmt.Sprintf("clip_%03d.mp4", i)

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			// A worker may have cancelled us; its error outranks ctx.Err().
			select {
			case err := <-errs:
				return nil, &EncodingError{Op: "cut", Err: err}
			default:
			}
			return nil, ctx.Err()
		}

		wg.Add(1)
		go func(i int, seg segment.Selected) {
			defer wg.Done()
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			if err := a.encodeClip(ctx, source, seg, filepath.Join(workDir, clips[i])); err != nil {
				errs <- fmt.Errorf("clip %d [%.2f-%.2f): %w", i, seg.Start, seg.End, err)
				cancel()
			}
		}(i, seg)
	}

	wg.Wait()
	select {
	case err := <-errs:
		return nil, &EncodingError{Op: "cut", Err: err}
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return clips, nil
}

// encodeClip extracts [Start, End) from the source, re-encoding so the cut
// is frame-accurate, with the caption drawn for the clip's full duration.
func (a *Assembler) encodeClip(ctx context.Context, source string, seg segment.Selected, clipPath string) error {
	args := []string{
		"-y",
		"-ss", formatSeconds(seg.Start),
		"-i", source,
		"-t", formatSeconds(seg.End - seg.Start),
		"-vf", a.drawtextFilter(seg.Caption),
		"-c:v", a.cfg.Encoder,
	}
	if a.cfg.VideoBitrate != "" {
		args = append(args, "-b:v", a.cfg.VideoBitrate)
	}
	if a.cfg.Preset != "" {
		args = append(args, "-preset", a.cfg.Preset)
	}
	args = append(args,
		"-c:a", a.cfg.AudioCodec,
		"-avoid_negative_ts", "make_zero",
		clipPath,
	)

	a.log.Debug(ctx, "Encoding clip [%.2f-%.2f): %s", seg.Start, seg.End, filepath.Base(clipPath))

	if _, err := a.exec.Execute(ctx, "ffmpeg", args...); err != nil {
		return err
	}
	return nil
}

// concat joins the clips in order with the concat demuxer. Clips share one
// encode profile, so the join is a stream copy. Runs in the scratch dir so
// the list file can use bare relative names.
func (a *Assembler) concat(ctx context.Context, workDir string, clips []string, outputPath string) error {
	var list strings.Builder
	for _, clip := range clips {
		fmt.Fprintf(&list, "file '%s'\n", clip)
	}
	listPath := filepath.Join(workDir, "concat.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	absOutput, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", "concat.txt",
		"-c", "copy",
		absOutput,
	}

	if _, err := a.exec.ExecuteInDir(ctx, workDir, "ffmpeg", args...); err != nil {
		return &EncodingError{Op: "concat", Err: err}
	}
	return nil
}

// probeDuration returns the container duration in seconds via ffprobe.
func (a *Assembler) probeDuration(ctx context.Context, path string) (float64, error) {
	out, err := a.exec.Execute(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, err
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", strings.TrimSpace(out), err)
	}
	return dur, nil
}

// drawtextFilter renders the caption centered near the bottom on a
// semi-transparent box for the clip's full duration.
func (a *Assembler) drawtextFilter(caption string) string {
	var b strings.Builder
	b.WriteString("drawtext=text='")
	b.WriteString(escapeDrawtext(caption))
	b.WriteString("'")
	if a.cfg.FontFile != "" {
		b.WriteString(":fontfile=")
		b.WriteString(a.cfg.FontFile)
	}
	b.WriteString(":fontcolor=white:fontsize=24:box=1:boxcolor=black@0.5:boxborderw=5:x=(w-text_w)/2:y=h-text_h-20")
	return b.String()
}

// escapeDrawtext escapes the characters the drawtext filter treats specially.
func escapeDrawtext(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
		`,`, `\,`,
	)
	return r.Replace(s)
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
