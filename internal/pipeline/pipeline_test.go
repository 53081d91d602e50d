package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/highlight-flow/internal/assemble"
	"github.com/nguyentantai21042004/highlight-flow/internal/caption"
	"github.com/nguyentantai21042004/highlight-flow/internal/logger"
	"github.com/nguyentantai21042004/highlight-flow/internal/segment"
	"github.com/nguyentantai21042004/highlight-flow/internal/transcript"
)

type fakeTranscriber struct {
	utterances []transcript.Utterance
	err        error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, mediaPath string) (*transcript.Transcript, error) {
	if f.err != nil {
		return nil, f.err
	}
	return transcript.New(f.utterances)
}

type failingSource struct{}

func (failingSource) Caption(ctx context.Context, seg segment.Selected, text string) (string, error) {
	return "", errors.New("caption service down")
}

// fakeExec scripts ffmpeg/ffprobe for the assembler.
type fakeExec struct{}

func (f fakeExec) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return f.ExecuteInDir(ctx, "", name, args...)
}

func (f fakeExec) ExecuteInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	if name == "ffprobe" {
		if strings.Contains(args[len(args)-1], "reel") {
			return "15.0\n", nil
		}
		return "30.0\n", nil
	}
	return "", os.WriteFile(args[len(args)-1], []byte("x"), 0644)
}

func newTestPipeline(t *testing.T) Pipeline {
	t.Helper()
	log := logger.New("error")
	return New(
		&fakeTranscriber{utterances: []transcript.Utterance{
			{Start: 0, End: 5, Text: "mix flour"},
			{Start: 5, End: 12, Text: "add eggs"},
			{Start: 20, End: 30, Text: "bake at 350"},
		}},
		segment.NewBuilder(segment.BuilderConfig{SilenceGap: 2, MaxWindow: 30}, nil),
		segment.NewSelector(0.5),
		caption.NewBinder(failingSource{}, 80, 8, log),
		assemble.New(assemble.Config{TempDir: t.TempDir(), Workers: 2}, fakeExec{}, log),
		log,
	)
}

func writeSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lesson.mp4")
	if err := os.WriteFile(path, []byte("video"), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestRunEndToEnd(t *testing.T) {
	p := newTestPipeline(t)
	outPath := filepath.Join(t.TempDir(), "reel.mp4")

	res, err := p.Run(context.Background(), Request{
		SourcePath:  writeSource(t),
		OutputPath:  outPath,
		MaxDuration: 15,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	segs := res.Output.Segments
	if len(segs) != 2 {
		t.Fatalf("segments = %d, want 2: %+v", len(segs), segs)
	}
	// The silence gap splits the transcript into [0,12) and [20,30); the
	// heuristic scorer ranks [0,12) first, and [20,30) only fits the 15s
	// budget after tail truncation to [20,23).
	if segs[0].Start != 0 || segs[0].End != 12 {
		t.Errorf("segs[0] = %+v, want [0,12)", segs[0])
	}
	if segs[1].Start != 20 || segs[1].End != 23 {
		t.Errorf("segs[1] = %+v, want truncated [20,23)", segs[1])
	}

	// Caption collaborator always fails: fallback captions still bind.
	for i, s := range segs {
		if strings.TrimSpace(s.Caption) == "" {
			t.Errorf("segment %d has empty caption", i)
		}
	}
	if !strings.HasPrefix(segs[0].Caption, "mix flour") {
		t.Errorf("segs[0].Caption = %q, want transcript fallback", segs[0].Caption)
	}

	if res.Output.TotalDuration > 15.1 {
		t.Errorf("TotalDuration = %v, want within budget", res.Output.TotalDuration)
	}
	if !strings.Contains(res.Summary, "[00:00 - 00:12]") || !strings.Contains(res.Summary, "[00:20 - 00:23]") {
		t.Errorf("Summary = %q", res.Summary)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestRunTranscribeFailureTagged(t *testing.T) {
	log := logger.New("error")
	p := New(
		&fakeTranscriber{err: errors.New("asr down")},
		segment.NewBuilder(segment.BuilderConfig{}, nil),
		segment.NewSelector(0.5),
		caption.NewBinder(failingSource{}, 80, 8, log),
		assemble.New(assemble.Config{TempDir: t.TempDir()}, fakeExec{}, log),
		log,
	)

	_, err := p.Run(context.Background(), Request{SourcePath: "x.mp4", OutputPath: "y.mp4", MaxDuration: 10})
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("Run() error = %v, want *StageError", err)
	}
	if stageErr.Stage != "transcribe" {
		t.Errorf("Stage = %q, want transcribe", stageErr.Stage)
	}
}

func TestRunEmptyTranscriptTagged(t *testing.T) {
	log := logger.New("error")
	p := New(
		&fakeTranscriber{},
		segment.NewBuilder(segment.BuilderConfig{}, nil),
		segment.NewSelector(0.5),
		caption.NewBinder(failingSource{}, 80, 8, log),
		assemble.New(assemble.Config{TempDir: t.TempDir()}, fakeExec{}, log),
		log,
	)

	_, err := p.Run(context.Background(), Request{SourcePath: writeSource(t), OutputPath: "y.mp4", MaxDuration: 10})
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("Run() error = %v, want *StageError", err)
	}
	if stageErr.Stage != "build" {
		t.Errorf("Stage = %q, want build", stageErr.Stage)
	}
	if !errors.Is(err, transcript.ErrEmpty) {
		t.Errorf("error chain missing transcript.ErrEmpty: %v", err)
	}
}

func TestRunInfeasibleBudgetTagged(t *testing.T) {
	p := newTestPipeline(t)

	_, err := p.Run(context.Background(), Request{SourcePath: writeSource(t), OutputPath: "y.mp4", MaxDuration: 0})
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("Run() error = %v, want *StageError", err)
	}
	if stageErr.Stage != "select" {
		t.Errorf("Stage = %q, want select", stageErr.Stage)
	}
	if !errors.Is(err, segment.ErrInfeasibleBudget) {
		t.Errorf("error chain missing ErrInfeasibleBudget: %v", err)
	}
}
