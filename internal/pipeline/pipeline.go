package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/highlight-flow/internal/assemble"
	"github.com/nguyentantai21042004/highlight-flow/internal/report"
)

// StageError annotates a failure with the pipeline stage it came from.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Result is the terminal artifact of a run plus its textual summary.
type Result struct {
	Output  *assemble.OutputVideo
	Summary string
}

// Run sequences transcribe → build → select → bind → assemble, passing each
// stage's output to the next. The first unrecovered error aborts the run,
// tagged with its stage; no partial output file is left behind.
func (p *implPipeline) Run(ctx context.Context, req Request) (*Result, error) {
	startTime := time.Now()

	p.logger.Info(ctx, "Starting highlight run: %s (budget %.1fs)", req.SourcePath, req.MaxDuration)

	tr, err := p.transcriber.Transcribe(ctx, req.SourcePath)
	if err != nil {
		return nil, &StageError{Stage: "transcribe", Err: err}
	}

	candidates, err := p.builder.Build(tr, req.Hints)
	if err != nil {
		return nil, &StageError{Stage: "build", Err: err}
	}
	p.logger.Info(ctx, "Built %d candidate segments", len(candidates))

	selected, err := p.selector.Select(candidates, req.MaxDuration)
	if err != nil {
		return nil, &StageError{Stage: "select", Err: err}
	}
	p.logger.Info(ctx, "Selected %d segments", len(selected))

	selected, err = p.binder.Bind(ctx, tr, selected)
	if err != nil {
		return nil, &StageError{Stage: "caption", Err: err}
	}

	out, err := p.assembler.Assemble(ctx, req.SourcePath, selected, req.OutputPath)
	if err != nil {
		return nil, &StageError{Stage: "assemble", Err: err}
	}

	p.logger.Info(ctx, "Highlight run finished in %s: %s", time.Since(startTime).Round(time.Millisecond), out.Path)

	return &Result{Output: out, Summary: report.Summary(out)}, nil
}
