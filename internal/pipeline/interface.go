package pipeline

import "context"

// Pipeline runs the full highlight flow for one source video.
type Pipeline interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request describes one run.
type Request struct {
	SourcePath  string
	OutputPath  string
	MaxDuration float64   // seconds, duration budget for the reel
	Hints       []float64 // optional externally supplied step-boundary times
	Query       string    // free-text query that located the source, if any
}
