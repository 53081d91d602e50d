package pipeline

import (
	"github.com/nguyentantai21042004/highlight-flow/internal/assemble"
	"github.com/nguyentantai21042004/highlight-flow/internal/caption"
	"github.com/nguyentantai21042004/highlight-flow/internal/logger"
	"github.com/nguyentantai21042004/highlight-flow/internal/segment"
	"github.com/nguyentantai21042004/highlight-flow/internal/transcribe"
)

type implPipeline struct {
	transcriber transcribe.Transcriber
	builder     *segment.Builder
	selector    *segment.Selector
	binder      *caption.Binder
	assembler   *assemble.Assembler
	logger      logger.Logger
}

// New wires the pipeline stages together.
func New(
	transcriber transcribe.Transcriber,
	builder *segment.Builder,
	selector *segment.Selector,
	binder *caption.Binder,
	assembler *assemble.Assembler,
	log logger.Logger,
) Pipeline {
	return &implPipeline{
		transcriber: transcriber,
		builder:     builder,
		selector:    selector,
		binder:      binder,
		assembler:   assembler,
		logger:      log,
	}
}
