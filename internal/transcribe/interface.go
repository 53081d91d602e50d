package transcribe

import (
	"context"

	"github.com/nguyentantai21042004/highlight-flow/internal/transcript"
)

// Transcriber converts source media into a timestamped transcript.
// Implementations must return utterances with non-decreasing start times.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string) (*transcript.Transcript, error)
}
