package caption

import (
	"context"

	"github.com/nguyentantai21042004/highlight-flow/internal/segment"
)

// Source produces a short caption for one selected segment. context is the
// segment's own transcript text. Implementations may fail; the binder
// recovers with a transcript-derived fallback.
type Source interface {
	Caption(ctx context.Context, seg segment.Selected, transcriptText string) (string, error)
}
