package caption

import (
	"context"
	"strings"

	"github.com/nguyentantai21042004/highlight-flow/internal/logger"
	"github.com/nguyentantai21042004/highlight-flow/internal/segment"
	"github.com/nguyentantai21042004/highlight-flow/internal/transcript"
)

const ellipsis = "…"

// Binder attaches a caption to every selected segment. Captions come from
// the external Source; when it fails or returns empty text the binder falls
// back to the first words of the segment's own transcript, so a segment is
// never dropped over captioning.
type Binder struct {
	src           Source
	maxChars      int
	fallbackWords int
	logger        logger.Logger
}

// NewBinder creates a Binder. maxChars is the per-caption character budget,
// fallbackWords the number of transcript words used when the source fails.
func NewBinder(src Source, maxChars, fallbackWords int, log logger.Logger) *Binder {
	if maxChars <= 0 {
		maxChars = 80
	}
	if fallbackWords <= 0 {
		fallbackWords = 8
	}
	return &Binder{src: src, maxChars: maxChars, fallbackWords: fallbackWords, logger: log}
}

// Bind populates Caption on each segment in place and returns the slice.
// Every returned segment has a non-empty caption.
func (b *Binder) Bind(ctx context.Context, tr *transcript.Transcript, selected []segment.Selected) ([]segment.Selected, error) {
	for i := range selected {
		text := segmentText(tr, selected[i])

		caption := ""
		if b.src != nil {
			got, err := b.src.Caption(ctx, selected[i], text)
			if err != nil {
				b.logger.Warn(ctx, "Caption source failed for segment %d [%.1f-%.1f): %v, using fallback",
					selected[i].Order, selected[i].Start, selected[i].End, err)
			} else {
				caption = strings.TrimSpace(got)
			}
		}

		if caption == "" {
			caption = b.fallback(text)
		}

		selected[i].Caption = Truncate(caption, b.maxChars)
	}
	return selected, nil
}

// fallback builds a caption from the first words of the segment transcript.
func (b *Binder) fallback(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return "(no speech)"
	}
	if len(words) > b.fallbackWords {
		return strings.Join(words[:b.fallbackWords], " ") + ellipsis
	}
	return strings.Join(words, " ")
}

// Truncate shortens s to at most maxChars runes, cutting at a word boundary
// and marking the cut with a trailing ellipsis. Never cuts mid-word.
func Truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}

	// Room for the ellipsis itself.
	limit := maxChars - len([]rune(ellipsis))
	if limit <= 0 {
		return ellipsis
	}

	cut := string(runes[:limit])
	if idx := strings.LastIndexFunc(cut, func(r rune) bool { return r == ' ' }); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,.;:") + ellipsis
}

func segmentText(tr *transcript.Transcript, seg segment.Selected) string {
	if seg.From < 0 || seg.To > tr.Len() || seg.From >= seg.To {
		return ""
	}
	return tr.Text(seg.From, seg.To)
}
