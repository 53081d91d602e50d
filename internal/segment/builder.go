package segment

import (
	"sort"

	"github.com/nguyentantai21042004/highlight-flow/internal/transcript"
)

// BuilderConfig tunes candidate boundary detection.
type BuilderConfig struct {
	SilenceGap float64 // seconds of silence between utterances that opens a new candidate
	MaxWindow  float64 // seconds, cap on a single candidate's span
}

// Builder groups contiguous utterances into candidate step-intervals and
// scores each with the configured Scorer.
type Builder struct {
	cfg    BuilderConfig
	scorer Scorer
}

// NewBuilder creates a Builder. A nil scorer falls back to HeuristicScorer.
func NewBuilder(cfg BuilderConfig, scorer Scorer) *Builder {
	if cfg.SilenceGap <= 0 {
		cfg.SilenceGap = 2.0
	}
	if cfg.MaxWindow <= 0 {
		cfg.MaxWindow = 30
	}
	if scorer == nil {
		scorer = HeuristicScorer{}
	}
	return &Builder{cfg: cfg, scorer: scorer}
}

// Build returns scored candidates in start order. hints are externally
// supplied step-boundary times in seconds; a hint falling between two
// consecutive utterance starts forces a boundary there. Returns
// transcript.ErrEmpty when the transcript has no utterances.
func (b *Builder) Build(tr *transcript.Transcript, hints []float64) ([]Candidate, error) {
	if tr.Len() == 0 {
		return nil, transcript.ErrEmpty
	}

	sorted := append([]float64(nil), hints...)
	sort.Float64s(sorted)

	utts := tr.Utterances()
	var candidates []Candidate

	from := 0
	windowEnd := utts[0].End

	flush := func(to int) {
		c := Candidate{
			Start: utts[from].Start,
			End:   windowEnd,
			From:  from,
			To:    to,
		}
		c.Score = b.scorer.Score(c, tr)
		candidates = append(candidates, c)
		from = to
	}

	for i := 1; i < tr.Len(); i++ {
		prev, cur := utts[i-1], utts[i]

		switch {
		case hintBetween(sorted, prev.Start, cur.Start):
			flush(i)
		case cur.Start-prev.End > b.cfg.SilenceGap:
			flush(i)
		case cur.End-utts[from].Start > b.cfg.MaxWindow:
			flush(i)
		}

		if from == i {
			windowEnd = cur.End
		} else if cur.End > windowEnd {
			windowEnd = cur.End
		}
	}
	flush(tr.Len())

	return candidates, nil
}

// hintBetween reports whether any hint h satisfies lo < h <= hi.
func hintBetween(hints []float64, lo, hi float64) bool {
	i := sort.SearchFloat64s(hints, lo)
	for ; i < len(hints); i++ {
		if hints[i] <= lo {
			continue
		}
		return hints[i] <= hi
	}
	return false
}
