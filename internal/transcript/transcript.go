package transcript

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmpty reports a transcript with zero utterances where at least one is required.
var ErrEmpty = errors.New("transcript has no utterances")

// Utterance is one timestamped unit of transcribed speech.
// Times are seconds from the start of the source media.
type Utterance struct {
	Start float64
	End   float64
	Text  string
}

// Transcript is an ordered, validated, read-only sequence of utterances.
type Transcript struct {
	utterances []Utterance
	duration   float64
}

// New validates the utterances and builds a Transcript. Utterances must have
// 0 <= start < end and non-decreasing start times. An empty slice is a valid
// (empty) transcript; consumers that need content check Len themselves.
func New(utterances []Utterance) (*Transcript, error) {
	var duration float64
	for i, u := range utterances {
		if u.Start < 0 {
			return nil, fmt.Errorf("utterance %d: negative start %.3f", i, u.Start)
		}
		if u.Start >= u.End {
			return nil, fmt.Errorf("utterance %d: start %.3f not before end %.3f", i, u.Start, u.End)
		}
		if i > 0 && u.Start < utterances[i-1].Start {
			return nil, fmt.Errorf("utterance %d: start %.3f before previous start %.3f", i, u.Start, utterances[i-1].Start)
		}
		if u.End > duration {
			duration = u.End
		}
	}

	return &Transcript{utterances: utterances, duration: duration}, nil
}

// Len returns the number of utterances.
func (t *Transcript) Len() int {
	return len(t.utterances)
}

// Duration is the largest utterance end time, in seconds.
func (t *Transcript) Duration() float64 {
	return t.duration
}

// Utterance returns the i-th utterance.
func (t *Transcript) Utterance(i int) Utterance {
	return t.utterances[i]
}

// Utterances returns the underlying slice. Callers must not modify it.
func (t *Transcript) Utterances() []Utterance {
	return t.utterances
}

// Text joins the text of utterances [i, j) with single spaces.
func (t *Transcript) Text(i, j int) string {
	parts := make([]string, 0, j-i)
	for _, u := range t.utterances[i:j] {
		if s := strings.TrimSpace(u.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
