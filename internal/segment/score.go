package segment

import (
	"strings"

	"github.com/nguyentantai21042004/highlight-flow/internal/transcript"
)

// Scorer assigns an importance score to a candidate. Implementations must be
// pure: the same candidate and transcript always produce the same score, so
// selection stays reproducible. A learned model can be swapped in behind
// this interface without touching the selector.
type Scorer interface {
	Score(c Candidate, tr *transcript.Transcript) float64
}

// actionWords are verbs that typically introduce a procedural step.
var actionWords = map[string]struct{}{
	"add": {}, "mix": {}, "stir": {}, "whisk": {}, "fold": {}, "pour": {},
	"cut": {}, "slice": {}, "chop": {}, "measure": {}, "season": {},
	"bake": {}, "heat": {}, "cook": {}, "boil": {}, "fry": {},
	"place": {}, "put": {}, "remove": {}, "take": {}, "set": {},
	"turn": {}, "press": {}, "open": {}, "close": {}, "start": {}, "stop": {},
	"install": {}, "attach": {}, "connect": {}, "tighten": {}, "loosen": {},
	"drill": {}, "sand": {}, "paint": {}, "apply": {}, "insert": {},
}

// HeuristicScorer is the default lexical scorer: action vocabulary hits,
// speech density, and a mild early-position prior.
type HeuristicScorer struct{}

func (HeuristicScorer) Score(c Candidate, tr *transcript.Transcript) float64 {
	text := tr.Text(c.From, c.To)
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	actions := 0
	for _, w := range words {
		if _, ok := actionWords[w]; ok {
			actions++
		}
	}

	density := float64(len(words)) / c.Duration()

	prior := 1.0
	if total := tr.Duration(); total > 0 {
		mid := (c.Start + c.End) / 2
		prior = 1.0 - 0.2*(mid/total)
	}

	score := (1.0 + 2.0*float64(actions) + 0.5*density) * prior
	if score < 0 {
		return 0
	}
	return score
}

func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return (r < 'a' || r > 'z') && (r < '0' || r > '9')
		})
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}
