package segment

import (
	"errors"
	"math"
	"sort"
)

// ErrInfeasibleBudget reports a non-positive duration budget.
var ErrInfeasibleBudget = errors.New("max duration must be positive")

// Selector solves weighted interval scheduling under a duration budget:
// pick a mutually non-overlapping subset of candidates maximizing total
// score with the summed duration never exceeding the budget. Continuous
// time makes the exact problem infeasible, so the budget axis is quantized
// to a fixed granularity; candidate costs round up and the budget rounds
// down, which keeps the ceiling hard.
type Selector struct {
	granularity float64
}

// NewSelector creates a Selector with the given time granularity in
// seconds (0.5 when non-positive).
func NewSelector(granularity float64) *Selector {
	if granularity <= 0 {
		granularity = 0.5
	}
	return &Selector{granularity: granularity}
}

// Select returns the chosen segments in playback order with Order assigned.
// The result is non-empty whenever candidates is non-empty: if nothing fits
// the budget, the best-scoring candidate is truncated from its tail.
// Truncation never moves a segment's start. Ties break toward the earlier
// end time so identical inputs always produce identical output.
func (s *Selector) Select(candidates []Candidate, maxDuration float64) ([]Selected, error) {
	if maxDuration <= 0 {
		return nil, ErrInfeasibleBudget
	}
	if len(candidates) == 0 {
		return []Selected{}, nil
	}

	byEnd := append([]Candidate(nil), candidates...)
	sort.SliceStable(byEnd, func(i, j int) bool {
		if byEnd[i].End != byEnd[j].End {
			return byEnd[i].End < byEnd[j].End
		}
		return byEnd[i].Start < byEnd[j].Start
	})

	chosen := s.solve(byEnd, maxDuration)

	if len(chosen) == 0 {
		// Nothing fits whole: truncate the single best candidate to the budget.
		best := bestCandidate(byEnd)
		if best.Duration() > maxDuration {
			best.End = best.Start + maxDuration
		}
		chosen = []Candidate{best}
	}

	chosen = s.fillResidual(byEnd, chosen, maxDuration)

	sort.Slice(chosen, func(i, j int) bool { return chosen[i].Start < chosen[j].Start })
	selected := make([]Selected, len(chosen))
	for i, c := range chosen {
		selected[i] = Selected{Candidate: c, Order: i}
	}
	return selected, nil
}

// solve runs the budgeted interval-scheduling DP over candidates sorted by
// ascending end. The table is index-addressed: rows are candidate prefixes,
// columns are quantized budget levels.
func (s *Selector) solve(byEnd []Candidate, maxDuration float64) []Candidate {
	n := len(byEnd)
	budget := int(maxDuration / s.granularity)
	if budget == 0 {
		return nil
	}

	cost := make([]int, n)
	for i, c := range byEnd {
		cost[i] = int(math.Ceil(c.Duration() / s.granularity))
	}

	// prev[i] = number of candidates before i that end at or before i's start,
	// i.e. the prefix compatible with taking i.
	prev := make([]int, n)
	for i, c := range byEnd {
		prev[i] = sort.Search(i, func(j int) bool { return byEnd[j].End > c.Start })
	}

	// dp[i][b]: best score over the first i candidates with b budget units.
	dp := make([][]float64, n+1)
	dp[0] = make([]float64, budget+1)
	for i := 1; i <= n; i++ {
		dp[i] = make([]float64, budget+1)
		for b := 0; b <= budget; b++ {
			skip := dp[i-1][b]
			dp[i][b] = skip
			if cost[i-1] <= b {
				// On a tie, skipping wins: it keeps the earlier-ending solution.
				if take := dp[prev[i-1]][b-cost[i-1]] + byEnd[i-1].Score; take > skip {
					dp[i][b] = take
				}
			}
		}
	}

	var chosen []Candidate
	for i, b := n, budget; i > 0; {
		if dp[i][b] == dp[i-1][b] {
			i--
			continue
		}
		chosen = append(chosen, byEnd[i-1])
		b -= cost[i-1]
		i = prev[i-1]
	}
	return chosen
}

// fillResidual spends leftover budget on the best-scoring remaining
// candidates that do not overlap the chosen set, truncating tails to fit.
func (s *Selector) fillResidual(byEnd, chosen []Candidate, maxDuration float64) []Candidate {
	used := 0.0
	for _, c := range chosen {
		used += c.Duration()
	}

	for {
		remaining := maxDuration - used
		if remaining < s.granularity {
			return chosen
		}

		bestIdx := -1
		for i, c := range byEnd {
			fit := c
			if fit.Duration() > remaining {
				fit.End = fit.Start + remaining
			}
			if overlapsAny(fit, chosen) {
				continue
			}
			if bestIdx < 0 || better(c, byEnd[bestIdx]) {
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			return chosen
		}

		add := byEnd[bestIdx]
		if add.Duration() > remaining {
			add.End = add.Start + remaining
		}
		chosen = append(chosen, add)
		used += add.Duration()
	}
}

func overlapsAny(c Candidate, set []Candidate) bool {
	for _, o := range set {
		if c.overlaps(o) {
			return true
		}
	}
	return false
}

// better orders candidates by descending score, then ascending end and start.
func better(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.End != b.End {
		return a.End < b.End
	}
	return a.Start < b.Start
}

func bestCandidate(byEnd []Candidate) Candidate {
	best := byEnd[0]
	for _, c := range byEnd[1:] {
		if better(c, best) {
			best = c
		}
	}
	return best
}
