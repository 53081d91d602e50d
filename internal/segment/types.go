package segment

// Candidate is a hypothesized key-step interval of the source video.
// From/To index a contiguous run of transcript utterances [From, To)
// whose union spans [Start, End). Candidates may overlap each other.
type Candidate struct {
	Start float64
	End   float64
	Score float64
	From  int
	To    int
}

// Duration returns the candidate's span in seconds.
func (c Candidate) Duration() float64 {
	return c.End - c.Start
}

func (c Candidate) overlaps(o Candidate) bool {
	return c.Start < o.End && o.Start < c.End
}

// Selected is a candidate chosen for the final reel. Order is the playback
// position, strictly increasing with Start. Caption is empty until the
// caption binder runs, non-empty afterwards.
type Selected struct {
	Candidate
	Order   int
	Caption string
}
