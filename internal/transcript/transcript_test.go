package transcript

import (
	"strings"
	"testing"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name       string
		utterances []Utterance
		wantErr    bool
	}{
		{
			name: "valid ordered",
			utterances: []Utterance{
				{Start: 0, End: 5, Text: "mix flour"},
				{Start: 5, End: 12, Text: "add eggs"},
				{Start: 20, End: 30, Text: "bake at 350"},
			},
		},
		{
			name:       "empty is valid",
			utterances: nil,
		},
		{
			name: "overlapping starts allowed if non-decreasing",
			utterances: []Utterance{
				{Start: 0, End: 5, Text: "a"},
				{Start: 3, End: 8, Text: "b"},
			},
		},
		{
			name: "negative start",
			utterances: []Utterance{
				{Start: -1, End: 5, Text: "a"},
			},
			wantErr: true,
		},
		{
			name: "start not before end",
			utterances: []Utterance{
				{Start: 5, End: 5, Text: "a"},
			},
			wantErr: true,
		},
		{
			name: "decreasing start",
			utterances: []Utterance{
				{Start: 10, End: 15, Text: "a"},
				{Start: 5, End: 20, Text: "b"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.utterances)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	tr, err := New([]Utterance{
		{Start: 0, End: 5, Text: "a"},
		{Start: 5, End: 12, Text: "b"},
		{Start: 20, End: 30, Text: "c"},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tr.Duration() != 30 {
		t.Errorf("Duration() = %v, want 30", tr.Duration())
	}
	if tr.Len() != 3 {
		t.Errorf("Len() = %v, want 3", tr.Len())
	}
}

func TestText(t *testing.T) {
	tr, err := New([]Utterance{
		{Start: 0, End: 5, Text: "mix flour"},
		{Start: 5, End: 12, Text: " add eggs "},
		{Start: 20, End: 30, Text: "bake at 350"},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := tr.Text(0, 2); got != "mix flour add eggs" {
		t.Errorf("Text(0,2) = %q", got)
	}
	if got := tr.Text(2, 3); got != "bake at 350" {
		t.Errorf("Text(2,3) = %q", got)
	}
}

func TestParseSRT(t *testing.T) {
	srt := `1
00:00:00,000 --> 00:00:05,000
mix flour

2
00:00:05,000 --> 00:00:12,000
add eggs
and whisk

3
00:00:20,000 --> 00:00:30,000
bake at 350
`
	utts, err := ParseSRT(strings.NewReader(srt))
	if err != nil {
		t.Fatalf("ParseSRT() error = %v", err)
	}
	if len(utts) != 3 {
		t.Fatalf("len = %d, want 3", len(utts))
	}
	if utts[0].Start != 0 || utts[0].End != 5 || utts[0].Text != "mix flour" {
		t.Errorf("utts[0] = %+v", utts[0])
	}
	if utts[1].Text != "add eggs and whisk" {
		t.Errorf("utts[1].Text = %q, want joined lines", utts[1].Text)
	}
	if utts[2].Start != 20 || utts[2].End != 30 {
		t.Errorf("utts[2] = %+v", utts[2])
	}
}

func TestParseSRTMillisAndDots(t *testing.T) {
	srt := "1\n00:00:01.250 --> 00:00:02,750\nhello\n"
	utts, err := ParseSRT(strings.NewReader(srt))
	if err != nil {
		t.Fatalf("ParseSRT() error = %v", err)
	}
	if len(utts) != 1 {
		t.Fatalf("len = %d, want 1", len(utts))
	}
	if utts[0].Start != 1.25 || utts[0].End != 2.75 {
		t.Errorf("utts[0] = %+v", utts[0])
	}
}

func TestParseSRTByteOrderMark(t *testing.T) {
	srt := "\uFEFF1\n00:00:00,000 --> 00:00:05,000\nmix flour\n"
	utts, err := ParseSRT(strings.NewReader(srt))
	if err != nil {
		t.Fatalf("ParseSRT() error = %v", err)
	}
	if len(utts) != 1 {
		t.Fatalf("len = %d, want 1", len(utts))
	}
	if utts[0].Text != "mix flour" {
		t.Errorf("utts[0].Text = %q", utts[0].Text)
	}
}

func TestParseSRTEmpty(t *testing.T) {
	utts, err := ParseSRT(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseSRT() error = %v", err)
	}
	if len(utts) != 0 {
		t.Errorf("len = %d, want 0", len(utts))
	}
}
