package transcript

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// 00:01:02,500 --> 00:01:05,120
var reTimecode = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2})[,.](\d{3})`)

// ParseSRT reads SubRip subtitles (the format whisper.cpp emits with -osrt)
// into utterances. Cue indexes are ignored; multi-line cue text is joined
// with spaces. Cues with empty text are dropped.
func ParseSRT(r io.Reader) ([]Utterance, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var utterances []Utterance
	var cur *Utterance

	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Text) != "" {
			cur.Text = strings.TrimSpace(cur.Text)
			utterances = append(utterances, *cur)
		}
		cur = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimPrefix(line, "\uFEFF")

		if line == "" {
			flush()
			continue
		}

		if m := reTimecode.FindStringSubmatch(line); m != nil {
			flush()
			start := srtSeconds(m[1], m[2], m[3], m[4])
			end := srtSeconds(m[5], m[6], m[7], m[8])
			cur = &Utterance{Start: start, End: end}
			continue
		}

		if cur == nil {
			// cue index line, or stray text before any timecode
			continue
		}
		if cur.Text != "" {
			cur.Text += " "
		}
		cur.Text += line
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan srt: %w", err)
	}
	return utterances, nil
}

func srtSeconds(h, m, s, ms string) float64 {
	hh, _ := strconv.Atoi(h)
	mm, _ := strconv.Atoi(m)
	ss, _ := strconv.Atoi(s)
	mss, _ := strconv.Atoi(ms)
	return float64(hh)*3600 + float64(mm)*60 + float64(ss) + float64(mss)/1000
}
