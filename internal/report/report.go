package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/highlight-flow/internal/assemble"
)

// Writer emits the human-readable run summary next to the output video:
// always a plain-text summary string, optionally a markdown file and a
// styled docx rendition.
type Writer struct {
	markdown bool
	docx     bool
}

// NewWriter creates a report Writer.
func NewWriter(markdown, docx bool) *Writer {
	return &Writer{markdown: markdown, docx: docx}
}

// Summary renders one line per segment: time range plus caption.
func Summary(out *assemble.OutputVideo) string {
	var b strings.Builder
	for _, s := range out.Segments {
		fmt.Fprintf(&b, "[%s - %s] %s\n", clock(s.Start), clock(s.End), s.Caption)
	}
	return b.String()
}

// Write emits the enabled report files for a finished run and returns the
// paths written.
func (w *Writer) Write(query string, out *assemble.OutputVideo) ([]string, error) {
	var written []string

	if !w.markdown && !w.docx {
		return written, nil
	}

	md := w.renderMarkdown(query, out)
	base := strings.TrimSuffix(out.Path, filepath.Ext(out.Path))

	if w.markdown {
		mdPath := base + ".md"
		if err := os.WriteFile(mdPath, []byte(md), 0644); err != nil {
			return written, fmt.Errorf("write markdown report: %w", err)
		}
		written = append(written, mdPath)
	}

	if w.docx {
		docxPath := base + ".docx"
		title := strings.TrimSuffix(filepath.Base(out.Path), filepath.Ext(out.Path))
		if err := markdownToDocx(title, md, docxPath); err != nil {
			return written, fmt.Errorf("write docx report: %w", err)
		}
		written = append(written, docxPath)
	}

	return written, nil
}

func (w *Writer) renderMarkdown(query string, out *assemble.OutputVideo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Highlight reel\n\n_%s_\n\n", time.Now().Format("2006-01-02 15:04"))
	if query != "" {
		fmt.Fprintf(&b, "**Query:** %s\n\n", query)
	}
	fmt.Fprintf(&b, "**Output:** %s (%.1fs, %d segments)\n\n", out.Path, out.TotalDuration, len(out.Segments))

	b.WriteString("## Segments\n\n")
	for _, s := range out.Segments {
		fmt.Fprintf(&b, "- **%s - %s** %s\n", clock(s.Start), clock(s.End), s.Caption)
	}

	return b.String()
}

// clock formats seconds as mm:ss.
func clock(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
