package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nguyentantai21042004/highlight-flow/internal/segment"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRecordAndList(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	segments := []segment.Selected{
		{Candidate: segment.Candidate{Start: 0, End: 12, Score: 6}, Order: 0, Caption: "mix the flour"},
		{Candidate: segment.Candidate{Start: 20, End: 23, Score: 4}, Order: 1, Caption: "bake at 350"},
	}

	runID, err := c.Record(ctx, "how to bake bread", "videos/bread.mp4", "out/bread_reel.mp4", 15, segments)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	runs, err := c.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}
	if runs[0].ID != runID {
		t.Errorf("ID = %d, want %d", runs[0].ID, runID)
	}
	if runs[0].Query != "how to bake bread" {
		t.Errorf("Query = %q", runs[0].Query)
	}
	if runs[0].TotalDuration != 15 {
		t.Errorf("TotalDuration = %v, want 15", runs[0].TotalDuration)
	}

	got, err := c.Segments(ctx, runID)
	if err != nil {
		t.Fatalf("Segments() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(segments) = %d, want 2", len(got))
	}
	if got[0].Caption != "mix the flour" || got[1].Caption != "bake at 350" {
		t.Errorf("captions = %q, %q", got[0].Caption, got[1].Caption)
	}
	if got[1].Start != 20 || got[1].End != 23 {
		t.Errorf("segment 1 = %+v", got[1])
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	if _, err := c.Record(ctx, "first", "a.mp4", "a_reel.mp4", 10, nil); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if _, err := c.Record(ctx, "second", "b.mp4", "b_reel.mp4", 20, nil); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	runs, err := c.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if runs[0].Query != "second" {
		t.Errorf("runs[0].Query = %q, want newest first", runs[0].Query)
	}
}
