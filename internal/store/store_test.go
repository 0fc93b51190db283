package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"growthkit/internal/apperr"
	"growthkit/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestReport(id string, researchType core.ResearchType, createdAt time.Time) core.Report {
	return core.Report{
		ID:           id,
		Title:        "Niche Research: sustainable fashion",
		ResearchType: researchType,
		Status:       core.StatusProcessing,
		InputMetadata: map[string]string{
			"niche": "sustainable fashion",
		},
		CreatedAt: createdAt,
	}
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := newTestReport("r1", core.ResearchNiche, time.Now().UTC())
	if err := s.Create(ctx, created); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := s.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != core.StatusProcessing {
		t.Errorf("expected processing status, got %s", got.Status)
	}
	if got.Content != "" {
		t.Errorf("new report should have empty content, got %q", got.Content)
	}
	if got.InputMetadata["niche"] != "sustainable fashion" {
		t.Errorf("input metadata not preserved: %v", got.InputMetadata)
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCompleteSetsTerminalState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, newTestReport("r1", core.ResearchNiche, time.Now().UTC())); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.Complete(ctx, "r1", "full report body", "the summary", 12.5); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	got, err := s.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != core.StatusCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}
	if got.Content != "full report body" || got.Summary != "the summary" {
		t.Errorf("body/summary not persisted: %q / %q", got.Content, got.Summary)
	}
	if got.ProcessingSeconds != 12.5 {
		t.Errorf("expected 12.5 processing seconds, got %v", got.ProcessingSeconds)
	}
}

func TestFailSetsTerminalState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, newTestReport("r1", core.ResearchWebsite, time.Now().UTC())); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.Fail(ctx, "r1", "generation provider error: boom"); err != nil {
		t.Fatalf("fail failed: %v", err)
	}

	got, err := s.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != core.StatusFailed {
		t.Errorf("expected failed, got %s", got.Status)
	}
	if got.Content == "" {
		t.Error("failed report should carry an error description")
	}
}

func TestTerminalRecordIsNeverReopened(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, newTestReport("r1", core.ResearchNiche, time.Now().UTC())); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.Complete(ctx, "r1", "body", "summary", 1); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	// Second terminal transition must not overwrite the first.
	if err := s.Fail(ctx, "r1", "late failure"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for second transition, got %v", err)
	}

	got, _ := s.Get(ctx, "r1")
	if got.Status != core.StatusCompleted || got.Content != "body" {
		t.Errorf("terminal record was modified: %s / %q", got.Status, got.Content)
	}
}

func TestListNewestFirstAndFiltered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	reports := []core.Report{
		newTestReport("old", core.ResearchNiche, base),
		newTestReport("mid", core.ResearchWebsite, base.Add(time.Hour)),
		newTestReport("new", core.ResearchNiche, base.Add(2*time.Hour)),
	}
	for _, r := range reports {
		if err := s.Create(ctx, r); err != nil {
			t.Fatalf("create %s failed: %v", r.ID, err)
		}
	}

	all, err := s.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(all))
	}
	if all[0].ID != "new" || all[2].ID != "old" {
		t.Errorf("expected newest-first order, got %s..%s", all[0].ID, all[2].ID)
	}

	niche, err := s.List(ctx, core.ResearchNiche, 0)
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if len(niche) != 2 {
		t.Errorf("expected 2 niche reports, got %d", len(niche))
	}

	limited, err := s.List(ctx, "", 1)
	if err != nil {
		t.Fatalf("limited list failed: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "new" {
		t.Errorf("expected only the newest report, got %v", limited)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, newTestReport("r1", core.ResearchNiche, time.Now().UTC())); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.Delete(ctx, "r1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "r1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "r1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}
