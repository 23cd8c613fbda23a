package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bakecurve-service/internal/bakecurve"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func summary(n int, peak float64) bakecurve.CurveSummary {
	return bakecurve.CurveSummary{
		CurveNumber:     n,
		StartIndex:      n * 100,
		EndIndex:        n*100 + 80,
		PeakIndex:       n*100 + 70,
		PeakTemperature: peak,
		EndReason:       bakecurve.EndPeakDrop,
		StartTimestamp:  float64(n * 500),
		EndTimestamp:    float64(n*500 + 400),
		DurationMinutes: 400.0 / 60,
		SampleCount:     81,
	}
}

func TestStore_SaveAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)

	curves := []bakecurve.CurveSummary{summary(2, 95.5), summary(1, 97)}
	if err := s.SaveCurves(ctx, "r1", at, curves); err != nil {
		t.Fatalf("SaveCurves: %v", err)
	}

	got, err := s.ListCurves(ctx, "r1")
	if err != nil {
		t.Fatalf("ListCurves: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 curves, got %d", len(got))
	}
	if got[0].CurveNumber != 1 || got[1].CurveNumber != 2 {
		t.Errorf("expected ordered by curve number, got %d, %d", got[0].CurveNumber, got[1].CurveNumber)
	}
	if got[0].CurveSummary != summary(1, 97) {
		t.Errorf("round trip mismatch: got %+v", got[0].CurveSummary)
	}
	if got[0].RecordingID != "r1" || !got[0].AnalyzedAt.Equal(at) {
		t.Errorf("record metadata: id=%q at=%v", got[0].RecordingID, got[0].AnalyzedAt)
	}
}

func TestStore_SaveCurves_replaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	at := time.Now().UTC()

	if err := s.SaveCurves(ctx, "r1", at, []bakecurve.CurveSummary{summary(1, 90), summary(2, 91)}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveCurves(ctx, "r2", at, []bakecurve.CurveSummary{summary(1, 88)}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveCurves(ctx, "r1", at, []bakecurve.CurveSummary{summary(1, 99)}); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListCurves(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].PeakTemperature != 99 {
		t.Errorf("expected r1 replaced by one curve at 99, got %+v", got)
	}

	other, _ := s.ListCurves(ctx, "r2")
	if len(other) != 1 {
		t.Errorf("r2 should be untouched, got %d curves", len(other))
	}

	t.Run("empty_clears", func(t *testing.T) {
		if err := s.SaveCurves(ctx, "r1", at, nil); err != nil {
			t.Fatal(err)
		}
		got, _ := s.ListCurves(ctx, "r1")
		if len(got) != 0 {
			t.Errorf("expected no curves, got %d", len(got))
		}
	})
}

func TestStore_RecordingIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	at := time.Now().UTC()

	for _, id := range []bakecurve.RecordingID{"b", "a"} {
		if err := s.SaveCurves(ctx, id, at, []bakecurve.CurveSummary{summary(1, 90)}); err != nil {
			t.Fatal(err)
		}
	}
	ids, err := s.RecordingIDs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("RecordingIDs = %v, want [a b]", ids)
	}
}

func TestOpen_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curves.sqlite")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SaveCurves(ctx, "r1", time.Now().UTC(), []bakecurve.CurveSummary{summary(1, 92)}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.ListCurves(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("expected archived curve to survive reopen, got %d", len(got))
	}
}
