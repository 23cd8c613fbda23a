package bakecurve

import (
	"errors"
	"sync"
	"testing"
)

func TestInMemoryRepository_SaveRecording(t *testing.T) {
	repo := NewInMemoryRepository()

	t.Run("not_found", func(t *testing.T) {
		if _, _, err := repo.Curves("missing"); !errors.Is(err, ErrRecordingNotFound) {
			t.Errorf("Curves err = %v", err)
		}
		if _, err := repo.CurrentCurve("missing"); !errors.Is(err, ErrRecordingNotFound) {
			t.Errorf("CurrentCurve err = %v", err)
		}
		if _, err := repo.SelectCurve("missing", 0); !errors.Is(err, ErrRecordingNotFound) {
			t.Errorf("SelectCurve err = %v", err)
		}
		if _, err := repo.Trace("missing"); !errors.Is(err, ErrRecordingNotFound) {
			t.Errorf("Trace err = %v", err)
		}
		if _, err := repo.SamplePeriod("missing"); !errors.Is(err, ErrRecordingNotFound) {
			t.Errorf("SamplePeriod err = %v", err)
		}
	})

	repo.SaveRecording(&Recording{
		ID:           "r1",
		SamplePeriod: 5,
		Registry:     NewRegistry(testCurves(2)),
		Trace:        []TraceEvent{{Index: 3, Rule: RuleStartRise}},
	})

	t.Run("curves", func(t *testing.T) {
		summaries, current, err := repo.Curves("r1")
		if err != nil {
			t.Fatal(err)
		}
		if len(summaries) != 2 || current != 0 || summaries[1].CurveNumber != 2 {
			t.Errorf("summaries=%+v current=%d", summaries, current)
		}
	})

	t.Run("select_and_current", func(t *testing.T) {
		if _, err := repo.SelectCurve("r1", 1); err != nil {
			t.Fatal(err)
		}
		c, err := repo.CurrentCurve("r1")
		if err != nil || c.CurveNumber != 2 {
			t.Errorf("CurrentCurve = %+v, %v", c, err)
		}
		if _, err := repo.SelectCurve("r1", 5); !errors.Is(err, ErrCurveIndexOutOfRange) {
			t.Errorf("SelectCurve out of range err = %v", err)
		}
		if _, current, _ := repo.Curves("r1"); current != 1 {
			t.Errorf("failed select changed current to %d", current)
		}
	})

	t.Run("trace_is_copied", func(t *testing.T) {
		tr, err := repo.Trace("r1")
		if err != nil || len(tr) != 1 {
			t.Fatalf("Trace = %+v, %v", tr, err)
		}
		tr[0].Rule = "mutated"
		again, _ := repo.Trace("r1")
		if again[0].Rule != RuleStartRise {
			t.Error("Trace exposed internal slice")
		}
	})

	t.Run("reanalysis_replaces_registry", func(t *testing.T) {
		repo.SaveRecording(&Recording{ID: "r1", SamplePeriod: 10})
		summaries, current, err := repo.Curves("r1")
		if err != nil || len(summaries) != 0 || current != -1 {
			t.Errorf("summaries=%v current=%d err=%v", summaries, current, err)
		}
		if _, err := repo.CurrentCurve("r1"); !errors.Is(err, ErrNoCurves) {
			t.Errorf("CurrentCurve err = %v, want ErrNoCurves", err)
		}
		if p, _ := repo.SamplePeriod("r1"); p != 10 {
			t.Errorf("sample period = %v, want 10", p)
		}
	})

	if n := repo.RecordingCount(); n != 1 {
		t.Errorf("RecordingCount = %d, want 1", n)
	}
}

func TestInMemoryRepository_concurrent(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.SaveRecording(&Recording{ID: "r1", Registry: NewRegistry(testCurves(4))})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = repo.SelectCurve("r1", i%4)
			_, _ = repo.CurrentCurve("r1")
			_, _, _ = repo.Curves("r1")
			_ = repo.RecordingCount()
		}(i)
	}
	wg.Wait()

	if _, current, _ := repo.Curves("r1"); current < 0 || current > 3 {
		t.Errorf("current index out of range after concurrent selects: %d", current)
	}
}
