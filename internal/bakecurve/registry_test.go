package bakecurve

import (
	"errors"
	"testing"
)

func testCurves(n int) []NormalizedCurve {
	out := make([]NormalizedCurve, n)
	for i := range out {
		out[i] = NormalizedCurve{
			Segment:     Segment{StartIndex: i * 100, EndIndex: i*100 + 80, PeakIndex: i*100 + 70, PeakTemperature: 90 + float64(i)},
			CurveNumber: i + 1,
			SampleCount: 81,
		}
	}
	return out
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(testCurves(3))

	if r.Count() != 3 || r.CurrentIndex() != 0 {
		t.Fatalf("count=%d current=%d", r.Count(), r.CurrentIndex())
	}
	cur, err := r.Current()
	if err != nil || cur.CurveNumber != 1 {
		t.Fatalf("Current = %+v, %v", cur, err)
	}

	t.Run("select_valid", func(t *testing.T) {
		c, err := r.Select(2)
		if err != nil || c.CurveNumber != 3 {
			t.Fatalf("Select(2) = %+v, %v", c, err)
		}
		if cur, _ := r.Current(); cur.CurveNumber != 3 {
			t.Errorf("current after select = %d", cur.CurveNumber)
		}
	})

	t.Run("select_out_of_range_is_noop", func(t *testing.T) {
		for _, idx := range []int{-1, 3, 99} {
			if _, err := r.Select(idx); !errors.Is(err, ErrCurveIndexOutOfRange) {
				t.Errorf("Select(%d) err = %v", idx, err)
			}
		}
		if r.CurrentIndex() != 2 {
			t.Errorf("current index changed to %d", r.CurrentIndex())
		}
	})

	t.Run("curve_lookup_keeps_selection", func(t *testing.T) {
		c, err := r.Curve(0)
		if err != nil || c.CurveNumber != 1 || r.CurrentIndex() != 2 {
			t.Errorf("Curve(0) = %+v, %v, current %d", c, err, r.CurrentIndex())
		}
	})

	t.Run("load_replaces", func(t *testing.T) {
		r.Load(testCurves(1))
		if r.Count() != 1 || r.CurrentIndex() != 0 {
			t.Errorf("after load: count=%d current=%d", r.Count(), r.CurrentIndex())
		}
		if s := r.Summaries(); len(s) != 1 || s[0].PeakTemperature != 90 {
			t.Errorf("summaries = %+v", s)
		}
	})
}

func TestRegistry_empty(t *testing.T) {
	r := NewRegistry(nil)
	if r.Count() != 0 || r.CurrentIndex() != -1 {
		t.Errorf("count=%d current=%d", r.Count(), r.CurrentIndex())
	}
	if _, err := r.Current(); !errors.Is(err, ErrNoCurves) {
		t.Errorf("Current err = %v, want ErrNoCurves", err)
	}
	if _, err := r.Select(0); !errors.Is(err, ErrCurveIndexOutOfRange) {
		t.Errorf("Select err = %v", err)
	}
	if s := r.Summaries(); s == nil || len(s) != 0 {
		t.Errorf("summaries = %v, want empty slice", s)
	}
}
