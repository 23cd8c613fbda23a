package numeric

import (
	"math"
	"testing"
)

func TestMovingAverage_centered(t *testing.T) {
	in := []float64{1, 2, 3, 4, 5, 6, 7}
	out := MovingAverage(in, 3)
	want := []float64{1, 2, 3, 4, 5, 6, 7}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-9 {
			t.Errorf("index %d: got %v want %v", i, out[i], want[i])
		}
	}

	spiky := []float64{0, 0, 9, 0, 0}
	out = MovingAverage(spiky, 3)
	if out[0] != 0 || out[4] != 0 {
		t.Errorf("edges should keep raw values, got %v", out)
	}
	if math.Abs(out[1]-3) > 1e-9 || math.Abs(out[2]-3) > 1e-9 || math.Abs(out[3]-3) > 1e-9 {
		t.Errorf("expected spike spread over window, got %v", out)
	}
}

func TestMovingAverage_does_not_alias_input(t *testing.T) {
	in := []float64{1, 2}
	out := MovingAverage(in, 5)
	out[0] = 99
	if in[0] != 1 {
		t.Error("MovingAverage must not modify its input")
	}
}

func TestWindowStats(t *testing.T) {
	v := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := WindowMean(v, 0, len(v)); got != 5 {
		t.Errorf("mean: got %v want 5", got)
	}
	// sample (n-1) standard deviation
	if got := WindowStdDev(v, 0, len(v)); math.Abs(got-2.138089935) > 1e-6 {
		t.Errorf("stddev: got %v", got)
	}
	if got := WindowStdDev(v, 3, 4); got != 0 {
		t.Errorf("single-sample stddev should be 0, got %v", got)
	}
	if got := WindowMean(v, 4, 4); got != 0 {
		t.Errorf("empty mean should be 0, got %v", got)
	}
}

func TestFindCrossing(t *testing.T) {
	v := []float64{20, 40, 55.9, 56, 70}
	idx, ok := FindCrossing(v, 56)
	if !ok || idx != 3 {
		t.Errorf("got idx=%d ok=%v, want 3 true", idx, ok)
	}
	if _, ok := FindCrossing(v, 93); ok {
		t.Error("expected no crossing for 93")
	}
}

func TestFindLastIndexWhere(t *testing.T) {
	v := []float64{0, 5, 0, 5, 0}
	pred := func(k int) bool { return v[k] > 1 }

	t.Run("finds_latest_match", func(t *testing.T) {
		idx, ok := FindLastIndexWhere(pred, 0, 4)
		if !ok || idx != 3 {
			t.Errorf("got %d %v, want 3 true", idx, ok)
		}
	})

	t.Run("respects_lower_bound", func(t *testing.T) {
		if _, ok := FindLastIndexWhere(pred, 4, 4); ok {
			t.Error("expected no match in [4,4]")
		}
	})

	t.Run("negative_from_clamped", func(t *testing.T) {
		idx, ok := FindLastIndexWhere(pred, -3, 2)
		if !ok || idx != 1 {
			t.Errorf("got %d %v, want 1 true", idx, ok)
		}
	})
}
