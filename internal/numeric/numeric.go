// Package numeric holds the small series helpers shared by curve detection
// and S-curve landmark analysis: smoothing, windowed statistics, threshold
// crossings and bounded backward searches.
package numeric

import (
	"gonum.org/v1/gonum/stat"
)

// MovingAverage returns a centered rolling mean of values over window
// samples. Positions where the window would run off either end keep their
// raw value. A window below 2 returns a copy of values.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	if window < 2 || len(values) < window {
		return out
	}
	half := window / 2
	for i := range values {
		lo := i - half
		hi := lo + window
		if lo < 0 || hi > len(values) {
			continue
		}
		out[i] = stat.Mean(values[lo:hi], nil)
	}
	return out
}

// WindowMean returns the mean of values[from:to].
func WindowMean(values []float64, from, to int) float64 {
	if from >= to {
		return 0
	}
	return stat.Mean(values[from:to], nil)
}

// WindowStdDev returns the sample standard deviation of values[from:to].
// Windows shorter than two samples have no spread and return 0.
func WindowStdDev(values []float64, from, to int) float64 {
	if to-from < 2 {
		return 0
	}
	return stat.StdDev(values[from:to], nil)
}

// FindCrossing returns the first index whose value reaches threshold.
func FindCrossing(values []float64, threshold float64) (int, bool) {
	for i, v := range values {
		if v >= threshold {
			return i, true
		}
	}
	return 0, false
}

// FindLastIndexWhere walks backward from to down to from (both inclusive)
// and returns the first index, in walking order, for which pred holds.
func FindLastIndexWhere(pred func(int) bool, from, to int) (int, bool) {
	if from < 0 {
		from = 0
	}
	for k := to; k >= from; k-- {
		if pred(k) {
			return k, true
		}
	}
	return 0, false
}
