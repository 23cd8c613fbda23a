package bakecurve

import (
	"io"
	"log/slog"
)

// ramp returns n values from "from" to "to" inclusive.
func ramp(from, to float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if n == 1 {
			out[i] = from
			continue
		}
		out[i] = from + (to-from)*float64(i)/float64(n-1)
	}
	return out
}

func flat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func concat(parts ...[]float64) []float64 {
	var out []float64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func ptr(v float64) *float64 { return &v }

// probeSamples builds role-labeled samples at 5 s spacing with a constant
// ambient reading.
func probeSamples(core []float64, ambient float64) []Sample {
	out := make([]Sample, len(core))
	for i, c := range core {
		out[i] = Sample{
			Timestamp:          float64(i) * 5,
			CoreTemperature:    ptr(c),
			SurfaceTemperature: ptr(c + 5),
			AmbientTemperature: ptr(ambient),
			CoreSensorID:       "T1",
			SurfaceSensorID:    "T3",
			AmbientSensorID:    "T8",
		}
	}
	return out
}

// channelSamples builds raw 8-channel samples at 5 s spacing where channel c
// reads base[i] + offsets[c].
func channelSamples(base []float64, offsets []float64) []Sample {
	out := make([]Sample, len(base))
	for i, b := range base {
		ch := make([]float64, len(offsets))
		for c, off := range offsets {
			ch[c] = b + off
		}
		out[i] = Sample{Timestamp: float64(i) * 5, Channels: ch}
	}
	return out
}

// singleBake is the canonical slow bake: 1500 samples climbing from 20 °C to
// 97 °C, then a sharp drop to 19 °C held for 300 samples.
func singleBake() []float64 {
	return concat(ramp(20, 97, 1500), flat(19, 300))
}

// doubleBake holds two bakes separated by a cool gap.
func doubleBake() []float64 {
	return concat(
		ramp(20, 95, 400),
		flat(22, 100),
		ramp(22, 93, 400),
		flat(20, 100),
	)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// checkSegmentInvariants verifies ordering, bounds, peak and threshold
// properties of retained segments against core.
func checkSegmentInvariants(t interface {
	Helper()
	Errorf(string, ...any)
}, cfg DetectorConfig, core []float64, segs []Segment) {
	t.Helper()
	for k, s := range segs {
		if !(s.StartIndex <= s.PeakIndex && s.PeakIndex <= s.EndIndex) {
			t.Errorf("segment %d: bounds violated %+v", k, s)
			continue
		}
		if s.EndIndex >= len(core) {
			t.Errorf("segment %d: end %d beyond series of %d", k, s.EndIndex, len(core))
			continue
		}
		hi := core[s.StartIndex]
		for i := s.StartIndex; i <= s.EndIndex; i++ {
			if core[i] > hi {
				hi = core[i]
			}
		}
		if s.PeakTemperature != hi || core[s.PeakIndex] != hi {
			t.Errorf("segment %d: peak %v at %d, max over segment is %v", k, s.PeakTemperature, s.PeakIndex, hi)
		}
		if s.Len() < cfg.MinCurveDurationSamples || s.PeakTemperature < cfg.MinPeakTemperature {
			t.Errorf("segment %d: retained below thresholds %+v", k, s)
		}
		if k > 0 && segs[k-1].EndIndex >= s.StartIndex {
			t.Errorf("segment %d: starts at %d, previous ends at %d", k, s.StartIndex, segs[k-1].EndIndex)
		}
	}
}
