package bakecurve

import "gonum.org/v1/gonum/floats"

// Normalize slices each retained segment out of the resolved samples and
// rebases its time axis to zero. Curves are numbered from 1 in the order
// given. Gaps in the source timestamps are kept as-is.
func Normalize(samples []Sample, res Resolution, segments []Segment) []NormalizedCurve {
	curves := make([]NormalizedCurve, 0, len(segments))
	for n, seg := range segments {
		curves = append(curves, normalizeOne(samples, res, seg, n+1))
	}
	return curves
}

func normalizeOne(samples []Sample, res Resolution, seg Segment, number int) NormalizedCurve {
	first := samples[seg.StartIndex].Timestamp
	rows := make([]CurveRow, 0, seg.Len())
	for i := seg.StartIndex; i <= seg.EndIndex; i++ {
		smp := samples[i]
		shifted := smp.Timestamp - first
		rows = append(rows, CurveRow{
			Timestamp:          shifted,
			TimeMinutes:        shifted / 60,
			Channels:           smp.Channels,
			ProcessState:       smp.ProcessState,
			CoreTemperature:    valueAt(res.Core, i),
			SurfaceTemperature: valueAt(res.Surface, i),
			AmbientTemperature: valueAt(res.Ambient, i),
			CoreSensorID:       smp.CoreSensorID,
		})
	}

	return NormalizedCurve{
		Segment:         seg,
		CurveNumber:     number,
		StartTimestamp:  first,
		EndTimestamp:    samples[seg.EndIndex].Timestamp,
		DurationMinutes: rows[len(rows)-1].TimeMinutes,
		MaxTemperature:  floats.Max(res.Core[seg.StartIndex : seg.EndIndex+1]),
		SampleCount:     len(rows),
		Rows:            rows,
	}
}

func valueAt(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}
