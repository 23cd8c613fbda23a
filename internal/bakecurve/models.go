package bakecurve

import "time"

// RecordingID identifies one loaded probe recording.
type RecordingID string

// Role is a logical temperature role backed by one or more probe channels.
type Role string

const (
	RoleCore    Role = "core"
	RoleSurface Role = "surface"
	RoleAmbient Role = "ambient"
)

// Sample is one time-stamped probe reading.
// This also matches the JSON payload accepted when a recording is analyzed.
type Sample struct {
	Timestamp    float64   `json:"timestamp"` // seconds
	Channels     []float64 `json:"channels,omitempty"`
	ProcessState string    `json:"process_state,omitempty"`

	// Role-labeled temperatures computed by the probe itself, when present.
	CoreTemperature    *float64 `json:"core_temperature,omitempty"`
	SurfaceTemperature *float64 `json:"surface_temperature,omitempty"`
	AmbientTemperature *float64 `json:"ambient_temperature,omitempty"`

	// Physical channel currently backing each role, e.g. "T1".
	CoreSensorID    string `json:"core_sensor_id,omitempty"`
	SurfaceSensorID string `json:"surface_sensor_id,omitempty"`
	AmbientSensorID string `json:"ambient_sensor_id,omitempty"`
}

// EndReason tags which detector rule closed a curve.
type EndReason string

const (
	EndNegativeDelta EndReason = "negative_delta"
	EndPeakDrop      EndReason = "peak_drop"
	EndRoomPlateau   EndReason = "room_temp_plateau"
	EndSensorSwitch  EndReason = "sensor_switch"
	EndOfData        EndReason = "end_of_data"
)

// Segment is a curve in original sample-index space.
type Segment struct {
	StartIndex      int       `json:"start_index"`
	PeakIndex       int       `json:"peak_index"`
	PeakTemperature float64   `json:"peak_temperature"`
	EndIndex        int       `json:"end_index"`
	EndReason       EndReason `json:"end_reason"`
}

// Len returns the number of samples covered by the segment.
func (s Segment) Len() int {
	return s.EndIndex - s.StartIndex + 1
}

// CurveRow is one sample of a normalized curve, with its time axis rebased
// so the first row sits at zero.
type CurveRow struct {
	Timestamp          float64   `json:"timestamp"`
	TimeMinutes        float64   `json:"time_minutes"`
	Channels           []float64 `json:"channels,omitempty"`
	ProcessState       string    `json:"process_state,omitempty"`
	CoreTemperature    float64   `json:"core_temperature"`
	SurfaceTemperature float64   `json:"surface_temperature"`
	AmbientTemperature float64   `json:"ambient_temperature"`
	CoreSensorID       string    `json:"core_sensor_id,omitempty"`
}

// NormalizedCurve is a retained segment plus its own rebased sample rows.
type NormalizedCurve struct {
	Segment
	CurveNumber     int        `json:"curve_number"` // 1-based
	StartTimestamp  float64    `json:"start_timestamp"`
	EndTimestamp    float64    `json:"end_timestamp"`
	DurationMinutes float64    `json:"duration_minutes"`
	MaxTemperature  float64    `json:"max_temperature"`
	SampleCount     int        `json:"sample_count"`
	Rows            []CurveRow `json:"rows"`
}

// CurveSummary is the per-curve view handed to reporting consumers.
type CurveSummary struct {
	CurveNumber     int       `json:"curve_number"`
	StartIndex      int       `json:"start_index"`
	EndIndex        int       `json:"end_index"`
	PeakIndex       int       `json:"peak_index"`
	PeakTemperature float64   `json:"peak_temperature"`
	EndReason       EndReason `json:"end_reason"`
	StartTimestamp  float64   `json:"start_timestamp"`
	EndTimestamp    float64   `json:"end_timestamp"`
	DurationMinutes float64   `json:"duration_minutes"`
	SampleCount     int       `json:"sample_count"`
}

// Summary drops the sample rows.
func (c NormalizedCurve) Summary() CurveSummary {
	return CurveSummary{
		CurveNumber:     c.CurveNumber,
		StartIndex:      c.StartIndex,
		EndIndex:        c.EndIndex,
		PeakIndex:       c.PeakIndex,
		PeakTemperature: c.PeakTemperature,
		EndReason:       c.EndReason,
		StartTimestamp:  c.StartTimestamp,
		EndTimestamp:    c.EndTimestamp,
		DurationMinutes: c.DurationMinutes,
		SampleCount:     c.SampleCount,
	}
}

// ArchivedCurve is a curve summary read back from the archive.
type ArchivedCurve struct {
	RecordingID RecordingID `json:"recording_id"`
	CurveSummary
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// CoreSeries returns the rebased time axis (minutes) and core temperatures.
func (c NormalizedCurve) CoreSeries() (minutes, core []float64) {
	minutes = make([]float64, len(c.Rows))
	core = make([]float64, len(c.Rows))
	for i, row := range c.Rows {
		minutes[i] = row.TimeMinutes
		core[i] = row.CoreTemperature
	}
	return minutes, core
}

// Recording is the top-level in-memory state for one analyzed recording.
type Recording struct {
	ID           RecordingID
	Samples      []Sample
	SamplePeriod float64 // seconds
	Resolution   Resolution
	Registry     *Registry
	Trace        []TraceEvent
	Discarded    int
	AnalyzedAt   time.Time
}
