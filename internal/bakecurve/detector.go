package bakecurve

import (
	"bakecurve-service/internal/numeric"

	"gonum.org/v1/gonum/floats"
)

// DetectorConfig holds every threshold the boundary detector uses. Windows
// are in samples, temperatures in °C.
type DetectorConfig struct {
	// Start rules.
	RiseThreshold  float64 // single-step rise that opens a curve
	BaselineWindow int     // samples in the cool baseline window
	RoomCeiling    float64 // baseline mean must sit below this
	BaselineMargin float64 // rise above the baseline mean that opens a curve
	BaselineMaxAge int     // samples the baseline window may lag the scan; 0 = unbounded
	NotInserted    string  // process state meaning the probe is out of the product

	// End rules are only evaluated once the running peak exceeds this.
	EndSearchFloor float64

	NegativeDeltaWindow    int
	NegativeDeltaThreshold float64 // core minus ambient must stay below this
	StillHotFloor          float64 // core must be below this for the delta rule

	PeakDropThreshold float64

	PlateauWindow     int
	PlateauMaxStdDev  float64
	RoomBandMin       float64
	RoomBandMax       float64
	PlateauWalkMargin float64 // walk back to where core was this far above the plateau

	SensorSwitchWindow   int
	SensorSwitchMinCount int
	SensorSwitchMaxTemp  float64
	UnusualCoreSensors   []string

	SteepDrop     float64 // single-step drop that marks the removal moment
	WalkBackLimit int     // max samples walked back from a fired end rule; 0 = to the peak

	SmoothingWindow int

	// Retention.
	MinCurveDurationSamples int
	MinPeakTemperature      float64
}

// DefaultDetectorConfig returns thresholds tuned for 5 s probe logs.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		RiseThreshold:  5,
		BaselineWindow: 5,
		RoomCeiling:    35,
		BaselineMargin: 3,
		BaselineMaxAge: 120,
		NotInserted:    "Probe Not Inserted",

		EndSearchFloor: 70,

		NegativeDeltaWindow:    5,
		NegativeDeltaThreshold: -5,
		StillHotFloor:          60,

		PeakDropThreshold: 20,

		PlateauWindow:     20,
		PlateauMaxStdDev:  2,
		RoomBandMin:       15,
		RoomBandMax:       30,
		PlateauWalkMargin: 20,

		SensorSwitchWindow:   10,
		SensorSwitchMinCount: 9,
		SensorSwitchMaxTemp:  40,
		UnusualCoreSensors:   []string{"T4", "T5", "T6"},

		SteepDrop:     10,
		WalkBackLimit: 120,

		SmoothingWindow: 5,

		MinCurveDurationSamples: 60,
		MinPeakTemperature:      80,
	}
}

// Series is the resolved input to the detector. States and CoreSensors are
// optional and may be nil.
type Series struct {
	Core        []float64
	Ambient     []float64
	States      []string
	CoreSensors []string

	smoothed []float64
}

// NewSeries builds a detector input from resolved samples.
func NewSeries(samples []Sample, res Resolution) Series {
	s := Series{
		Core:        res.Core,
		Ambient:     res.Ambient,
		CoreSensors: CoreSensors(samples),
	}
	for _, smp := range samples {
		if smp.ProcessState != "" {
			s.States = make([]string, len(samples))
			for i, x := range samples {
				s.States[i] = x.ProcessState
			}
			break
		}
	}
	return s
}

// Len returns the number of samples.
func (s Series) Len() int {
	return len(s.Core)
}

// Phase is the detector state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInCurve
)

func (p Phase) String() string {
	if p == PhaseInCurve {
		return "in_curve"
	}
	return "idle"
}

// ScanState is everything the detector carries between samples.
type ScanState struct {
	Phase  Phase
	Cursor int // next sample to evaluate

	// SearchFrom is the earliest index a new curve may start at: one past
	// the end of the last closed candidate.
	SearchFrom int
	// Anchor is the first index of the cool baseline window while idle.
	Anchor int
	// Trough is the lowest core reading since SearchFrom, kept for probes
	// that are reinserted before they cool to room temperature.
	Trough int

	StartIndex      int
	PeakIndex       int
	PeakTemperature float64
	Armed           bool // running peak has passed EndSearchFloor
}

// Trace rules recorded by the detector.
const (
	RuleStartStateChange = "start_state_change"
	RuleStartRise        = "start_rise"
	RuleStartBaseline    = "start_baseline"
	RuleStartTrough      = "start_trough"
	RuleArmed            = "armed"
	RuleRetained         = "retained"
	RuleDiscardedShort   = "discarded_short"
	RuleDiscardedCool    = "discarded_cool"
)

// TraceEvent is one diagnostic record of a detector decision.
type TraceEvent struct {
	Index  int                `json:"index"`
	Rule   string             `json:"rule"`
	Values map[string]float64 `json:"values,omitempty"`
}

// Transition is the outcome of one Step.
type Transition struct {
	State    ScanState
	Closed   *Segment // candidate closed on this step, retained or not
	Retained bool
	Events   []TraceEvent
}

// Detection is the result of scanning a whole series.
type Detection struct {
	Segments  []Segment
	Discarded int
	Trace     []TraceEvent
}

// Detector partitions a resolved series into curve segments.
type Detector struct {
	cfg     DetectorConfig
	unusual map[string]bool
}

// NewDetector returns a Detector using cfg.
func NewDetector(cfg DetectorConfig) *Detector {
	unusual := make(map[string]bool, len(cfg.UnusualCoreSensors))
	for _, id := range cfg.UnusualCoreSensors {
		unusual[id] = true
	}
	return &Detector{cfg: cfg, unusual: unusual}
}

// Config returns the detector thresholds.
func (d *Detector) Config() DetectorConfig {
	return d.cfg
}

// Detect scans s once and returns the retained segments in order. Series
// too short to hold a curve return an empty result.
func (d *Detector) Detect(s Series) Detection {
	s = d.prepare(s)

	var out Detection
	st := ScanState{}
	for st.Cursor < s.Len() {
		tr := d.Step(s, st)
		out.collect(tr)
		st = tr.State
	}
	if st.Phase == PhaseInCurve {
		out.collect(d.Finish(s, st))
	}
	return out
}

func (out *Detection) collect(tr Transition) {
	out.Trace = append(out.Trace, tr.Events...)
	if tr.Closed == nil {
		return
	}
	if tr.Retained {
		out.Segments = append(out.Segments, *tr.Closed)
	} else {
		out.Discarded++
	}
}

func (d *Detector) prepare(s Series) Series {
	if s.smoothed == nil {
		s.smoothed = numeric.MovingAverage(s.Core, d.cfg.SmoothingWindow)
	}
	return s
}

// Step evaluates the sample at st.Cursor and returns the next state. It does
// not modify s or st.
func (d *Detector) Step(s Series, st ScanState) Transition {
	s = d.prepare(s)
	if st.Phase == PhaseInCurve {
		return d.stepInCurve(s, st)
	}
	return d.stepIdle(s, st)
}

// Finish closes an open curve at the last sample.
func (d *Detector) Finish(s Series, st ScanState) Transition {
	end := s.Len() - 1
	seg := Segment{
		StartIndex:      st.StartIndex,
		PeakIndex:       st.PeakIndex,
		PeakTemperature: st.PeakTemperature,
		EndIndex:        end,
		EndReason:       EndOfData,
	}
	return d.close(seg, end, nil)
}

func (d *Detector) stepIdle(s Series, st ScanState) Transition {
	i := st.Cursor
	next := st
	next.Cursor = i + 1

	start, ev, ok := d.startAt(s, st, i)
	if !ok {
		next.Anchor = d.advanceAnchor(s, st, i)
		next.Trough = d.advanceTrough(s, st, i)
		return Transition{State: next}
	}

	next.Phase = PhaseInCurve
	next.StartIndex = start
	next.PeakIndex = start
	next.PeakTemperature = s.Core[start]
	for k := start + 1; k <= i; k++ {
		if s.Core[k] > next.PeakTemperature {
			next.PeakIndex, next.PeakTemperature = k, s.Core[k]
		}
	}
	events := []TraceEvent{ev}
	if next.PeakTemperature > d.cfg.EndSearchFloor {
		next.Armed = true
		events = append(events, TraceEvent{Index: i, Rule: RuleArmed, Values: map[string]float64{"peak": next.PeakTemperature}})
	}
	return Transition{State: next, Events: events}
}

// startAt tries the start rules at index i in priority order.
func (d *Detector) startAt(s Series, st ScanState, i int) (int, TraceEvent, bool) {
	core := s.Core

	if s.States != nil && i >= 1 && i >= st.SearchFrom &&
		s.States[i-1] == d.cfg.NotInserted && s.States[i] != d.cfg.NotInserted {
		return i, TraceEvent{Index: i, Rule: RuleStartStateChange}, true
	}

	if i-1 >= st.SearchFrom {
		if rise := core[i] - core[i-1]; rise > d.cfg.RiseThreshold {
			return i - 1, TraceEvent{Index: i, Rule: RuleStartRise, Values: map[string]float64{"rise": rise}}, true
		}
	}

	w := d.cfg.BaselineWindow
	if w > 0 && st.Anchor >= st.SearchFrom && st.Anchor+w <= i {
		mean := numeric.WindowMean(core, st.Anchor, st.Anchor+w)
		if mean < d.cfg.RoomCeiling && core[i]-mean > d.cfg.BaselineMargin {
			return st.Anchor, TraceEvent{Index: i, Rule: RuleStartBaseline, Values: map[string]float64{
				"baseline_mean": mean,
				"core":          core[i],
			}}, true
		}
	}

	if t := st.Trough; t >= st.SearchFrom && t < i && core[t] >= d.cfg.RoomCeiling &&
		core[i]-core[t] > d.cfg.BaselineMargin {
		return t, TraceEvent{Index: i, Rule: RuleStartTrough, Values: map[string]float64{
			"trough": core[t],
			"core":   core[i],
		}}, true
	}
	return 0, TraceEvent{}, false
}

// advanceAnchor keeps the baseline window pinned while the series climbs
// above it and slides it forward whenever the signal is back at or below the
// baseline, or the baseline itself is too warm to count as cool. A pinned
// window never lags i by more than BaselineMaxAge samples.
func (d *Detector) advanceAnchor(s Series, st ScanState, i int) int {
	w := d.cfg.BaselineWindow
	if w <= 0 {
		return st.SearchFrom
	}
	slide := i - w + 1
	if slide < st.SearchFrom {
		slide = st.SearchFrom
	}
	if st.Anchor < st.SearchFrom || st.Anchor+w > i {
		return slide
	}
	mean := numeric.WindowMean(s.Core, st.Anchor, st.Anchor+w)
	if s.Core[i] <= mean || mean >= d.cfg.RoomCeiling {
		return slide
	}
	if lim := d.cfg.BaselineMaxAge; lim > 0 && i-st.Anchor > lim {
		return i - lim
	}
	return st.Anchor
}

// advanceTrough tracks the most recent lowest core reading since
// SearchFrom. A trough older than BaselineMaxAge samples is re-found within
// that window.
func (d *Detector) advanceTrough(s Series, st ScanState, i int) int {
	t := st.Trough
	if t < st.SearchFrom || s.Core[i] <= s.Core[t] {
		return i
	}
	if lim := d.cfg.BaselineMaxAge; lim > 0 && i-t > lim {
		from := i - lim
		return from + floats.MinIdx(s.Core[from:i+1])
	}
	return t
}

func (d *Detector) stepInCurve(s Series, st ScanState) Transition {
	i := st.Cursor
	next := st
	next.Cursor = i + 1

	var events []TraceEvent
	if s.Core[i] > next.PeakTemperature {
		next.PeakIndex, next.PeakTemperature = i, s.Core[i]
	}
	if !next.Armed && next.PeakTemperature > d.cfg.EndSearchFloor {
		next.Armed = true
		events = append(events, TraceEvent{Index: i, Rule: RuleArmed, Values: map[string]float64{"peak": next.PeakTemperature}})
	}
	if !next.Armed {
		return Transition{State: next, Events: events}
	}

	reason, ev, ok := d.endAt(s, next, i)
	if !ok {
		return Transition{State: next, Events: events}
	}
	events = append(events, ev)

	end := d.walkBack(s, next, i, reason, ev.Values["window_mean"])
	seg := Segment{
		StartIndex:      next.StartIndex,
		PeakIndex:       next.PeakIndex,
		PeakTemperature: next.PeakTemperature,
		EndIndex:        end,
		EndReason:       reason,
	}
	return d.close(seg, i, events)
}

// endAt tries the end rules at index i in priority order.
func (d *Detector) endAt(s Series, st ScanState, i int) (EndReason, TraceEvent, bool) {
	cfg := d.cfg
	core := s.Core[i]

	if w := cfg.NegativeDeltaWindow; s.Ambient != nil && w > 0 && i-w >= st.StartIndex && core < cfg.StillHotFloor {
		sustained := true
		for k := i - w; k <= i; k++ {
			if s.Core[k]-s.Ambient[k] >= cfg.NegativeDeltaThreshold {
				sustained = false
				break
			}
		}
		if sustained {
			return EndNegativeDelta, TraceEvent{Index: i, Rule: string(EndNegativeDelta), Values: map[string]float64{
				"core":  core,
				"delta": core - s.Ambient[i],
			}}, true
		}
	}

	if drop := st.PeakTemperature - core; drop > cfg.PeakDropThreshold {
		return EndPeakDrop, TraceEvent{Index: i, Rule: string(EndPeakDrop), Values: map[string]float64{
			"core": core,
			"drop": drop,
		}}, true
	}

	if w := cfg.PlateauWindow; w > 0 && i-w >= st.StartIndex {
		mean := numeric.WindowMean(s.smoothed, i-w, i+1)
		sd := numeric.WindowStdDev(s.smoothed, i-w, i+1)
		if sd < cfg.PlateauMaxStdDev && mean > cfg.RoomBandMin && mean < cfg.RoomBandMax {
			return EndRoomPlateau, TraceEvent{Index: i, Rule: string(EndRoomPlateau), Values: map[string]float64{
				"window_mean": mean,
				"window_std":  sd,
			}}, true
		}
	}

	if w := cfg.SensorSwitchWindow; s.CoreSensors != nil && w > 0 && i-w >= st.StartIndex &&
		core < cfg.SensorSwitchMaxTemp && d.unusual[s.CoreSensors[i]] {
		count := 0
		for k := i - w; k <= i; k++ {
			if d.unusual[s.CoreSensors[k]] {
				count++
			}
		}
		if count >= cfg.SensorSwitchMinCount {
			return EndSensorSwitch, TraceEvent{Index: i, Rule: string(EndSensorSwitch), Values: map[string]float64{
				"core":           core,
				"unusual_count":  float64(count),
				"window_samples": float64(w + 1),
			}}, true
		}
	}

	return "", TraceEvent{}, false
}

// walkBack moves a fired end rule at index j back to the removal moment:
// the last sample before a steep single-step drop or, for a room plateau,
// the last sample still well above the plateau mean. The walk never passes
// the peak; when nothing qualifies the end stays at j.
func (d *Detector) walkBack(s Series, st ScanState, j int, reason EndReason, plateauMean float64) int {
	from := st.PeakIndex
	if lim := d.cfg.WalkBackLimit; lim > 0 && j-lim > from {
		from = j - lim
	}

	var (
		idx int
		ok  bool
	)
	if reason == EndRoomPlateau {
		threshold := plateauMean + d.cfg.PlateauWalkMargin
		idx, ok = numeric.FindLastIndexWhere(func(k int) bool {
			return s.Core[k] > threshold
		}, from, j)
	} else {
		idx, ok = numeric.FindLastIndexWhere(func(k int) bool {
			return s.Core[k]-s.Core[k+1] > d.cfg.SteepDrop
		}, from, j-1)
	}
	if !ok {
		return j
	}
	return idx
}

// close validates a candidate and returns the detector to idle just past
// its end.
func (d *Detector) close(seg Segment, at int, events []TraceEvent) Transition {
	retained := true
	rule := RuleRetained
	switch {
	case seg.Len() < d.cfg.MinCurveDurationSamples:
		retained, rule = false, RuleDiscardedShort
	case seg.PeakTemperature < d.cfg.MinPeakTemperature:
		retained, rule = false, RuleDiscardedCool
	}
	events = append(events, TraceEvent{Index: at, Rule: rule, Values: map[string]float64{
		"start":   float64(seg.StartIndex),
		"end":     float64(seg.EndIndex),
		"peak":    seg.PeakTemperature,
		"samples": float64(seg.Len()),
	}})

	next := ScanState{
		Phase:      PhaseIdle,
		Cursor:     seg.EndIndex + 1,
		SearchFrom: seg.EndIndex + 1,
		Anchor:     seg.EndIndex + 1,
		Trough:     seg.EndIndex + 1,
	}
	return Transition{State: next, Closed: &seg, Retained: retained, Events: events}
}
