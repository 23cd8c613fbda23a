// Package scurve reads baking landmarks and zone timings off one curve's
// core temperature trace.
package scurve

import (
	"fmt"

	"bakecurve-service/internal/numeric"
)

// Benchmark is a landmark temperature and the share of total bake time by
// which it should be reached.
type Benchmark struct {
	Key         string
	Name        string
	Temperature float64
	TargetMin   float64 // percent of bake
	TargetMax   float64
}

// Benchmarks are the landmarks checked on every curve, coolest first.
var Benchmarks = []Benchmark{
	{Key: "yeast_kill", Name: "Yeast Kill", Temperature: 56, TargetMin: 45, TargetMax: 55},
	{Key: "starch_complete", Name: "Starch Gelatinization Complete", Temperature: 82, TargetMin: 55, TargetMax: 65},
	{Key: "arrival_temperature", Name: "Arrival Temperature", Temperature: 93, TargetMin: 80, TargetMax: 90},
}

// Zone boundaries in °C.
const (
	OvenSpringMax     = 56.0
	CriticalChangeMax = 93.0
)

// Bake-out share of the bake, in percent, outside of which a curve is
// flagged.
const (
	BakeOutMinPct = 10.0
	BakeOutMaxPct = 20.0
)

// Issue severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
)

// Landmark is where a curve first reached a benchmark temperature.
type Landmark struct {
	Key          string  `json:"key"`
	Name         string  `json:"name"`
	Temperature  float64 `json:"temperature"`
	Reached      bool    `json:"reached"`
	Index        int     `json:"index"`
	TimeMinutes  float64 `json:"time_minutes"`
	TimePercent  float64 `json:"time_percent"`
	TargetMinPct float64 `json:"target_min_percent"`
	TargetMaxPct float64 `json:"target_max_percent"`
	WithinTarget bool    `json:"within_target"`
}

// Zone is the time a curve spent in one temperature band.
type Zone struct {
	Key             string  `json:"key"`
	Name            string  `json:"name"`
	MinTemperature  float64 `json:"min_temperature"`
	MaxTemperature  float64 `json:"max_temperature"`
	Samples         int     `json:"samples"`
	DurationMinutes float64 `json:"duration_minutes"`
	PercentOfBake   float64 `json:"percent_of_bake"`
}

// Issue is a timing problem read off the landmarks and zones.
type Issue struct {
	Key            string `json:"key"`
	Severity       string `json:"severity"`
	Impact         string `json:"impact"`
	Cause          string `json:"cause"`
	Recommendation string `json:"recommendation"`
}

// Report is the landmark and zone breakdown of one curve.
type Report struct {
	TotalMinutes float64    `json:"total_minutes"`
	Landmarks    []Landmark `json:"landmarks"`
	Zones        []Zone     `json:"zones"`
	Issues       []Issue    `json:"issues"`
}

// Analyze builds a Report from a curve's rebased time axis (minutes) and
// core temperatures. Total bake time is the sample count times the sample
// period, so a landmark on the last sample reads slightly under 100 %.
func Analyze(minutes, core []float64, samplePeriod float64) Report {
	total := float64(len(core)) * samplePeriod / 60
	rep := Report{
		TotalMinutes: total,
		Landmarks:    make([]Landmark, 0, len(Benchmarks)),
		Zones:        zones(core, samplePeriod),
	}

	for _, b := range Benchmarks {
		lm := Landmark{
			Key:          b.Key,
			Name:         b.Name,
			Temperature:  b.Temperature,
			Index:        -1,
			TargetMinPct: b.TargetMin,
			TargetMaxPct: b.TargetMax,
		}
		if idx, ok := numeric.FindCrossing(core, b.Temperature); ok && idx < len(minutes) {
			lm.Reached = true
			lm.Index = idx
			lm.TimeMinutes = minutes[idx]
			if total > 0 {
				lm.TimePercent = minutes[idx] / total * 100
			}
			lm.WithinTarget = lm.TimePercent >= b.TargetMin && lm.TimePercent <= b.TargetMax
		}
		rep.Landmarks = append(rep.Landmarks, lm)
	}
	rep.Issues = diagnose(rep, len(core))
	return rep
}

// diagnose flags yeast kill outside its band, bake-out outside 10-20 % and
// starch gelatinization outside its band. Unreached landmarks are not
// flagged on their own.
func diagnose(rep Report, samples int) []Issue {
	issues := []Issue{}
	if samples == 0 {
		return issues
	}
	byKey := make(map[string]Landmark, len(rep.Landmarks))
	for _, lm := range rep.Landmarks {
		byKey[lm.Key] = lm
	}

	if yk, ok := byKey["yeast_kill"]; ok && yk.Reached {
		cause := fmt.Sprintf("yeast kill at %.1f%% (target %.0f-%.0f%%)", yk.TimePercent, yk.TargetMinPct, yk.TargetMaxPct)
		switch {
		case yk.TimePercent < yk.TargetMinPct:
			issues = append(issues, Issue{
				Key:            "early_yeast_kill",
				Severity:       SeverityHigh,
				Impact:         "poor oven spring, low loaf volume",
				Cause:          cause,
				Recommendation: "reduce initial oven temperature or slow the heating rate",
			})
		case yk.TimePercent > yk.TargetMaxPct:
			issues = append(issues, Issue{
				Key:            "late_yeast_kill",
				Severity:       SeverityMedium,
				Impact:         "risk of blow-outs and white smiles on buns",
				Cause:          cause,
				Recommendation: "increase initial oven temperature",
			})
		}
	}

	bakeOut := rep.Zones[len(rep.Zones)-1].PercentOfBake
	switch {
	case bakeOut > BakeOutMaxPct:
		issues = append(issues, Issue{
			Key:            "excessive_bake_out",
			Severity:       SeverityHigh,
			Impact:         "dry, crumbly texture and rapid staling",
			Cause:          fmt.Sprintf("bake-out at %.1f%% (>%.0f%%)", bakeOut, BakeOutMaxPct),
			Recommendation: "reduce bake time or lower temperature in the final zones",
		})
	case bakeOut < BakeOutMinPct:
		issues = append(issues, Issue{
			Key:            "insufficient_bake_out",
			Severity:       SeverityHigh,
			Impact:         "gummy texture, poor shelf life and mold risk",
			Cause:          fmt.Sprintf("bake-out at %.1f%% (<%.0f%%)", bakeOut, BakeOutMinPct),
			Recommendation: "increase bake time by 3-5% or raise the final zone temperature",
		})
	}

	if sc, ok := byKey["starch_complete"]; ok && sc.Reached && !sc.WithinTarget {
		issues = append(issues, Issue{
			Key:            "starch_gelatinization_timing",
			Severity:       SeverityMedium,
			Impact:         "weak crumb structure",
			Cause:          fmt.Sprintf("completion at %.1f%% (target %.0f-%.0f%%)", sc.TimePercent, sc.TargetMinPct, sc.TargetMaxPct),
			Recommendation: "adjust middle zone temperatures",
		})
	}
	return issues
}

func zones(core []float64, samplePeriod float64) []Zone {
	out := []Zone{
		{Key: "oven_spring", Name: "Oven Spring Zone", MaxTemperature: OvenSpringMax},
		{Key: "critical_change", Name: "Critical Change Zone", MinTemperature: OvenSpringMax, MaxTemperature: CriticalChangeMax},
		{Key: "bake_out", Name: "Bake-Out Zone", MinTemperature: CriticalChangeMax},
	}
	for _, t := range core {
		switch {
		case t < OvenSpringMax:
			out[0].Samples++
		case t < CriticalChangeMax:
			out[1].Samples++
		default:
			out[2].Samples++
		}
	}
	for i := range out {
		out[i].DurationMinutes = float64(out[i].Samples) * samplePeriod / 60
		if len(core) > 0 {
			out[i].PercentOfBake = float64(out[i].Samples) / float64(len(core)) * 100
		}
	}
	return out
}
