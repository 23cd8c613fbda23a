package main

import (
	"reflect"
	"testing"

	"bakecurve-service/internal/bakecurve"
)

func TestDetectorConfigFromEnv(t *testing.T) {
	t.Run("defaults_unchanged", func(t *testing.T) {
		def := bakecurve.DefaultDetectorConfig()
		if got := detectorConfigFromEnv(def); !reflect.DeepEqual(got, def) {
			t.Errorf("expected defaults without env, got %+v", got)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("DETECT_MIN_PEAK_TEMP", "85.5")
		t.Setenv("DETECT_MIN_DURATION_SAMPLES", "120")
		t.Setenv("DETECT_UNUSUAL_CORE_SENSORS", "T7,T8")
		t.Setenv("DETECT_PEAK_DROP", "not-a-number")

		got := detectorConfigFromEnv(bakecurve.DefaultDetectorConfig())
		if got.MinPeakTemperature != 85.5 {
			t.Errorf("MinPeakTemperature = %v, want 85.5", got.MinPeakTemperature)
		}
		if got.MinCurveDurationSamples != 120 {
			t.Errorf("MinCurveDurationSamples = %d, want 120", got.MinCurveDurationSamples)
		}
		if !reflect.DeepEqual(got.UnusualCoreSensors, []string{"T7", "T8"}) {
			t.Errorf("UnusualCoreSensors = %v", got.UnusualCoreSensors)
		}
		if got.PeakDropThreshold != 20 {
			t.Errorf("invalid PeakDropThreshold should keep default 20, got %v", got.PeakDropThreshold)
		}
	})
}
