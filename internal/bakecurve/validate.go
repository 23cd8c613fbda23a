package bakecurve

import (
	"errors"
	"fmt"
)

// Plausible physical range for any probe reading, in °C.
const (
	MinPlausibleTemperature = -50.0
	MaxPlausibleTemperature = 300.0
)

var (
	// ErrInvalidSamples is returned when a sample series fails validation
	// (non-monotonic time, implausible temperature, ragged channel counts).
	ErrInvalidSamples = errors.New("invalid samples")

	// ErrMissingTemperature is returned when samples carry neither role-labeled
	// temperatures nor raw channels to derive them from.
	ErrMissingTemperature = errors.New("missing temperature data")
)

// MaxChannels is the number of thermistors on the probe.
const MaxChannels = 8

// Validate checks a sample series before it reaches role resolution and
// detection. Empty and single-sample series are valid.
func Validate(samples []Sample) error {
	if len(samples) == 0 {
		return nil
	}
	channels := len(samples[0].Channels)
	if channels > MaxChannels {
		return fmt.Errorf("%w: %d channels exceeds %d", ErrInvalidSamples, channels, MaxChannels)
	}
	for i, s := range samples {
		if i > 0 && s.Timestamp <= samples[i-1].Timestamp {
			return fmt.Errorf("%w: timestamp at index %d (%.3f) does not increase", ErrInvalidSamples, i, s.Timestamp)
		}
		if len(s.Channels) != channels {
			return fmt.Errorf("%w: sample %d has %d channels, expected %d", ErrInvalidSamples, i, len(s.Channels), channels)
		}
		for c, v := range s.Channels {
			if !plausible(v) {
				return fmt.Errorf("%w: channel T%d at index %d reads %.1f°C", ErrInvalidSamples, c+1, i, v)
			}
		}
		for _, v := range []*float64{s.CoreTemperature, s.SurfaceTemperature, s.AmbientTemperature} {
			if v != nil && !plausible(*v) {
				return fmt.Errorf("%w: role temperature at index %d reads %.1f°C", ErrInvalidSamples, i, *v)
			}
		}
	}
	return nil
}

func plausible(v float64) bool {
	return v >= MinPlausibleTemperature && v <= MaxPlausibleTemperature
}
