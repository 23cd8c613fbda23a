package main

import (
	"bakecurve-service/internal/bakecurve"
	"bakecurve-service/internal/platform/config"
)

// detectorConfigFromEnv overrides cfg with any DETECT_* variables that are set.
func detectorConfigFromEnv(cfg bakecurve.DetectorConfig) bakecurve.DetectorConfig {
	cfg.RiseThreshold = config.GetEnvFloat("DETECT_RISE_THRESHOLD", cfg.RiseThreshold)
	cfg.BaselineWindow = config.GetEnvInt("DETECT_BASELINE_WINDOW", cfg.BaselineWindow)
	cfg.RoomCeiling = config.GetEnvFloat("DETECT_ROOM_CEILING", cfg.RoomCeiling)
	cfg.BaselineMargin = config.GetEnvFloat("DETECT_BASELINE_MARGIN", cfg.BaselineMargin)
	cfg.BaselineMaxAge = config.GetEnvInt("DETECT_BASELINE_MAX_AGE", cfg.BaselineMaxAge)
	cfg.NotInserted = config.GetEnv("DETECT_NOT_INSERTED_STATE", cfg.NotInserted)

	cfg.EndSearchFloor = config.GetEnvFloat("DETECT_END_SEARCH_FLOOR", cfg.EndSearchFloor)
	cfg.NegativeDeltaWindow = config.GetEnvInt("DETECT_NEGATIVE_DELTA_WINDOW", cfg.NegativeDeltaWindow)
	cfg.NegativeDeltaThreshold = config.GetEnvFloat("DETECT_NEGATIVE_DELTA_THRESHOLD", cfg.NegativeDeltaThreshold)
	cfg.StillHotFloor = config.GetEnvFloat("DETECT_STILL_HOT_FLOOR", cfg.StillHotFloor)
	cfg.PeakDropThreshold = config.GetEnvFloat("DETECT_PEAK_DROP", cfg.PeakDropThreshold)
	cfg.PlateauWindow = config.GetEnvInt("DETECT_PLATEAU_WINDOW", cfg.PlateauWindow)
	cfg.PlateauMaxStdDev = config.GetEnvFloat("DETECT_PLATEAU_MAX_STDDEV", cfg.PlateauMaxStdDev)
	cfg.RoomBandMin = config.GetEnvFloat("DETECT_ROOM_BAND_MIN", cfg.RoomBandMin)
	cfg.RoomBandMax = config.GetEnvFloat("DETECT_ROOM_BAND_MAX", cfg.RoomBandMax)
	cfg.PlateauWalkMargin = config.GetEnvFloat("DETECT_PLATEAU_WALK_MARGIN", cfg.PlateauWalkMargin)
	cfg.SensorSwitchWindow = config.GetEnvInt("DETECT_SENSOR_SWITCH_WINDOW", cfg.SensorSwitchWindow)
	cfg.SensorSwitchMinCount = config.GetEnvInt("DETECT_SENSOR_SWITCH_MIN_COUNT", cfg.SensorSwitchMinCount)
	cfg.SensorSwitchMaxTemp = config.GetEnvFloat("DETECT_SENSOR_SWITCH_MAX_TEMP", cfg.SensorSwitchMaxTemp)
	cfg.UnusualCoreSensors = config.GetEnvList("DETECT_UNUSUAL_CORE_SENSORS", cfg.UnusualCoreSensors)
	cfg.SteepDrop = config.GetEnvFloat("DETECT_STEEP_DROP", cfg.SteepDrop)
	cfg.WalkBackLimit = config.GetEnvInt("DETECT_WALK_BACK_LIMIT", cfg.WalkBackLimit)
	cfg.SmoothingWindow = config.GetEnvInt("DETECT_SMOOTHING_WINDOW", cfg.SmoothingWindow)

	cfg.MinCurveDurationSamples = config.GetEnvInt("DETECT_MIN_DURATION_SAMPLES", cfg.MinCurveDurationSamples)
	cfg.MinPeakTemperature = config.GetEnvFloat("DETECT_MIN_PEAK_TEMP", cfg.MinPeakTemperature)
	return cfg
}
