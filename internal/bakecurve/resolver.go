package bakecurve

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ResolutionMethod records how logical roles were derived.
type ResolutionMethod string

const (
	MethodProbeAssigned ResolutionMethod = "probe_assigned"
	MethodDynamic       ResolutionMethod = "dynamic_classification"
	MethodNaiveMean     ResolutionMethod = "naive_mean"
)

// ChannelStats describes one raw channel over the whole series.
type ChannelStats struct {
	Channel string  `json:"channel"`
	Mean    float64 `json:"mean"`
	Max     float64 `json:"max"`
	Range   float64 `json:"range"`
	StdDev  float64 `json:"std_dev"`
}

// RoleUsage is the modal channel backing a role and how often it did.
type RoleUsage struct {
	Primary    string         `json:"primary"`
	Percentage float64        `json:"percentage"`
	Counts     map[string]int `json:"counts"`
}

// RoleAssignment is descriptive metadata about which channels back each
// role. Nothing downstream branches on it.
type RoleAssignment struct {
	Method   ResolutionMethod   `json:"method"`
	Channels map[Role][]string  `json:"channels,omitempty"`
	Usage    map[Role]RoleUsage `json:"usage,omitempty"`
	Stats    []ChannelStats     `json:"stats,omitempty"`
}

// Resolution holds the three logical series, one value per sample.
type Resolution struct {
	Core       []float64
	Surface    []float64
	Ambient    []float64
	Assignment RoleAssignment
	Degraded   bool
	Warnings   []string
}

// CoreSensors returns the per-sample core sensor ids, or nil unless every
// sample carries one.
func CoreSensors(samples []Sample) []string {
	if len(samples) == 0 {
		return nil
	}
	ids := make([]string, len(samples))
	for i, s := range samples {
		if s.CoreSensorID == "" {
			return nil
		}
		ids[i] = s.CoreSensorID
	}
	return ids
}

// ResolveRoles produces core, surface and ambient series for every sample.
// Probe-provided role temperatures are passed through when every sample has
// them; otherwise the raw channels are classified by their statistics.
func ResolveRoles(samples []Sample) (Resolution, error) {
	if len(samples) == 0 {
		return Resolution{Assignment: RoleAssignment{Method: MethodProbeAssigned}}, nil
	}
	if hasRoleTemperatures(samples) {
		return resolveProbeAssigned(samples), nil
	}
	return resolveFromChannels(samples)
}

func hasRoleTemperatures(samples []Sample) bool {
	for _, s := range samples {
		if s.CoreTemperature == nil || s.SurfaceTemperature == nil || s.AmbientTemperature == nil {
			return false
		}
	}
	return true
}

func resolveProbeAssigned(samples []Sample) Resolution {
	n := len(samples)
	res := Resolution{
		Core:    make([]float64, n),
		Surface: make([]float64, n),
		Ambient: make([]float64, n),
		Assignment: RoleAssignment{
			Method: MethodProbeAssigned,
			Usage:  make(map[Role]RoleUsage),
		},
	}
	for i, s := range samples {
		res.Core[i] = *s.CoreTemperature
		res.Surface[i] = *s.SurfaceTemperature
		res.Ambient[i] = *s.AmbientTemperature
	}

	ids := map[Role]func(Sample) string{
		RoleCore:    func(s Sample) string { return s.CoreSensorID },
		RoleSurface: func(s Sample) string { return s.SurfaceSensorID },
		RoleAmbient: func(s Sample) string { return s.AmbientSensorID },
	}
	for role, id := range ids {
		if usage, ok := modalUsage(samples, id); ok {
			res.Assignment.Usage[role] = usage
		}
	}
	return res
}

// modalUsage counts sensor ids for a role. Ties resolve to the
// lexicographically smallest id so the result is stable.
func modalUsage(samples []Sample, id func(Sample) string) (RoleUsage, bool) {
	counts := make(map[string]int)
	for _, s := range samples {
		v := id(s)
		if v == "" {
			return RoleUsage{}, false
		}
		counts[v]++
	}
	var primary string
	best := 0
	for v, c := range counts {
		if c > best || (c == best && v < primary) {
			primary, best = v, c
		}
	}
	return RoleUsage{
		Primary:    primary,
		Percentage: float64(best) / float64(len(samples)) * 100,
		Counts:     counts,
	}, true
}

func resolveFromChannels(samples []Sample) (Resolution, error) {
	n := len(samples[0].Channels)
	for i, s := range samples {
		if len(s.Channels) != n {
			return Resolution{}, fmt.Errorf("%w: sample %d has %d channels, expected %d", ErrInvalidSamples, i, len(s.Channels), n)
		}
	}
	if n == 0 {
		return Resolution{}, ErrMissingTemperature
	}

	columns := make([][]float64, n)
	for c := range columns {
		columns[c] = make([]float64, len(samples))
		for i, s := range samples {
			columns[c][i] = s.Channels[c]
		}
	}

	if n < 3 {
		return resolveNaive(samples, columns), nil
	}

	stats := make([]ChannelStats, n)
	for c, col := range columns {
		stats[c] = channelStats(c, col)
	}

	order := make([]int, n)
	for c := range order {
		order[c] = c
	}
	sort.SliceStable(order, func(a, b int) bool { return stats[order[a]].Max < stats[order[b]].Max })

	core := order[:2]
	ambient := order[n-2:]
	var surface []int
	if n-2 > 2 {
		surface = order[2 : n-2]
	}
	if len(surface) < 2 {
		hi := 4
		if hi > n {
			hi = n
		}
		surface = order[2:hi]
	}

	res := Resolution{
		Core:    rowMeans(samples, core),
		Surface: rowMeans(samples, surface),
		Ambient: rowMeans(samples, ambient),
		Assignment: RoleAssignment{
			Method: MethodDynamic,
			Channels: map[Role][]string{
				RoleCore:    channelNames(core),
				RoleSurface: channelNames(surface),
				RoleAmbient: channelNames(ambient),
			},
			Stats: stats,
		},
	}
	return res, nil
}

// resolveNaive splits fewer than three channels by plain averaging: core and
// surface take the mean of all channels, ambient the hottest reading.
func resolveNaive(samples []Sample, columns [][]float64) Resolution {
	all := make([]int, len(columns))
	for c := range all {
		all[c] = c
	}
	core := rowMeans(samples, all)
	surface := make([]float64, len(core))
	copy(surface, core)
	ambient := make([]float64, len(samples))
	for i, s := range samples {
		ambient[i] = floats.Max(s.Channels)
	}
	names := channelNames(all)
	return Resolution{
		Core:    core,
		Surface: surface,
		Ambient: ambient,
		Assignment: RoleAssignment{
			Method: MethodNaiveMean,
			Channels: map[Role][]string{
				RoleCore:    names,
				RoleSurface: names,
				RoleAmbient: names,
			},
		},
		Degraded: true,
		Warnings: []string{fmt.Sprintf("only %d channel(s) available, roles derived by naive averaging", len(columns))},
	}
}

func channelStats(c int, col []float64) ChannelStats {
	hi := floats.Max(col)
	sd := 0.0
	if len(col) > 1 {
		sd = stat.StdDev(col, nil)
	}
	return ChannelStats{
		Channel: channelName(c),
		Mean:    stat.Mean(col, nil),
		Max:     hi,
		Range:   hi - floats.Min(col),
		StdDev:  sd,
	}
}

func rowMeans(samples []Sample, idx []int) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		sum := 0.0
		for _, c := range idx {
			sum += s.Channels[c]
		}
		out[i] = sum / float64(len(idx))
	}
	return out
}

func channelName(c int) string {
	return fmt.Sprintf("T%d", c+1)
}

func channelNames(idx []int) []string {
	names := make([]string, len(idx))
	for i, c := range idx {
		names[i] = channelName(c)
	}
	return names
}
