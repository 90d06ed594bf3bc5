// Package resample orders raw telemetry and assigns each point the
// duration it represents.
package resample

import (
	"sort"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
)

const (
	// Timestamps below this are seconds
	secondsThreshold = 1_000_000_000_000
	msPerHour        = 3_600_000

	// Native 5 minute cadence
	DefaultIntervalHours = 5.0 / 60.0
)

type Sample struct {
	types.TelemetrySample
	TimestampMs   int64
	IntervalHours float64
}

// NormalizeTimestamp returns the timestamp in milliseconds.
func NormalizeTimestamp(ts int64) int64 {
	if ts < secondsThreshold {
		return ts * 1000
	}
	return ts
}

// Resample sorts samples by time and derives per-sample intervals.
// The first sample, and any gap outside (0, 1) hour, gets the default interval.
func Resample(samples []types.TelemetrySample) []Sample {
	out := make([]Sample, len(samples))
	for i, s := range samples {
		out[i] = Sample{TelemetrySample: s, TimestampMs: NormalizeTimestamp(s.Timestamp)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampMs < out[j].TimestampMs
	})

	for i := range out {
		out[i].IntervalHours = DefaultIntervalHours
		if i == 0 {
			continue
		}
		dt := float64(out[i].TimestampMs-out[i-1].TimestampMs) / msPerHour
		if dt > 0 && dt < 1 {
			out[i].IntervalHours = dt
		}
	}
	return out
}
