// Package flow turns raw telemetry into normalized, time-weighted points
// shared by the cost allocator and the load-shift classifier.
package flow

import (
	"sort"
	"time"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/resample"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/units"
)

const chartBucketMs = 5 * 60 * 1000

// Prepare resamples the samples and normalizes each channel.
func Prepare(samples []types.TelemetrySample, opts Options) []Point {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	resampled := resample.Resample(samples)
	points := make([]Point, 0, len(resampled))
	for _, s := range resampled {
		grid := units.ChannelPower(s.Grid, s.TelemetrySample)
		if opts.GridSign == types.GridImportPositive {
			grid = -grid
		}
		points = append(points, Point{
			TimestampMs:   s.TimestampMs,
			Hour:          time.UnixMilli(s.TimestampMs).In(loc).Hour(),
			IntervalHours: s.IntervalHours,
			GridKW:        grid,
			BatteryKW:     units.ChannelPower(s.Battery, s.TelemetrySample),
			SolarKW:       units.ChannelPower(s.Solar, s.TelemetrySample),
			LoadKW:        units.ChannelPower(s.Load, s.TelemetrySample),
		})
	}
	return points
}

// Chart groups points into 5 minute buckets of mean power.
func Chart(points []Point) []types.ChartBucket {
	buckets := make(map[int64]*types.ChartBucket)
	for _, p := range points {
		key := floorBucket(p.TimestampMs)
		b, ok := buckets[key]
		if !ok {
			b = &types.ChartBucket{Timestamp: key}
			buckets[key] = b
		}
		b.GridKW += p.GridKW
		b.BatteryKW += p.BatteryKW
		b.SolarKW += p.SolarKW
		b.LoadKW += p.LoadKW
		b.Samples++
	}

	out := make([]types.ChartBucket, 0, len(buckets))
	for _, b := range buckets {
		n := float64(b.Samples)
		b.GridKW /= n
		b.BatteryKW /= n
		b.SolarKW /= n
		b.LoadKW /= n
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

func floorBucket(ms int64) int64 {
	k := ms / chartBucketMs
	if ms < 0 && ms%chartBucketMs != 0 {
		k--
	}
	return k * chartBucketMs
}
