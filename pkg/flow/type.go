package flow

import (
	"time"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
)

// Point is a resampled sample with every channel in kW.
// GridKW is always import negative, export positive.
type Point struct {
	TimestampMs   int64
	Hour          int
	IntervalHours float64
	GridKW        float64
	BatteryKW     float64
	SolarKW       float64
	LoadKW        float64
}

type Options struct {
	// Hours of day are taken in this zone. nil means UTC.
	Location *time.Location
	GridSign types.GridSign
}
