// Package allocator attributes metered daily energy to tariff groups using
// the shape of the intraday telemetry.
package allocator

import (
	"math"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/flow"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/tariff"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/units"
)

// Metered are the authoritative daily totals in kWh.
type Metered struct {
	Import float64
	Export float64
	Load   float64
}

// MeteredFromCounters converts today's counters into kWh.
func MeteredFromCounters(today types.PeriodCounters) Metered {
	return Metered{
		Import: units.EnergyKWh(today.Import),
		Export: units.EnergyKWh(today.Export),
		Load:   units.EnergyKWh(today.Load),
	}
}

// Allocate computes the TOU cost of a day.
// Telemetry only shapes the distribution; the metered totals set the scale.
func Allocate(points []flow.Point, metered Metered, groups []types.TariffGroup, exportRate float64) types.CostBreakdown {
	if len(points) == 0 || !tariff.HasRates(groups) {
		return types.CostBreakdown{}
	}

	groupImport := make([]float64, len(groups))
	groupLoad := make([]float64, len(groups))
	rawImport, rawLoad := 0.0, 0.0

	for _, p := range points {
		gi := 0.0
		if p.GridKW < 0 {
			gi = -p.GridKW * p.IntervalHours
		}
		ld := 0.0
		if p.LoadKW > 0 {
			ld = p.LoadKW * p.IntervalHours
		}
		rawImport += gi
		rawLoad += ld

		// Unmatched hours still count toward the raw totals
		if idx := tariff.MatchIndex(p.Hour, groups); idx >= 0 {
			groupImport[idx] += gi
			groupLoad[idx] += ld
		}
	}

	scaleImport := safeRatio(metered.Import, rawImport)
	scaleLoad := safeRatio(metered.Load, rawLoad)

	var out types.CostBreakdown
	for i, g := range groups {
		out.GridCost += groupImport[i] * scaleImport * g.Rate
		out.FullGridCost += groupLoad[i] * scaleLoad * g.Rate
	}
	out.ExportRevenue = metered.Export * exportRate
	return out
}

// Net is grid cost minus export revenue.
func Net(c types.CostBreakdown) float64 {
	return c.GridCost - c.ExportRevenue
}

// SelfReliance derives the self-sufficiency figures for today.
func SelfReliance(today types.PeriodCounters, yesterdayLoad types.EnergyValue, cost types.CostBreakdown) types.Reliance {
	r := types.Reliance{
		Produced:         units.EnergyKWh(today.Production),
		Exported:         units.EnergyKWh(today.Export),
		Imported:         units.EnergyKWh(today.Import),
		Consumed:         units.EnergyKWh(today.Load),
		BatteryDischarge: units.EnergyKWh(today.BatteryDischarge),
	}

	r.SelfSupplied = math.Min(r.Consumed, math.Max(0, r.Produced-r.Exported)+r.BatteryDischarge)
	r.GridToHome = math.Max(0, r.Consumed-r.SelfSupplied)
	r.ClampedExport = math.Min(r.Exported, r.Produced)
	if r.Produced > 0.01 {
		r.SelfConsumptionRate = (r.Produced - r.ClampedExport) / r.Produced * 100
	}
	if r.Consumed > 0.01 {
		r.SelfRelianceRate = r.SelfSupplied / r.Consumed * 100
	}
	r.ValueSaved = math.Max(0, cost.FullGridCost-cost.GridCost)

	if yesterdayLoad.Present() {
		r.YesterdayLoad = units.EnergyKWh(yesterdayLoad)
		if r.YesterdayLoad > 0 {
			r.LoadDelta = r.Consumed - r.YesterdayLoad
		}
	}
	return r
}

func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
