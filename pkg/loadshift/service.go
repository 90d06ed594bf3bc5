// Package loadshift classifies telemetry into off-peak and peak flows and
// measures how much peak demand the battery and solar covered.
package loadshift

import (
	"math"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/flow"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/tariff"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
)

const (
	// Flows at or below this are sensor noise
	deadBandKW = 0.01
	// Groups below this in both import and consumption are left out of the breakdown
	minBreakdownKWh = 0.001
)

type groupAccum struct {
	gridImport  float64
	consumption float64
	cost        float64
}

// Classify runs the off-peak/peak classification over prepared points.
func Classify(points []flow.Point, window types.OffPeakSettings, groups []types.TariffGroup, exportRate float64) types.LoadShiftAnalysis {
	var a types.LoadShiftAnalysis
	accum := make([]groupAccum, len(groups))

	for _, p := range points {
		imported := activeEnergy(-p.GridKW, p.IntervalHours)
		exported := activeEnergy(p.GridKW, p.IntervalHours)
		consumed := activeEnergy(p.LoadKW, p.IntervalHours)

		a.GridExport += exported
		a.TotalGridImport += imported
		a.TotalConsumption += consumed

		if idx := tariff.MatchIndex(p.Hour, groups); idx >= 0 {
			accum[idx].gridImport += imported
			accum[idx].consumption += consumed
			accum[idx].cost += imported * groups[idx].Rate
		}

		if tariff.InWindow(p.Hour, window) {
			a.OffPeakPoints++
			a.OffPeakGridImport += imported
			a.OffPeakBatteryCharge += activeEnergy(p.BatteryKW, p.IntervalHours)
			a.OffPeakConsumption += consumed
			continue
		}
		a.PeakPoints++
		a.PeakGridImport += imported
		a.PeakBatteryDischarge += activeEnergy(-p.BatteryKW, p.IntervalHours)
		a.PeakSolarDirect += activeEnergy(p.SolarKW, p.IntervalHours)
		a.PeakConsumption += consumed
	}

	a.LoadShiftedEnergy = math.Min(a.OffPeakBatteryCharge, a.PeakBatteryDischarge)
	if a.PeakConsumption > 0 {
		a.LoadShiftEfficiency = math.Min(100, (a.PeakBatteryDischarge+a.PeakSolarDirect)/a.PeakConsumption*100)
	}
	a.PeakGridAvoided = math.Min(a.PeakConsumption, a.PeakBatteryDischarge+a.PeakSolarDirect)

	a.TariffBreakdown = make([]types.TariffBreakdown, 0, len(groups))
	for i, g := range groups {
		acc := accum[i]
		if acc.gridImport <= minBreakdownKWh && acc.consumption <= minBreakdownKWh {
			continue
		}
		a.TariffBreakdown = append(a.TariffBreakdown, types.TariffBreakdown{
			GroupID:     g.ID,
			Name:        g.Name,
			Color:       g.Color,
			Rate:        g.Rate,
			GridImport:  acc.gridImport,
			Consumption: acc.consumption,
			Cost:        acc.cost,
		})
		a.TotalGridCost += acc.cost
	}

	rates := tariff.PositiveRates(groups)
	a.HasRates = rates.Count > 0
	if a.HasRates {
		a.ShiftedSavings = a.LoadShiftedEnergy * (rates.Max - rates.Min)
	}
	a.GridExportRevenue = a.GridExport * exportRate
	a.NetCost = a.TotalGridCost - a.GridExportRevenue
	a.CostWithoutSolar = a.TotalConsumption * rates.Average
	return a
}

// activeEnergy integrates a flow only when it clears the dead-band in the positive direction.
func activeEnergy(kw, hours float64) float64 {
	if kw <= deadBandKW {
		return 0
	}
	return kw * hours
}
