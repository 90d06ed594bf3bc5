package aggregator

import "github.com/NotCoffee418/solar_tou_analytics/pkg/types"

type Input struct {
	Metered types.MeteredTotals
	// Per-day entries of the current month
	Month []types.DailyEnergy
	// Per-month entries of the current year
	Year []types.DailyEnergy

	AverageRate float64
	ExportRate  float64
}

// totals is one period's energy in kWh before costing.
type totals struct {
	imp, exp, load, prod, charge, discharge float64
}
