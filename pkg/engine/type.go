package engine

import (
	"time"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
)

// Input is everything one analysis run needs. It is treated as an immutable snapshot.
type Input struct {
	Samples  []types.TelemetrySample `json:"samples"`
	Metered  types.MeteredTotals     `json:"metered"`
	Month    []types.DailyEnergy     `json:"month"`
	Year     []types.DailyEnergy     `json:"year"`
	Settings types.TariffSettings    `json:"settings"`
	GridSign types.GridSign          `json:"grid_sign"`

	// Hours of day are evaluated here; nil means UTC
	Location *time.Location `json:"-"`
}

type Report struct {
	Currency      types.Currency          `json:"currency"`
	Cost          types.CostBreakdown     `json:"cost"`
	NetCost       float64                 `json:"net_cost"`
	Reliance      types.Reliance          `json:"reliance"`
	LoadShift     types.LoadShiftAnalysis `json:"load_shift"`
	EffectiveRate float64                 `json:"effective_rate"`
	Periods       []types.PeriodSummary   `json:"periods"`
	Projection    types.Projection        `json:"projection"`
	Chart         []types.ChartBucket     `json:"chart"`
	Samples       int                     `json:"samples"`
}
