package aggregator

import (
	"sort"
	"time"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/units"
)

const weekDays = 7

// roundToDayStart returns the Unix timestamp of the start of the day for the given time
func roundToDayStart(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix()
}

// roundToMonthStart returns the Unix timestamp of the start of the month for the given time
func roundToMonthStart(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).Unix()
}

// dateKey orders series entries by calendar day or month.
func dateKey(date string) (int64, bool) {
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return roundToDayStart(t), true
	}
	if t, err := time.Parse("2006-01", date); err == nil {
		return roundToMonthStart(t), true
	}
	return 0, false
}

// Summarize builds the day, week, month, year and lifetime summaries in that order.
func Summarize(in Input) []types.PeriodSummary {
	return []types.PeriodSummary{
		fromCounters(types.PeriodDay, in.Metered.Today, nil, 1, in),
		week(in),
		fromCounters(types.PeriodMonth, in.Metered.Month, in.Month, len(in.Month), in),
		fromCounters(types.PeriodYear, in.Metered.Year, in.Year, len(in.Year), in),
		fromCounters(types.PeriodLifetime, in.Metered.Lifetime, nil, 0, in),
	}
}

// RecentDays returns up to n entries, newest first.
func RecentDays(series []types.DailyEnergy, n int) []types.DailyEnergy {
	sorted := make([]types.DailyEnergy, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool {
		ki, oki := dateKey(sorted[i].Date)
		kj, okj := dateKey(sorted[j].Date)
		if oki && okj {
			return ki > kj
		}
		if oki != okj {
			return oki
		}
		return sorted[i].Date > sorted[j].Date
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Project extrapolates the month series into daily, weekly and monthly net cost.
func Project(month []types.DailyEnergy, rate, exportRate float64) types.Projection {
	p := types.Projection{Days: len(month)}
	if p.Days == 0 {
		return p
	}
	for _, d := range month {
		p.Monthly += d.Import*rate - d.Export*exportRate
	}
	p.DailyAverage = p.Monthly / float64(p.Days)
	p.Weekly = p.DailyAverage * weekDays
	return p
}

func week(in Input) types.PeriodSummary {
	recent := RecentDays(in.Month, weekDays)
	s := types.PeriodSummary{Period: types.PeriodWeek, Source: types.SourceNone, Days: len(recent)}
	if len(recent) == 0 {
		return s
	}
	s.Source = types.SourceSeries
	return priced(s, sumSeries(recent), in)
}

// fromCounters prefers each metered counter, filling absent ones from the series.
func fromCounters(period types.Period, c types.PeriodCounters, series []types.DailyEnergy, days int, in Input) types.PeriodSummary {
	s := types.PeriodSummary{Period: period, Source: types.SourceNone, Days: days}
	hasSeries := len(series) > 0
	switch {
	case c.Any():
		s.Source = types.SourceMetered
	case hasSeries:
		s.Source = types.SourceSeries
	default:
		s.Days = 0
		return s
	}

	fallback := sumSeries(series)
	t := totals{
		imp:       pick(c.Import, fallback.imp),
		exp:       pick(c.Export, fallback.exp),
		load:      pick(c.Load, fallback.load),
		prod:      pick(c.Production, fallback.prod),
		charge:    pick(c.BatteryCharge, fallback.charge),
		discharge: pick(c.BatteryDischarge, fallback.discharge),
	}
	return priced(s, t, in)
}

func priced(s types.PeriodSummary, t totals, in Input) types.PeriodSummary {
	s.Import = t.imp
	s.Export = t.exp
	s.Load = t.load
	s.Production = t.prod
	s.BatteryCharge = t.charge
	s.BatteryDischarge = t.discharge
	s.Cost = t.imp*in.AverageRate - t.exp*in.ExportRate
	return s
}

func sumSeries(series []types.DailyEnergy) totals {
	var t totals
	for _, d := range series {
		t.imp += d.Import
		t.exp += d.Export
		t.load += d.Load
		t.prod += d.Production
		t.charge += d.BatteryCharge
		t.discharge += d.BatteryDischarge
	}
	return t
}

func pick(v types.EnergyValue, fallback float64) float64 {
	if v.Present() {
		return units.EnergyKWh(v)
	}
	return fallback
}
