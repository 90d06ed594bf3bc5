package aggregator

import (
	"fmt"
	"testing"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthSeries(days int) []types.DailyEnergy {
	out := make([]types.DailyEnergy, 0, days)
	for d := 1; d <= days; d++ {
		out = append(out, types.DailyEnergy{
			Date:   fmt.Sprintf("2024-03-%02d", d),
			Import: float64(d),
			Export: 1,
			Load:   10,
		})
	}
	return out
}

func byPeriod(summaries []types.PeriodSummary) map[types.Period]types.PeriodSummary {
	out := make(map[types.Period]types.PeriodSummary)
	for _, s := range summaries {
		out[s.Period] = s
	}
	return out
}

func TestSummarizeOrderAndSources(t *testing.T) {
	in := Input{
		Metered: types.MeteredTotals{
			Today: types.PeriodCounters{
				Import: types.Energy(4, "kWh"),
				Export: types.Energy(2000, "Wh"),
			},
			Lifetime: types.PeriodCounters{Import: types.Energy(1.5, "MWh")},
		},
		Month:       monthSeries(10),
		AverageRate: 0.3,
		ExportRate:  0.1,
	}
	got := Summarize(in)
	require.Len(t, got, 5)
	assert.Equal(t, types.PeriodDay, got[0].Period)
	assert.Equal(t, types.PeriodWeek, got[1].Period)
	assert.Equal(t, types.PeriodMonth, got[2].Period)
	assert.Equal(t, types.PeriodYear, got[3].Period)
	assert.Equal(t, types.PeriodLifetime, got[4].Period)

	p := byPeriod(got)

	day := p[types.PeriodDay]
	assert.Equal(t, types.SourceMetered, day.Source)
	assert.InDelta(t, 4.0, day.Import, 1e-9)
	assert.InDelta(t, 2.0, day.Export, 1e-9)
	assert.InDelta(t, 4*0.3-2*0.1, day.Cost, 1e-9)

	// Most recent 7 days are 4..10
	wk := p[types.PeriodWeek]
	assert.Equal(t, types.SourceSeries, wk.Source)
	assert.Equal(t, 7, wk.Days)
	assert.InDelta(t, 49.0, wk.Import, 1e-9)
	assert.InDelta(t, 7.0, wk.Export, 1e-9)
	assert.InDelta(t, 49*0.3-7*0.1, wk.Cost, 1e-9)

	month := p[types.PeriodMonth]
	assert.Equal(t, types.SourceSeries, month.Source)
	assert.Equal(t, 10, month.Days)
	assert.InDelta(t, 55.0, month.Import, 1e-9)
	assert.InDelta(t, 100.0, month.Load, 1e-9)

	year := p[types.PeriodYear]
	assert.Equal(t, types.SourceNone, year.Source)
	assert.Zero(t, year.Import)
	assert.Zero(t, year.Cost)

	life := p[types.PeriodLifetime]
	assert.Equal(t, types.SourceMetered, life.Source)
	assert.InDelta(t, 1500.0, life.Import, 1e-9)
}

func TestSummarizeMeteredCountersWinOverSeries(t *testing.T) {
	in := Input{
		Metered: types.MeteredTotals{
			Month: types.PeriodCounters{Import: types.Energy(12, "kWh")},
		},
		Month:       monthSeries(3),
		AverageRate: 1,
	}
	month := byPeriod(Summarize(in))[types.PeriodMonth]
	assert.Equal(t, types.SourceMetered, month.Source)
	assert.InDelta(t, 12.0, month.Import, 1e-9)
	// Absent counters fall back to the series
	assert.InDelta(t, 3.0, month.Export, 1e-9)
	assert.InDelta(t, 30.0, month.Load, 1e-9)
}

func TestRecentDaysSortsDescending(t *testing.T) {
	series := []types.DailyEnergy{
		{Date: "2024-03-02"},
		{Date: "garbage"},
		{Date: "2024-03-10"},
		{Date: "2024-02-28"},
	}
	got := RecentDays(series, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "2024-03-10", got[0].Date)
	assert.Equal(t, "2024-03-02", got[1].Date)
	assert.Equal(t, "2024-02-28", got[2].Date)

	// Input order is preserved
	assert.Equal(t, "2024-03-02", series[0].Date)
}

func TestProject(t *testing.T) {
	p := Project(monthSeries(4), 0.5, 0.1)
	// Imports 1..4 = 10 kWh, exports 4 kWh
	assert.Equal(t, 4, p.Days)
	assert.InDelta(t, 10*0.5-4*0.1, p.Monthly, 1e-9)
	assert.InDelta(t, p.Monthly/4, p.DailyAverage, 1e-9)
	assert.InDelta(t, p.DailyAverage*7, p.Weekly, 1e-9)

	assert.Equal(t, types.Projection{}, Project(nil, 1, 1))
}

func TestCostNonNegativeWithoutExport(t *testing.T) {
	in := Input{Month: monthSeries(5), AverageRate: 0.2}
	for i := range in.Month {
		in.Month[i].Export = 0
	}
	for _, s := range Summarize(in) {
		assert.GreaterOrEqual(t, s.Cost, 0.0, s.Period)
	}
}
