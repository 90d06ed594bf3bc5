package engine

import (
	"sync"
	"testing"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-15 12:00:00 UTC
const noon = int64(1705320000)

func flatSettings(rate float64) types.TariffSettings {
	return types.TariffSettings{
		Version:    2,
		Currency:   "GBP",
		ExportRate: 0.05,
		OffPeak:    types.OffPeakSettings{StartHour: 0, EndHour: 6},
		TariffGroups: []types.TariffGroup{
			{ID: "flat", Name: "Flat", Rate: rate, Slots: []types.TimeSlot{{StartHour: 0, EndHour: 24}}},
		},
	}
}

func scenarioInput() Input {
	return Input{
		Samples: []types.TelemetrySample{
			{Timestamp: noon, Grid: types.Reading(-2, "kW", "")},
			{Timestamp: noon + 300, Grid: types.Reading(-2, "kW", "")},
		},
		Metered: types.MeteredTotals{
			Today: types.PeriodCounters{Import: types.Energy(0.1667, "kWh")},
		},
		Settings: flatSettings(0.3),
	}
}

func TestAnalyzeSingleGroupScenario(t *testing.T) {
	r := Analyze(scenarioInput())

	assert.InDelta(t, 0.1667*0.3, r.Cost.GridCost, 1e-9)
	assert.Zero(t, r.Cost.ExportRevenue)
	assert.Equal(t, "GBP", r.Currency.Code)
	assert.Equal(t, 2, r.Samples)
	// 12:00 and 12:05 fall in separate 5 minute buckets
	require.Len(t, r.Chart, 2)
	assert.Equal(t, noon*1000, r.Chart[0].Timestamp)
	assert.Equal(t, (noon+300)*1000, r.Chart[1].Timestamp)
	for _, b := range r.Chart {
		assert.InDelta(t, -2.0, b.GridKW, 1e-9)
		assert.Equal(t, 1, b.Samples)
	}

	// Metered import clears the threshold, so the rate is cost over import
	assert.InDelta(t, 0.3, r.EffectiveRate, 1e-9)
	require.Len(t, r.Periods, 5)
	assert.Equal(t, types.PeriodDay, r.Periods[0].Period)
	assert.InDelta(t, 0.1667*0.3, r.Periods[0].Cost, 1e-9)

	// Raw telemetry basis for the load-shift breakdown
	require.Len(t, r.LoadShift.TariffBreakdown, 1)
	assert.InDelta(t, 2*2*(5.0/60)*0.3, r.LoadShift.TotalGridCost, 1e-9)
}

func TestAnalyzeZeroMeteredImport(t *testing.T) {
	in := scenarioInput()
	in.Metered.Today.Import = types.Energy(0, "kWh")
	r := Analyze(in)
	assert.Zero(t, r.Cost.GridCost)
}

func TestAnalyzeEmpty(t *testing.T) {
	r := Analyze(Input{})
	assert.Equal(t, types.CostBreakdown{}, r.Cost)
	assert.Zero(t, r.LoadShift.OffPeakPoints+r.LoadShift.PeakPoints)
	assert.Empty(t, r.Chart)
	assert.Equal(t, "EUR", r.Currency.Code)
	assert.Len(t, r.Periods, 5)
}

func TestAnalyzeNonNegativeCosts(t *testing.T) {
	in := scenarioInput()
	in.Samples = append(in.Samples,
		types.TelemetrySample{Timestamp: noon + 600, Grid: types.Reading(3, "kW", ""), Load: types.Reading(1, "kW", "")},
		types.TelemetrySample{Timestamp: noon + 900, Battery: types.Reading(-1, "kW", ""), Load: types.Reading(2, "kW", "")},
	)
	in.Metered.Today.Export = types.Energy(1, "kWh")
	in.Metered.Today.Load = types.Energy(4, "kWh")
	r := Analyze(in)
	for _, v := range []float64{r.Cost.GridCost, r.Cost.ExportRevenue, r.Cost.FullGridCost, r.LoadShift.TotalGridCost, r.LoadShift.GridExportRevenue, r.LoadShift.ShiftedSavings} {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestEngineMemoizes(t *testing.T) {
	e := New()
	first := e.Analyze(scenarioInput())
	second := e.Analyze(scenarioInput())
	assert.Same(t, first, second)
	assert.Equal(t, 1, e.Computations())

	changed := scenarioInput()
	changed.Settings.ExportRate = 0.2
	third := e.Analyze(changed)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, e.Computations())
}

func TestEngineConcurrentUse(t *testing.T) {
	e := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := e.Analyze(scenarioInput())
			assert.InDelta(t, 0.1667*0.3, r.Cost.GridCost, 1e-9)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, e.Computations())
}
