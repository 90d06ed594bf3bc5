package solis

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/flow"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntries(t *testing.T, raw string) []Entry {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var out []Entry
	require.NoError(t, dec.Decode(&out))
	return out
}

func TestDecodeDayFieldPriority(t *testing.T) {
	entries := decodeEntries(t, `[
		{"dataTimestamp": "1705320000000", "pSum": 0, "pSumStr": "kW", "psumCal": -1200, "psumCalStr": "W",
		 "pac": 2.5, "pacStr": "kW", "pacPec": "",
		 "batteryPower": "-0.8", "batteryPowerStr": "kW",
		 "familyLoadPower": 1800, "familyLoadPowerStr": "W"},
		{"dataTimestamp": 1705320300, "psum": 0, "psumStr": "kW", "pSumCal": 0,
		 "psumPec": "0.001", "pac": 1500, "pacPec": "0.001"},
		{"pac": 1}
	]`)
	samples := DecodeDay(entries, DefaultFieldMap())
	require.Len(t, samples, 2)

	first := samples[0]
	assert.Equal(t, int64(1705320000000), first.Timestamp)
	require.NotNil(t, first.Grid.Value)
	assert.InDelta(t, -1200, *first.Grid.Value, 1e-9)
	assert.Equal(t, "W", first.Grid.Unit)
	assert.InDelta(t, -1.2, units.ChannelPower(first.Grid, first), 1e-9)
	assert.InDelta(t, -0.8, units.ChannelPower(first.Battery, first), 1e-9)
	assert.InDelta(t, 1.8, units.ChannelPower(first.Load, first), 1e-9)
	assert.InDelta(t, 2.5, units.ChannelPower(first.Solar, first), 1e-9)

	// All candidates zero: first present wins and keeps its unit
	second := samples[1]
	require.NotNil(t, second.Grid.Value)
	assert.Zero(t, *second.Grid.Value)
	assert.Equal(t, "kW", second.Grid.Unit)
	assert.Equal(t, "0.001", second.Grid.Precision)
	assert.Equal(t, "0.001", second.DefaultPrecision)
	assert.InDelta(t, 1.5, units.ChannelPower(second.Solar, second), 1e-9)
	// Missing load channel
	assert.Nil(t, second.Load.Value)
}

func TestDecodeDayFeedsPrepare(t *testing.T) {
	entries := decodeEntries(t, `[
		{"dataTimestamp": "1705320300000", "pSum": -2, "pSumStr": "kW"},
		{"dataTimestamp": "1705320000000", "pSum": -2, "pSumStr": "kW"}
	]`)
	points := flow.Prepare(DecodeDay(entries, DefaultFieldMap()), flow.Options{})
	require.Len(t, points, 2)
	assert.Less(t, points[0].TimestampMs, points[1].TimestampMs)
	assert.InDelta(t, 5.0/60, points[1].IntervalHours, 1e-12)
}

func TestDecodeMetered(t *testing.T) {
	entries := decodeEntries(t, `[{
		"eToday": 18.4, "eTodayStr": "kWh",
		"eTotal": 12.3, "eTotalStr": "MWh",
		"gridPurchasedTodayEnergy": 3.2, "gridPurchasedTodayEnergyStr": "kWh",
		"gridSellTodayEnergy": 4100, "gridSellTodayEnergyStr": "Wh",
		"homeLoadTodayEnergy": "15.1", "homeLoadTodayEnergyStr": "kWh",
		"batteryTodayDischargeEnergy": 2.2,
		"gridPurchasedMonthEnergy": 80,
		"homeLoadYesterdayEnergy": 14, "homeLoadYesterdayEnergyStr": "kWh"
	}]`)
	m := DecodeMetered(entries[0])

	assert.InDelta(t, 18.4, units.EnergyKWh(m.Today.Production), 1e-9)
	assert.InDelta(t, 3.2, units.EnergyKWh(m.Today.Import), 1e-9)
	assert.InDelta(t, 4.1, units.EnergyKWh(m.Today.Export), 1e-9)
	assert.InDelta(t, 15.1, units.EnergyKWh(m.Today.Load), 1e-9)
	assert.InDelta(t, 2.2, units.EnergyKWh(m.Today.BatteryDischarge), 1e-9)
	assert.False(t, m.Today.BatteryCharge.Present())
	assert.InDelta(t, 12300, units.EnergyKWh(m.Lifetime.Production), 1e-9)
	assert.InDelta(t, 80, units.EnergyKWh(m.Month.Import), 1e-9)
	assert.False(t, m.Year.Any())
	assert.InDelta(t, 14, units.EnergyKWh(m.YesterdayLoad), 1e-9)
}

func TestDecodeSeries(t *testing.T) {
	entries := decodeEntries(t, `[
		{"dateStr": "2024-01-14", "energy": 21.5, "energyStr": "kWh", "gridPurchasedEnergy": 3,
		 "gridSellEnergy": 9.5, "homeLoadEnergy": 14, "batteryChargeEnergy": 5, "batteryDischargeEnergy": 4.5},
		{"dateStr": "2024-01", "energy": 0.6, "energyStr": "MWh"}
	]`)
	series := DecodeSeries(entries)
	require.Len(t, series, 2)
	assert.Equal(t, types.DailyEnergy{
		Date: "2024-01-14", Production: 21.5, Import: 3, Export: 9.5, Load: 14,
		BatteryCharge: 5, BatteryDischarge: 4.5,
	}, series[0])
	assert.InDelta(t, 600, series[1].Production, 1e-9)
}
