package solis

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/units"
)

// Number returns a numeric field. Numeric strings are accepted.
func (e Entry) Number(key string) (float64, bool) {
	switch v := e[key].(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// Text returns a field as text. Numbers are formatted as sent.
func (e Entry) Text(key string) string {
	switch v := e[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func (e Entry) firstString(keys []string) string {
	for _, k := range keys {
		if s := e.Text(k); s != "" {
			return s
		}
	}
	return ""
}

// channel applies the candidate priority of one channel.
func (e Entry) channel(f ChannelFields) types.ChannelReading {
	reading := types.ChannelReading{Precision: e.firstString(f.Precision)}
	var fallback *FieldPair
	for i := range f.Candidates {
		c := &f.Candidates[i]
		v, ok := e.Number(c.Value)
		if !ok {
			continue
		}
		if v != 0 {
			reading.Value = &v
			reading.Unit = e.Text(c.Unit)
			return reading
		}
		if fallback == nil {
			fallback = c
		}
	}
	if fallback != nil {
		v, _ := e.Number(fallback.Value)
		reading.Value = &v
		reading.Unit = e.Text(fallback.Unit)
	}
	return reading
}

// DecodeDay maps inverterDay entries to telemetry samples. Entries
// without a usable timestamp are dropped.
func DecodeDay(entries []Entry, fm FieldMap) []types.TelemetrySample {
	out := make([]types.TelemetrySample, 0, len(entries))
	for _, e := range entries {
		ts, ok := timestamp(e, fm.Timestamp)
		if !ok {
			continue
		}
		out = append(out, types.TelemetrySample{
			Timestamp:        ts,
			Grid:             e.channel(fm.Grid),
			Battery:          e.channel(fm.Battery),
			Solar:            e.channel(fm.Solar),
			Load:             e.channel(fm.Load),
			DefaultPrecision: e.firstString(fm.DefaultPrecision),
			DefaultUnit:      e.firstString(fm.DefaultUnit),
		})
	}
	return out
}

func timestamp(e Entry, keys []string) (int64, bool) {
	for _, k := range keys {
		if v, ok := e.Number(k); ok && v > 0 {
			return int64(v), true
		}
	}
	return 0, false
}

// energy reads a counter and its "<key>Str" unit.
func (e Entry) energy(key string) types.EnergyValue {
	v, ok := e.Number(key)
	if !ok {
		return types.EnergyValue{}
	}
	return types.Energy(v, e.Text(key+"Str"))
}

// DecodeMetered extracts the cumulative counters from an inverterDetail object.
func DecodeMetered(detail Entry) types.MeteredTotals {
	period := func(production, scope string) types.PeriodCounters {
		return types.PeriodCounters{
			Import:           detail.energy("gridPurchased" + scope + "Energy"),
			Export:           detail.energy("gridSell" + scope + "Energy"),
			Load:             detail.energy("homeLoad" + scope + "Energy"),
			Production:       detail.energy(production),
			BatteryCharge:    detail.energy("battery" + scope + "ChargeEnergy"),
			BatteryDischarge: detail.energy("battery" + scope + "DischargeEnergy"),
		}
	}
	return types.MeteredTotals{
		Today:         period("eToday", "Today"),
		Month:         period("eMonth", "Month"),
		Year:          period("eYear", "Year"),
		Lifetime:      period("eTotal", "Total"),
		YesterdayLoad: detail.energy("homeLoadYesterdayEnergy"),
	}
}

// DecodeSeries maps inverterMonth or inverterYear entries to daily energy in kWh.
func DecodeSeries(entries []Entry) []types.DailyEnergy {
	out := make([]types.DailyEnergy, 0, len(entries))
	for _, e := range entries {
		production := e.energy("energy")
		out = append(out, types.DailyEnergy{
			Date:             e.Text("dateStr"),
			Production:       units.EnergyKWh(production),
			Import:           e.plain("gridPurchasedEnergy"),
			Export:           e.plain("gridSellEnergy"),
			Load:             e.plain("homeLoadEnergy"),
			BatteryCharge:    e.plain("batteryChargeEnergy"),
			BatteryDischarge: e.plain("batteryDischargeEnergy"),
		})
	}
	return out
}

func (e Entry) plain(key string) float64 {
	v, _ := e.Number(key)
	return v
}
