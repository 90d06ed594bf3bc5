// Package units converts raw telemetry values into kW and kWh.
package units

import (
	"math"
	"strconv"
	"strings"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
)

// ParsePrecision returns the multiplier of a precision-scale code.
// Only codes in (0, 1] are usable.
func ParsePrecision(code string) (float64, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, false
	}
	m, err := strconv.ParseFloat(code, 64)
	if err != nil || math.IsNaN(m) || m <= 0 || m > 1 {
		return 0, false
	}
	return m, true
}

// ToPower normalizes a power value into kW.
// A usable precision code wins over the unit label.
func ToPower(value *float64, unit, precision string) float64 {
	if value == nil {
		return 0
	}
	if m, ok := ParsePrecision(precision); ok {
		return *value * m
	}
	return powerFromUnit(*value, unit)
}

// ToEnergy normalizes an energy value into kWh.
func ToEnergy(value *float64, unit string) float64 {
	if value == nil {
		return 0
	}
	// Labels match by prefix, so "MWh/day" is still MWh
	label := strings.Join(strings.Fields(strings.ToLower(unit)), "")
	switch {
	case strings.HasPrefix(label, "mwh"):
		return *value * 1000
	case strings.HasPrefix(label, "gwh"):
		return *value * 1e6
	case strings.HasPrefix(label, "wh") && !strings.HasPrefix(label, "whi"):
		return *value / 1000
	default:
		return *value
	}
}

// EnergyKWh is ToEnergy for a metered counter.
func EnergyKWh(e types.EnergyValue) float64 {
	return ToEnergy(e.Value, e.Unit)
}

// ChannelPower resolves one channel of a sample into kW.
// Fallback order: channel precision, sample precision, channel unit, sample unit.
func ChannelPower(ch types.ChannelReading, sample types.TelemetrySample) float64 {
	if ch.Value == nil {
		return 0
	}
	if _, ok := ParsePrecision(ch.Precision); ok {
		return ToPower(ch.Value, "", ch.Precision)
	}
	if _, ok := ParsePrecision(sample.DefaultPrecision); ok {
		return ToPower(ch.Value, "", sample.DefaultPrecision)
	}
	unit := ch.Unit
	if strings.TrimSpace(unit) == "" {
		unit = sample.DefaultUnit
	}
	return ToPower(ch.Value, unit, "")
}

// RawFromPower converts kW back into the raw value for a precision code.
// Unusable codes leave the value in kW.
func RawFromPower(kw float64, precision string) float64 {
	if m, ok := ParsePrecision(precision); ok {
		return kw / m
	}
	return kw
}

// No negative values
func KwToW(kw float64) uint32 {
	if kw < 0 {
		return 0
	}
	return uint32(math.Round(kw * 1000))
}

func WToKw(w uint32) float64 {
	return float64(w) / 1000
}

func powerFromUnit(v float64, unit string) float64 {
	switch normalizeLabel(unit) {
	case "w", "watt", "watts":
		return v / 1000
	case "mw":
		return v * 1000
	case "gw":
		return v * 1e6
	default:
		return v
	}
}

func normalizeLabel(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}
