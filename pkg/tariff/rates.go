package tariff

import "github.com/NotCoffee418/solar_tou_analytics/pkg/types"

// Below this much imported energy the day's cost is not a usable rate.
const minImportForEffectiveRate = 0.1

type RateStats struct {
	Min     float64
	Max     float64
	Average float64
	Count   int
}

// PositiveRates summarizes the groups with a rate above zero.
func PositiveRates(groups []types.TariffGroup) RateStats {
	var stats RateStats
	sum := 0.0
	for _, g := range groups {
		if g.Rate <= 0 {
			continue
		}
		if stats.Count == 0 || g.Rate < stats.Min {
			stats.Min = g.Rate
		}
		if g.Rate > stats.Max {
			stats.Max = g.Rate
		}
		sum += g.Rate
		stats.Count++
	}
	if stats.Count > 0 {
		stats.Average = sum / float64(stats.Count)
	}
	return stats
}

// HasRates reports whether any group carries a positive rate.
func HasRates(groups []types.TariffGroup) bool {
	return PositiveRates(groups).Count > 0
}

// HourWeightedRate averages positive rates weighted by the hours each group covers.
func HourWeightedRate(groups []types.TariffGroup) float64 {
	weighted, hours := 0.0, 0
	for _, g := range groups {
		if g.Rate <= 0 {
			continue
		}
		h := GroupHours(g)
		weighted += g.Rate * float64(h)
		hours += h
	}
	if hours == 0 {
		return 0
	}
	return weighted / float64(hours)
}

// EffectiveRate is today's cost per imported kWh, or the hour weighted
// tariff rate when too little was imported.
func EffectiveRate(todayGridCost, todayImport float64, groups []types.TariffGroup) float64 {
	if todayImport > minImportForEffectiveRate {
		return todayGridCost / todayImport
	}
	return HourWeightedRate(groups)
}
