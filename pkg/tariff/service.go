// Package tariff matches hours of the day to tariff groups and derives
// rate statistics from a tariff table.
package tariff

import "github.com/NotCoffee418/solar_tou_analytics/pkg/types"

// SlotContains reports whether the hour falls in the slot.
// A slot with start > end wraps midnight. start == end covers nothing.
func SlotContains(slot types.TimeSlot, hour int) bool {
	return inRange(slot.StartHour, slot.EndHour, hour)
}

// InWindow applies the slot rule to the off-peak window.
func InWindow(hour int, w types.OffPeakSettings) bool {
	return inRange(w.StartHour, w.EndHour, hour)
}

// MatchGroup returns the first group, in list order, with a slot covering the hour.
func MatchGroup(hour int, groups []types.TariffGroup) *types.TariffGroup {
	for i := range groups {
		for _, slot := range groups[i].Slots {
			if SlotContains(slot, hour) {
				return &groups[i]
			}
		}
	}
	return nil
}

// MatchIndex is MatchGroup returning the index, or -1.
func MatchIndex(hour int, groups []types.TariffGroup) int {
	for i := range groups {
		for _, slot := range groups[i].Slots {
			if SlotContains(slot, hour) {
				return i
			}
		}
	}
	return -1
}

// RateFor returns the rate for the hour, 0 when unmatched.
func RateFor(hour int, groups []types.TariffGroup) float64 {
	if g := MatchGroup(hour, groups); g != nil {
		return g.Rate
	}
	return 0
}

// SlotHours is the number of hours a slot covers.
func SlotHours(slot types.TimeSlot) int {
	if slot.StartHour > slot.EndHour {
		return 24 - slot.StartHour + slot.EndHour
	}
	return slot.EndHour - slot.StartHour
}

func GroupHours(g types.TariffGroup) int {
	total := 0
	for _, slot := range g.Slots {
		total += SlotHours(slot)
	}
	return total
}

func inRange(start, end, hour int) bool {
	if start > end {
		return hour >= start || hour < end
	}
	return hour >= start && hour < end
}
