package types

// EnergyValue is a metered counter. Value is nil when not reported.
type EnergyValue struct {
	Value *float64 `json:"value,omitempty"`
	Unit  string   `json:"unit,omitempty"`
}

func Energy(value float64, unit string) EnergyValue {
	return EnergyValue{Value: &value, Unit: unit}
}

// Present reports whether the counter carries a value.
func (e EnergyValue) Present() bool {
	return e.Value != nil
}

// PeriodCounters are the metered totals for a single period.
type PeriodCounters struct {
	Import           EnergyValue `json:"import"`
	Export           EnergyValue `json:"export"`
	Load             EnergyValue `json:"load"`
	Production       EnergyValue `json:"production"`
	BatteryCharge    EnergyValue `json:"battery_charge"`
	BatteryDischarge EnergyValue `json:"battery_discharge"`
}

// Any reports whether at least one counter is present.
func (p PeriodCounters) Any() bool {
	return p.Import.Present() || p.Export.Present() || p.Load.Present() ||
		p.Production.Present() || p.BatteryCharge.Present() || p.BatteryDischarge.Present()
}

type MeteredTotals struct {
	Today         PeriodCounters `json:"today"`
	Month         PeriodCounters `json:"month"`
	Year          PeriodCounters `json:"year"`
	Lifetime      PeriodCounters `json:"lifetime"`
	YesterdayLoad EnergyValue    `json:"yesterday_load"`
}

// DailyEnergy is one entry of a month (per day) or year (per month) series, in kWh.
type DailyEnergy struct {
	Date             string  `json:"date"`
	Production       float64 `json:"production"`
	Import           float64 `json:"import"`
	Export           float64 `json:"export"`
	Load             float64 `json:"load"`
	BatteryCharge    float64 `json:"battery_charge"`
	BatteryDischarge float64 `json:"battery_discharge"`
}
