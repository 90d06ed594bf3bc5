package types

// CostBreakdown is the metered-rescaled TOU cost of a day.
type CostBreakdown struct {
	GridCost      float64 `json:"grid_cost"`
	ExportRevenue float64 `json:"export_revenue"`
	// Cost of the whole load had it all been bought from the grid
	FullGridCost float64 `json:"full_grid_cost"`
}

type Reliance struct {
	Produced            float64 `json:"produced"`
	Exported            float64 `json:"exported"`
	Imported            float64 `json:"imported"`
	Consumed            float64 `json:"consumed"`
	BatteryDischarge    float64 `json:"battery_discharge"`
	SelfSupplied        float64 `json:"self_supplied"`
	GridToHome          float64 `json:"grid_to_home"`
	ClampedExport       float64 `json:"clamped_export"`
	SelfConsumptionRate float64 `json:"self_consumption_rate"`
	SelfRelianceRate    float64 `json:"self_reliance_rate"`
	ValueSaved          float64 `json:"value_saved"`
	YesterdayLoad       float64 `json:"yesterday_load"`
	LoadDelta           float64 `json:"load_delta"`
}

type TariffBreakdown struct {
	GroupID     string  `json:"group_id"`
	Name        string  `json:"name"`
	Color       string  `json:"color,omitempty"`
	Rate        float64 `json:"rate"`
	GridImport  float64 `json:"grid_import"`
	Consumption float64 `json:"consumption"`
	Cost        float64 `json:"cost"`
}

type LoadShiftAnalysis struct {
	OffPeakGridImport    float64 `json:"off_peak_grid_import"`
	OffPeakBatteryCharge float64 `json:"off_peak_battery_charge"`
	OffPeakConsumption   float64 `json:"off_peak_consumption"`
	OffPeakPoints        int     `json:"off_peak_points"`

	PeakGridImport       float64 `json:"peak_grid_import"`
	PeakBatteryDischarge float64 `json:"peak_battery_discharge"`
	PeakSolarDirect      float64 `json:"peak_solar_direct"`
	PeakConsumption      float64 `json:"peak_consumption"`
	PeakPoints           int     `json:"peak_points"`

	LoadShiftedEnergy   float64 `json:"load_shifted_energy"`
	LoadShiftEfficiency float64 `json:"load_shift_efficiency"`
	PeakGridAvoided     float64 `json:"peak_grid_avoided"`
	ShiftedSavings      float64 `json:"shifted_savings"`

	TariffBreakdown   []TariffBreakdown `json:"tariff_breakdown"`
	TotalGridCost     float64           `json:"total_grid_cost"`
	TotalGridImport   float64           `json:"total_grid_import"`
	TotalConsumption  float64           `json:"total_consumption"`
	GridExport        float64           `json:"grid_export"`
	GridExportRevenue float64           `json:"grid_export_revenue"`
	NetCost           float64           `json:"net_cost"`
	CostWithoutSolar  float64           `json:"cost_without_solar"`

	HasRates bool `json:"has_rates"`
}

type Period string

const (
	PeriodDay      Period = "day"
	PeriodWeek     Period = "week"
	PeriodMonth    Period = "month"
	PeriodYear     Period = "year"
	PeriodLifetime Period = "lifetime"
)

// Where a period summary's numbers came from.
const (
	SourceMetered = "metered"
	SourceSeries  = "series"
	SourceNone    = "none"
)

type PeriodSummary struct {
	Period           Period  `json:"period"`
	Source           string  `json:"source"`
	Days             int     `json:"days"`
	Import           float64 `json:"import"`
	Export           float64 `json:"export"`
	Load             float64 `json:"load"`
	Production       float64 `json:"production"`
	BatteryCharge    float64 `json:"battery_charge"`
	BatteryDischarge float64 `json:"battery_discharge"`
	Cost             float64 `json:"cost"`
}

type Projection struct {
	Days         int     `json:"days"`
	DailyAverage float64 `json:"daily_average"`
	Weekly       float64 `json:"weekly"`
	Monthly      float64 `json:"monthly"`
}

// ChartBucket is a 5 minute mean of the normalized channels.
type ChartBucket struct {
	Timestamp int64   `json:"timestamp"`
	GridKW    float64 `json:"grid_kw"`
	BatteryKW float64 `json:"battery_kw"`
	SolarKW   float64 `json:"solar_kw"`
	LoadKW    float64 `json:"load_kw"`
	Samples   int     `json:"samples"`
}
