package types

// ChannelReading is one power channel of a telemetry sample.
// Value is nil when the source did not report the channel.
type ChannelReading struct {
	Value     *float64 `json:"value,omitempty"`
	Unit      string   `json:"unit,omitempty"`
	Precision string   `json:"precision,omitempty"`
}

// Reading builds a ChannelReading with a present value.
func Reading(value float64, unit, precision string) ChannelReading {
	return ChannelReading{Value: &value, Unit: unit, Precision: precision}
}

// TelemetrySample is a single raw point from the monitoring endpoint.
// Timestamp may be in seconds or milliseconds.
type TelemetrySample struct {
	Timestamp int64          `json:"timestamp"`
	Grid      ChannelReading `json:"grid"`
	Battery   ChannelReading `json:"battery"`
	Solar     ChannelReading `json:"solar"`
	Load      ChannelReading `json:"load"`

	// Sample-wide fallbacks applied when a channel lacks its own
	DefaultPrecision string `json:"default_precision,omitempty"`
	DefaultUnit      string `json:"default_unit,omitempty"`
}

// GridSign states how the source signs grid power.
type GridSign uint8

const (
	// Import negative, export positive. Solis pSum convention.
	GridImportNegative GridSign = iota
	GridImportPositive
)
