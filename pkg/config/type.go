package config

import "github.com/NotCoffee418/solar_tou_analytics/pkg/types"

type AnalyticsAPIConfig struct {
	ListenAddress  string `toml:"listen_address"`
	ListenPort     int    `toml:"listen_port"`
	RefreshSeconds int    `toml:"refresh_seconds"`
	// IANA zone used for hour-of-day, e.g. Europe/Amsterdam
	TimeZone string `toml:"time_zone"`
	// import_negative or import_positive
	GridSign       string `toml:"grid_sign"`
	SettingsDbPath string `toml:"settings_db_path"`

	Solis        SolisConfig        `toml:"solis"`
	Influx       InfluxConfig       `toml:"influx"`
	LiveInverter LiveInverterConfig `toml:"live_inverter"`
	Log          LogConfig          `toml:"log"`
}

type ReportListenerConfig struct {
	AnalyticsAPIHost string       `toml:"analytics_api_host"`
	TLSEnabled       bool         `toml:"tls_enabled"`
	Influx           InfluxConfig `toml:"influx"`
	Log              LogConfig    `toml:"log"`
}

type SolisConfig struct {
	ApiUrl     string `toml:"api_url"`
	ApiId      string `toml:"api_id"`
	ApiSecret  string `toml:"api_secret"`
	InverterId string `toml:"inverter_id"`
	InverterSn string `toml:"inverter_sn"`
	// Offset in hours sent with day queries
	TimeZoneOffset int `toml:"time_zone_offset"`
}

type InfluxConfig struct {
	Enabled bool   `toml:"enabled"`
	Url     string `toml:"url"`
	Token   string `toml:"token"`
	Org     string `toml:"org"`
	Bucket  string `toml:"bucket"`
}

type LiveInverterConfig struct {
	Ip         string `toml:"ip"`
	ModbusPort int    `toml:"modbus_port"`
	// Check with `nmcli device status`
	WlanConnectionId string `toml:"wlan_connection_id"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// TariffSettings is the current, migrated shape of the user tariff configuration.
type TariffSettings = types.TariffSettings

// RawTariffSettings accepts every persisted shape before migration.
type RawTariffSettings struct {
	Version      int                   `toml:"version" json:"version"`
	Currency     string                `toml:"currency" json:"currency"`
	ExportRate   float64               `toml:"export_rate" json:"export_rate"`
	OffPeak      types.OffPeakSettings `toml:"off_peak" json:"off_peak"`
	TariffGroups []RawTariffGroup      `toml:"tariff_groups" json:"tariff_groups"`
}

type RawTariffGroup struct {
	ID      string  `toml:"id" json:"id"`
	Name    string  `toml:"name" json:"name"`
	Rate    float64 `toml:"rate" json:"rate"`
	Color   string  `toml:"color" json:"color"`
	OffPeak *bool   `toml:"off_peak" json:"off_peak"`

	// Version 1 stored a single window per group
	StartHour *int `toml:"start_hour" json:"start_hour"`
	EndHour   *int `toml:"end_hour" json:"end_hour"`

	Slots []types.TimeSlot `toml:"slots" json:"slots"`
}
