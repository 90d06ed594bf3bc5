package config

import (
	"fmt"
	"os"
	"time"
	// Zone database for minimal images
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/pathing"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
)

const (
	DefaultRefreshSeconds = 300
	MinRefreshSeconds     = 10
)

var (
	ErrUnknownGridSign = fmt.Errorf("unknown grid sign convention")
	ErrUnknownTimeZone = fmt.Errorf("unknown time zone")
)

func DefaultAnalyticsAPIConfig() *AnalyticsAPIConfig {
	return &AnalyticsAPIConfig{
		ListenAddress:  "0.0.0.0",
		ListenPort:     9040,
		RefreshSeconds: DefaultRefreshSeconds,
		TimeZone:       "UTC",
		GridSign:       "import_negative",
		SettingsDbPath: pathing.GetSettingsDbPath(),
		Solis: SolisConfig{
			ApiUrl: "https://www.soliscloud.com:13333",
		},
		Influx: InfluxConfig{
			Url:    "http://localhost:8086",
			Org:    "home",
			Bucket: "solar",
		},
		LiveInverter: LiveInverterConfig{
			ModbusPort:       502,
			WlanConnectionId: "preconfigured",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

func DefaultReportListenerConfig() *ReportListenerConfig {
	return &ReportListenerConfig{
		AnalyticsAPIHost: "localhost:9040",
		TLSEnabled:       false,
		Influx: InfluxConfig{
			Url:    "http://localhost:8086",
			Org:    "home",
			Bucket: "solar",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// LoadAnalyticsAPIConfig reads the config, writing the defaults first if the file is missing.
func LoadAnalyticsAPIConfig(configPath string) (*AnalyticsAPIConfig, error) {
	cfg := DefaultAnalyticsAPIConfig()
	if err := loadOrCreate(configPath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadReportListenerConfig(configPath string) (*ReportListenerConfig, error) {
	cfg := DefaultReportListenerConfig()
	if err := loadOrCreate(configPath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Refresh returns the polling interval, never below the minimum.
func (c *AnalyticsAPIConfig) Refresh() time.Duration {
	seconds := c.RefreshSeconds
	if seconds == 0 {
		seconds = DefaultRefreshSeconds
	}
	if seconds < MinRefreshSeconds {
		seconds = MinRefreshSeconds
	}
	return time.Duration(seconds) * time.Second
}

func (c *AnalyticsAPIConfig) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTimeZone, c.TimeZone)
	}
	return loc, nil
}

func (c *AnalyticsAPIConfig) GridSignConvention() (types.GridSign, error) {
	switch c.GridSign {
	case "", "import_negative":
		return types.GridImportNegative, nil
	case "import_positive":
		return types.GridImportPositive, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownGridSign, c.GridSign)
	}
}

// IsLiveInverterConfigured reports whether the optional Modbus reader is set up.
func (c *AnalyticsAPIConfig) IsLiveInverterConfigured() bool {
	return c.LiveInverter.Ip != "" &&
		c.LiveInverter.ModbusPort != 0 &&
		c.LiveInverter.WlanConnectionId != ""
}

func loadOrCreate(configPath string, cfg any) error {
	// Create default if not exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfgFile, err := os.Create(configPath)
		if err != nil {
			return err
		}
		defer cfgFile.Close()
		return toml.NewEncoder(cfgFile).Encode(cfg)
	}

	// Load existing config over the defaults
	_, err := toml.DecodeFile(configPath, cfg)
	return err
}
