package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/config"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/engine"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/logging"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/solis"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func newApp() *cli.App {
	return &cli.App{
		Name:    "toucli",
		Usage:   "Offline solar TOU cost analysis",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"TOUCLI_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			return logging.Setup(config.LogConfig{Level: c.String("log-level")})
		},
		Commands: []*cli.Command{
			analyzeCommand(),
			migrateCommand(),
			defaultsCommand(),
		},
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Analyze saved SolisCloud responses and print the report as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "day",
				Usage:    "inverterDay data (JSON array)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "detail",
				Usage:    "inverterDetail data (JSON object)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "month",
				Usage: "inverterMonth data (JSON array)",
			},
			&cli.StringFlag{
				Name:  "year",
				Usage: "inverterYear data (JSON array)",
			},
			&cli.StringFlag{
				Name:    "tariffs",
				Aliases: []string{"t"},
				Usage:   "Tariff settings TOML, defaults are used when omitted",
			},
			&cli.StringFlag{
				Name:  "tz",
				Value: "UTC",
				Usage: "Time zone for hour of day",
			},
			&cli.StringFlag{
				Name:  "grid-sign",
				Value: "import_negative",
				Usage: "Grid power convention of the data (import_negative, import_positive)",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Indent the JSON output",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	// Parse the same way the API config does
	appCfg := &config.AnalyticsAPIConfig{TimeZone: c.String("tz"), GridSign: c.String("grid-sign")}
	loc, err := appCfg.Location()
	if err != nil {
		return err
	}
	sign, err := appCfg.GridSignConvention()
	if err != nil {
		return err
	}

	settings := config.DefaultTariffSettings()
	if path := c.String("tariffs"); path != "" {
		if settings, err = config.LoadTariffFile(path); err != nil {
			return fmt.Errorf("load tariffs: %w", err)
		}
	}

	var day, month, year []solis.Entry
	var detail solis.Entry
	if err := readEntries(c.String("day"), &day); err != nil {
		return err
	}
	if err := readEntries(c.String("detail"), &detail); err != nil {
		return err
	}
	if path := c.String("month"); path != "" {
		if err := readEntries(path, &month); err != nil {
			return err
		}
	}
	if path := c.String("year"); path != "" {
		if err := readEntries(path, &year); err != nil {
			return err
		}
	}

	samples := solis.DecodeDay(day, solis.DefaultFieldMap())
	log.WithField("samples", len(samples)).Debug("Decoded day entries")

	report := engine.Analyze(engine.Input{
		Samples:  samples,
		Metered:  solis.DecodeMetered(detail),
		Month:    solis.DecodeSeries(month),
		Year:     solis.DecodeSeries(year),
		Settings: settings,
		GridSign: sign,
		Location: loc,
	})

	enc := json.NewEncoder(c.App.Writer)
	if c.Bool("pretty") {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}

// readEntries decodes a saved response. Both the bare data and the full
// envelope are accepted.
func readEntries(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
		if json.Unmarshal(trimmed, &env) == nil && len(env.Data) > 0 {
			raw = env.Data
		}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate-tariffs",
		Usage: "Rewrite a tariff TOML of any version at the current version",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "in",
				Usage:    "Tariff file to migrate",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Destination, the input is overwritten when omitted",
			},
		},
		Action: func(c *cli.Context) error {
			settings, err := config.LoadTariffFile(c.String("in"))
			if err != nil {
				return err
			}
			if err := config.ValidateTariffSettings(settings); err != nil {
				return err
			}
			out := c.String("out")
			if out == "" {
				out = c.String("in")
			}
			if err := config.WriteTariffFile(out, settings); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Wrote version %d tariffs to %s\n", settings.Version, out)
			return nil
		},
	}
}

func defaultsCommand() *cli.Command {
	return &cli.Command{
		Name:  "defaults",
		Usage: "Print the default tariff settings as TOML",
		Action: func(c *cli.Context) error {
			return toml.NewEncoder(c.App.Writer).Encode(config.DefaultTariffSettings())
		},
	}
}
