// Report listener subscribes to the analytics API and stores the reports it receives.
// Depends on the analytics API being online.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/config"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/engine"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/influxsink"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/logging"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/pathing"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/reportstream"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := pathing.EnsureDirs(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}
	cfg, err := config.LoadReportListenerConfig(pathing.GetConfigFile("report_listener.toml"))
	if err != nil {
		log.Fatalf("Failed to load report listener config: %v", err)
	}
	if err := logging.Setup(cfg.Log); err != nil {
		log.Fatalf("Invalid log config: %v", err)
	}

	// Set the host:port from env var ANALYTICS_API_HOST
	host := os.Getenv("ANALYTICS_API_HOST")
	if host == "" {
		host = cfg.AnalyticsAPIHost
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sink *influxsink.Sink
	if cfg.Influx.Enabled {
		sink, err = influxsink.New(ctx, cfg.Influx.Url, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket)
		if err != nil {
			log.Fatalf("Failed to connect to InfluxDB: %v", err)
		}
		defer sink.Close()
	}

	// Subscribe to websocket with revive
	err = reportstream.Listen(ctx, reportstream.StreamURL(host, cfg.TLSEnabled), func(report *engine.Report) {
		handleReport(ctx, sink, host, report)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Listener stopped: %v", err)
	}
}

// Handle a received report
func handleReport(ctx context.Context, sink *influxsink.Sink, source string, report *engine.Report) {
	logger := log.WithField("source", source)
	logger.WithField("samples", report.Samples).
		WithField("net_cost", report.NetCost).
		WithField("self_reliance", report.Reliance.SelfRelianceRate).
		Info("Report received")

	if sink == nil {
		return
	}
	if err := sink.WriteReport(ctx, source, report, time.Now()); err != nil {
		logger.WithError(err).Warn("Failed to store report")
	}
}
