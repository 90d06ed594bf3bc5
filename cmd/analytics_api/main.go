// Analytics API polls SolisCloud, runs the TOU analysis and broadcasts the reports.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/config"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/engine"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/influxsink"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/livepower"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/logging"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/pathing"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/reportstream"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/settingsdb"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/solis"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := pathing.EnsureDirs(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}

	// Load config
	cfg, err := config.LoadAnalyticsAPIConfig(pathing.GetConfigFile("analytics_api.toml"))
	if err != nil {
		log.Fatalf("Failed to load analytics API config: %v", err)
	}
	if err := logging.Setup(cfg.Log); err != nil {
		log.Fatalf("Invalid log config: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal(err)
	}
	sign, err := cfg.GridSignConvention()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := settingsdb.Open(ctx, cfg.SettingsDbPath)
	if err != nil {
		log.Fatalf("Failed to open settings store: %v", err)
	}
	defer store.Close()

	settings, err := store.LoadOrDefault(ctx)
	if err != nil {
		log.Fatalf("Failed to load tariff settings: %v", err)
	}

	a := &app{
		cfg:      cfg,
		store:    store,
		solis:    solis.NewClient(cfg.Solis.ApiUrl, cfg.Solis.ApiId, cfg.Solis.ApiSecret),
		engine:   engine.New(),
		hub:      reportstream.NewHub(),
		loc:      loc,
		sign:     sign,
		settings: settings,
		trigger:  make(chan struct{}, 1),
	}

	if cfg.IsLiveInverterConfigured() {
		a.live = livepower.NewReader(livepower.Config{
			Host:             cfg.LiveInverter.Ip,
			Port:             cfg.LiveInverter.ModbusPort,
			WlanConnectionId: cfg.LiveInverter.WlanConnectionId,
		})
	}

	if cfg.Influx.Enabled {
		sink, err := influxsink.New(ctx, cfg.Influx.Url, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket)
		if err != nil {
			log.WithError(err).Warn("InfluxDB unavailable, reports will not be stored")
		} else {
			a.sink = sink
			defer sink.Close()
		}
	}

	accessLog := log.StandardLogger().WriterLevel(log.DebugLevel)
	defer accessLog.Close()
	a.accessLog = accessLog

	go a.poll(ctx)

	listener := fmt.Sprintf("%s:%d", cfg.ListenAddress, cfg.ListenPort)
	srv := &http.Server{
		Addr:              listener,
		Handler:           a.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting Solar TOU Analytics API on %s", listener)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Unclean HTTP shutdown")
	}
}
