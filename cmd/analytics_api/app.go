package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/config"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/engine"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/influxsink"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/livepower"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/reportstream"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/settingsdb"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/solis"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const maxSettingsBody = 1 << 20

type app struct {
	cfg    *config.AnalyticsAPIConfig
	store  *settingsdb.Store
	solis  *solis.Client
	engine *engine.Engine
	hub    *reportstream.Hub
	live   *livepower.Reader
	sink   *influxsink.Sink
	loc    *time.Location
	sign   types.GridSign

	settingsMu sync.RWMutex
	settings   config.TariffSettings

	// Buffered, a pending refresh absorbs further requests
	trigger chan struct{}

	// Combined log format access log, discarded when nil
	accessLog io.Writer
}

func (a *app) currentSettings() config.TariffSettings {
	a.settingsMu.RLock()
	defer a.settingsMu.RUnlock()
	return a.settings
}

func (a *app) requestRefresh() {
	select {
	case a.trigger <- struct{}{}:
	default:
	}
}

// poll refreshes immediately, then every refresh interval or on request.
func (a *app) poll(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Refresh())
	defer ticker.Stop()

	for {
		if err := a.refresh(ctx); err != nil && ctx.Err() == nil {
			// Keep serving the previous report
			log.WithError(err).Warn("Refresh failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-a.trigger:
		}
	}
}

// refresh fetches today's data, analyzes it and publishes the report.
func (a *app) refresh(ctx context.Context) error {
	sc := a.cfg.Solis
	now := time.Now().In(a.loc)
	logger := log.WithField("inverter", sc.InverterSn)

	detail, err := a.solis.InverterDetail(ctx, sc.InverterId, sc.InverterSn)
	if err != nil {
		return fmt.Errorf("inverter detail: %w", err)
	}
	day, err := a.solis.InverterDay(ctx, sc.InverterId, sc.InverterSn, now.Format("2006-01-02"), sc.TimeZoneOffset)
	if err != nil {
		return fmt.Errorf("inverter day: %w", err)
	}

	// Series only feed fallbacks, a missing one is not fatal
	month, err := a.solis.InverterMonth(ctx, sc.InverterId, sc.InverterSn, now.Format("2006-01"))
	if err != nil {
		logger.WithError(err).Warn("Month series unavailable")
	}
	year, err := a.solis.InverterYear(ctx, sc.InverterId, sc.InverterSn, now.Format("2006"))
	if err != nil {
		logger.WithError(err).Warn("Year series unavailable")
	}

	report := a.engine.Analyze(engine.Input{
		Samples:  solis.DecodeDay(day, solis.DefaultFieldMap()),
		Metered:  solis.DecodeMetered(detail),
		Month:    solis.DecodeSeries(month),
		Year:     solis.DecodeSeries(year),
		Settings: a.currentSettings(),
		GridSign: a.sign,
		Location: a.loc,
	})
	if err := a.hub.Publish(report); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	logger.WithField("samples", report.Samples).
		WithField("net_cost", report.NetCost).
		Debug("Report published")

	if a.sink != nil {
		if err := a.sink.WriteChart(ctx, sc.InverterSn, report.Chart); err != nil {
			logger.WithError(err).Warn("Failed to store chart")
		}
		if err := a.sink.WriteReport(ctx, sc.InverterSn, report, now); err != nil {
			logger.WithError(err).Warn("Failed to store report")
		}
	}
	return nil
}

func (a *app) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", a.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/latest", a.handleLatest).Methods(http.MethodGet)
	r.HandleFunc("/ws", a.hub.ServeWS).Methods(http.MethodGet)
	r.HandleFunc("/live", a.handleLive).Methods(http.MethodGet)
	r.HandleFunc("/settings", a.handleGetSettings).Methods(http.MethodGet)
	r.HandleFunc("/settings", a.handlePutSettings).Methods(http.MethodPut)
	r.HandleFunc("/settings/history", a.handleSettingsHistory).Methods(http.MethodGet)
	return r
}

// handler wraps the router with access logging and panic recovery.
func (a *app) handler() http.Handler {
	accessLog := a.accessLog
	if accessLog == nil {
		accessLog = io.Discard
	}
	logged := handlers.CombinedLoggingHandler(accessLog, a.router())
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(log.StandardLogger()),
	)(logged)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (a *app) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Solar TOU Analytics API",
		"status":  "running",
		"clients": a.hub.ClientCount(),
	})
}

func (a *app) handleLatest(w http.ResponseWriter, r *http.Request) {
	latest := a.hub.Latest()
	if latest == nil {
		writeError(w, http.StatusNotFound, errors.New("no report available yet"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(latest)
}

// May be fast or slow depending on the cached inverter reading.
func (a *app) handleLive(w http.ResponseWriter, r *http.Request) {
	if a.live == nil {
		writeError(w, http.StatusNotFound, livepower.ErrModbusNotConfigured)
		return
	}
	power, err := a.live.ReadWatt()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int32{
		"currentProduction": power,
	})
}

func (a *app) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.currentSettings())
}

// handlePutSettings accepts any stored settings version and saves it migrated.
func (a *app) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSettingsBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	settings, err := config.DecodeTariffJSON(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := config.ValidateTariffSettings(settings); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.store.Save(r.Context(), settings); err != nil {
		log.WithError(err).Error("Failed to save tariff settings")
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	a.settingsMu.Lock()
	a.settings = settings
	a.settingsMu.Unlock()
	a.requestRefresh()

	writeJSON(w, http.StatusOK, settings)
}

func (a *app) handleSettingsHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit: %q", q))
			return
		}
		limit = n
	}
	history, err := a.store.History(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}
