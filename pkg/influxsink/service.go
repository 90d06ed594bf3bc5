// Package influxsink writes chart buckets and report figures to InfluxDB v2.
package influxsink

import (
	"context"
	"fmt"
	"time"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/engine"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const (
	MeasurementPower     = "power_5m"
	MeasurementCost      = "tou_cost"
	MeasurementLoadShift = "load_shift"
	MeasurementTariff    = "tariff_breakdown"
	MeasurementPeriod    = "period_summary"
)

var ErrUnhealthy = fmt.Errorf("influxdb not healthy")

// PointWriter is satisfied by api.WriteAPIBlocking.
type PointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

type Sink struct {
	writer PointWriter
	client influxdb2.Client
}

// New connects to InfluxDB and checks its health.
func New(ctx context.Context, url, token, org, bucket string) (*Sink, error) {
	client := influxdb2.NewClient(url, token)
	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("influxdb health check: %w", err)
	}
	if health.Status != "pass" {
		client.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnhealthy, health.Status)
	}
	return &Sink{writer: client.WriteAPIBlocking(org, bucket), client: client}, nil
}

// NewWithWriter wraps an existing writer.
func NewWithWriter(w PointWriter) *Sink {
	return &Sink{writer: w}
}

func (s *Sink) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// WriteChart writes one point per chart bucket.
func (s *Sink) WriteChart(ctx context.Context, inverter string, buckets []types.ChartBucket) error {
	if len(buckets) == 0 {
		return nil
	}
	points := make([]*write.Point, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, write.NewPoint(
			MeasurementPower,
			map[string]string{"inverter": inverter},
			map[string]interface{}{
				"grid_kw":    b.GridKW,
				"battery_kw": b.BatteryKW,
				"solar_kw":   b.SolarKW,
				"load_kw":    b.LoadKW,
				"samples":    b.Samples,
			},
			time.UnixMilli(b.Timestamp),
		))
	}
	return s.writer.WritePoint(ctx, points...)
}

// WriteReport writes the day's cost, load-shift and period figures at ts.
func (s *Sink) WriteReport(ctx context.Context, inverter string, r *engine.Report, ts time.Time) error {
	tags := func(extra ...string) map[string]string {
		t := map[string]string{"inverter": inverter, "currency": r.Currency.Code}
		for i := 0; i+1 < len(extra); i += 2 {
			t[extra[i]] = extra[i+1]
		}
		return t
	}

	points := []*write.Point{
		write.NewPoint(MeasurementCost, tags(), map[string]interface{}{
			"grid_cost":       r.Cost.GridCost,
			"export_revenue":  r.Cost.ExportRevenue,
			"full_grid_cost":  r.Cost.FullGridCost,
			"net_cost":        r.NetCost,
			"value_saved":     r.Reliance.ValueSaved,
			"self_reliance":   r.Reliance.SelfRelianceRate,
			"self_use":        r.Reliance.SelfConsumptionRate,
			"effective_rate":  r.EffectiveRate,
			"projected_month": r.Projection.Monthly,
		}, ts),
		write.NewPoint(MeasurementLoadShift, tags(), map[string]interface{}{
			"off_peak_grid_import":    r.LoadShift.OffPeakGridImport,
			"off_peak_battery_charge": r.LoadShift.OffPeakBatteryCharge,
			"peak_grid_import":        r.LoadShift.PeakGridImport,
			"peak_battery_discharge":  r.LoadShift.PeakBatteryDischarge,
			"peak_solar_direct":       r.LoadShift.PeakSolarDirect,
			"shifted_energy":          r.LoadShift.LoadShiftedEnergy,
			"efficiency":              r.LoadShift.LoadShiftEfficiency,
			"shifted_savings":         r.LoadShift.ShiftedSavings,
			"total_grid_cost":         r.LoadShift.TotalGridCost,
			"net_cost":                r.LoadShift.NetCost,
		}, ts),
	}
	for _, b := range r.LoadShift.TariffBreakdown {
		points = append(points, write.NewPoint(MeasurementTariff, tags("group", b.GroupID), map[string]interface{}{
			"rate":        b.Rate,
			"grid_import": b.GridImport,
			"consumption": b.Consumption,
			"cost":        b.Cost,
		}, ts))
	}
	for _, p := range r.Periods {
		if p.Source == types.SourceNone {
			continue
		}
		points = append(points, write.NewPoint(MeasurementPeriod, tags("period", string(p.Period), "source", p.Source), map[string]interface{}{
			"import":     p.Import,
			"export":     p.Export,
			"load":       p.Load,
			"production": p.Production,
			"cost":       p.Cost,
		}, ts))
	}
	return s.writer.WritePoint(ctx, points...)
}
