package influxsink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/engine"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	points []*write.Point
	err    error
}

func (w *recordingWriter) WritePoint(_ context.Context, point ...*write.Point) error {
	w.points = append(w.points, point...)
	return w.err
}

func fieldValue(p *write.Point, key string) interface{} {
	for _, f := range p.FieldList() {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

func tagValue(p *write.Point, key string) string {
	for _, tag := range p.TagList() {
		if tag.Key == key {
			return tag.Value
		}
	}
	return ""
}

func TestWriteChart(t *testing.T) {
	w := &recordingWriter{}
	sink := NewWithWriter(w)

	buckets := []types.ChartBucket{
		{Timestamp: 1705320000000, GridKW: -1.5, SolarKW: 2, Samples: 1},
		{Timestamp: 1705320300000, LoadKW: 0.7, Samples: 2},
	}
	require.NoError(t, sink.WriteChart(context.Background(), "SN1", buckets))
	require.Len(t, w.points, 2)

	p := w.points[0]
	assert.Equal(t, MeasurementPower, p.Name())
	assert.Equal(t, "SN1", tagValue(p, "inverter"))
	assert.Equal(t, -1.5, fieldValue(p, "grid_kw"))
	assert.Equal(t, time.UnixMilli(1705320000000), p.Time())

	require.NoError(t, sink.WriteChart(context.Background(), "SN1", nil))
	assert.Len(t, w.points, 2)
}

func TestWriteReport(t *testing.T) {
	w := &recordingWriter{}
	sink := NewWithWriter(w)

	report := &engine.Report{
		Currency: types.Currency{Code: "EUR", Symbol: "€"},
		Cost:     types.CostBreakdown{GridCost: 1.2, ExportRevenue: 0.4},
		NetCost:  0.8,
		LoadShift: types.LoadShiftAnalysis{
			TariffBreakdown: []types.TariffBreakdown{{GroupID: "peak", Rate: 0.3, GridImport: 2, Cost: 0.6}},
		},
		Periods: []types.PeriodSummary{
			{Period: types.PeriodDay, Source: types.SourceMetered, Import: 4},
			{Period: types.PeriodYear, Source: types.SourceNone},
		},
	}
	ts := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, sink.WriteReport(context.Background(), "SN1", report, ts))

	// cost, load shift, one tariff group, one period
	require.Len(t, w.points, 4)
	assert.Equal(t, MeasurementCost, w.points[0].Name())
	assert.Equal(t, 0.8, fieldValue(w.points[0], "net_cost"))
	assert.Equal(t, "EUR", tagValue(w.points[0], "currency"))
	assert.Equal(t, MeasurementLoadShift, w.points[1].Name())
	assert.Equal(t, MeasurementTariff, w.points[2].Name())
	assert.Equal(t, "peak", tagValue(w.points[2], "group"))
	assert.Equal(t, MeasurementPeriod, w.points[3].Name())
	assert.Equal(t, "day", tagValue(w.points[3], "period"))
}

func TestWriteErrorPropagates(t *testing.T) {
	w := &recordingWriter{err: errors.New("down")}
	err := NewWithWriter(w).WriteChart(context.Background(), "SN1", []types.ChartBucket{{Samples: 1}})
	assert.EqualError(t, err, "down")
}
