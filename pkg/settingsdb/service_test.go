package settingsdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/config"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadEmpty(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSettings)

	settings, err := store.LoadOrDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultTariffSettings(), settings)
}

func TestSaveAndLoadNewest(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first := config.DefaultTariffSettings()
	require.NoError(t, store.Save(ctx, first))

	second := config.DefaultTariffSettings()
	second.Currency = "ZAR"
	second.ExportRate = 0.07
	second.TariffGroups[2].Rate = 0.42
	require.NoError(t, store.Save(ctx, second))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	history, err := store.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Greater(t, history[0].ID, history[1].ID)
}

func TestCorruptPayloadDetected(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, config.DefaultTariffSettings()))

	_, err := store.db.ExecContext(ctx, "UPDATE tariff_settings SET payload = replace(payload, 'EUR', 'USD')")
	require.NoError(t, err)

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrCorruptSettings)
}

func TestLegacySnapshotMigratesOnLoad(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	payload := []byte(`{"version":1,"currency":"EUR","off_peak":{"start_hour":23,"end_hour":8},` +
		`"tariff_groups":[{"id":"night","name":"Night","rate":0.1,"start_hour":23,"end_hour":7}]}`)
	_, err := store.db.ExecContext(ctx,
		"INSERT INTO tariff_settings (version, payload, checksum, saved_at) VALUES (?, ?, ?, ?)",
		1, string(payload), checksum(payload), 0,
	)
	require.NoError(t, err)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, config.CurrentTariffVersion, got.Version)
	require.Len(t, got.TariffGroups, 1)
	assert.True(t, got.TariffGroups[0].OffPeak)
	assert.Equal(t, []types.TimeSlot{{StartHour: 23, EndHour: 7}}, got.TariffGroups[0].Slots)
}
