package settingsdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/config"
)

// Save appends a snapshot of the settings.
func (s *Store) Save(ctx context.Context, settings config.TariffSettings) error {
	settings.Version = config.CurrentTariffVersion
	payload, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO tariff_settings (version, payload, checksum, saved_at) "+
			"VALUES (?, ?, ?, ?)",
		settings.Version,
		string(payload),
		checksum(payload),
		time.Now().Unix(),
	)
	return err
}

// Load returns the newest snapshot, migrated to the current version.
func (s *Store) Load(ctx context.Context) (config.TariffSettings, error) {
	var row Snapshot
	err := s.db.QueryRowContext(ctx,
		"SELECT id, version, payload, checksum, saved_at FROM tariff_settings "+
			"ORDER BY id DESC LIMIT 1",
	).Scan(&row.ID, &row.Version, &row.Payload, &row.Checksum, &row.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return config.TariffSettings{}, ErrNoSettings
	}
	if err != nil {
		return config.TariffSettings{}, err
	}
	return row.Decode()
}

// LoadOrDefault falls back to the default settings when nothing is stored.
func (s *Store) LoadOrDefault(ctx context.Context) (config.TariffSettings, error) {
	settings, err := s.Load(ctx)
	if errors.Is(err, ErrNoSettings) {
		return config.DefaultTariffSettings(), nil
	}
	return settings, err
}

// History lists the most recent snapshots, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, version, payload, checksum, saved_at FROM tariff_settings "+
			"ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var row Snapshot
		if err := rows.Scan(&row.ID, &row.Version, &row.Payload, &row.Checksum, &row.SavedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
