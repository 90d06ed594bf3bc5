// SettingsDB holds the user-editable tariff configuration.
// Every save appends a snapshot; the newest snapshot is the active one.
// Payloads carry a CRC16 so a damaged row is reported instead of loaded.
package settingsdb

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/NotCoffee418/dbmigrator"
	"github.com/sigurn/crc16"

	_ "modernc.org/sqlite"
)

var (
	ErrNoSettings      = fmt.Errorf("no tariff settings stored")
	ErrCorruptSettings = fmt.Errorf("stored tariff settings failed checksum")
)

//go:embed migrations/*.sql
var migrationFS embed.FS

var crcTable = crc16.MakeTable(crc16.CRC16_ARC)

type Store struct {
	db *sql.DB
}

// Open connects to the database at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer
	db.SetMaxOpenConns(1)

	// Create DB before migrations
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create settings db: %w", err)
	}

	// Apply migrations
	dbmigrator.SetDatabaseType(dbmigrator.SQLite)
	<-dbmigrator.MigrateUpCh(
		db,
		migrationFS,
		"migrations",
	)

	// Confirm the schema is in place
	if _, err := db.ExecContext(ctx, "SELECT 1 FROM tariff_settings LIMIT 1;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("settings db migration failed: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func checksum(payload []byte) uint16 {
	return crc16.Checksum(payload, crcTable)
}
