package settingsdb

import (
	"fmt"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/config"
)

// Snapshot is one stored row of tariff settings.
type Snapshot struct {
	ID       int64  `db:"id"`
	Version  int    `db:"version"`
	Payload  string `db:"payload"`
	Checksum uint16 `db:"checksum"`
	SavedAt  int64  `db:"saved_at"`
}

// Decode verifies the checksum and migrates the payload.
func (s Snapshot) Decode() (config.TariffSettings, error) {
	payload := []byte(s.Payload)
	if checksum(payload) != s.Checksum {
		return config.TariffSettings{}, fmt.Errorf("%w: snapshot %d", ErrCorruptSettings, s.ID)
	}
	return config.DecodeTariffJSON(payload)
}
