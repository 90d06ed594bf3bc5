package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
	"github.com/google/uuid"
)

// CurrentTariffVersion is the shape written by this build.
// Version 1 kept one start/end pair per group and had no off-peak flag.
const CurrentTariffVersion = 2

var (
	ErrUnknownTariffVersion = fmt.Errorf("unknown tariff settings version")
	ErrInvalidTariff        = fmt.Errorf("invalid tariff settings")
)

var offPeakName = regexp.MustCompile(`(?i)off.?peak|night`)

func DefaultTariffSettings() TariffSettings {
	group := func(id, name, color string, start, end int, offPeak bool) types.TariffGroup {
		return types.TariffGroup{
			ID:      id,
			Name:    name,
			Color:   color,
			OffPeak: offPeak,
			Slots:   []types.TimeSlot{{StartHour: start, EndHour: end}},
		}
	}
	return TariffSettings{
		Version:  CurrentTariffVersion,
		Currency: "EUR",
		OffPeak:  types.OffPeakSettings{StartHour: 23, EndHour: 8},
		TariffGroups: []types.TariffGroup{
			group("off-peak", "Off-Peak", "indigo", 23, 6, true),
			group("standard", "Standard", "sky", 6, 7, false),
			group("peak", "Peak", "amber", 7, 10, false),
			group("standard-mid", "Standard", "sky", 10, 18, false),
			group("peak-eve", "Peak", "amber", 18, 20, false),
			group("standard-eve", "Standard", "sky", 20, 23, false),
		},
	}
}

// MigrateTariffSettings upgrades any known persisted version to the current shape.
// A missing version is treated as version 1.
func MigrateTariffSettings(raw RawTariffSettings) (TariffSettings, error) {
	version := raw.Version
	if version == 0 {
		version = 1
	}
	if version > CurrentTariffVersion || version < 0 {
		return TariffSettings{}, fmt.Errorf("%w: %d", ErrUnknownTariffVersion, raw.Version)
	}

	out := TariffSettings{
		Version:      CurrentTariffVersion,
		Currency:     raw.Currency,
		ExportRate:   raw.ExportRate,
		OffPeak:      raw.OffPeak,
		TariffGroups: make([]types.TariffGroup, 0, len(raw.TariffGroups)),
	}
	if out.Currency == "" {
		out.Currency = "EUR"
	}
	for _, g := range raw.TariffGroups {
		out.TariffGroups = append(out.TariffGroups, migrateGroup(g))
	}
	return out, nil
}

func migrateGroup(g RawTariffGroup) types.TariffGroup {
	out := types.TariffGroup{
		ID:    g.ID,
		Name:  g.Name,
		Rate:  g.Rate,
		Color: g.Color,
		Slots: g.Slots,
	}
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	if g.OffPeak != nil {
		out.OffPeak = *g.OffPeak
	} else {
		out.OffPeak = offPeakName.MatchString(g.Name)
	}
	if len(out.Slots) == 0 && g.StartHour != nil && g.EndHour != nil {
		out.Slots = []types.TimeSlot{{StartHour: *g.StartHour, EndHour: *g.EndHour}}
	}
	return out
}

// DecodeTariffJSON parses a persisted JSON payload of any version.
func DecodeTariffJSON(data []byte) (TariffSettings, error) {
	var raw RawTariffSettings
	if err := json.Unmarshal(data, &raw); err != nil {
		return TariffSettings{}, err
	}
	return MigrateTariffSettings(raw)
}

// LoadTariffFile reads a TOML tariff file of any version.
func LoadTariffFile(path string) (TariffSettings, error) {
	var raw RawTariffSettings
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return TariffSettings{}, err
	}
	return MigrateTariffSettings(raw)
}

func WriteTariffFile(path string, s TariffSettings) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(s)
}

// ValidateTariffSettings rejects settings the API should not accept.
// The analytics tolerate all of these; this guards user edits only.
// An end hour of 24 is the exclusive end of the day.
func ValidateTariffSettings(s TariffSettings) error {
	var errs []error
	if s.ExportRate < 0 {
		errs = append(errs, fmt.Errorf("export rate %v is negative", s.ExportRate))
	}
	if !validHour(s.OffPeak.StartHour, 23) || !validHour(s.OffPeak.EndHour, 24) {
		errs = append(errs, fmt.Errorf("off-peak window %d-%d out of range", s.OffPeak.StartHour, s.OffPeak.EndHour))
	}
	seen := make(map[string]bool, len(s.TariffGroups))
	for _, g := range s.TariffGroups {
		if g.ID == "" {
			errs = append(errs, fmt.Errorf("group %q has no id", g.Name))
		} else if seen[g.ID] {
			errs = append(errs, fmt.Errorf("duplicate group id %q", g.ID))
		}
		seen[g.ID] = true
		if g.Rate < 0 {
			errs = append(errs, fmt.Errorf("group %q has negative rate", g.ID))
		}
		for _, slot := range g.Slots {
			if !validHour(slot.StartHour, 23) || !validHour(slot.EndHour, 24) {
				errs = append(errs, fmt.Errorf("group %q slot %d-%d out of range", g.ID, slot.StartHour, slot.EndHour))
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidTariff}, errs...)...)
}

func validHour(h, max int) bool {
	return h >= 0 && h <= max
}
