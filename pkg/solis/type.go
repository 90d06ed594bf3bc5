package solis

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Entry is one raw JSON object from the API. Numbers are kept as json.Number.
type Entry map[string]any

type envelope struct {
	Success bool            `json:"success"`
	Code    flexString      `json:"code"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		*f = flexString(unq)
		return nil
	}
	*f = flexString(s)
	return nil
}

type pagedRecords struct {
	Records []Entry `json:"records"`
	Page    struct {
		Records []Entry `json:"records"`
	} `json:"page"`
}

// FieldPair names a value field and the field carrying its unit.
type FieldPair struct {
	Value string
	Unit  string
}

// ChannelFields lists, in priority order, where a channel's data lives.
type ChannelFields struct {
	// First non-zero candidate wins, else the first present
	Candidates []FieldPair
	Precision  []string
}

// FieldMap is the explicit field priority used to decode day entries.
type FieldMap struct {
	Timestamp        []string
	Grid             ChannelFields
	Battery          ChannelFields
	Solar            ChannelFields
	Load             ChannelFields
	DefaultPrecision []string
	DefaultUnit      []string
}

// DefaultFieldMap matches the SolisCloud inverterDay payload.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		Timestamp: []string{"dataTimestamp", "time"},
		Grid: ChannelFields{
			Candidates: []FieldPair{
				{"pSum", "pSumStr"},
				{"psum", "psumStr"},
				{"psumCal", "psumCalStr"},
				{"pSumCal", "pSumCalStr"},
			},
			Precision: []string{"psumPec", "psumCalPec", "pSumPec", "pSumCalPec"},
		},
		Battery: ChannelFields{
			Candidates: []FieldPair{{"batteryPower", "batteryPowerStr"}},
			Precision:  []string{"batteryPowerPec"},
		},
		Solar: ChannelFields{
			Candidates: []FieldPair{{"pac", "pacStr"}},
			Precision:  []string{"pacPec"},
		},
		Load: ChannelFields{
			Candidates: []FieldPair{{"familyLoadPower", "familyLoadPowerStr"}},
			Precision:  []string{"familyLoadPowerPec"},
		},
		DefaultPrecision: []string{"pacPec"},
		DefaultUnit:      []string{"pacStr"},
	}
}
