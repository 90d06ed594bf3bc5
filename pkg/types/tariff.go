package types

// TimeSlot covers [StartHour, EndHour). EndHour 24 is the end of the day.
type TimeSlot struct {
	StartHour int `json:"start_hour" toml:"start_hour"`
	EndHour   int `json:"end_hour" toml:"end_hour"`
}

// TariffGroup is a named rate applied during one or more daily slots.
type TariffGroup struct {
	ID      string     `json:"id" toml:"id"`
	Name    string     `json:"name" toml:"name"`
	Rate    float64    `json:"rate" toml:"rate"`
	Color   string     `json:"color,omitempty" toml:"color"`
	OffPeak bool       `json:"off_peak" toml:"off_peak"`
	Slots   []TimeSlot `json:"slots" toml:"slots"`
}

// TariffSettings is the tariff table the analysis runs against.
type TariffSettings struct {
	Version      int             `json:"version" toml:"version"`
	Currency     string          `json:"currency" toml:"currency"`
	ExportRate   float64         `json:"export_rate" toml:"export_rate"`
	OffPeak      OffPeakSettings `json:"off_peak" toml:"off_peak"`
	TariffGroups []TariffGroup   `json:"tariff_groups" toml:"tariff_groups"`
}

// OffPeakSettings is the window used by the load-shift classifier.
type OffPeakSettings struct {
	StartHour int `json:"start_hour" toml:"start_hour"`
	EndHour   int `json:"end_hour" toml:"end_hour"`
}

type Currency struct {
	Code   string `json:"code" toml:"code"`
	Symbol string `json:"symbol" toml:"symbol"`
}

var Currencies = []Currency{
	{Code: "EUR", Symbol: "€"},
	{Code: "USD", Symbol: "$"},
	{Code: "GBP", Symbol: "£"},
	{Code: "ZAR", Symbol: "R"},
	{Code: "AUD", Symbol: "A$"},
	{Code: "CAD", Symbol: "C$"},
	{Code: "CHF", Symbol: "CHF"},
	{Code: "JPY", Symbol: "¥"},
	{Code: "INR", Symbol: "₹"},
	{Code: "BRL", Symbol: "R$"},
}

// CurrencyByCode returns the known currency or EUR.
func CurrencyByCode(code string) Currency {
	for _, c := range Currencies {
		if c.Code == code {
			return c
		}
	}
	return Currencies[0]
}
