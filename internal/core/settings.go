package core

// Settings is process-wide configuration consumed by formatting and by
// new-record defaults. It lives in its own storage slot with a lifecycle
// independent from the records.
type Settings struct {
	DefaultPrice   float64 `json:"defaultPrice"`
	CurrencySymbol string  `json:"currencySymbol"`
	UnitLabel      string  `json:"unitLabel"`
}

// DefaultSettings mirrors the defaults the app shipped with.
func DefaultSettings() Settings {
	return Settings{
		DefaultPrice:   60,
		CurrencySymbol: "₹",
		UnitLabel:      "L",
	}
}

// Normalized fills blank fields from the defaults and clamps a negative
// default price to zero.
func (s Settings) Normalized() Settings {
	def := DefaultSettings()
	if s.DefaultPrice < 0 {
		s.DefaultPrice = 0
	}
	if s.CurrencySymbol == "" {
		s.CurrencySymbol = def.CurrencySymbol
	}
	if s.UnitLabel == "" {
		s.UnitLabel = def.UnitLabel
	}
	return s
}
