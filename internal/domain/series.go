package domain

import "time"

// PricePoint is one time-bucketed observation from the price-history
// provider. Volume is zero for commodity series that do not report it.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume,omitempty"`
}

// Instrument maps a tradable symbol to its issuer name.
type Instrument struct {
	Symbol string `json:"symbol" toml:"symbol"`
	Name   string `json:"name" toml:"name"`
}
