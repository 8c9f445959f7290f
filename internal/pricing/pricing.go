// Package pricing resolves the per-night tariff for a stay through a
// five-tier cascade: room period rates, category period rates, room base
// rates, category base rates, property base rate. The first tier that
// produces a price for a night wins and tags the night with its source.
package pricing

import (
	"errors"
	"math"
	"time"
)

// Source values tag which cascade tier priced a night.
const (
	SourceRoomPeriod     = "room_period"
	SourceCategoryPeriod = "category_period"
	SourceRoomBase       = "room_base"
	SourceCategoryBase   = "category_base"
	SourcePropertyBase   = "property_base"
)

// ErrNoTariff means no tier could price a night. Surfaced to callers as a
// pricing-configuration fault, never as a silent zero total.
var ErrNoTariff = errors.New("no tariff resolves for the requested night")

// NightPrice is one resolved night of a stay.
type NightPrice struct {
	Date               time.Time `json:"date"`
	Price              float64   `json:"price"`
	Source             string    `json:"source"`
	ChildFactorApplied bool      `json:"child_factor_applied,omitempty"`
}

// StayPrice is the priced stay: per-night breakdown plus the total, which is
// the plain sum of the already-rounded nights.
type StayPrice struct {
	Total  float64      `json:"total"`
	Nights []NightPrice `json:"nights"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
