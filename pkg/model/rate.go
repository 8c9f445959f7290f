package model

import "time"

// RoomRate is a flat per-night price for a room at an exact total guest count
// (adults + children). Unique per (room_id, guest_count).
type RoomRate struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomID        string    `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	GuestCount    int       `json:"guest_count" bson:"guest_count" validate:"required,min=1,max=50"`
	PricePerNight float64   `json:"price_per_night" bson:"price_per_night" validate:"required,gt=0"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// RoomRatePeriod overrides a RoomRate when the stay night falls inside
// [DateStart, DateEnd], both ends inclusive.
type RoomRatePeriod struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomID        string    `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	GuestCount    int       `json:"guest_count" bson:"guest_count" validate:"required,min=1,max=50"`
	DateStart     time.Time `json:"date_start" bson:"date_start" validate:"required"`
	DateEnd       time.Time `json:"date_end" bson:"date_end" validate:"required,gtfield=DateStart"`
	PricePerNight float64   `json:"price_per_night" bson:"price_per_night" validate:"required,gt=0"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// CompositionRate prices a night by guest composition instead of a flat
// headcount lookup: one adult, two adults, each extra adult, each child.
// Infants never contribute.
type CompositionRate struct {
	BaseOneAdult    float64 `json:"base_one_adult" bson:"base_one_adult" validate:"min=0"`
	BaseTwoAdults   float64 `json:"base_two_adults" bson:"base_two_adults" validate:"min=0"`
	AdditionalAdult float64 `json:"additional_adult" bson:"additional_adult" validate:"min=0"`
	ChildPrice      float64 `json:"child_price" bson:"child_price" validate:"min=0"`
}

// IsZero reports whether no composition field is configured. A fully zero
// property-base composition means no tariff is resolvable at all.
func (c CompositionRate) IsZero() bool {
	return c.BaseOneAdult == 0 && c.BaseTwoAdults == 0 && c.AdditionalAdult == 0 && c.ChildPrice == 0
}

type RoomCategoryRate struct {
	ID         string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CategoryID string          `json:"category_id" bson:"category_id" validate:"required,mongodb"`
	Rate       CompositionRate `json:"rate" bson:"rate,inline"`
	CreatedAt  time.Time       `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type RoomCategoryRatePeriod struct {
	ID         string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CategoryID string          `json:"category_id" bson:"category_id" validate:"required,mongodb"`
	DateStart  time.Time       `json:"date_start" bson:"date_start" validate:"required"`
	DateEnd    time.Time       `json:"date_end" bson:"date_end" validate:"required,gtfield=DateStart"`
	Rate       CompositionRate `json:"rate" bson:"rate,inline"`
	CreatedAt  time.Time       `json:"created_at" bson:"created_at" validate:"omitempty"`
}
