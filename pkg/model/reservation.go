package model

import "time"

const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
)

// GuestComposition describes the occupants of a stay. Infants never count
// toward room capacity or pricing.
type GuestComposition struct {
	Adults   int `json:"adults" bson:"adults" validate:"required,min=1,max=50"`
	Children int `json:"children" bson:"children" validate:"min=0,max=50"`
	Infants  int `json:"infants" bson:"infants" validate:"min=0,max=50"`
}

// Occupancy is the headcount that consumes capacity and drives flat-rate
// lookups: adults plus children.
func (g GuestComposition) Occupancy() int {
	return g.Adults + g.Children
}

// Reservation holds a room for [DateStart, DateEnd) — DateEnd is the checkout
// date and is not an occupied night.
type Reservation struct {
	ID         string           `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomID     string           `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	Guests     GuestComposition `json:"guests" bson:"guests" validate:"required"`
	DateStart  time.Time        `json:"date_start" bson:"date_start" validate:"required"`
	DateEnd    time.Time        `json:"date_end" bson:"date_end" validate:"required,gtfield=DateStart"`
	Status     string           `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	TotalValue float64          `json:"total_value" bson:"total_value" validate:"min=0"`
	CreatedAt  time.Time        `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// IsActive reports whether the reservation still occupies its dates for
// conflict purposes.
func (r *Reservation) IsActive() bool {
	return r.Status != ReservationCancelled
}

type ReservationUpdate struct {
	Guests    *GuestComposition `json:"guests,omitempty" validate:"omitempty"`
	DateStart *time.Time        `json:"date_start,omitempty" validate:"omitempty"`
	DateEnd   *time.Time        `json:"date_end,omitempty" validate:"omitempty"`
	Status    string            `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled"`
}
