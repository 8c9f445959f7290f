package model

import "time"

const (
	BlockMaintenance = "maintenance"
	BlockCleaning    = "cleaning"
	BlockPrivate     = "private"
	BlockCustom      = "custom"
)

const (
	RecurrenceNone    = "none"
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

// RoomBlock marks a room unavailable for reasons unrelated to guest bookings.
// With a non-"none" recurrence the stored [DateStart, DateEnd] window is the
// first occurrence of a repeating pattern, not the full blocked extent.
type RoomBlock struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomID     string    `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	DateStart  time.Time `json:"date_start" bson:"date_start" validate:"required"`
	DateEnd    time.Time `json:"date_end" bson:"date_end" validate:"required,gtfield=DateStart"`
	Type       string    `json:"type" bson:"type" validate:"required,oneof=maintenance cleaning private custom"`
	Recurrence string    `json:"recurrence" bson:"recurrence" validate:"required,oneof=none daily weekly monthly"`
	Reason     string    `json:"reason,omitempty" bson:"reason,omitempty" validate:"omitempty,max=200"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Recurs reports whether the block repeats beyond its stored window.
func (b *RoomBlock) Recurs() bool {
	return b.Recurrence == RecurrenceWeekly || b.Recurrence == RecurrenceMonthly
}

type RoomBlockUpdate struct {
	DateStart  *time.Time `json:"date_start,omitempty" validate:"omitempty"`
	DateEnd    *time.Time `json:"date_end,omitempty" validate:"omitempty"`
	Type       string     `json:"type,omitempty" validate:"omitempty,oneof=maintenance cleaning private custom"`
	Recurrence string     `json:"recurrence,omitempty" validate:"omitempty,oneof=none daily weekly monthly"`
	Reason     *string    `json:"reason,omitempty" validate:"omitempty,max=200"`
}
