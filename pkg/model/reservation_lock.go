package model

import "time"

// ReservationLock is an advisory lock document preventing two concurrent
// create/update calls from passing the availability check for the same room.
// Uniqueness on _id makes the second acquirer fail with a duplicate key error.
type ReservationLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
