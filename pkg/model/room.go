package model

import "time"

type Room struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PropertyID string    `json:"property_id" bson:"property_id" validate:"required,mongodb"`
	CategoryID string    `json:"category_id,omitempty" bson:"category_id,omitempty" validate:"omitempty,mongodb"`
	Name       string    `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Capacity   int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=50"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// HasCategory reports whether the room participates in category-level pricing.
func (r *Room) HasCategory() bool {
	return r.CategoryID != ""
}
