package model

import "time"

// Property is the ultimate pricing fallback tier and the holder of
// cancellation-relevant settings (timezone, guest age boundaries).
type Property struct {
	ID           string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string          `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Timezone     string          `json:"timezone,omitempty" bson:"timezone" validate:"omitempty,timezone"`
	InfantMaxAge int             `json:"infant_max_age" bson:"infant_max_age" validate:"min=0,max=17"`
	ChildMaxAge  int             `json:"child_max_age" bson:"child_max_age" validate:"min=0,max=17"`
	ChildFactor  float64         `json:"child_factor" bson:"child_factor" validate:"min=0,max=1"`
	Rate         CompositionRate `json:"rate" bson:"rate,inline"`
	CreatedAt    time.Time       `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Location resolves the property timezone, falling back to UTC when unset or
// unknown. Refund day-counting is done in this location.
func (p *Property) Location() *time.Location {
	if p == nil || p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
