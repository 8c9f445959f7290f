package model

import "time"

// CancellationPolicy is a property's refund policy. At most one policy per
// property is active for a given moment; AppliesTo nil means open-ended.
type CancellationPolicy struct {
	ID          string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PropertyID  string     `json:"property_id" bson:"property_id" validate:"required,mongodb"`
	Type        string     `json:"type" bson:"type" validate:"required,min=1,max=50"`
	Active      bool       `json:"active" bson:"active"`
	AppliesFrom time.Time  `json:"applies_from" bson:"applies_from" validate:"required"`
	AppliesTo   *time.Time `json:"applies_to,omitempty" bson:"applies_to,omitempty" validate:"omitempty,gtfield=AppliesFrom"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Covers reports whether the policy applicability window contains the moment.
func (p *CancellationPolicy) Covers(at time.Time) bool {
	if at.Before(p.AppliesFrom) {
		return false
	}
	if p.AppliesTo != nil && at.After(*p.AppliesTo) {
		return false
	}
	return true
}

// CancellationRefundRule maps a days-before-check-in range (inclusive on both
// ends) to a refund percentage. Higher Priority wins ties; at equal priority
// the rule with the larger DaysBeforeCheckinMin wins.
type CancellationRefundRule struct {
	ID                   string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PolicyID             string    `json:"policy_id" bson:"policy_id" validate:"required,mongodb"`
	DaysBeforeCheckinMin int       `json:"days_before_checkin_min" bson:"days_before_checkin_min" validate:"min=0"`
	DaysBeforeCheckinMax int       `json:"days_before_checkin_max" bson:"days_before_checkin_max" validate:"required,gtefield=DaysBeforeCheckinMin"`
	RefundPercent        float64   `json:"refund_percent" bson:"refund_percent" validate:"min=0,max=100"`
	Priority             int       `json:"priority" bson:"priority" validate:"min=0"`
	Label                string    `json:"label,omitempty" bson:"label,omitempty" validate:"omitempty,max=100"`
	CreatedAt            time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Matches reports whether daysUntilCheckin falls inside the rule window.
func (r *CancellationRefundRule) Matches(daysUntilCheckin int) bool {
	return daysUntilCheckin >= r.DaysBeforeCheckinMin && daysUntilCheckin <= r.DaysBeforeCheckinMax
}
