// Package refund computes the refund owed when a reservation is cancelled.
// The policy is default-deny: whenever no applicable policy or rule can be
// established the refund is zero, reported as a successful result with a
// reason, never as an error.
package refund

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	catalogerrors "innkeep/internal/catalog/errors"
	policyerrors "innkeep/internal/policies/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

// Zero-refund reasons surfaced on the result.
const (
	ReasonNoRoomOrProperty = "no valid room/property"
	ReasonNoActivePolicy   = "no active policy"
	ReasonAfterCheckin     = "cancellation after check-in"
	ReasonOutsideWindow    = "outside permitted cancellation window"
)

// Result is the outcome of a refund calculation.
type Result struct {
	RefundPercent    float64 `json:"refund_percent"`
	RefundAmount     float64 `json:"refund_amount"`
	RetainedAmount   float64 `json:"retained_amount"`
	DaysUntilCheckin int     `json:"days_until_checkin"`
	PolicyID         string  `json:"policy_id,omitempty"`
	MatchedRuleID    string  `json:"matched_rule_id,omitempty"`
	MatchedRuleLabel string  `json:"matched_rule_label,omitempty"`
	Reason           string  `json:"reason,omitempty"`
}

// CatalogSource resolves the reservation's room up to its property, whose
// timezone and policy govern the refund.
type CatalogSource interface {
	FindRoomByID(ctx context.Context, id string) (*model.Room, error)
	FindPropertyByID(ctx context.Context, id string) (*model.Property, error)
}

// PolicySource yields the active policy and its rules.
type PolicySource interface {
	FindActiveForProperty(ctx context.Context, propertyID string, at time.Time) (*model.CancellationPolicy, error)
	FindRulesForPolicy(ctx context.Context, policyID string) ([]*model.CancellationRefundRule, error)
}

type Calculator struct {
	catalog  CatalogSource
	policies PolicySource
	log      *logger.Logger
}

func NewCalculator(catalog CatalogSource, policies PolicySource, log *logger.Logger) *Calculator {
	return &Calculator{
		catalog:  catalog,
		policies: policies,
		log:      log,
	}
}

// Calculate computes the refund for cancelling the reservation at the given
// moment. cancelledAt is always explicit so callers control the clock.
func (c *Calculator) Calculate(ctx context.Context, reservation *model.Reservation, cancelledAt time.Time) (*Result, error) {
	room, err := c.catalog.FindRoomByID(ctx, reservation.RoomID)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrRoomNotFound) || errors.Is(err, catalogerrors.ErrInvalidID) {
			return c.zeroRefund(reservation, ReasonNoRoomOrProperty), nil
		}
		return nil, fmt.Errorf("failed to resolve room: %w", err)
	}

	property, err := c.catalog.FindPropertyByID(ctx, room.PropertyID)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrPropertyNotFound) || errors.Is(err, catalogerrors.ErrInvalidID) {
			return c.zeroRefund(reservation, ReasonNoRoomOrProperty), nil
		}
		return nil, fmt.Errorf("failed to resolve property: %w", err)
	}

	policy, err := c.policies.FindActiveForProperty(ctx, property.ID, cancelledAt)
	if err != nil {
		if errors.Is(err, policyerrors.ErrNoPolicyActive) {
			return c.zeroRefund(reservation, ReasonNoActivePolicy), nil
		}
		return nil, fmt.Errorf("failed to resolve cancellation policy: %w", err)
	}
	if !policy.Covers(cancelledAt) {
		c.log.Warn("Policy returned outside its applicability window",
			"policy_id", policy.ID, "cancelled_at", cancelledAt)
		return c.zeroRefund(reservation, ReasonNoActivePolicy), nil
	}

	days := daysUntilCheckin(cancelledAt, reservation.DateStart, property.Location())

	if days < 0 {
		result := c.zeroRefund(reservation, ReasonAfterCheckin)
		result.PolicyID = policy.ID
		result.DaysUntilCheckin = days
		return result, nil
	}

	rules, err := c.policies.FindRulesForPolicy(ctx, policy.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load refund rules: %w", err)
	}

	rule := bestMatch(rules, days)
	if rule == nil {
		result := c.zeroRefund(reservation, ReasonOutsideWindow)
		result.PolicyID = policy.ID
		result.DaysUntilCheckin = days
		return result, nil
	}

	refund := round2(reservation.TotalValue * rule.RefundPercent / 100)
	return &Result{
		RefundPercent:    rule.RefundPercent,
		RefundAmount:     refund,
		RetainedAmount:   round2(reservation.TotalValue - refund),
		DaysUntilCheckin: days,
		PolicyID:         policy.ID,
		MatchedRuleID:    rule.ID,
		MatchedRuleLabel: rule.Label,
	}, nil
}

func (c *Calculator) zeroRefund(reservation *model.Reservation, reason string) *Result {
	return &Result{
		RefundPercent:  0,
		RefundAmount:   0,
		RetainedAmount: reservation.TotalValue,
		Reason:         reason,
	}
}

// daysUntilCheckin counts signed whole calendar days from the cancellation
// date to the check-in date, both taken in the property's timezone.
func daysUntilCheckin(cancelledAt, checkin time.Time, loc *time.Location) int {
	from := model.DayIn(cancelledAt, loc)
	to := model.DayIn(checkin, loc)
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// bestMatch picks the matching rule with the highest priority; at equal
// priority the narrower rule starting later (larger min) wins.
func bestMatch(rules []*model.CancellationRefundRule, days int) *model.CancellationRefundRule {
	var best *model.CancellationRefundRule
	for _, rule := range rules {
		if !rule.Matches(days) {
			continue
		}
		if best == nil ||
			rule.Priority > best.Priority ||
			(rule.Priority == best.Priority && rule.DaysBeforeCheckinMin > best.DaysBeforeCheckinMin) {
			best = rule
		}
	}
	return best
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
