package refund

import (
	"context"
	"testing"
	"time"

	catalogerrors "innkeep/internal/catalog/errors"
	policyerrors "innkeep/internal/policies/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

type mockCatalog struct {
	findRoomByID     func(ctx context.Context, id string) (*model.Room, error)
	findPropertyByID func(ctx context.Context, id string) (*model.Property, error)
}

func (m *mockCatalog) FindRoomByID(ctx context.Context, id string) (*model.Room, error) {
	return m.findRoomByID(ctx, id)
}

func (m *mockCatalog) FindPropertyByID(ctx context.Context, id string) (*model.Property, error) {
	return m.findPropertyByID(ctx, id)
}

type mockPolicies struct {
	findActiveForProperty func(ctx context.Context, propertyID string, at time.Time) (*model.CancellationPolicy, error)
	findRulesForPolicy    func(ctx context.Context, policyID string) ([]*model.CancellationRefundRule, error)
}

func (m *mockPolicies) FindActiveForProperty(ctx context.Context, propertyID string, at time.Time) (*model.CancellationPolicy, error) {
	return m.findActiveForProperty(ctx, propertyID, at)
}

func (m *mockPolicies) FindRulesForPolicy(ctx context.Context, policyID string) ([]*model.CancellationRefundRule, error) {
	return m.findRulesForPolicy(ctx, policyID)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func standardSetup(timezone string) (*mockCatalog, *mockPolicies) {
	catalog := &mockCatalog{
		findRoomByID: func(ctx context.Context, id string) (*model.Room, error) {
			return &model.Room{ID: id, PropertyID: "prop1", Capacity: 2}, nil
		},
		findPropertyByID: func(ctx context.Context, id string) (*model.Property, error) {
			return &model.Property{ID: id, Timezone: timezone}, nil
		},
	}
	policies := &mockPolicies{
		findActiveForProperty: func(ctx context.Context, propertyID string, at time.Time) (*model.CancellationPolicy, error) {
			return &model.CancellationPolicy{ID: "pol1", PropertyID: propertyID, Active: true, AppliesFrom: date(2020, 1, 1)}, nil
		},
		findRulesForPolicy: func(ctx context.Context, policyID string) ([]*model.CancellationRefundRule, error) {
			return []*model.CancellationRefundRule{
				{ID: "r1", PolicyID: policyID, DaysBeforeCheckinMin: 7, DaysBeforeCheckinMax: 999, RefundPercent: 100, Label: "7+ days"},
				{ID: "r2", PolicyID: policyID, DaysBeforeCheckinMin: 3, DaysBeforeCheckinMax: 6, RefundPercent: 50, Label: "3-6 days"},
				{ID: "r3", PolicyID: policyID, DaysBeforeCheckinMin: 0, DaysBeforeCheckinMax: 2, RefundPercent: 0, Label: "0-2 days"},
			}, nil
		},
	}
	return catalog, policies
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Service: "test"})
}

func reservation(total float64, checkin time.Time) *model.Reservation {
	return &model.Reservation{
		ID: "res1", RoomID: "room1", Status: model.ReservationConfirmed,
		DateStart: checkin, DateEnd: checkin.AddDate(0, 0, 3),
		TotalValue: total,
	}
}

func TestCalculateTieredRefund(t *testing.T) {
	catalog, policies := standardSetup("")
	calc := NewCalculator(catalog, policies, testLogger())

	res := reservation(1000, date(2026, 9, 20))

	// 5 days before check-in falls in the 3-6 day tier
	result, err := calc.Calculate(context.Background(), res, date(2026, 9, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.RefundPercent != 50 {
		t.Errorf("expected 50%%, got %.0f%%", result.RefundPercent)
	}
	if result.RefundAmount != 500 || result.RetainedAmount != 500 {
		t.Errorf("expected 500/500 split, got %.2f/%.2f", result.RefundAmount, result.RetainedAmount)
	}
	if result.MatchedRuleLabel != "3-6 days" {
		t.Errorf("expected rule label '3-6 days', got %q", result.MatchedRuleLabel)
	}
	if result.DaysUntilCheckin != 5 {
		t.Errorf("expected 5 days until check-in, got %d", result.DaysUntilCheckin)
	}
}

func TestCalculateDefaultDeny(t *testing.T) {
	tests := []struct {
		name       string
		setup      func() (*mockCatalog, *mockPolicies)
		cancelAt   time.Time
		wantReason string
	}{
		{
			name: "missing room",
			setup: func() (*mockCatalog, *mockPolicies) {
				catalog, policies := standardSetup("")
				catalog.findRoomByID = func(ctx context.Context, id string) (*model.Room, error) {
					return nil, catalogerrors.ErrRoomNotFound
				}
				return catalog, policies
			},
			cancelAt:   date(2026, 9, 10),
			wantReason: ReasonNoRoomOrProperty,
		},
		{
			name: "missing property",
			setup: func() (*mockCatalog, *mockPolicies) {
				catalog, policies := standardSetup("")
				catalog.findPropertyByID = func(ctx context.Context, id string) (*model.Property, error) {
					return nil, catalogerrors.ErrPropertyNotFound
				}
				return catalog, policies
			},
			cancelAt:   date(2026, 9, 10),
			wantReason: ReasonNoRoomOrProperty,
		},
		{
			name: "no active policy",
			setup: func() (*mockCatalog, *mockPolicies) {
				catalog, policies := standardSetup("")
				policies.findActiveForProperty = func(ctx context.Context, propertyID string, at time.Time) (*model.CancellationPolicy, error) {
					return nil, policyerrors.ErrNoPolicyActive
				}
				return catalog, policies
			},
			cancelAt:   date(2026, 9, 10),
			wantReason: ReasonNoActivePolicy,
		},
		{
			name: "after check-in",
			setup: func() (*mockCatalog, *mockPolicies) {
				return standardSetup("")
			},
			cancelAt:   date(2026, 9, 22),
			wantReason: ReasonAfterCheckin,
		},
		{
			name: "no matching rule",
			setup: func() (*mockCatalog, *mockPolicies) {
				catalog, policies := standardSetup("")
				policies.findRulesForPolicy = func(ctx context.Context, policyID string) ([]*model.CancellationRefundRule, error) {
					return []*model.CancellationRefundRule{
						{ID: "r1", PolicyID: policyID, DaysBeforeCheckinMin: 30, DaysBeforeCheckinMax: 999, RefundPercent: 100},
					}, nil
				}
				return catalog, policies
			},
			cancelAt:   date(2026, 9, 15),
			wantReason: ReasonOutsideWindow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, policies := tt.setup()
			calc := NewCalculator(catalog, policies, testLogger())

			res := reservation(1000, date(2026, 9, 20))
			result, err := calc.Calculate(context.Background(), res, tt.cancelAt)
			if err != nil {
				t.Fatalf("zero-refund outcomes must not be errors, got: %v", err)
			}

			if result.RefundAmount != 0 {
				t.Errorf("expected zero refund, got %.2f", result.RefundAmount)
			}
			if result.RetainedAmount != 1000 {
				t.Errorf("expected full retention, got %.2f", result.RetainedAmount)
			}
			if result.Reason != tt.wantReason {
				t.Errorf("expected reason %q, got %q", tt.wantReason, result.Reason)
			}
		})
	}
}

func TestCalculateRejectsPolicyOutsideItsWindow(t *testing.T) {
	catalog, policies := standardSetup("")
	appliesTo := date(2026, 6, 30)
	policies.findActiveForProperty = func(ctx context.Context, propertyID string, at time.Time) (*model.CancellationPolicy, error) {
		return &model.CancellationPolicy{
			ID: "pol-expired", PropertyID: propertyID, Active: true,
			AppliesFrom: date(2020, 1, 1), AppliesTo: &appliesTo,
		}, nil
	}
	policies.findRulesForPolicy = func(ctx context.Context, policyID string) ([]*model.CancellationRefundRule, error) {
		t.Fatal("rules must not be consulted for a policy outside its window")
		return nil, nil
	}
	calc := NewCalculator(catalog, policies, testLogger())

	res := reservation(1000, date(2026, 9, 20))
	result, err := calc.Calculate(context.Background(), res, date(2026, 9, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.RefundAmount != 0 || result.RetainedAmount != 1000 {
		t.Errorf("expected zero refund, got %.2f/%.2f", result.RefundAmount, result.RetainedAmount)
	}
	if result.Reason != ReasonNoActivePolicy {
		t.Errorf("expected reason %q, got %q", ReasonNoActivePolicy, result.Reason)
	}
}

func TestCalculateRuleTieBreak(t *testing.T) {
	catalog, policies := standardSetup("")
	policies.findRulesForPolicy = func(ctx context.Context, policyID string) ([]*model.CancellationRefundRule, error) {
		return []*model.CancellationRefundRule{
			{ID: "broad", PolicyID: policyID, DaysBeforeCheckinMin: 0, DaysBeforeCheckinMax: 999, RefundPercent: 20, Priority: 1},
			{ID: "priority", PolicyID: policyID, DaysBeforeCheckinMin: 0, DaysBeforeCheckinMax: 999, RefundPercent: 80, Priority: 5},
			{ID: "narrow", PolicyID: policyID, DaysBeforeCheckinMin: 4, DaysBeforeCheckinMax: 10, RefundPercent: 60, Priority: 5},
		}, nil
	}
	calc := NewCalculator(catalog, policies, testLogger())

	res := reservation(1000, date(2026, 9, 20))
	result, err := calc.Calculate(context.Background(), res, date(2026, 9, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both priority-5 rules match 5 days out; the one with the larger min wins
	if result.MatchedRuleID != "narrow" {
		t.Errorf("expected rule 'narrow', got %q", result.MatchedRuleID)
	}
	if result.RefundAmount != 600 {
		t.Errorf("expected 600, got %.2f", result.RefundAmount)
	}
}

func TestCalculateMonotonicity(t *testing.T) {
	catalog, policies := standardSetup("")
	calc := NewCalculator(catalog, policies, testLogger())

	checkin := date(2026, 9, 20)
	res := reservation(1000, checkin)

	prev := -1.0
	for daysBefore := 0; daysBefore <= 12; daysBefore++ {
		cancelAt := checkin.AddDate(0, 0, -daysBefore)
		result, err := calc.Calculate(context.Background(), res, cancelAt)
		if err != nil {
			t.Fatalf("unexpected error at %d days: %v", daysBefore, err)
		}
		if result.RefundAmount < prev {
			t.Errorf("refund must not decrease with earlier cancellation: %d days -> %.2f after %.2f",
				daysBefore, result.RefundAmount, prev)
		}
		prev = result.RefundAmount
	}
}

func TestCalculateUsesPropertyTimezone(t *testing.T) {
	catalog, policies := standardSetup("Pacific/Auckland")
	calc := NewCalculator(catalog, policies, testLogger())

	// 2026-09-12 23:00 UTC is already 2026-09-13 in Auckland, so only 7 days
	// remain before the 2026-09-20 check-in, landing exactly on the 100% tier.
	res := reservation(1000, date(2026, 9, 20))
	cancelAt := time.Date(2026, 9, 12, 23, 0, 0, 0, time.UTC)

	result, err := calc.Calculate(context.Background(), res, cancelAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DaysUntilCheckin != 7 {
		t.Errorf("expected 7 calendar days in property timezone, got %d", result.DaysUntilCheckin)
	}
	if result.RefundPercent != 100 {
		t.Errorf("expected 100%%, got %.0f%%", result.RefundPercent)
	}
}
