package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	policyerrors "innkeep/internal/policies/errors"
	"innkeep/pkg/config"
	"innkeep/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	PoliciesCollection    = "Cancellation_policies"
	RefundRulesCollection = "Cancellation_refund_rules"
)

// PolicyRepository is the read store for cancellation policies and their
// refund rules. The refund calculator never mutates policy data.
type PolicyRepository interface {
	FindActiveForProperty(ctx context.Context, propertyID string, at time.Time) (*model.CancellationPolicy, error)
	FindRulesForPolicy(ctx context.Context, policyID string) ([]*model.CancellationRefundRule, error)
}

type mongoPolicyRepository struct {
	cfg      *config.Config
	policies *mongo.Collection
	rules    *mongo.Collection
}

func NewMongoPolicyRepository(cfg *config.Config) PolicyRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPolicyRepository{
		cfg:      cfg,
		policies: db.Collection(PoliciesCollection),
		rules:    db.Collection(RefundRulesCollection),
	}
}

func (r *mongoPolicyRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.cfg.ReadTimeout)
}

// FindActiveForProperty returns the active policy whose applicability window
// contains at. An absent applies_to means the policy is open-ended.
func (r *mongoPolicyRepository) FindActiveForProperty(ctx context.Context, propertyID string, at time.Time) (*model.CancellationPolicy, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"property_id":  propertyID,
		"active":       true,
		"applies_from": bson.M{"$lte": at},
		"$or": []bson.M{
			{"applies_to": bson.M{"$exists": false}},
			{"applies_to": nil},
			{"applies_to": bson.M{"$gte": at}},
		},
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "applies_from", Value: -1}})

	var policy model.CancellationPolicy
	err := r.policies.FindOne(ctx, filter, opts).Decode(&policy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, policyerrors.ErrNoPolicyActive
		}
		return nil, fmt.Errorf("failed to find cancellation policy: %w", err)
	}

	return &policy, nil
}

// FindRulesForPolicy returns rules ordered by priority descending then by
// days_before_checkin_min descending, the tie-break order rule matching uses.
func (r *mongoPolicyRepository) FindRulesForPolicy(ctx context.Context, policyID string) ([]*model.CancellationRefundRule, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "priority", Value: -1},
		{Key: "days_before_checkin_min", Value: -1},
	})

	cursor, err := r.rules.Find(ctx, bson.M{"policy_id": policyID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find refund rules: %w", err)
	}
	defer cursor.Close(ctx)

	var rules []*model.CancellationRefundRule
	if err = cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode refund rules: %w", err)
	}

	return rules, nil
}
