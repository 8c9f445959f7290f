package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"innkeep/internal/migrations/mongo/validators"
)

var (
	ReservationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "room_id", Value: 1},
			{Key: "date_start", Value: 1},
			{Key: "date_end", Value: 1},
		}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	RoomBlocksIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "room_id", Value: 1},
			{Key: "date_start", Value: 1},
		}},
		{Keys: bson.D{{Key: "recurrence", Value: 1}}},
	}

	// Locks expire on their own so a crashed request cannot wedge a room.
	ReservationLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	RoomsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "property_id", Value: 1}}},
		{Keys: bson.D{{Key: "category_id", Value: 1}}},
	}

	RoomRatesIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "room_id", Value: 1}, {Key: "guest_count", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	RoomRatePeriodsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "room_id", Value: 1},
			{Key: "date_start", Value: 1},
			{Key: "date_end", Value: 1},
		}},
	}

	RoomCategoryRatesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "category_id", Value: 1}}},
	}

	RoomCategoryRatePeriodsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "category_id", Value: 1},
			{Key: "date_start", Value: 1},
			{Key: "date_end", Value: 1},
		}},
	}

	CancellationPoliciesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "property_id", Value: 1},
			{Key: "active", Value: 1},
			{Key: "applies_from", Value: -1},
		}},
	}

	CancellationRefundRulesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "policy_id", Value: 1},
			{Key: "priority", Value: -1},
		}},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("Running Mongo migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Reservations": {
			Indexes:   ReservationsIndexes,
			Validator: validators.ReservationValidator,
		},
		"Reservation_locks": {
			Indexes: ReservationLocksIndexes,
		},
		"Room_blocks": {
			Indexes:   RoomBlocksIndexes,
			Validator: validators.RoomBlockValidator,
		},
		"Rooms": {
			Indexes: RoomsIndexes,
		},
		"Room_rates": {
			Indexes: RoomRatesIndexes,
		},
		"Room_rate_periods": {
			Indexes: RoomRatePeriodsIndexes,
		},
		"Room_category_rates": {
			Indexes: RoomCategoryRatesIndexes,
		},
		"Room_category_rate_periods": {
			Indexes: RoomCategoryRatePeriodsIndexes,
		},
		"Cancellation_policies": {
			Indexes:   CancellationPoliciesIndexes,
			Validator: validators.CancellationPolicyValidator,
		},
		"Cancellation_refund_rules": {
			Indexes: CancellationRefundRulesIndexes,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("Creating collection: %s\n", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts = opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator != nil {
		fmt.Printf("Collection %s already exists, updating validator if needed\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}

	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("Ensured indexes for %s\n", name)
	return nil
}
