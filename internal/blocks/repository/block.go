package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	blockserrors "innkeep/internal/blocks/errors"
	"innkeep/pkg/config"
	"innkeep/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Room_blocks"
)

type BlockRepository interface {
	Create(ctx context.Context, block *model.RoomBlock) error
	FindByID(ctx context.Context, id string) (*model.RoomBlock, error)
	FindAll(ctx context.Context, roomID string, limit int, offset int64) ([]*model.RoomBlock, error)
	Count(ctx context.Context, roomID string) (int64, error)
	Update(ctx context.Context, id string, block *model.RoomBlock) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	FindForRoom(ctx context.Context, roomID string, from, to time.Time) ([]*model.RoomBlock, error)
}

type mongoBlockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBlockRepository(cfg *config.Config) BlockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBlockRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoBlockRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBlockRepository) Create(ctx context.Context, block *model.RoomBlock) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	block.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, block)
	if err != nil {
		return fmt.Errorf("failed to create room block: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		block.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBlockRepository) FindByID(ctx context.Context, id string) (*model.RoomBlock, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", blockserrors.ErrInvalidID, id)
	}

	var block model.RoomBlock
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&block)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, blockserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find room block: %w", err)
	}

	return &block, nil
}

func (r *mongoBlockRepository) FindAll(ctx context.Context, roomID string, limit int, offset int64) ([]*model.RoomBlock, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if roomID != "" {
		filter["room_id"] = roomID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date_start", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find room blocks: %w", err)
	}
	defer cursor.Close(ctx)

	var blocks []*model.RoomBlock
	if err = cursor.All(ctx, &blocks); err != nil {
		return nil, fmt.Errorf("failed to decode room blocks: %w", err)
	}

	return blocks, nil
}

func (r *mongoBlockRepository) Count(ctx context.Context, roomID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if roomID != "" {
		filter["room_id"] = roomID
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count room blocks: %w", err)
	}

	return count, nil
}

func (r *mongoBlockRepository) Update(ctx context.Context, id string, block *model.RoomBlock) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", blockserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"date_start": block.DateStart,
			"date_end":   block.DateEnd,
			"type":       block.Type,
			"recurrence": block.Recurrence,
			"reason":     block.Reason,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update room block: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, blockserrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoBlockRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", blockserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete room block: %w", err)
	}

	if result.DeletedCount == 0 {
		return blockserrors.ErrNotFound
	}

	return nil
}

// FindForRoom returns blocks that can produce occurrences inside [from, to).
// Recurring blocks match on date_start alone because their pattern repeats
// indefinitely past the stored date_end.
func (r *mongoBlockRepository) FindForRoom(ctx context.Context, roomID string, from, to time.Time) ([]*model.RoomBlock, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"room_id": roomID,
		"$or": []bson.M{
			{
				"recurrence": bson.M{"$in": []string{model.RecurrenceWeekly, model.RecurrenceMonthly}},
				"date_start": bson.M{"$lt": to},
			},
			{
				"recurrence": bson.M{"$in": []string{model.RecurrenceNone, model.RecurrenceDaily}},
				"date_start": bson.M{"$lt": to},
				"date_end":   bson.M{"$gt": from},
			},
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find room blocks for window: %w", err)
	}
	defer cursor.Close(ctx)

	var blocks []*model.RoomBlock
	if err = cursor.All(ctx, &blocks); err != nil {
		return nil, fmt.Errorf("failed to decode room blocks: %w", err)
	}

	return blocks, nil
}
