package repository

import (
	"context"
	"time"

	"innkeep/pkg/config"
	"innkeep/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LocksCollectionName = "Reservation_locks"
)

// ReservationLockRepository provides operations for room-level advisory locks.
// A TTL index on expires_at reaps locks leaked by crashed requests.
type ReservationLockRepository interface {
	Create(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error)
	Delete(ctx context.Context, lockID string) error
}

type mongoReservationLockRepository struct {
	collection *mongo.Collection
}

func NewReservationLockRepository(cfg *config.Config) ReservationLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationLockRepository{
		collection: db.Collection(LocksCollectionName),
	}
}

// Returns duplicate key error if the lock already exists
func (r *mongoReservationLockRepository) Create(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

// Delete removes an advisory lock
func (r *mongoReservationLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
