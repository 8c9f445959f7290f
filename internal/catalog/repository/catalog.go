package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogerrors "innkeep/internal/catalog/errors"
	"innkeep/pkg/config"
	"innkeep/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RoomsCollection               = "Rooms"
	PropertiesCollection          = "Properties"
	RoomRatesCollection           = "Room_rates"
	RoomRatePeriodsCollection     = "Room_rate_periods"
	CategoryRatesCollection       = "Room_category_rates"
	CategoryRatePeriodsCollection = "Room_category_rate_periods"
)

// CatalogRepository is the read store for the static side of the booking
// domain: rooms, properties and the five rate tiers the tariff cascade
// resolves against.
type CatalogRepository interface {
	FindRoomByID(ctx context.Context, id string) (*model.Room, error)
	FindRooms(ctx context.Context, propertyIDs []string) ([]*model.Room, error)
	FindPropertyByID(ctx context.Context, id string) (*model.Property, error)

	FindRoomRates(ctx context.Context, roomID string) ([]*model.RoomRate, error)
	FindRoomRatePeriods(ctx context.Context, roomID string, from, to time.Time) ([]*model.RoomRatePeriod, error)
	FindCategoryRates(ctx context.Context, categoryID string) ([]*model.RoomCategoryRate, error)
	FindCategoryRatePeriods(ctx context.Context, categoryID string, from, to time.Time) ([]*model.RoomCategoryRatePeriod, error)
}

type mongoCatalogRepository struct {
	cfg                 *config.Config
	rooms               *mongo.Collection
	properties          *mongo.Collection
	roomRates           *mongo.Collection
	roomRatePeriods     *mongo.Collection
	categoryRates       *mongo.Collection
	categoryRatePeriods *mongo.Collection
}

func NewMongoCatalogRepository(cfg *config.Config) CatalogRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCatalogRepository{
		cfg:                 cfg,
		rooms:               db.Collection(RoomsCollection),
		properties:          db.Collection(PropertiesCollection),
		roomRates:           db.Collection(RoomRatesCollection),
		roomRatePeriods:     db.Collection(RoomRatePeriodsCollection),
		categoryRates:       db.Collection(CategoryRatesCollection),
		categoryRatePeriods: db.Collection(CategoryRatePeriodsCollection),
	}
}

func (r *mongoCatalogRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.cfg.ReadTimeout)
}

func (r *mongoCatalogRepository) FindRoomByID(ctx context.Context, id string) (*model.Room, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	var room model.Room
	err = r.rooms.FindOne(ctx, bson.M{"_id": objectID}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}

	return &room, nil
}

func (r *mongoCatalogRepository) FindRooms(ctx context.Context, propertyIDs []string) ([]*model.Room, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if len(propertyIDs) > 0 {
		filter["property_id"] = bson.M{"$in": propertyIDs}
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.rooms.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var rooms []*model.Room
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}

	return rooms, nil
}

func (r *mongoCatalogRepository) FindPropertyByID(ctx context.Context, id string) (*model.Property, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	var property model.Property
	err = r.properties.FindOne(ctx, bson.M{"_id": objectID}).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}

	return &property, nil
}

func (r *mongoCatalogRepository) FindRoomRates(ctx context.Context, roomID string) ([]*model.RoomRate, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cursor, err := r.roomRates.Find(ctx, bson.M{"room_id": roomID})
	if err != nil {
		return nil, fmt.Errorf("failed to find room rates: %w", err)
	}
	defer cursor.Close(ctx)

	var rates []*model.RoomRate
	if err = cursor.All(ctx, &rates); err != nil {
		return nil, fmt.Errorf("failed to decode room rates: %w", err)
	}

	return rates, nil
}

// FindRoomRatePeriods returns period rates whose inclusive [date_start, date_end]
// window intersects the half-open stay [from, to).
func (r *mongoCatalogRepository) FindRoomRatePeriods(ctx context.Context, roomID string, from, to time.Time) ([]*model.RoomRatePeriod, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"room_id":    roomID,
		"date_start": bson.M{"$lt": to},
		"date_end":   bson.M{"$gte": from},
	}

	cursor, err := r.roomRatePeriods.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find room rate periods: %w", err)
	}
	defer cursor.Close(ctx)

	var periods []*model.RoomRatePeriod
	if err = cursor.All(ctx, &periods); err != nil {
		return nil, fmt.Errorf("failed to decode room rate periods: %w", err)
	}

	return periods, nil
}

func (r *mongoCatalogRepository) FindCategoryRates(ctx context.Context, categoryID string) ([]*model.RoomCategoryRate, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cursor, err := r.categoryRates.Find(ctx, bson.M{"category_id": categoryID})
	if err != nil {
		return nil, fmt.Errorf("failed to find category rates: %w", err)
	}
	defer cursor.Close(ctx)

	var rates []*model.RoomCategoryRate
	if err = cursor.All(ctx, &rates); err != nil {
		return nil, fmt.Errorf("failed to decode category rates: %w", err)
	}

	return rates, nil
}

func (r *mongoCatalogRepository) FindCategoryRatePeriods(ctx context.Context, categoryID string, from, to time.Time) ([]*model.RoomCategoryRatePeriod, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"category_id": categoryID,
		"date_start":  bson.M{"$lt": to},
		"date_end":    bson.M{"$gte": from},
	}

	cursor, err := r.categoryRatePeriods.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find category rate periods: %w", err)
	}
	defer cursor.Close(ctx)

	var periods []*model.RoomCategoryRatePeriod
	if err = cursor.All(ctx, &periods); err != nil {
		return nil, fmt.Errorf("failed to decode category rate periods: %w", err)
	}

	return periods, nil
}
