package pricing

import (
	"context"
	"fmt"
	"time"

	"innkeep/pkg/config"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

// RateStore loads the rate records a stay resolves against. Implemented by
// the catalog repository.
type RateStore interface {
	FindRoomByID(ctx context.Context, id string) (*model.Room, error)
	FindPropertyByID(ctx context.Context, id string) (*model.Property, error)
	FindRoomRates(ctx context.Context, roomID string) ([]*model.RoomRate, error)
	FindRoomRatePeriods(ctx context.Context, roomID string, from, to time.Time) ([]*model.RoomRatePeriod, error)
	FindCategoryRates(ctx context.Context, categoryID string) ([]*model.RoomCategoryRate, error)
	FindCategoryRatePeriods(ctx context.Context, categoryID string, from, to time.Time) ([]*model.RoomCategoryRatePeriod, error)
}

type Resolver struct {
	store           RateStore
	childFactorMode string
	log             *logger.Logger
}

func NewResolver(store RateStore, cfg *config.Config) *Resolver {
	return &Resolver{
		store:           store,
		childFactorMode: cfg.ChildFactorMode,
		log:             cfg.Log,
	}
}

// LoadRates fetches every record the cascade may consult for a stay window.
func (r *Resolver) LoadRates(ctx context.Context, roomID string, from, to time.Time) (*RateSet, error) {
	room, err := r.store.FindRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	property, err := r.store.FindPropertyByID(ctx, room.PropertyID)
	if err != nil {
		return nil, err
	}

	rs := &RateSet{Room: room, Property: property}

	if rs.RoomRates, err = r.store.FindRoomRates(ctx, roomID); err != nil {
		return nil, fmt.Errorf("failed to load room rates: %w", err)
	}
	if rs.RoomRatePeriods, err = r.store.FindRoomRatePeriods(ctx, roomID, from, to); err != nil {
		return nil, fmt.Errorf("failed to load room rate periods: %w", err)
	}

	if room.HasCategory() {
		if rs.CategoryRates, err = r.store.FindCategoryRates(ctx, room.CategoryID); err != nil {
			return nil, fmt.Errorf("failed to load category rates: %w", err)
		}
		if rs.CategoryRatePeriods, err = r.store.FindCategoryRatePeriods(ctx, room.CategoryID, from, to); err != nil {
			return nil, fmt.Errorf("failed to load category rate periods: %w", err)
		}
	}

	return rs, nil
}

// PriceForStay prices every night in [dateStart, dateEnd). Rate records are
// loaded once, then each night resolves purely through the cascade.
func (r *Resolver) PriceForStay(ctx context.Context, roomID string, guests model.GuestComposition, dateStart, dateEnd time.Time) (*StayPrice, error) {
	start := model.Day(dateStart)
	end := model.Day(dateEnd)
	if !end.After(start) {
		return nil, fmt.Errorf("stay must span at least one night")
	}

	rs, err := r.LoadRates(ctx, roomID, start, end)
	if err != nil {
		return nil, err
	}

	stay := &StayPrice{}
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		night, err := r.PriceForNight(rs, guests, day)
		if err != nil {
			r.log.Warn("No tariff resolves for night",
				"room_id", roomID,
				"date", day.Format("2006-01-02"),
				"occupancy", guests.Occupancy(),
			)
			return nil, fmt.Errorf("%w: %s", ErrNoTariff, day.Format("2006-01-02"))
		}
		stay.Nights = append(stay.Nights, night)
		stay.Total += night.Price
	}

	return stay, nil
}
