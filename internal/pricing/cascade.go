package pricing

import (
	"time"

	"innkeep/pkg/config"
	"innkeep/pkg/model"
)

// RateSet holds everything loaded once per stay; each night then resolves
// purely against it.
type RateSet struct {
	Room                *model.Room
	Property            *model.Property
	RoomRates           []*model.RoomRate
	RoomRatePeriods     []*model.RoomRatePeriod
	CategoryRates       []*model.RoomCategoryRate
	CategoryRatePeriods []*model.RoomCategoryRatePeriod
}

// tierResolver tries to price one night; ok=false means the tier does not
// apply and the cascade moves on.
type tierResolver func(rs *RateSet, guests model.GuestComposition, day time.Time) (NightPrice, bool)

func (r *Resolver) tiers() []tierResolver {
	return []tierResolver{
		r.resolveRoomPeriod,
		r.resolveCategoryPeriod,
		r.resolveRoomBase,
		r.resolveCategoryBase,
		r.resolvePropertyBase,
	}
}

// PriceForNight runs the cascade for a single night.
func (r *Resolver) PriceForNight(rs *RateSet, guests model.GuestComposition, day time.Time) (NightPrice, error) {
	for _, tier := range r.tiers() {
		if night, ok := tier(rs, guests, day); ok {
			return night, nil
		}
	}
	return NightPrice{}, ErrNoTariff
}

func (r *Resolver) resolveRoomPeriod(rs *RateSet, guests model.GuestComposition, day time.Time) (NightPrice, bool) {
	var best *model.RoomRatePeriod
	for _, p := range rs.RoomRatePeriods {
		if p.GuestCount != guests.Occupancy() {
			continue
		}
		if !model.ContainsDay(p.DateStart, p.DateEnd, day) {
			continue
		}
		if best == nil || laterRoomPeriod(p, best) {
			best = p
		}
	}
	if best == nil {
		return NightPrice{}, false
	}
	return NightPrice{
		Date:   model.Day(day),
		Price:  round2(best.PricePerNight),
		Source: SourceRoomPeriod,
	}, true
}

// laterRoomPeriod reports whether a beats b: latest DateStart wins, then
// latest CreatedAt.
func laterRoomPeriod(a, b *model.RoomRatePeriod) bool {
	if !a.DateStart.Equal(b.DateStart) {
		return a.DateStart.After(b.DateStart)
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func (r *Resolver) resolveCategoryPeriod(rs *RateSet, guests model.GuestComposition, day time.Time) (NightPrice, bool) {
	if !rs.Room.HasCategory() {
		return NightPrice{}, false
	}
	var best *model.RoomCategoryRatePeriod
	for _, p := range rs.CategoryRatePeriods {
		if !model.ContainsDay(p.DateStart, p.DateEnd, day) {
			continue
		}
		if p.Rate.IsZero() {
			continue
		}
		if best == nil || laterCategoryPeriod(p, best) {
			best = p
		}
	}
	if best == nil {
		return NightPrice{}, false
	}
	price, childFactorApplied := r.compose(best.Rate, guests, rs.Property)
	if price <= 0 {
		return NightPrice{}, false
	}
	return NightPrice{
		Date:               model.Day(day),
		Price:              price,
		Source:             SourceCategoryPeriod,
		ChildFactorApplied: childFactorApplied,
	}, true
}

func laterCategoryPeriod(a, b *model.RoomCategoryRatePeriod) bool {
	if !a.DateStart.Equal(b.DateStart) {
		return a.DateStart.After(b.DateStart)
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func (r *Resolver) resolveRoomBase(rs *RateSet, guests model.GuestComposition, day time.Time) (NightPrice, bool) {
	for _, rate := range rs.RoomRates {
		if rate.GuestCount == guests.Occupancy() {
			return NightPrice{
				Date:   model.Day(day),
				Price:  round2(rate.PricePerNight),
				Source: SourceRoomBase,
			}, true
		}
	}
	return NightPrice{}, false
}

func (r *Resolver) resolveCategoryBase(rs *RateSet, guests model.GuestComposition, day time.Time) (NightPrice, bool) {
	if !rs.Room.HasCategory() {
		return NightPrice{}, false
	}
	var best *model.RoomCategoryRate
	for _, rate := range rs.CategoryRates {
		if rate.Rate.IsZero() {
			continue
		}
		if best == nil || rate.CreatedAt.After(best.CreatedAt) {
			best = rate
		}
	}
	if best == nil {
		return NightPrice{}, false
	}
	price, childFactorApplied := r.compose(best.Rate, guests, rs.Property)
	if price <= 0 {
		return NightPrice{}, false
	}
	return NightPrice{
		Date:               model.Day(day),
		Price:              price,
		Source:             SourceCategoryBase,
		ChildFactorApplied: childFactorApplied,
	}, true
}

func (r *Resolver) resolvePropertyBase(rs *RateSet, guests model.GuestComposition, day time.Time) (NightPrice, bool) {
	if rs.Property == nil || rs.Property.Rate.IsZero() {
		return NightPrice{}, false
	}
	price, childFactorApplied := r.compose(rs.Property.Rate, guests, rs.Property)
	if price <= 0 {
		return NightPrice{}, false
	}
	return NightPrice{
		Date:               model.Day(day),
		Price:              price,
		Source:             SourcePropertyBase,
		ChildFactorApplied: childFactorApplied,
	}, true
}

// compose prices a night from a composition rate: one adult pays
// BaseOneAdult, two or more pay BaseTwoAdults plus AdditionalAdult for each
// adult beyond the second, children pay ChildPrice each, infants are free.
// In fallback mode an unset ChildPrice derives a per-child price from the
// property child factor and marks the night.
func (r *Resolver) compose(rate model.CompositionRate, guests model.GuestComposition, property *model.Property) (float64, bool) {
	var base float64
	switch {
	case guests.Adults <= 1:
		base = rate.BaseOneAdult
	default:
		base = rate.BaseTwoAdults + float64(guests.Adults-2)*rate.AdditionalAdult
	}

	childPrice := rate.ChildPrice
	childFactorApplied := false
	if r.childFactorMode == config.ChildFactorFallback &&
		childPrice == 0 && guests.Children > 0 &&
		property != nil && property.ChildFactor > 0 {
		childPrice = round2(rate.BaseOneAdult * property.ChildFactor)
		childFactorApplied = true
	}

	total := base + float64(guests.Children)*childPrice
	return round2(total), childFactorApplied
}
