package pricing

import (
	"context"
	"reflect"
	"testing"
	"time"

	"innkeep/pkg/config"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

type mockRateStore struct {
	room                *model.Room
	property            *model.Property
	roomRates           []*model.RoomRate
	roomRatePeriods     []*model.RoomRatePeriod
	categoryRates       []*model.RoomCategoryRate
	categoryRatePeriods []*model.RoomCategoryRatePeriod
}

func (m *mockRateStore) FindRoomByID(ctx context.Context, id string) (*model.Room, error) {
	return m.room, nil
}

func (m *mockRateStore) FindPropertyByID(ctx context.Context, id string) (*model.Property, error) {
	return m.property, nil
}

func (m *mockRateStore) FindRoomRates(ctx context.Context, roomID string) ([]*model.RoomRate, error) {
	return m.roomRates, nil
}

func (m *mockRateStore) FindRoomRatePeriods(ctx context.Context, roomID string, from, to time.Time) ([]*model.RoomRatePeriod, error) {
	return m.roomRatePeriods, nil
}

func (m *mockRateStore) FindCategoryRates(ctx context.Context, categoryID string) ([]*model.RoomCategoryRate, error) {
	return m.categoryRates, nil
}

func (m *mockRateStore) FindCategoryRatePeriods(ctx context.Context, categoryID string, from, to time.Time) ([]*model.RoomCategoryRatePeriod, error) {
	return m.categoryRatePeriods, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testResolver(store RateStore, mode string) *Resolver {
	cfg := &config.Config{
		ChildFactorMode: mode,
		Log:             logger.New(logger.Config{Level: logger.ERROR, Service: "test"}),
	}
	return NewResolver(store, cfg)
}

func TestPriceForStayPeriodOverridesBase(t *testing.T) {
	store := &mockRateStore{
		room:     &model.Room{ID: "room1", PropertyID: "prop1", Capacity: 4},
		property: &model.Property{ID: "prop1"},
		roomRates: []*model.RoomRate{
			{RoomID: "room1", GuestCount: 2, PricePerNight: 100},
		},
		roomRatePeriods: []*model.RoomRatePeriod{
			{RoomID: "room1", GuestCount: 2, DateStart: date(2026, 12, 24), DateEnd: date(2026, 12, 31), PricePerNight: 350},
		},
	}
	resolver := testResolver(store, config.ChildFactorOff)

	guests := model.GuestComposition{Adults: 2}
	stay, err := resolver.PriceForStay(context.Background(), "room1", guests, date(2026, 12, 23), date(2026, 12, 25))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stay.Nights) != 2 {
		t.Fatalf("expected 2 nights, got %d", len(stay.Nights))
	}
	if stay.Nights[0].Price != 100 || stay.Nights[0].Source != SourceRoomBase {
		t.Errorf("night 1: got price=%.2f source=%s, want 100 %s", stay.Nights[0].Price, stay.Nights[0].Source, SourceRoomBase)
	}
	if stay.Nights[1].Price != 350 || stay.Nights[1].Source != SourceRoomPeriod {
		t.Errorf("night 2: got price=%.2f source=%s, want 350 %s", stay.Nights[1].Price, stay.Nights[1].Source, SourceRoomPeriod)
	}
	if stay.Total != 450 {
		t.Errorf("expected total 450, got %.2f", stay.Total)
	}
}

func TestCascadeTierOrder(t *testing.T) {
	day := date(2026, 6, 15)
	guests := model.GuestComposition{Adults: 2}

	full := func() *RateSet {
		return &RateSet{
			Room:     &model.Room{ID: "room1", PropertyID: "prop1", CategoryID: "cat1", Capacity: 4},
			Property: &model.Property{ID: "prop1", Rate: model.CompositionRate{BaseOneAdult: 50, BaseTwoAdults: 80, AdditionalAdult: 20}},
			RoomRates: []*model.RoomRate{
				{RoomID: "room1", GuestCount: 2, PricePerNight: 100},
			},
			RoomRatePeriods: []*model.RoomRatePeriod{
				{RoomID: "room1", GuestCount: 2, DateStart: date(2026, 6, 1), DateEnd: date(2026, 6, 30), PricePerNight: 200},
			},
			CategoryRates: []*model.RoomCategoryRate{
				{CategoryID: "cat1", Rate: model.CompositionRate{BaseOneAdult: 60, BaseTwoAdults: 90, AdditionalAdult: 25}},
			},
			CategoryRatePeriods: []*model.RoomCategoryRatePeriod{
				{CategoryID: "cat1", DateStart: date(2026, 6, 1), DateEnd: date(2026, 6, 30), Rate: model.CompositionRate{BaseOneAdult: 70, BaseTwoAdults: 110, AdditionalAdult: 30}},
			},
		}
	}

	tests := []struct {
		name       string
		mutate     func(rs *RateSet)
		wantPrice  float64
		wantSource string
	}{
		{
			name:       "room period wins over everything",
			mutate:     func(rs *RateSet) {},
			wantPrice:  200,
			wantSource: SourceRoomPeriod,
		},
		{
			name:       "category period when no room period",
			mutate:     func(rs *RateSet) { rs.RoomRatePeriods = nil },
			wantPrice:  110,
			wantSource: SourceCategoryPeriod,
		},
		{
			name: "room base when no periods",
			mutate: func(rs *RateSet) {
				rs.RoomRatePeriods = nil
				rs.CategoryRatePeriods = nil
			},
			wantPrice:  100,
			wantSource: SourceRoomBase,
		},
		{
			name: "category base when no flat match",
			mutate: func(rs *RateSet) {
				rs.RoomRatePeriods = nil
				rs.CategoryRatePeriods = nil
				rs.RoomRates = nil
			},
			wantPrice:  90,
			wantSource: SourceCategoryBase,
		},
		{
			name: "property base as last resort",
			mutate: func(rs *RateSet) {
				rs.RoomRatePeriods = nil
				rs.CategoryRatePeriods = nil
				rs.RoomRates = nil
				rs.CategoryRates = nil
			},
			wantPrice:  80,
			wantSource: SourcePropertyBase,
		},
	}

	resolver := testResolver(&mockRateStore{}, config.ChildFactorOff)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := full()
			tt.mutate(rs)

			night, err := resolver.PriceForNight(rs, guests, day)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if night.Price != tt.wantPrice {
				t.Errorf("expected price %.2f, got %.2f", tt.wantPrice, night.Price)
			}
			if night.Source != tt.wantSource {
				t.Errorf("expected source %s, got %s", tt.wantSource, night.Source)
			}
		})
	}
}

func TestRoomPeriodTieBreakLatestStart(t *testing.T) {
	rs := &RateSet{
		Room:     &model.Room{ID: "room1", PropertyID: "prop1", Capacity: 4},
		Property: &model.Property{ID: "prop1"},
		RoomRatePeriods: []*model.RoomRatePeriod{
			{RoomID: "room1", GuestCount: 2, DateStart: date(2026, 6, 1), DateEnd: date(2026, 6, 30), PricePerNight: 100},
			{RoomID: "room1", GuestCount: 2, DateStart: date(2026, 6, 10), DateEnd: date(2026, 6, 20), PricePerNight: 150},
		},
	}
	resolver := testResolver(&mockRateStore{}, config.ChildFactorOff)

	night, err := resolver.PriceForNight(rs, model.GuestComposition{Adults: 2}, date(2026, 6, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if night.Price != 150 {
		t.Errorf("expected the later-starting period to win, got %.2f", night.Price)
	}
}

func TestRoomPeriodTieBreakCreatedAt(t *testing.T) {
	start := date(2026, 6, 1)
	rs := &RateSet{
		Room:     &model.Room{ID: "room1", PropertyID: "prop1", Capacity: 4},
		Property: &model.Property{ID: "prop1"},
		RoomRatePeriods: []*model.RoomRatePeriod{
			{RoomID: "room1", GuestCount: 2, DateStart: start, DateEnd: date(2026, 6, 30), PricePerNight: 100, CreatedAt: date(2026, 1, 1)},
			{RoomID: "room1", GuestCount: 2, DateStart: start, DateEnd: date(2026, 6, 30), PricePerNight: 175, CreatedAt: date(2026, 2, 1)},
		},
	}
	resolver := testResolver(&mockRateStore{}, config.ChildFactorOff)

	night, err := resolver.PriceForNight(rs, model.GuestComposition{Adults: 2}, date(2026, 6, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if night.Price != 175 {
		t.Errorf("expected the most recently created period to win, got %.2f", night.Price)
	}
}

func TestPeriodWindowInclusiveBothEnds(t *testing.T) {
	rs := &RateSet{
		Room:     &model.Room{ID: "room1", PropertyID: "prop1", Capacity: 4},
		Property: &model.Property{ID: "prop1"},
		RoomRates: []*model.RoomRate{
			{RoomID: "room1", GuestCount: 2, PricePerNight: 100},
		},
		RoomRatePeriods: []*model.RoomRatePeriod{
			{RoomID: "room1", GuestCount: 2, DateStart: date(2026, 6, 10), DateEnd: date(2026, 6, 20), PricePerNight: 200},
		},
	}
	resolver := testResolver(&mockRateStore{}, config.ChildFactorOff)
	guests := model.GuestComposition{Adults: 2}

	tests := []struct {
		day  time.Time
		want float64
	}{
		{date(2026, 6, 9), 100},
		{date(2026, 6, 10), 200},
		{date(2026, 6, 20), 200},
		{date(2026, 6, 21), 100},
	}

	for _, tt := range tests {
		night, err := resolver.PriceForNight(rs, guests, tt.day)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.day, err)
		}
		if night.Price != tt.want {
			t.Errorf("day %s: expected %.2f, got %.2f", tt.day.Format("2006-01-02"), tt.want, night.Price)
		}
	}
}

func TestCompositionFormula(t *testing.T) {
	rate := model.CompositionRate{BaseOneAdult: 100, BaseTwoAdults: 160, AdditionalAdult: 40, ChildPrice: 25}
	property := &model.Property{ID: "prop1"}
	resolver := testResolver(&mockRateStore{}, config.ChildFactorOff)

	tests := []struct {
		name   string
		guests model.GuestComposition
		want   float64
	}{
		{"one adult", model.GuestComposition{Adults: 1}, 100},
		{"two adults", model.GuestComposition{Adults: 2}, 160},
		{"four adults", model.GuestComposition{Adults: 4}, 240},
		{"two adults two children", model.GuestComposition{Adults: 2, Children: 2}, 210},
		{"infants are free", model.GuestComposition{Adults: 2, Infants: 3}, 160},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, applied := resolver.compose(rate, tt.guests, property)
			if got != tt.want {
				t.Errorf("expected %.2f, got %.2f", tt.want, got)
			}
			if applied {
				t.Error("child factor must not apply when child price is set")
			}
		})
	}
}

func TestChildFactorFallback(t *testing.T) {
	rate := model.CompositionRate{BaseOneAdult: 100, BaseTwoAdults: 160, AdditionalAdult: 40}
	property := &model.Property{ID: "prop1", ChildFactor: 0.5}
	guests := model.GuestComposition{Adults: 2, Children: 2}

	fallback := testResolver(&mockRateStore{}, config.ChildFactorFallback)
	got, applied := fallback.compose(rate, guests, property)
	if got != 260 {
		t.Errorf("fallback mode: expected 160 + 2*50 = 260, got %.2f", got)
	}
	if !applied {
		t.Error("fallback mode: expected child factor marker on the night")
	}

	off := testResolver(&mockRateStore{}, config.ChildFactorOff)
	got, applied = off.compose(rate, guests, property)
	if got != 160 {
		t.Errorf("off mode: expected children free at zero child price, got %.2f", got)
	}
	if applied {
		t.Error("off mode: child factor must never apply")
	}
}

func TestNoTariffResolvable(t *testing.T) {
	store := &mockRateStore{
		room:     &model.Room{ID: "room1", PropertyID: "prop1", Capacity: 4},
		property: &model.Property{ID: "prop1"},
	}
	resolver := testResolver(store, config.ChildFactorOff)

	_, err := resolver.PriceForStay(context.Background(), "room1", model.GuestComposition{Adults: 2}, date(2026, 6, 1), date(2026, 6, 3))
	if err == nil {
		t.Fatal("expected error when no tier can price the stay")
	}
}

func TestPriceForStayDeterministic(t *testing.T) {
	store := &mockRateStore{
		room:     &model.Room{ID: "room1", PropertyID: "prop1", CategoryID: "cat1", Capacity: 4},
		property: &model.Property{ID: "prop1", ChildFactor: 0.4, Rate: model.CompositionRate{BaseOneAdult: 55, BaseTwoAdults: 85, AdditionalAdult: 22}},
		roomRates: []*model.RoomRate{
			{RoomID: "room1", GuestCount: 3, PricePerNight: 130},
		},
		categoryRates: []*model.RoomCategoryRate{
			{CategoryID: "cat1", Rate: model.CompositionRate{BaseOneAdult: 65, BaseTwoAdults: 95, AdditionalAdult: 28}},
		},
	}
	resolver := testResolver(store, config.ChildFactorFallback)
	guests := model.GuestComposition{Adults: 2, Children: 1}

	first, err := resolver.PriceForStay(context.Background(), "room1", guests, date(2026, 7, 1), date(2026, 7, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := resolver.PriceForStay(context.Background(), "room1", guests, date(2026, 7, 1), date(2026, 7, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical results for identical inputs")
	}
}
