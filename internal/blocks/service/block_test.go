package service

import (
	"context"
	"testing"
	"time"

	blockserrors "innkeep/internal/blocks/errors"
	"innkeep/internal/blocks/validator"
	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const testRoomID = "507f1f77bcf86cd799439011"

type mockBlockRepo struct {
	create      func(ctx context.Context, block *model.RoomBlock) error
	findByID    func(ctx context.Context, id string) (*model.RoomBlock, error)
	findAll     func(ctx context.Context, roomID string, limit int, offset int64) ([]*model.RoomBlock, error)
	count       func(ctx context.Context, roomID string) (int64, error)
	update      func(ctx context.Context, id string, block *model.RoomBlock) (*mongo.UpdateResult, error)
	delete      func(ctx context.Context, id string) error
	findForRoom func(ctx context.Context, roomID string, from, to time.Time) ([]*model.RoomBlock, error)
}

func (m *mockBlockRepo) Create(ctx context.Context, block *model.RoomBlock) error {
	return m.create(ctx, block)
}

func (m *mockBlockRepo) FindByID(ctx context.Context, id string) (*model.RoomBlock, error) {
	return m.findByID(ctx, id)
}

func (m *mockBlockRepo) FindAll(ctx context.Context, roomID string, limit int, offset int64) ([]*model.RoomBlock, error) {
	return m.findAll(ctx, roomID, limit, offset)
}

func (m *mockBlockRepo) Count(ctx context.Context, roomID string) (int64, error) {
	return m.count(ctx, roomID)
}

func (m *mockBlockRepo) Update(ctx context.Context, id string, block *model.RoomBlock) (*mongo.UpdateResult, error) {
	return m.update(ctx, id, block)
}

func (m *mockBlockRepo) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}

func (m *mockBlockRepo) FindForRoom(ctx context.Context, roomID string, from, to time.Time) ([]*model.RoomBlock, error) {
	return m.findForRoom(ctx, roomID, from, to)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testService(repo *mockBlockRepo) BlockService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{Level: logger.ERROR, Service: "test"}),
	}
	return NewBlockService(repo, validator.NewBlockValidator(cfg.Log), cfg)
}

func validBlock() *model.RoomBlock {
	return &model.RoomBlock{
		RoomID:     testRoomID,
		DateStart:  date(2026, 2, 18),
		DateEnd:    date(2026, 2, 25),
		Type:       model.BlockMaintenance,
		Recurrence: model.RecurrenceWeekly,
		Reason:     "boiler  inspection",
	}
}

func TestCreateAppliesDefaultsAndSanitizes(t *testing.T) {
	var stored *model.RoomBlock
	repo := &mockBlockRepo{
		create: func(ctx context.Context, block *model.RoomBlock) error {
			stored = block
			return nil
		},
	}
	svc := testService(repo)

	block := validBlock()
	block.Type = ""
	block.Recurrence = ""

	if err := svc.Create(context.Background(), block); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored.Type != model.BlockCustom {
		t.Errorf("expected default type %s, got %s", model.BlockCustom, stored.Type)
	}
	if stored.Recurrence != model.RecurrenceNone {
		t.Errorf("expected default recurrence %s, got %s", model.RecurrenceNone, stored.Recurrence)
	}
	if stored.Reason != "boiler inspection" {
		t.Errorf("expected sanitized reason, got %q", stored.Reason)
	}
}

func TestCreateValidation(t *testing.T) {
	repo := &mockBlockRepo{
		create: func(ctx context.Context, block *model.RoomBlock) error {
			t.Fatal("repository must not be called for invalid input")
			return nil
		},
	}
	svc := testService(repo)

	tests := []struct {
		name   string
		mutate func(b *model.RoomBlock)
	}{
		{"missing room", func(b *model.RoomBlock) { b.RoomID = "" }},
		{"malformed room id", func(b *model.RoomBlock) { b.RoomID = "not-an-oid" }},
		{"end before start", func(b *model.RoomBlock) { b.DateEnd = b.DateStart.AddDate(0, 0, -1) }},
		{"end equals start", func(b *model.RoomBlock) { b.DateEnd = b.DateStart }},
		{"unknown type", func(b *model.RoomBlock) { b.Type = "party" }},
		{"unknown recurrence", func(b *model.RoomBlock) { b.Recurrence = "yearly" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := validBlock()
			tt.mutate(block)

			err := svc.Create(context.Background(), block)
			if err == nil {
				t.Fatal("expected validation error")
			}
			appErr := apperrors.AsAppError(err)
			if appErr.Code != apperrors.CodeValidation {
				t.Errorf("expected %s, got %s", apperrors.CodeValidation, appErr.Code)
			}
		})
	}
}

func TestUpdateMergesFields(t *testing.T) {
	existing := validBlock()
	existing.ID = "507f1f77bcf86cd799439022"

	var updated *model.RoomBlock
	repo := &mockBlockRepo{
		findByID: func(ctx context.Context, id string) (*model.RoomBlock, error) {
			clone := *existing
			return &clone, nil
		},
		update: func(ctx context.Context, id string, block *model.RoomBlock) (*mongo.UpdateResult, error) {
			updated = block
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := testService(repo)

	newEnd := date(2026, 3, 1)
	err := svc.Update(context.Background(), existing.ID, &model.RoomBlockUpdate{
		DateEnd: &newEnd,
		Type:    model.BlockCleaning,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !updated.DateEnd.Equal(newEnd) {
		t.Errorf("expected merged date_end %v, got %v", newEnd, updated.DateEnd)
	}
	if updated.Type != model.BlockCleaning {
		t.Errorf("expected merged type, got %s", updated.Type)
	}
	if !updated.DateStart.Equal(existing.DateStart) {
		t.Error("unchanged fields must be preserved")
	}
}

func TestDeleteNotFound(t *testing.T) {
	repo := &mockBlockRepo{
		delete: func(ctx context.Context, id string) error {
			return blockserrors.ErrNotFound
		},
	}
	svc := testService(repo)

	err := svc.Delete(context.Background(), "507f1f77bcf86cd799439033")
	if err == nil {
		t.Fatal("expected error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", apperrors.AsAppError(err).Code)
	}
}

func TestExpandDates(t *testing.T) {
	repo := &mockBlockRepo{
		findForRoom: func(ctx context.Context, roomID string, from, to time.Time) ([]*model.RoomBlock, error) {
			return []*model.RoomBlock{
				{
					RoomID: roomID, Type: model.BlockMaintenance, Recurrence: model.RecurrenceWeekly,
					DateStart: date(2026, 2, 18), DateEnd: date(2026, 2, 25),
				},
				{
					RoomID: roomID, Type: model.BlockCleaning, Recurrence: model.RecurrenceNone,
					DateStart: date(2026, 2, 18), DateEnd: date(2026, 2, 20),
				},
			}, nil
		},
	}
	svc := testService(repo)

	dates, err := svc.ExpandDates(context.Background(), testRoomID, date(2026, 2, 18), date(2026, 3, 4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []time.Time{date(2026, 2, 18), date(2026, 2, 19), date(2026, 2, 25)}
	if len(dates) != len(want) {
		t.Fatalf("expected %d dates, got %d: %v", len(want), len(dates), dates)
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Errorf("date %d: expected %v, got %v", i, want[i], dates[i])
		}
	}
}

func TestExpandDatesInvalidInput(t *testing.T) {
	svc := testService(&mockBlockRepo{})

	if _, err := svc.ExpandDates(context.Background(), "", date(2026, 2, 1), date(2026, 3, 1)); err == nil {
		t.Error("expected error for missing room_id")
	}
	if _, err := svc.ExpandDates(context.Background(), testRoomID, date(2026, 3, 1), date(2026, 2, 1)); err == nil {
		t.Error("expected error for inverted window")
	}
}
