package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"innkeep/internal/availability"
	blockserrors "innkeep/internal/blocks/errors"
	"innkeep/internal/blocks/repository"
	"innkeep/internal/blocks/validator"
	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/model"
	"innkeep/pkg/sanitizer"
)

type BlockService interface {
	Create(ctx context.Context, block *model.RoomBlock) error
	GetByID(ctx context.Context, id string) (*model.RoomBlock, error)
	GetAll(ctx context.Context, roomID string, limit int, offset int64) ([]*model.RoomBlock, int64, error)
	Update(ctx context.Context, id string, updates *model.RoomBlockUpdate) error
	Delete(ctx context.Context, id string) error
	ExpandDates(ctx context.Context, roomID string, from, to time.Time) ([]time.Time, error)
}

type blockService struct {
	repo      repository.BlockRepository
	validator *validator.BlockValidator
	cfg       *config.Config
}

func NewBlockService(
	repo repository.BlockRepository,
	validator *validator.BlockValidator,
	cfg *config.Config,
) BlockService {
	return &blockService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *blockService) Create(ctx context.Context, block *model.RoomBlock) error {
	s.applyDefaults(block)
	s.sanitize(block)
	if err := s.validate(block); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, block); err != nil {
		s.cfg.Log.Error("Failed to create room block", "room_id", block.RoomID, "error", err)
		return apperrors.Internal("Failed to create room block", err)
	}

	s.cfg.Log.Info("Room block created successfully",
		"id", block.ID,
		"room_id", block.RoomID,
		"type", block.Type,
		"recurrence", block.Recurrence,
	)
	return nil
}

func (s *blockService) GetByID(ctx context.Context, id string) (*model.RoomBlock, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room block ID cannot be empty")
	}

	block, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, blockserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Room block", id)
		}
		if errors.Is(err, blockserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room block ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve room block", err)
	}

	return block, nil
}

func (s *blockService) GetAll(ctx context.Context, roomID string, limit int, offset int64) ([]*model.RoomBlock, int64, error) {
	var count int64
	var blocks []*model.RoomBlock
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, roomID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count room blocks", "error", errCount)
			errCount = apperrors.Internal("Failed to count room blocks", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		blocks, errFind = s.repo.FindAll(ctx, roomID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list room blocks", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve room blocks", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return blocks, count, nil
}

func (s *blockService) Update(ctx context.Context, id string, updates *model.RoomBlockUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Room block ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Room block update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeBlockUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return err
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, blockserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room block", id)
		}
		s.cfg.Log.Error("Failed to update room block", "id", id, "error", err)
		return apperrors.Internal("Failed to update room block", err)
	}

	s.cfg.Log.Info("Room block updated successfully", "id", id)
	return nil
}

func (s *blockService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Room block ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, blockserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room block", id)
		}
		if errors.Is(err, blockserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid room block ID format")
		}
		return apperrors.Internal("Failed to delete room block", err)
	}

	s.cfg.Log.Info("Room block deleted successfully", "id", id)
	return nil
}

// ExpandDates returns every blocked date for the room inside [from, to),
// merging the expansions of all matching blocks.
func (s *blockService) ExpandDates(ctx context.Context, roomID string, from, to time.Time) ([]time.Time, error) {
	if roomID == "" {
		return nil, apperrors.InvalidInput("room_id is required")
	}
	if !to.After(from) {
		return nil, apperrors.InvalidInput("to must be after from")
	}

	blocks, err := s.repo.FindForRoom(ctx, roomID, from, to)
	if err != nil {
		s.cfg.Log.Error("Failed to load room blocks for expansion", "room_id", roomID, "error", err)
		return nil, apperrors.Internal("Failed to expand room blocks", err)
	}

	return availability.ExpandAll(blocks, from, to), nil
}

// --- Helpers ---

func (s *blockService) applyDefaults(b *model.RoomBlock) {
	if b.Recurrence == "" {
		b.Recurrence = model.RecurrenceNone
	}
	if b.Type == "" {
		b.Type = model.BlockCustom
	}
}

func (s *blockService) sanitize(b *model.RoomBlock) {
	b.Reason = sanitizer.SanitizeReason(b.Reason)
}

func (s *blockService) mergeBlockUpdates(existing *model.RoomBlock, updates *model.RoomBlockUpdate) *model.RoomBlock {
	merged := *existing

	if updates.DateStart != nil {
		merged.DateStart = *updates.DateStart
	}
	if updates.DateEnd != nil {
		merged.DateEnd = *updates.DateEnd
	}
	if updates.Type != "" {
		merged.Type = updates.Type
	}
	if updates.Recurrence != "" {
		merged.Recurrence = updates.Recurrence
	}
	if updates.Reason != nil {
		merged.Reason = *updates.Reason
	}

	return &merged
}

func (s *blockService) validate(block *model.RoomBlock) error {
	if err := s.validator.Validate(block); err != nil {
		s.cfg.Log.Warn("Room block validation failed", "error", err)
		return apperrors.Validation("Room block validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}
