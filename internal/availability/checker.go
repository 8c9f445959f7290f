package availability

import (
	"context"
	"fmt"
	"time"

	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

const (
	ConflictReservation = "reservation"
	ConflictBlock       = "block"
)

// Conflict describes why a stay cannot be hosted.
type Conflict struct {
	Kind      string    `json:"kind"`
	DateStart time.Time `json:"date_start"`
	DateEnd   time.Time `json:"date_end"`
	BlockType string    `json:"block_type,omitempty"`
}

// Message renders the conflict for the 409 response body.
func (c *Conflict) Message() string {
	if c.Kind == ConflictBlock {
		return fmt.Sprintf("Room is blocked (%s) on %s", c.BlockType, c.DateStart.Format("2006-01-02"))
	}
	return fmt.Sprintf("Dates overlap an existing reservation (%s - %s)",
		c.DateStart.Format("2006-01-02"), c.DateEnd.Format("2006-01-02"))
}

// ReservationSource yields the non-cancelled reservations that overlap a
// half-open window.
type ReservationSource interface {
	FindOverlapping(ctx context.Context, roomID string, from, to time.Time) ([]*model.Reservation, error)
}

// BlockSource yields blocks whose pattern can produce dates inside a window.
type BlockSource interface {
	FindForRoom(ctx context.Context, roomID string, from, to time.Time) ([]*model.RoomBlock, error)
}

type Checker struct {
	reservations ReservationSource
	blocks       BlockSource
	log          *logger.Logger
}

func NewChecker(reservations ReservationSource, blocks BlockSource, log *logger.Logger) *Checker {
	return &Checker{
		reservations: reservations,
		blocks:       blocks,
		log:          log,
	}
}

// IsAvailable reports whether the room can host [dateStart, dateEnd).
// excludeReservationID skips a reservation being updated so it does not
// conflict with itself. Touching endpoints never conflict: a stay ending on a
// date and another starting on it share no occupied night.
func (c *Checker) IsAvailable(ctx context.Context, roomID string, dateStart, dateEnd time.Time, excludeReservationID string) (bool, *Conflict, error) {
	existing, err := c.reservations.FindOverlapping(ctx, roomID, dateStart, dateEnd)
	if err != nil {
		return false, nil, fmt.Errorf("failed to check overlapping reservations: %w", err)
	}

	for _, res := range existing {
		if res.ID == excludeReservationID {
			continue
		}
		if !res.IsActive() {
			continue
		}
		if overlaps(res.DateStart, res.DateEnd, dateStart, dateEnd) {
			return false, &Conflict{
				Kind:      ConflictReservation,
				DateStart: res.DateStart,
				DateEnd:   res.DateEnd,
			}, nil
		}
	}

	blocks, err := c.blocks.FindForRoom(ctx, roomID, dateStart, dateEnd)
	if err != nil {
		return false, nil, fmt.Errorf("failed to check room blocks: %w", err)
	}

	for _, block := range blocks {
		blocked := Expand(block, dateStart, dateEnd)
		if len(blocked) == 0 {
			continue
		}
		return false, &Conflict{
			Kind:      ConflictBlock,
			DateStart: blocked[0],
			DateEnd:   blocked[0].AddDate(0, 0, 1),
			BlockType: block.Type,
		}, nil
	}

	return true, nil, nil
}

func overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && end1.After(start2)
}
