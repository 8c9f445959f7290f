package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"innkeep/internal/availability"
	catalogerrors "innkeep/internal/catalog/errors"
	"innkeep/internal/pricing"
	"innkeep/internal/refund"
	reservationserrors "innkeep/internal/reservations/errors"
	"innkeep/internal/reservations/repository"
	"innkeep/internal/reservations/validator"
	"innkeep/pkg/audit"
	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const roomLockPrefix = "room_lock_"

// QuoteRequest asks for the price of a stay without creating anything.
type QuoteRequest struct {
	RoomID    string                 `json:"room_id"`
	Guests    model.GuestComposition `json:"guests"`
	DateStart time.Time              `json:"date_start"`
	DateEnd   time.Time              `json:"date_end"`
}

// AvailabilitySearch describes a room search across properties.
type AvailabilitySearch struct {
	Checkin     time.Time
	Checkout    time.Time
	Guests      model.GuestComposition
	PropertyIDs []string
}

// RoomOffer is a bookable room with its priced stay.
type RoomOffer struct {
	Room  *model.Room        `json:"room"`
	Price *pricing.StayPrice `json:"price"`
}

// CatalogStore is the slice of the catalog the reservation flow needs.
type CatalogStore interface {
	FindRoomByID(ctx context.Context, id string) (*model.Room, error)
	FindRooms(ctx context.Context, propertyIDs []string) ([]*model.Room, error)
}

// AvailabilityChecker reports whether a room can host a stay window.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, roomID string, dateStart, dateEnd time.Time, excludeReservationID string) (bool, *availability.Conflict, error)
}

// StayPricer resolves the per-night tariff cascade into a stay total.
type StayPricer interface {
	PriceForStay(ctx context.Context, roomID string, guests model.GuestComposition, dateStart, dateEnd time.Time) (*pricing.StayPrice, error)
}

// RefundCalculator computes the refund owed on cancellation.
type RefundCalculator interface {
	Calculate(ctx context.Context, reservation *model.Reservation, cancelledAt time.Time) (*refund.Result, error)
}

type ReservationService interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	Update(ctx context.Context, id string, updates *model.ReservationUpdate) error
	Cancel(ctx context.Context, id string, cancelledAt time.Time) (*refund.Result, error)
	Quote(ctx context.Context, req *QuoteRequest) (*pricing.StayPrice, error)
	SearchAvailable(ctx context.Context, search *AvailabilitySearch) ([]*RoomOffer, error)
}

type reservationService struct {
	repo      repository.ReservationRepository
	locks     repository.ReservationLockRepository
	catalog   CatalogStore
	checker   AvailabilityChecker
	pricer    StayPricer
	refunds   RefundCalculator
	validator *validator.ReservationValidator
	audit     audit.Publisher
	cfg       *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	locks repository.ReservationLockRepository,
	catalog CatalogStore,
	checker AvailabilityChecker,
	pricer StayPricer,
	refunds RefundCalculator,
	validator *validator.ReservationValidator,
	auditPublisher audit.Publisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		locks:     locks,
		catalog:   catalog,
		checker:   checker,
		pricer:    pricer,
		refunds:   refunds,
		validator: validator,
		audit:     auditPublisher,
		cfg:       cfg,
	}
}

// Create books a room for the requested window. Availability is re-checked
// inside a transaction while holding a per-room advisory lock, so two
// concurrent calls for overlapping dates cannot both pass the check.
// Every new reservation starts as pending; a caller-supplied status is
// ignored so nothing can be born confirmed or cancelled.
func (s *reservationService) Create(ctx context.Context, reservation *model.Reservation) error {
	reservation.Status = model.ReservationPending
	if err := s.validate(reservation); err != nil {
		return err
	}
	reservation.DateStart = model.Day(reservation.DateStart)
	reservation.DateEnd = model.Day(reservation.DateEnd)

	room, err := s.loadRoom(ctx, reservation.RoomID)
	if err != nil {
		return err
	}
	if err := s.checkCapacity(room, reservation.Guests); err != nil {
		s.recordRejection(ctx, reservation, err)
		return err
	}

	release, err := s.acquireRoomLock(ctx, reservation.RoomID)
	if err != nil {
		return err
	}
	defer release()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		available, conflict, err := s.checker.IsAvailable(sessCtx, reservation.RoomID, reservation.DateStart, reservation.DateEnd, "")
		if err != nil {
			return apperrors.Internal("Failed to check availability", err)
		}
		if !available {
			return apperrors.Conflict(conflict.Message())
		}

		price, err := s.priceStay(sessCtx, reservation.RoomID, reservation.Guests, reservation.DateStart, reservation.DateEnd)
		if err != nil {
			return err
		}
		reservation.TotalValue = price.Total

		return s.repo.Create(sessCtx, reservation)
	})
	if err != nil {
		appErr := apperrors.AsAppError(err)
		if appErr.Code == apperrors.CodeConflict || appErr.Code == apperrors.CodePricing {
			s.recordRejection(ctx, reservation, appErr)
			return appErr
		}
		s.cfg.Log.Error("Failed to create reservation", "room_id", reservation.RoomID, "error", err)
		return appErr
	}

	s.cfg.Log.Info("Reservation created successfully",
		"id", reservation.ID,
		"room_id", reservation.RoomID,
		"total_value", reservation.TotalValue,
	)
	s.audit.Record(ctx, audit.Event{
		EventType:  audit.EventReservationCreated,
		OccurredAt: time.Now().UTC(),
		Subject:    reservation.ID,
		Payload: map[string]interface{}{
			"room_id":     reservation.RoomID,
			"date_start":  reservation.DateStart.Format("2006-01-02"),
			"date_end":    reservation.DateEnd.Format("2006-01-02"),
			"total_value": reservation.TotalValue,
		},
	})
	return nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reservationserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}

	return reservation, nil
}

func (s *reservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

// Update merges the changes into the stored reservation. When dates or guest
// composition change the stay is re-checked for conflicts (excluding itself)
// and re-priced under the same lock-and-transaction discipline as Create.
func (s *reservationService) Update(ctx context.Context, id string, updates *model.ReservationUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !existing.IsActive() {
		return apperrors.InvalidInput("Cancelled reservations cannot be modified")
	}

	if updates.Status == model.ReservationCancelled {
		return apperrors.InvalidInput("Use the cancel endpoint to cancel a reservation")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Reservation update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeUpdates(existing, updates)
	if err := s.validate(merged); err != nil {
		return err
	}
	merged.DateStart = model.Day(merged.DateStart)
	merged.DateEnd = model.Day(merged.DateEnd)

	room, err := s.loadRoom(ctx, merged.RoomID)
	if err != nil {
		return err
	}
	if err := s.checkCapacity(room, merged.Guests); err != nil {
		return err
	}

	datesChanged := !merged.DateStart.Equal(existing.DateStart) || !merged.DateEnd.Equal(existing.DateEnd)
	guestsChanged := updates.Guests != nil && *updates.Guests != existing.Guests

	if !datesChanged && !guestsChanged {
		return s.persistUpdate(ctx, id, merged)
	}

	release, err := s.acquireRoomLock(ctx, merged.RoomID)
	if err != nil {
		return err
	}
	defer release()

	return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if datesChanged {
			available, conflict, err := s.checker.IsAvailable(sessCtx, merged.RoomID, merged.DateStart, merged.DateEnd, id)
			if err != nil {
				return apperrors.Internal("Failed to check availability", err)
			}
			if !available {
				return apperrors.Conflict(conflict.Message())
			}
		}

		price, err := s.priceStay(sessCtx, merged.RoomID, merged.Guests, merged.DateStart, merged.DateEnd)
		if err != nil {
			return err
		}
		merged.TotalValue = price.Total

		return s.persistUpdate(sessCtx, id, merged)
	})
}

// Cancel marks the reservation cancelled and returns the refund decision.
// cancelledAt defaults to the current server time when zero.
func (s *reservationService) Cancel(ctx context.Context, id string, cancelledAt time.Time) (*refund.Result, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == model.ReservationCancelled {
		return nil, apperrors.InvalidInput("Reservation is already cancelled")
	}

	if cancelledAt.IsZero() {
		cancelledAt = time.Now().UTC()
	}

	result, err := s.refunds.Calculate(ctx, existing, cancelledAt)
	if err != nil {
		s.cfg.Log.Error("Failed to calculate refund", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to calculate refund", err)
	}

	existing.Status = model.ReservationCancelled
	if err := s.persistUpdate(ctx, id, existing); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Reservation cancelled",
		"id", id,
		"refund_percent", result.RefundPercent,
		"refund_amount", result.RefundAmount,
		"reason", result.Reason,
	)
	s.audit.Record(ctx, audit.Event{
		EventType:  audit.EventReservationCancelled,
		OccurredAt: time.Now().UTC(),
		Subject:    id,
		Payload: map[string]interface{}{
			"room_id":      existing.RoomID,
			"cancelled_at": cancelledAt.Format(time.RFC3339),
		},
	})
	s.audit.Record(ctx, audit.Event{
		EventType:  audit.EventRefundCalculated,
		OccurredAt: time.Now().UTC(),
		Subject:    id,
		Payload: map[string]interface{}{
			"refund_percent":     result.RefundPercent,
			"refund_amount":      result.RefundAmount,
			"retained_amount":    result.RetainedAmount,
			"days_until_checkin": result.DaysUntilCheckin,
			"policy_id":          result.PolicyID,
			"matched_rule_id":    result.MatchedRuleID,
			"reason":             result.Reason,
		},
	})

	return result, nil
}

// Quote prices a stay without reserving it.
func (s *reservationService) Quote(ctx context.Context, req *QuoteRequest) (*pricing.StayPrice, error) {
	if req.RoomID == "" {
		return nil, apperrors.InvalidInput("room_id is required")
	}
	if !req.DateEnd.After(req.DateStart) {
		return nil, apperrors.InvalidInput("date_end must be after date_start")
	}
	if req.Guests.Adults < 1 {
		return nil, apperrors.InvalidInput("At least one adult is required")
	}

	room, err := s.loadRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCapacity(room, req.Guests); err != nil {
		return nil, err
	}

	return s.priceStay(ctx, req.RoomID, req.Guests, model.Day(req.DateStart), model.Day(req.DateEnd))
}

// SearchAvailable returns rooms that fit the guest composition, are free for
// the whole window, and have a resolvable price. Rooms whose tariff setup
// cannot price the stay are skipped rather than failing the search.
func (s *reservationService) SearchAvailable(ctx context.Context, search *AvailabilitySearch) ([]*RoomOffer, error) {
	if !search.Checkout.After(search.Checkin) {
		return nil, apperrors.InvalidInput("checkout must be after checkin")
	}
	if search.Guests.Adults < 1 {
		return nil, apperrors.InvalidInput("At least one adult is required")
	}

	checkin := model.Day(search.Checkin)
	checkout := model.Day(search.Checkout)

	rooms, err := s.catalog.FindRooms(ctx, search.PropertyIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to list rooms for availability search", "error", err)
		return nil, apperrors.Internal("Failed to search availability", err)
	}

	offers := make([]*RoomOffer, 0, len(rooms))
	for _, room := range rooms {
		if search.Guests.Occupancy() > room.Capacity {
			continue
		}

		available, _, err := s.checker.IsAvailable(ctx, room.ID, checkin, checkout, "")
		if err != nil {
			return nil, apperrors.Internal("Failed to check availability", err)
		}
		if !available {
			continue
		}

		price, err := s.pricer.PriceForStay(ctx, room.ID, search.Guests, checkin, checkout)
		if err != nil {
			if errors.Is(err, pricing.ErrNoTariff) {
				s.cfg.Log.Warn("Skipping unpriceable room in search", "room_id", room.ID, "error", err)
				continue
			}
			return nil, apperrors.Internal("Failed to price stay", err)
		}

		offers = append(offers, &RoomOffer{Room: room, Price: price})
	}

	return offers, nil
}

// --- Helpers ---

func (s *reservationService) validate(r *model.Reservation) error {
	if err := s.validator.Validate(r); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *reservationService) loadRoom(ctx context.Context, roomID string) (*model.Room, error) {
	room, err := s.catalog.FindRoomByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrRoomNotFound) {
			return nil, apperrors.NotFoundWithID("Room", roomID)
		}
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}
	return room, nil
}

func (s *reservationService) checkCapacity(room *model.Room, guests model.GuestComposition) error {
	if guests.Occupancy() > room.Capacity {
		return apperrors.Capacity("Guest count exceeds room capacity", map[string]any{
			"capacity":  room.Capacity,
			"occupancy": guests.Occupancy(),
		})
	}
	return nil
}

// acquireRoomLock takes the per-room advisory lock. A duplicate key error
// means another request holds it; the caller gets a retryable conflict.
func (s *reservationService) acquireRoomLock(ctx context.Context, roomID string) (func(), error) {
	lockID := roomLockPrefix + roomID

	_, err := s.locks.Create(ctx, &model.ReservationLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.ReservationLockTTL),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			s.cfg.Log.Info("Room lock contention", "lock_id", lockID)
			return nil, apperrors.ConflictRetryable("Another booking for this room is in progress, please retry")
		}
		return nil, apperrors.Internal("Failed to acquire room lock", err)
	}

	release := func() {
		if err := s.locks.Delete(context.Background(), lockID); err != nil {
			s.cfg.Log.Warn("Failed to release room lock", "lock_id", lockID, "error", err)
		}
	}
	return release, nil
}

func (s *reservationService) priceStay(ctx context.Context, roomID string, guests model.GuestComposition, dateStart, dateEnd time.Time) (*pricing.StayPrice, error) {
	price, err := s.pricer.PriceForStay(ctx, roomID, guests, dateStart, dateEnd)
	if err != nil {
		if errors.Is(err, pricing.ErrNoTariff) {
			return nil, apperrors.Pricing("No tariff covers the requested stay", map[string]any{
				"room_id": roomID,
				"error":   err.Error(),
			})
		}
		return nil, apperrors.Internal("Failed to price stay", err)
	}
	if price.Total <= 0 {
		return nil, apperrors.Pricing("Resolved price is not positive", map[string]any{
			"room_id": roomID,
			"total":   price.Total,
		})
	}
	return price, nil
}

func (s *reservationService) persistUpdate(ctx context.Context, id string, reservation *model.Reservation) error {
	if _, err := s.repo.Update(ctx, id, reservation); err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Reservation", id)
		}
		s.cfg.Log.Error("Failed to update reservation", "id", id, "error", err)
		return apperrors.Internal("Failed to update reservation", err)
	}
	return nil
}

func (s *reservationService) mergeUpdates(existing *model.Reservation, updates *model.ReservationUpdate) *model.Reservation {
	merged := *existing

	if updates.Guests != nil {
		merged.Guests = *updates.Guests
	}
	if updates.DateStart != nil {
		merged.DateStart = *updates.DateStart
	}
	if updates.DateEnd != nil {
		merged.DateEnd = *updates.DateEnd
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	return &merged
}

func (s *reservationService) recordRejection(ctx context.Context, reservation *model.Reservation, cause error) {
	appErr := apperrors.AsAppError(cause)
	s.audit.Record(ctx, audit.Event{
		EventType:  audit.EventReservationRejected,
		OccurredAt: time.Now().UTC(),
		Subject:    reservation.RoomID,
		Payload: map[string]interface{}{
			"room_id":    reservation.RoomID,
			"date_start": reservation.DateStart.Format("2006-01-02"),
			"date_end":   reservation.DateEnd.Format("2006-01-02"),
			"code":       appErr.Code,
			"message":    appErr.Message,
		},
	})
}
