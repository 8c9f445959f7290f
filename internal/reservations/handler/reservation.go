package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"innkeep/internal/reservations/service"
	apperrors "innkeep/pkg/errors"
	httputil "innkeep/pkg/http"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var reservation model.Reservation
	if err := json.NewDecoder(r.Body).Decode(&reservation); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &reservation); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	reservation, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	reservations, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.ReservationUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Update(r.Context(), id, &updates); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

type cancelRequest struct {
	CancelledAt string `json:"cancelled_at,omitempty"`
}

// Cancel accepts an optional cancelled_at timestamp (RFC 3339) in the body;
// an empty body means cancellation takes effect now.
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Cancel", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	var cancelledAt time.Time
	if req.CancelledAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.CancelledAt)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("cancelled_at must be an RFC 3339 timestamp")); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "Cancel", "operation", "WriteError", "error", writeErr)
			}
			return
		}
		cancelledAt = parsed
	}

	result, err := h.service.Cancel(r.Context(), id, cancelledAt)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Quote(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req service.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Quote", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	price, err := h.service.Quote(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Quote", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, price); err != nil {
		h.log.Error("failed to write success response", "handler", "Quote", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) SearchAvailable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	checkin, err := httputil.ExtractDate(r, "checkin")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SearchAvailable", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	checkout, err := httputil.ExtractDate(r, "checkout")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SearchAvailable", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	guests, err := extractGuests(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SearchAvailable", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	search := &service.AvailabilitySearch{
		Checkin:     checkin,
		Checkout:    checkout,
		Guests:      guests,
		PropertyIDs: extractPropertyIDs(r),
	}

	offers, err := h.service.SearchAvailable(r.Context(), search)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SearchAvailable", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, offers); err != nil {
		h.log.Error("failed to write success response", "handler", "SearchAvailable", "operation", "WriteSuccess", "error", err)
	}
}

func extractGuests(r *http.Request) (model.GuestComposition, error) {
	adults, err := extractIntParam(r, "adults", 1)
	if err != nil {
		return model.GuestComposition{}, err
	}
	children, err := extractIntParam(r, "children", 0)
	if err != nil {
		return model.GuestComposition{}, err
	}
	infants, err := extractIntParam(r, "infants", 0)
	if err != nil {
		return model.GuestComposition{}, err
	}

	return model.GuestComposition{Adults: adults, Children: children, Infants: infants}, nil
}

func extractIntParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, apperrors.InvalidInput(name + " must be a non-negative integer")
	}
	return value, nil
}

func extractPropertyIDs(r *http.Request) []string {
	raw := r.URL.Query().Get("property_ids")
	if raw == "" {
		return nil
	}

	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations", h.GetAll)
	router.POST("/api/v1/reservations/price", h.Quote)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.PATCH("/api/v1/reservations/id/:id", h.Update)
	router.POST("/api/v1/reservations/id/:id/cancel", h.Cancel)
	router.GET("/api/v1/availability", h.SearchAvailable)
}
