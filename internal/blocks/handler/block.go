package handler

import (
	"encoding/json"
	"net/http"

	"innkeep/internal/blocks/service"
	httputil "innkeep/pkg/http"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BlockHandler struct {
	service service.BlockService
	log     *logger.Logger
}

func NewBlockHandler(service service.BlockService, log *logger.Logger) *BlockHandler {
	return &BlockHandler{
		service: service,
		log:     log,
	}
}

func (h *BlockHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var block model.RoomBlock
	if err := json.NewDecoder(r.Body).Decode(&block); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &block); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, block); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BlockHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	block, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, block); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BlockHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	roomID := r.URL.Query().Get("room_id")

	blocks, total, err := h.service.GetAll(r.Context(), roomID, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, blocks, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BlockHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.RoomBlockUpdate
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

func (h *BlockHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

type expandResponse struct {
	RoomID       string   `json:"room_id"`
	BlockedDates []string `json:"blocked_dates"`
}

func (h *BlockHandler) Expand(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	roomID := r.URL.Query().Get("room_id")

	from, err := httputil.ExtractDate(r, "from")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Expand", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	to, err := httputil.ExtractDate(r, "to")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Expand", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	dates, err := h.service.ExpandDates(r.Context(), roomID, from, to)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Expand", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	resp := expandResponse{RoomID: roomID, BlockedDates: make([]string, 0, len(dates))}
	for _, d := range dates {
		resp.BlockedDates = append(resp.BlockedDates, d.Format("2006-01-02"))
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Expand", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BlockHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/room-blocks", h.Create)
	router.GET("/api/v1/room-blocks", h.GetAll)
	router.GET("/api/v1/room-blocks/expand", h.Expand)
	router.GET("/api/v1/room-blocks/id/:id", h.GetByID)
	router.PATCH("/api/v1/room-blocks/id/:id", h.Update)
	router.DELETE("/api/v1/room-blocks/id/:id", h.Delete)
}
