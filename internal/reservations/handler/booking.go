package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"reservio/internal/reservations/repository"
	"reservio/internal/reservations/service"
	apperrors "reservio/pkg/errors"
	httputil "reservio/pkg/http"
	"reservio/pkg/logger"
	"reservio/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var booking model.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	// Ids are system-generated; a caller-supplied one is discarded.
	booking.ID = ""

	if err := h.service.Create(r.Context(), &booking); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	booking, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, err := extractListFilter(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	limit, offset, err := httputil.ExtractPage(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	bookings, total, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if bookings == nil {
		bookings = []*model.Booking{}
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.BookingUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	updated, err := h.service.Update(r.Context(), id, &updates)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteDeleted(w); err != nil {
		h.log.Error("failed to write deleted response", "handler", "Delete", "operation", "WriteDeleted", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.List)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PUT("/api/v1/bookings/id/:id", h.Update)
	router.DELETE("/api/v1/bookings/id/:id", h.Delete)
}

func extractListFilter(r *http.Request) (repository.ListFilter, error) {
	query := r.URL.Query()

	filter := repository.ListFilter{
		UserID:     query.Get("user_id"),
		ResourceID: query.Get("resource_id"),
		Status:     query.Get("status"),
	}

	if s := query.Get("from_time"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return repository.ListFilter{}, apperrors.InvalidInput(fmt.Sprintf("invalid from_time format, must be RFC3339: %s", s))
		}
		filter.FromTime = &parsed
	}
	if s := query.Get("to_time"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return repository.ListFilter{}, apperrors.InvalidInput(fmt.Sprintf("invalid to_time format, must be RFC3339: %s", s))
		}
		filter.ToTime = &parsed
	}

	return filter, nil
}
