package handler

import (
	"encoding/json"
	"net/http"

	"github.com/epic-events/crm-api/internal/domain"
	"github.com/epic-events/crm-api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type EventHandler struct {
	eventService *service.EventService
	logger       *zap.Logger
}

func NewEventHandler(eventService *service.EventService, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		logger:       logger,
	}
}

// List godoc
// @Summary List events
// @Tags Events
// @Produce json
// @Success 200 {array} domain.EventDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /event [get]
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

// ListMine godoc
// @Summary List the events the caller works on
// @Description A support contact's assignments, or the events on the caller's contracts; the full list for management
// @Tags Events
// @Produce json
// @Success 200 {array} domain.EventDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /event/mine [get]
func (h *EventHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.ListMine(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

// Get godoc
// @Summary Get an event by title
// @Tags Events
// @Produce json
// @Param title path string true "Event title"
// @Success 200 {object} domain.EventDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /event/{title} [get]
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")
	event, err := h.eventService.GetByTitle(r.Context(), title)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, event)
}

// Create godoc
// @Summary Create an event
// @Description Salesmen may only attach events to their own contracts. The occurred status is derived from the event date, never taken from the payload.
// @Tags Events
// @Accept json
// @Produce json
// @Param request body domain.CreateEventRequest true "Event"
// @Success 201 {object} domain.EventDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /event [post]
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	event, err := h.eventService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, event)
}

// Update godoc
// @Summary Update an event
// @Description Partial update by the owning sales contact, the assigned support contact (while the event has not occurred) or management
// @Tags Events
// @Accept json
// @Produce json
// @Param title path string true "Event title"
// @Param request body domain.UpdateEventRequest true "Fields to update"
// @Success 200 {object} domain.EventDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /event/{title} [put]
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")
	var req domain.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	event, err := h.eventService.Update(r.Context(), title, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, event)
}

// Delete godoc
// @Summary Delete an event
// @Tags Events
// @Param title path string true "Event title"
// @Success 204
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /event/{title} [delete]
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")
	if err := h.eventService.Delete(r.Context(), title); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
