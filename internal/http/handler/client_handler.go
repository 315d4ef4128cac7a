package handler

import (
	"encoding/json"
	"net/http"

	"github.com/epic-events/crm-api/internal/domain"
	"github.com/epic-events/crm-api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ClientHandler struct {
	clientService *service.ClientService
	logger        *zap.Logger
}

func NewClientHandler(clientService *service.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		logger:        logger,
	}
}

// List godoc
// @Summary List clients
// @Tags Clients
// @Produce json
// @Success 200 {array} domain.ClientDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /client [get]
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clientService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, clients)
}

// ListMine godoc
// @Summary List the clients in the caller's portfolio
// @Description Clients whose sales contact is the caller; the full list for management
// @Tags Clients
// @Produce json
// @Success 200 {array} domain.ClientDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /client/mine [get]
func (h *ClientHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clientService.ListMine(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, clients)
}

// Get godoc
// @Summary Get a client by name
// @Tags Clients
// @Produce json
// @Param firstName path string true "First name"
// @Param lastName path string true "Last name"
// @Success 200 {object} domain.ClientDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /client/{firstName}/{lastName} [get]
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	firstName := chi.URLParam(r, "firstName")
	lastName := chi.URLParam(r, "lastName")
	client, err := h.clientService.GetByName(r.Context(), firstName, lastName)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

// Create godoc
// @Summary Create a client
// @Description Salesmen may only register clients under their own name; management may assign anyone
// @Tags Clients
// @Accept json
// @Produce json
// @Param request body domain.CreateClientRequest true "Client"
// @Success 201 {object} domain.ClientDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /client [post]
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	client, err := h.clientService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, client)
}

// Update godoc
// @Summary Update a client
// @Description Partial update by the client's sales contact or management. The lifecycle status is derived and cannot be set here.
// @Tags Clients
// @Accept json
// @Produce json
// @Param firstName path string true "First name"
// @Param lastName path string true "Last name"
// @Param request body domain.UpdateClientRequest true "Fields to update"
// @Success 200 {object} domain.ClientDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /client/{firstName}/{lastName} [put]
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	firstName := chi.URLParam(r, "firstName")
	lastName := chi.URLParam(r, "lastName")
	var req domain.UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	client, err := h.clientService.Update(r.Context(), firstName, lastName, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

// Delete godoc
// @Summary Delete a client
// @Description Removes the client with its contracts and events
// @Tags Clients
// @Param firstName path string true "First name"
// @Param lastName path string true "Last name"
// @Success 204
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /client/{firstName}/{lastName} [delete]
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	firstName := chi.URLParam(r, "firstName")
	lastName := chi.URLParam(r, "lastName")
	if err := h.clientService.Delete(r.Context(), firstName, lastName); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
