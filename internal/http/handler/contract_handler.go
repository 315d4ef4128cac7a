package handler

import (
	"encoding/json"
	"net/http"

	"github.com/epic-events/crm-api/internal/domain"
	"github.com/epic-events/crm-api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ContractHandler struct {
	contractService *service.ContractService
	logger          *zap.Logger
}

func NewContractHandler(contractService *service.ContractService, logger *zap.Logger) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		logger:          logger,
	}
}

// List godoc
// @Summary List contracts
// @Tags Contracts
// @Produce json
// @Success 200 {array} domain.ContractDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /contract [get]
func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.contractService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, contracts)
}

// ListMine godoc
// @Summary List the contracts the caller is responsible for
// @Description Contracts whose client belongs to the caller; the full list for management
// @Tags Contracts
// @Produce json
// @Success 200 {array} domain.ContractDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /contract/mine [get]
func (h *ContractHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.contractService.ListMine(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, contracts)
}

// Get godoc
// @Summary Get a contract by title
// @Tags Contracts
// @Produce json
// @Param title path string true "Contract title"
// @Success 200 {object} domain.ContractDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /contract/{title} [get]
func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")
	contract, err := h.contractService.GetByTitle(r.Context(), title)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, contract)
}

// Create godoc
// @Summary Create a contract
// @Description Salesmen may only create contracts under their own name, for their own clients. Titles are normalized: spaces become underscores.
// @Tags Contracts
// @Accept json
// @Produce json
// @Param request body domain.CreateContractRequest true "Contract"
// @Success 201 {object} domain.ContractDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /contract [post]
func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	contract, err := h.contractService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, contract)
}

// Update godoc
// @Summary Update a contract
// @Description Partial update by the owning client's sales contact or management
// @Tags Contracts
// @Accept json
// @Produce json
// @Param title path string true "Contract title"
// @Param request body domain.UpdateContractRequest true "Fields to update"
// @Success 200 {object} domain.ContractDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /contract/{title} [put]
func (h *ContractHandler) Update(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")
	var req domain.UpdateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	contract, err := h.contractService.Update(r.Context(), title, &req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, contract)
}

// Delete godoc
// @Summary Delete a contract
// @Description Removes the contract and its events
// @Tags Contracts
// @Param title path string true "Contract title"
// @Success 204
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /contract/{title} [delete]
func (h *ContractHandler) Delete(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")
	if err := h.contractService.Delete(r.Context(), title); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
