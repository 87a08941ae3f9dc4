package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cuentas/internal/adapter/http/dto"
	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/usecase"
)

// MovementService defines the behavior needed by MovementHandler.
type MovementService interface {
	CreateMovement(ctx context.Context, input usecase.CreateMovementInput) (*domain.Movement, error)
	ModifyMovement(ctx context.Context, id string, input usecase.ModifyMovementInput) (*domain.Movement, error)
	DeleteMovement(ctx context.Context, id string, force bool) error
	GetMovement(ctx context.Context, id string) (*domain.Movement, error)
	ListByAccount(ctx context.Context, accountID string, from, to *time.Time) ([]*domain.Movement, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*domain.Movement, error)
}

// MovementHandler handles movement-related HTTP requests.
type MovementHandler struct {
	movementUC MovementService
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(movementUC MovementService) *MovementHandler {
	return &MovementHandler{movementUC: movementUC}
}

// Create records a new movement.
func (h *MovementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	movement, err := h.movementUC.CreateMovement(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(movement))
}

// Get retrieves a movement by ID.
func (h *MovementHandler) Get(w http.ResponseWriter, r *http.Request) {
	movement, err := h.movementUC.GetMovement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementFromDomain(movement))
}

// Modify applies a partial update to a movement.
func (h *MovementHandler) Modify(w http.ResponseWriter, r *http.Request) {
	var req dto.ModifyMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	movement, err := h.movementUC.ModifyMovement(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementFromDomain(movement))
}

// Delete deletes a movement. force=true also deletes movements of
// cumulative accounts.
func (h *MovementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.movementUC.DeleteMovement(r.Context(), chi.URLParam(r, "id"), parseBoolQuery(r, "force")); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByDateRange lists the movements between the from and to dates. to
// defaults to from.
func (h *MovementHandler) ListByDateRange(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateQuery(r, "from")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if from == nil {
		writeDomainError(w, fmt.Errorf("%w: from is required", dto.ErrBadRequest))
		return
	}
	to, err := parseDateQuery(r, "to")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if to == nil {
		to = from
	}

	movements, err := h.movementUC.ListByDateRange(r.Context(), *from, *to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementsFromDomain(movements))
}

// ListByAccount lists the movements of an account ordered by position.
func (h *MovementHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateQuery(r, "from")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	to, err := parseDateQuery(r, "to")
	if err != nil {
		writeDomainError(w, err)
		return
	}

	movements, err := h.movementUC.ListByAccount(r.Context(), chi.URLParam(r, "id"), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementsFromDomain(movements))
}
