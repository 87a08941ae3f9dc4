package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/cuentas/internal/adapter/http/dto"
	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/usecase"
)

// HolderService defines the behavior needed by HolderHandler. Holders are
// referenced by ID or key.
type HolderService interface {
	CreateHolder(ctx context.Context, input usecase.CreateHolderInput) (*domain.Holder, error)
	GetHolder(ctx context.Context, ref string) (*domain.Holder, error)
	ListHolders(ctx context.Context) ([]*domain.Holder, error)
	ListAccounts(ctx context.Context, ref string) ([]*domain.Account, error)
	Capital(ctx context.Context, ref, currency string) (decimal.Decimal, error)
	DeleteHolder(ctx context.Context, ref string) error
}

// HolderHandler handles holder-related HTTP requests.
type HolderHandler struct {
	holderUC        HolderService
	defaultCurrency string
}

// NewHolderHandler creates a new HolderHandler. defaultCurrency labels
// capital requested without a currency.
func NewHolderHandler(holderUC HolderService, defaultCurrency string) *HolderHandler {
	return &HolderHandler{holderUC: holderUC, defaultCurrency: defaultCurrency}
}

func (h *HolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateHolderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	holder, err := h.holderUC.CreateHolder(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.HolderFromDomain(holder))
}

func (h *HolderHandler) Get(w http.ResponseWriter, r *http.Request) {
	holder, err := h.holderUC.GetHolder(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.HolderFromDomain(holder))
}

func (h *HolderHandler) List(w http.ResponseWriter, r *http.Request) {
	holders, err := h.holderUC.ListHolders(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.HoldersFromDomain(holders))
}

func (h *HolderHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.holderUC.ListAccounts(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// Capital returns the aggregate balance of a holder's accounts.
func (h *HolderHandler) Capital(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	currency := domain.NormalizeCurrencyCode(r.URL.Query().Get("currency"))

	holder, err := h.holderUC.GetHolder(r.Context(), ref)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	capital, err := h.holderUC.Capital(r.Context(), holder.ID, currency)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if currency == "" {
		currency = h.defaultCurrency
	}
	writeJSON(w, http.StatusOK, dto.CapitalResponse{
		HolderID:  holder.ID,
		Currency:  currency,
		Capital:   capital,
		Formatted: domain.FormatAmount(capital, currency),
	})
}

func (h *HolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.holderUC.DeleteHolder(r.Context(), chi.URLParam(r, "ref")); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
