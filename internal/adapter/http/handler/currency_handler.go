package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cuentas/internal/adapter/http/dto"
	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/usecase"
)

// CurrencyService defines the behavior needed by CurrencyHandler.
type CurrencyService interface {
	CreateCurrency(ctx context.Context, input usecase.CreateCurrencyInput) (*domain.Currency, error)
	GetCurrency(ctx context.Context, code string) (*domain.Currency, error)
	ListCurrencies(ctx context.Context) ([]*domain.Currency, error)
	AddQuote(ctx context.Context, code string, input usecase.AddQuoteInput) (*domain.Quote, error)
	CurrentQuote(ctx context.Context, code string) (*domain.Quote, error)
}

// CurrencyHandler handles currency and quote HTTP requests.
type CurrencyHandler struct {
	currencyUC CurrencyService
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(currencyUC CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{currencyUC: currencyUC}
}

func (h *CurrencyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCurrencyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	currency, err := h.currencyUC.CreateCurrency(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CurrencyFromDomain(currency))
}

func (h *CurrencyHandler) Get(w http.ResponseWriter, r *http.Request) {
	currency, err := h.currencyUC.GetCurrency(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CurrencyFromDomain(currency))
}

func (h *CurrencyHandler) List(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.currencyUC.ListCurrencies(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CurrenciesFromDomain(currencies))
}

// AddQuote records the buy and sell price of a currency at a date.
func (h *CurrencyHandler) AddQuote(w http.ResponseWriter, r *http.Request) {
	var req dto.AddQuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	quote, err := h.currencyUC.AddQuote(r.Context(), chi.URLParam(r, "code"), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.QuoteFromDomain(quote))
}

// CurrentQuote returns the latest quote of a currency.
func (h *CurrencyHandler) CurrentQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.currencyUC.CurrentQuote(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.QuoteFromDomain(quote))
}
