package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/cuentas/internal/adapter/http/dto"
	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	GetAccountByKey(ctx context.Context, key string) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	ListSubaccounts(ctx context.Context, id string) ([]*domain.Account, error)
	UpdateAccount(ctx context.Context, id string, input usecase.UpdateAccountInput) (*domain.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	Balance(ctx context.Context, id string, pos *domain.Position) (decimal.Decimal, error)
	BalanceIn(ctx context.Context, id, currency string, pos *domain.Position) (decimal.Decimal, error)
	SplitAccount(ctx context.Context, id string, specs []domain.SubaccountSpec, date *time.Time) ([]*domain.Account, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create creates a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountUC.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// GetByKey retrieves an account by key.
func (h *AccountHandler) GetByKey(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountUC.GetAccountByKey(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.accountUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// ListSubaccounts lists the direct subaccounts of an account.
func (h *AccountHandler) ListSubaccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountUC.ListSubaccounts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// Update renames or moves an account.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	account, err := h.accountUC.UpdateAccount(r.Context(), chi.URLParam(r, "id"), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Delete deletes an account with zero balance.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.accountUC.DeleteAccount(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Balance returns the balance of an account, optionally at a position
// (date and order query parameters) and in another currency.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	pos, err := parsePositionQuery(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	currency := domain.NormalizeCurrencyCode(r.URL.Query().Get("currency"))

	var balance decimal.Decimal
	if currency != "" {
		balance, err = h.accountUC.BalanceIn(r.Context(), id, currency, pos)
	} else {
		var account *domain.Account
		account, err = h.accountUC.GetAccount(r.Context(), id)
		if err == nil {
			currency = account.Currency
			balance, err = h.accountUC.Balance(r.Context(), id, pos)
		}
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewBalanceResponse(id, currency, balance, pos))
}

// Split turns an account into a cumulative one with new subaccounts.
func (h *AccountHandler) Split(w http.ResponseWriter, r *http.Request) {
	var req dto.SplitAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	specs, date, err := req.Specs()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	subaccounts, err := h.accountUC.SplitAccount(r.Context(), chi.URLParam(r, "id"), specs, date)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountsFromDomain(subaccounts))
}
