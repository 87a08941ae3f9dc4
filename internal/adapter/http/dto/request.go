package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/usecase"
)

// CreateHolderRequest represents a request to create a holder.
type CreateHolderRequest struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateHolderRequest) ToUseCaseInput() usecase.CreateHolderInput {
	return usecase.CreateHolderInput{Key: r.Key, Name: r.Name}
}

// CreateCurrencyRequest represents a request to register a currency.
type CreateCurrencyRequest struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Plural string `json:"plural"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateCurrencyRequest) ToUseCaseInput() usecase.CreateCurrencyInput {
	return usecase.CreateCurrencyInput{Code: r.Code, Name: r.Name, Plural: r.Plural}
}

// AddQuoteRequest represents a request to record a quote.
type AddQuoteRequest struct {
	Date *string         `json:"date,omitempty"`
	Buy  decimal.Decimal `json:"buy"`
	Sell decimal.Decimal `json:"sell"`
}

// ToUseCaseInput converts to use case input.
func (r *AddQuoteRequest) ToUseCaseInput() (usecase.AddQuoteInput, error) {
	date, err := ParseOptionalDate(r.Date)
	if err != nil {
		return usecase.AddQuoteInput{}, err
	}
	return usecase.AddQuoteInput{Date: date, Buy: r.Buy, Sell: r.Sell}, nil
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name           string           `json:"name"`
	Key            string           `json:"key"`
	ParentID       string           `json:"parent_id,omitempty"`
	HolderID       string           `json:"holder_id,omitempty"`
	Currency       string           `json:"currency,omitempty"`
	OpeningBalance *decimal.Decimal `json:"opening_balance,omitempty"`
	Date           *string          `json:"date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() (usecase.CreateAccountInput, error) {
	date, err := ParseOptionalDate(r.Date)
	if err != nil {
		return usecase.CreateAccountInput{}, err
	}
	return usecase.CreateAccountInput{
		OpeningBalance: r.OpeningBalance,
		Date:           date,
		Name:           r.Name,
		Key:            r.Key,
		ParentID:       r.ParentID,
		HolderID:       r.HolderID,
		Currency:       r.Currency,
	}, nil
}

// UpdateAccountRequest represents a partial update of an account.
type UpdateAccountRequest struct {
	Name     *string `json:"name,omitempty"`
	Key      *string `json:"key,omitempty"`
	HolderID *string `json:"holder_id,omitempty"`
	ParentID *string `json:"parent_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateAccountRequest) ToUseCaseInput() usecase.UpdateAccountInput {
	return usecase.UpdateAccountInput{
		Name:     r.Name,
		Key:      r.Key,
		HolderID: r.HolderID,
		ParentID: r.ParentID,
	}
}

// SplitAccountRequest represents a request to split an account. Each
// subaccount is either an object or a positional list
// [name, key, balance?, holder?, free?].
type SplitAccountRequest struct {
	Subaccounts []any   `json:"subaccounts"`
	Date        *string `json:"date,omitempty"`
}

// Specs parses the subaccounts and the split date.
func (r *SplitAccountRequest) Specs() ([]domain.SubaccountSpec, *time.Time, error) {
	specs, err := domain.ParseSubaccountSpecs(r.Subaccounts)
	if err != nil {
		return nil, nil, err
	}
	date, err := ParseOptionalDate(r.Date)
	if err != nil {
		return nil, nil, err
	}
	return specs, date, nil
}

// CreateMovementRequest represents a request to create a movement.
type CreateMovementRequest struct {
	Date           *string          `json:"date,omitempty"`
	Concept        string           `json:"concept"`
	Detail         string           `json:"detail,omitempty"`
	Amount         decimal.Decimal  `json:"amount"`
	EntryAccountID string           `json:"entry_account_id,omitempty"`
	ExitAccountID  string           `json:"exit_account_id,omitempty"`
	Currency       string           `json:"currency,omitempty"`
	ExchangeRate   *decimal.Decimal `json:"exchange_rate,omitempty"`
	Free           bool             `json:"free,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateMovementRequest) ToUseCaseInput() (usecase.CreateMovementInput, error) {
	date, err := ParseOptionalDate(r.Date)
	if err != nil {
		return usecase.CreateMovementInput{}, err
	}
	return usecase.CreateMovementInput{
		Date:           date,
		ExchangeRate:   r.ExchangeRate,
		Concept:        r.Concept,
		Detail:         r.Detail,
		EntryAccountID: r.EntryAccountID,
		ExitAccountID:  r.ExitAccountID,
		Currency:       r.Currency,
		Amount:         r.Amount,
		Free:           r.Free,
	}, nil
}

// ModifyMovementRequest represents a partial update of a movement. An empty
// account ID clears that leg.
type ModifyMovementRequest struct {
	Concept        *string          `json:"concept,omitempty"`
	Detail         *string          `json:"detail,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	EntryAccountID *string          `json:"entry_account_id,omitempty"`
	ExitAccountID  *string          `json:"exit_account_id,omitempty"`
	Date           *string          `json:"date,omitempty"`
	Order          *int             `json:"order,omitempty"`
	ExchangeRate   *decimal.Decimal `json:"exchange_rate,omitempty"`
	Free           *bool            `json:"free,omitempty"`
	KeepOrder      bool             `json:"keep_order,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ModifyMovementRequest) ToUseCaseInput() (usecase.ModifyMovementInput, error) {
	date, err := ParseOptionalDate(r.Date)
	if err != nil {
		return usecase.ModifyMovementInput{}, err
	}
	return usecase.ModifyMovementInput{
		Concept:        r.Concept,
		Detail:         r.Detail,
		Amount:         r.Amount,
		EntryAccountID: r.EntryAccountID,
		ExitAccountID:  r.ExitAccountID,
		Date:           date,
		Order:          r.Order,
		ExchangeRate:   r.ExchangeRate,
		Free:           r.Free,
		KeepOrder:      r.KeepOrder,
	}, nil
}

// ParseOptionalDate parses a YYYY-MM-DD date. Nil and empty strings yield
// nil.
func ParseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(*s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return &d, nil
}
