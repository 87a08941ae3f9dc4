package dto

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/usecase"
)

// ErrBadRequest marks request values that could not be parsed.
var ErrBadRequest = errors.New("bad request")

// ErrorResponse represents an error in API responses. Error carries the
// error kind.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HolderResponse represents a holder in API responses.
type HolderResponse struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	DebtorIDs []string  `json:"debtor_ids"`
	CreatedAt time.Time `json:"created_at"`
}

// HolderFromDomain converts a domain holder to a response.
func HolderFromDomain(h *domain.Holder) *HolderResponse {
	debtors := h.DebtorIDs
	if debtors == nil {
		debtors = []string{}
	}
	return &HolderResponse{
		ID:        h.ID,
		Key:       h.Key,
		Name:      h.Name,
		DebtorIDs: debtors,
		CreatedAt: h.CreatedAt,
	}
}

// HoldersFromDomain converts domain holders to responses.
func HoldersFromDomain(holders []*domain.Holder) []*HolderResponse {
	result := make([]*HolderResponse, len(holders))
	for i, h := range holders {
		result[i] = HolderFromDomain(h)
	}
	return result
}

// CapitalResponse is the aggregate balance of a holder.
type CapitalResponse struct {
	HolderID  string          `json:"holder_id"`
	Currency  string          `json:"currency"`
	Capital   decimal.Decimal `json:"capital"`
	Formatted string          `json:"formatted"`
}

// CurrencyResponse represents a currency in API responses.
type CurrencyResponse struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Plural    string    `json:"plural"`
	CreatedAt time.Time `json:"created_at"`
}

// CurrencyFromDomain converts a domain currency to a response.
func CurrencyFromDomain(c *domain.Currency) *CurrencyResponse {
	return &CurrencyResponse{Code: c.Code, Name: c.Name, Plural: c.Plural, CreatedAt: c.CreatedAt}
}

// CurrenciesFromDomain converts domain currencies to responses.
func CurrenciesFromDomain(currencies []*domain.Currency) []*CurrencyResponse {
	result := make([]*CurrencyResponse, len(currencies))
	for i, c := range currencies {
		result[i] = CurrencyFromDomain(c)
	}
	return result
}

// QuoteResponse represents a quote in API responses. Date is empty for the
// implicit unit quote of a currency never quoted.
type QuoteResponse struct {
	ID       string          `json:"id,omitempty"`
	Currency string          `json:"currency"`
	Date     string          `json:"date,omitempty"`
	Buy      decimal.Decimal `json:"buy"`
	Sell     decimal.Decimal `json:"sell"`
}

// QuoteFromDomain converts a domain quote to a response.
func QuoteFromDomain(q *domain.Quote) *QuoteResponse {
	return &QuoteResponse{
		ID:       q.ID,
		Currency: q.Currency,
		Date:     formatDate(q.Date),
		Buy:      q.Buy,
		Sell:     q.Sell,
	}
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID               string    `json:"id"`
	Key              string    `json:"key"`
	Name             string    `json:"name"`
	HolderID         string    `json:"holder_id"`
	ParentID         *string   `json:"parent_id,omitempty"`
	Kind             string    `json:"kind"`
	Currency         string    `json:"currency"`
	CounterAccountID *string   `json:"counter_account_id,omitempty"`
	ConversionDate   string    `json:"conversion_date,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	resp := &AccountResponse{
		ID:               a.ID,
		Key:              a.Key,
		Name:             a.Name,
		HolderID:         a.HolderID,
		ParentID:         a.ParentID,
		Kind:             string(a.Kind),
		Currency:         a.Currency,
		CounterAccountID: a.CounterAccountID,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
	if a.ConversionDate != nil {
		resp.ConversionDate = formatDate(*a.ConversionDate)
	}
	return resp
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// BalanceResponse is the balance of an account at a position.
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Formatted string          `json:"formatted"`
	Date      string          `json:"date,omitempty"`
	Order     *int            `json:"order,omitempty"`
}

// NewBalanceResponse builds a balance response. A nil position means the
// current balance.
func NewBalanceResponse(accountID, currency string, balance decimal.Decimal, pos *domain.Position) *BalanceResponse {
	resp := &BalanceResponse{
		AccountID: accountID,
		Currency:  currency,
		Balance:   balance,
		Formatted: domain.FormatAmount(balance, currency),
	}
	if pos != nil {
		resp.Date = formatDate(pos.Date)
		if pos.Order >= 0 && pos.Order != domain.EndOfDay(pos.Date).Order {
			order := pos.Order
			resp.Order = &order
		}
	}
	return resp
}

// MovementResponse represents a movement in API responses.
type MovementResponse struct {
	ID                string          `json:"id"`
	Date              string          `json:"date"`
	Order             int             `json:"order"`
	Concept           string          `json:"concept"`
	Detail            string          `json:"detail,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	EntryAccountID    *string         `json:"entry_account_id,omitempty"`
	ExitAccountID     *string         `json:"exit_account_id,omitempty"`
	Currency          string          `json:"currency"`
	ExchangeRate      decimal.Decimal `json:"exchange_rate"`
	Automatic         bool            `json:"automatic"`
	CounterMovementID *string         `json:"counter_movement_id,omitempty"`
	Free              bool            `json:"free"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// MovementFromDomain converts a domain movement to a response.
func MovementFromDomain(m *domain.Movement) *MovementResponse {
	return &MovementResponse{
		ID:                m.ID,
		Date:              formatDate(m.Date),
		Order:             m.Order,
		Concept:           m.Concept,
		Detail:            m.Detail,
		Amount:            m.Amount,
		EntryAccountID:    m.EntryAccountID,
		ExitAccountID:     m.ExitAccountID,
		Currency:          m.Currency,
		ExchangeRate:      m.ExchangeRate,
		Automatic:         m.Automatic,
		CounterMovementID: m.CounterMovementID,
		Free:              m.Free,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// MovementsFromDomain converts domain movements to responses.
func MovementsFromDomain(movements []*domain.Movement) []*MovementResponse {
	result := make([]*MovementResponse, len(movements))
	for i, m := range movements {
		result[i] = MovementFromDomain(m)
	}
	return result
}

// ReconciliationResponse is the result of reconciling one account.
type ReconciliationResponse struct {
	AccountID         string          `json:"account_id"`
	AccountKey        string          `json:"account_key"`
	RecordedBalance   decimal.Decimal `json:"recorded_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Difference        decimal.Decimal `json:"difference"`
	IsReconciled      bool            `json:"is_reconciled"`
}

// ReconciliationFromResult converts a reconciliation result to a response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		AccountKey:        r.AccountKey,
		RecordedBalance:   r.RecordedBalance,
		CalculatedBalance: r.CalculatedBalance,
		Difference:        r.Difference,
		IsReconciled:      r.IsReconciled,
	}
}

// ConsistencyResponse reports whether the whole ledger is consistent.
type ConsistencyResponse struct {
	Status     string `json:"status"`
	Consistent bool   `json:"consistent"`
	Message    string `json:"message,omitempty"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateFormat)
}

// ReconciliationReportResponse summarizes the reconciliation of every
// account.
type ReconciliationReportResponse struct {
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	LedgerConsistent   bool                      `json:"ledger_consistent"`
	LedgerError        string                    `json:"ledger_error,omitempty"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a reconciliation report to a
// response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	resp := &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      make([]*ReconciliationResponse, len(r.Discrepancies)),
		LedgerConsistent:   r.LedgerConsistent,
		CheckedAt:          r.CheckedAt,
	}
	for i, d := range r.Discrepancies {
		resp.Discrepancies[i] = ReconciliationFromResult(d)
	}
	if r.LedgerError != nil {
		resp.LedgerError = r.LedgerError.Error()
	}
	return resp
}
