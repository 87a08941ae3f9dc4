package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cuentas/internal/domain"
)

// Every repository method takes the current transaction. A nil transaction
// reads committed state outside any command.

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	Update(ctx context.Context, tx Transaction, account *domain.Account) error
	Delete(ctx context.Context, tx Transaction, id string) error
	GetByID(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	GetByKey(ctx context.Context, tx Transaction, key string) (*domain.Account, error)
	ListSubaccounts(ctx context.Context, tx Transaction, parentID string) ([]*domain.Account, error)
	ListByHolder(ctx context.Context, tx Transaction, holderID string) ([]*domain.Account, error)
	List(ctx context.Context, tx Transaction, limit, offset int) ([]*domain.Account, error)
}

// MovementRepository defines data access for movements. Lists are ordered by
// position.
type MovementRepository interface {
	Create(ctx context.Context, tx Transaction, movement *domain.Movement) error
	Update(ctx context.Context, tx Transaction, movement *domain.Movement) error
	Delete(ctx context.Context, tx Transaction, id string) error
	GetByID(ctx context.Context, tx Transaction, id string) (*domain.Movement, error)
	CountByDate(ctx context.Context, tx Transaction, date time.Time) (int, error)
	// ShiftOrders adds delta to the order of every movement of date whose
	// order is at least fromOrder, skipping exceptID.
	ShiftOrders(ctx context.Context, tx Transaction, date time.Time, fromOrder, delta int, exceptID string) error
	ListByDateRange(ctx context.Context, tx Transaction, from, to time.Time) ([]*domain.Movement, error)
	// ListByAccount lists the movements touching accountID, optionally
	// bounded by inclusive dates.
	ListByAccount(ctx context.Context, tx Transaction, accountID string, from, to *time.Time) ([]*domain.Movement, error)
}

// BalanceRepository defines data access for balance rows. There is at most
// one row per account and date.
type BalanceRepository interface {
	Create(ctx context.Context, tx Transaction, balance *domain.Balance) error
	Update(ctx context.Context, tx Transaction, balance *domain.Balance) error
	Delete(ctx context.Context, tx Transaction, id string) error
	GetAt(ctx context.Context, tx Transaction, accountID string, date time.Time) (*domain.Balance, error)
	// GetLatestBefore returns the latest row before date, or at date when
	// inclusive. It returns domain.ErrBalanceNotFound when there is none.
	GetLatestBefore(ctx context.Context, tx Transaction, accountID string, date time.Time, inclusive bool) (*domain.Balance, error)
	ListRange(ctx context.Context, tx Transaction, accountID string, from, to *time.Time) ([]*domain.Balance, error)
	// AddAfter adds delta to every row of accountID strictly after date.
	AddAfter(ctx context.Context, tx Transaction, accountID string, date time.Time, delta decimal.Decimal) error
	DeleteByAccount(ctx context.Context, tx Transaction, accountID string) error
}

// HolderRepository defines data access for holders and their debtor sets.
type HolderRepository interface {
	Create(ctx context.Context, tx Transaction, holder *domain.Holder) error
	Delete(ctx context.Context, tx Transaction, id string) error
	GetByID(ctx context.Context, tx Transaction, id string) (*domain.Holder, error)
	GetByKey(ctx context.Context, tx Transaction, key string) (*domain.Holder, error)
	List(ctx context.Context, tx Transaction) ([]*domain.Holder, error)
	AddDebtor(ctx context.Context, tx Transaction, creditorID, debtorID string) error
	RemoveDebtor(ctx context.Context, tx Transaction, creditorID, debtorID string) error
}

// CurrencyRepository defines data access for currencies and quotes.
type CurrencyRepository interface {
	Create(ctx context.Context, tx Transaction, currency *domain.Currency) error
	GetByCode(ctx context.Context, tx Transaction, code string) (*domain.Currency, error)
	List(ctx context.Context, tx Transaction) ([]*domain.Currency, error)
	CreateQuote(ctx context.Context, tx Transaction, quote *domain.Quote) error
	GetLatestQuote(ctx context.Context, tx Transaction, code string) (*domain.Quote, error)
	GetQuoteAt(ctx context.Context, tx Transaction, code string, date time.Time) (*domain.Quote, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ErrCacheMiss is returned by Cache.Get for absent keys.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Retrier re-runs an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Repositories bundles the persistence ports the use cases need.
type Repositories struct {
	Accounts   AccountRepository
	Movements  MovementRepository
	Balances   BalanceRepository
	Holders    HolderRepository
	Currencies CurrencyRepository
}
