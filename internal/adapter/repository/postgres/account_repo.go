package postgres

import (
	"context"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/infrastructure/postgres/generated"
	"github.com/iho/cuentas/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	db generated.DBTX
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	err := queriesFor(r.db, tx).CreateAccount(ctx, generated.CreateAccountParams{
		ID:               account.ID,
		Key:              account.Key,
		Name:             account.Name,
		HolderID:         account.HolderID,
		ParentID:         textFromPtr(account.ParentID),
		Kind:             string(account.Kind),
		Currency:         account.Currency,
		CounterAccountID: textFromPtr(account.CounterAccountID),
		ConversionDate:   optionalDateToPg(account.ConversionDate),
		CreatedAt:        timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:        timeToPgTimestamptz(account.UpdatedAt),
	})

	return mapError(err, domain.ErrAccountNotFound)
}

// Update overwrites a stored account.
func (r *AccountRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	rows, err := queriesFor(r.db, tx).UpdateAccount(ctx, generated.UpdateAccountParams{
		ID:               account.ID,
		Key:              account.Key,
		Name:             account.Name,
		HolderID:         account.HolderID,
		ParentID:         textFromPtr(account.ParentID),
		Kind:             string(account.Kind),
		Currency:         account.Currency,
		CounterAccountID: textFromPtr(account.CounterAccountID),
		ConversionDate:   optionalDateToPg(account.ConversionDate),
		UpdatedAt:        timeToPgTimestamptz(account.UpdatedAt),
	})

	return affected(rows, err, domain.ErrAccountNotFound)
}

// Delete deletes an account. Its balance rows go with it.
func (r *AccountRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	rows, err := queriesFor(r.db, tx).DeleteAccount(ctx, id)
	return affected(rows, err, domain.ErrAccountNotFound)
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	row, err := queriesFor(r.db, tx).GetAccountByID(ctx, id)
	if err != nil {
		return nil, mapError(err, domain.ErrAccountNotFound)
	}

	return rowToAccount(row), nil
}

// GetByKey retrieves an account by key.
func (r *AccountRepository) GetByKey(ctx context.Context, tx usecase.Transaction, key string) (*domain.Account, error) {
	row, err := queriesFor(r.db, tx).GetAccountByKey(ctx, key)
	if err != nil {
		return nil, mapError(err, domain.ErrAccountNotFound)
	}

	return rowToAccount(row), nil
}

// ListSubaccounts lists the direct subaccounts of parentID.
func (r *AccountRepository) ListSubaccounts(ctx context.Context, tx usecase.Transaction, parentID string) ([]*domain.Account, error) {
	rows, err := queriesFor(r.db, tx).ListSubaccounts(ctx, textFromPtr(&parentID))
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// ListByHolder lists the accounts owned by holderID.
func (r *AccountRepository) ListByHolder(ctx context.Context, tx usecase.Transaction, holderID string) ([]*domain.Account, error) {
	rows, err := queriesFor(r.db, tx).ListAccountsByHolder(ctx, holderID)
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, tx usecase.Transaction, limit, offset int) ([]*domain.Account, error) {
	rows, err := queriesFor(r.db, tx).ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

func rowsToAccounts(rows []generated.Account) []*domain.Account {
	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}
	return accounts
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:               row.ID,
		Key:              row.Key,
		Name:             row.Name,
		HolderID:         row.HolderID,
		ParentID:         ptrFromText(row.ParentID),
		Kind:             domain.AccountKind(row.Kind),
		Currency:         row.Currency,
		CounterAccountID: ptrFromText(row.CounterAccountID),
		ConversionDate:   pgToOptionalDate(row.ConversionDate),
		CreatedAt:        row.CreatedAt.Time,
		UpdatedAt:        row.UpdatedAt.Time,
	}
}
