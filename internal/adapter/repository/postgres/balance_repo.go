package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/infrastructure/postgres/generated"
	"github.com/iho/cuentas/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	db generated.DBTX
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(db generated.DBTX) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// Create creates a balance row.
func (r *BalanceRepository) Create(ctx context.Context, tx usecase.Transaction, balance *domain.Balance) error {
	err := queriesFor(r.db, tx).CreateBalance(ctx, generated.CreateBalanceParams{
		ID:        balance.ID,
		AccountID: balance.AccountID,
		Date:      dateToPg(balance.Date),
		Amount:    decimalToNumeric(balance.Amount),
	})

	return mapError(err, domain.ErrBalanceNotFound)
}

// Update overwrites the date and amount of a balance row.
func (r *BalanceRepository) Update(ctx context.Context, tx usecase.Transaction, balance *domain.Balance) error {
	rows, err := queriesFor(r.db, tx).UpdateBalance(ctx, generated.UpdateBalanceParams{
		ID:     balance.ID,
		Date:   dateToPg(balance.Date),
		Amount: decimalToNumeric(balance.Amount),
	})

	return affected(rows, err, domain.ErrBalanceNotFound)
}

// Delete deletes a balance row.
func (r *BalanceRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	rows, err := queriesFor(r.db, tx).DeleteBalance(ctx, id)
	return affected(rows, err, domain.ErrBalanceNotFound)
}

// GetAt returns the row of accountID at date.
func (r *BalanceRepository) GetAt(ctx context.Context, tx usecase.Transaction, accountID string, date time.Time) (*domain.Balance, error) {
	row, err := queriesFor(r.db, tx).GetBalanceAt(ctx, generated.GetBalanceAtParams{
		AccountID: accountID,
		Date:      dateToPg(date),
	})
	if err != nil {
		return nil, mapError(err, domain.ErrBalanceNotFound)
	}

	return rowToBalance(row), nil
}

// GetLatestBefore returns the latest row before date, or at date when
// inclusive.
func (r *BalanceRepository) GetLatestBefore(ctx context.Context, tx usecase.Transaction, accountID string, date time.Time, inclusive bool) (*domain.Balance, error) {
	q := queriesFor(r.db, tx)

	var (
		row generated.Balance
		err error
	)
	if inclusive {
		row, err = q.GetLatestBalanceAtOrBefore(ctx, generated.GetLatestBalanceAtOrBeforeParams{
			AccountID: accountID,
			Date:      dateToPg(date),
		})
	} else {
		row, err = q.GetLatestBalanceBefore(ctx, generated.GetLatestBalanceBeforeParams{
			AccountID: accountID,
			Date:      dateToPg(date),
		})
	}
	if err != nil {
		return nil, mapError(err, domain.ErrBalanceNotFound)
	}

	return rowToBalance(row), nil
}

// ListRange lists the rows of accountID between two optional inclusive
// dates, oldest first.
func (r *BalanceRepository) ListRange(ctx context.Context, tx usecase.Transaction, accountID string, from, to *time.Time) ([]*domain.Balance, error) {
	rows, err := queriesFor(r.db, tx).ListBalances(ctx, generated.ListBalancesParams{
		AccountID: accountID,
		FromDate:  optionalDateToPg(from),
		ToDate:    optionalDateToPg(to),
	})
	if err != nil {
		return nil, err
	}

	balances := make([]*domain.Balance, 0, len(rows))
	for _, row := range rows {
		balances = append(balances, rowToBalance(row))
	}

	return balances, nil
}

// AddAfter adds delta to every row of accountID after date.
func (r *BalanceRepository) AddAfter(ctx context.Context, tx usecase.Transaction, accountID string, date time.Time, delta decimal.Decimal) error {
	return queriesFor(r.db, tx).AddToBalancesAfter(ctx, generated.AddToBalancesAfterParams{
		AccountID: accountID,
		Date:      dateToPg(date),
		Delta:     decimalToNumeric(delta),
	})
}

// DeleteByAccount deletes every row of accountID.
func (r *BalanceRepository) DeleteByAccount(ctx context.Context, tx usecase.Transaction, accountID string) error {
	return queriesFor(r.db, tx).DeleteBalancesByAccount(ctx, accountID)
}

func rowToBalance(row generated.Balance) *domain.Balance {
	return &domain.Balance{
		ID:        row.ID,
		AccountID: row.AccountID,
		Date:      pgToDate(row.Date),
		Amount:    numericToDecimal(row.Amount),
	}
}
