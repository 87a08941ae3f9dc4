package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/infrastructure/metrics"
)

// BalanceLedger maintains the per-date balance rows of accounts. A row holds
// the account balance at the end of its date. Every method runs inside the
// caller's transaction.
type BalanceLedger struct {
	accounts  AccountRepository
	movements MovementRepository
	balances  BalanceRepository
	idGen     IDGenerator
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewBalanceLedger creates a new BalanceLedger.
func NewBalanceLedger(deps Deps) *BalanceLedger {
	return &BalanceLedger{
		accounts:  deps.Repos.Accounts,
		movements: deps.Repos.Movements,
		balances:  deps.Repos.Balances,
		idGen:     deps.IDGen,
		logger:    deps.Logger.With().Str("component", "balance_ledger").Logger(),
		metrics:   deps.Metrics,
	}
}

// Register adds delta to the row of accountID at date, creating the row from
// the previous one when missing, and carries delta into every later row.
func (l *BalanceLedger) Register(ctx context.Context, tx Transaction, accountID string, date time.Time, delta decimal.Decimal) (*domain.Balance, error) {
	date = domain.Day(date)

	row, err := l.balances.GetAt(ctx, tx, accountID, date)
	switch {
	case err == nil:
		row.Amount = row.Amount.Add(delta)
		if err := l.balances.Update(ctx, tx, row); err != nil {
			return nil, fmt.Errorf("failed to update balance row: %w", err)
		}
	case errors.Is(err, domain.ErrBalanceNotFound):
		previous, err := l.valueBefore(ctx, tx, accountID, date)
		if err != nil {
			return nil, err
		}
		row = &domain.Balance{
			ID:        l.idGen.Generate(),
			AccountID: accountID,
			Date:      date,
			Amount:    previous.Add(delta),
		}
		if err := l.balances.Create(ctx, tx, row); err != nil {
			return nil, fmt.Errorf("failed to create balance row: %w", err)
		}
	default:
		return nil, err
	}

	if !delta.IsZero() {
		if err := l.balances.AddAfter(ctx, tx, accountID, date, delta); err != nil {
			return nil, fmt.Errorf("failed to propagate balance: %w", err)
		}
	}

	l.countRows("register")

	return row, nil
}

// Remove deletes row and takes its own contribution out of every later row.
func (l *BalanceLedger) Remove(ctx context.Context, tx Transaction, row *domain.Balance) error {
	previous, err := l.valueBefore(ctx, tx, row.AccountID, row.Date)
	if err != nil {
		return err
	}

	contribution := row.Amount.Sub(previous)

	if err := l.balances.Delete(ctx, tx, row.ID); err != nil {
		return fmt.Errorf("failed to delete balance row: %w", err)
	}

	if !contribution.IsZero() {
		if err := l.balances.AddAfter(ctx, tx, row.AccountID, row.Date, contribution.Neg()); err != nil {
			return fmt.Errorf("failed to propagate balance: %w", err)
		}
	}

	l.countRows("remove")

	return nil
}

// Unregister reverts a delta registered at date. The row is dropped once
// the account has no movement left on that date, so callers must take the
// movement out of the store first.
func (l *BalanceLedger) Unregister(ctx context.Context, tx Transaction, accountID string, date time.Time, delta decimal.Decimal) error {
	date = domain.Day(date)

	row, err := l.Register(ctx, tx, accountID, date, delta.Neg())
	if err != nil {
		return err
	}

	movements, err := l.movements.ListByAccount(ctx, tx, accountID, &date, &date)
	if err != nil {
		return err
	}

	if len(movements) == 0 {
		return l.Remove(ctx, tx, row)
	}

	return nil
}

// ValueAtOrBefore returns the balance recorded at the latest row on or
// before pos's date, or zero.
func (l *BalanceLedger) ValueAtOrBefore(ctx context.Context, tx Transaction, accountID string, pos domain.Position) (decimal.Decimal, error) {
	return l.value(ctx, tx, accountID, domain.Day(pos.Date), true)
}

func (l *BalanceLedger) valueBefore(ctx context.Context, tx Transaction, accountID string, date time.Time) (decimal.Decimal, error) {
	return l.value(ctx, tx, accountID, date, false)
}

func (l *BalanceLedger) value(ctx context.Context, tx Transaction, accountID string, date time.Time, inclusive bool) (decimal.Decimal, error) {
	row, err := l.balances.GetLatestBefore(ctx, tx, accountID, date, inclusive)
	if errors.Is(err, domain.ErrBalanceNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}

	return row.Amount, nil
}

// RecalculateRange rebuilds the rows of account between the dates of from
// and to out of the movements themselves, then carries the change of the
// closing value into the later rows. Rows of dates left without movements
// are removed. Running it twice changes nothing.
func (l *BalanceLedger) RecalculateRange(ctx context.Context, tx Transaction, account *domain.Account, from, to domain.Position) error {
	fromDate, toDate := domain.Day(from.Date), domain.Day(to.Date)
	if toDate.Before(fromDate) {
		fromDate, toDate = toDate, fromDate
	}

	running, err := l.valueBefore(ctx, tx, account.ID, fromDate)
	if err != nil {
		return err
	}

	closing, err := l.value(ctx, tx, account.ID, toDate, true)
	if err != nil {
		return err
	}

	movements, err := l.movements.ListByAccount(ctx, tx, account.ID, &fromDate, &toDate)
	if err != nil {
		return err
	}

	rows, err := l.balances.ListRange(ctx, tx, account.ID, &fromDate, &toDate)
	if err != nil {
		return err
	}

	net := make(map[int64]decimal.Decimal)
	dates := make(map[int64]time.Time)
	for _, m := range movements {
		d := domain.Day(m.Date)
		net[d.Unix()] = net[d.Unix()].Add(m.AmountFor(account.ID, account.Currency))
		dates[d.Unix()] = d
	}

	existing := make(map[int64]*domain.Balance, len(rows))
	for _, row := range rows {
		d := domain.Day(row.Date)
		existing[d.Unix()] = row
		dates[d.Unix()] = d
	}

	keys := make([]int64, 0, len(dates))
	for k := range dates {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, k := range keys {
		row, hasRow := existing[k]
		delta, hasMovements := net[k]

		switch {
		case hasMovements:
			running = running.Add(delta)
			if !hasRow {
				row = &domain.Balance{
					ID:        l.idGen.Generate(),
					AccountID: account.ID,
					Date:      dates[k],
					Amount:    running,
				}
				if err := l.balances.Create(ctx, tx, row); err != nil {
					return fmt.Errorf("failed to create balance row: %w", err)
				}
				continue
			}
			if !row.Amount.Equal(running) {
				row.Amount = running
				if err := l.balances.Update(ctx, tx, row); err != nil {
					return fmt.Errorf("failed to update balance row: %w", err)
				}
			}
		case hasRow:
			if err := l.balances.Delete(ctx, tx, row.ID); err != nil {
				return fmt.Errorf("failed to delete balance row: %w", err)
			}
		}
	}

	if shift := running.Sub(closing); !shift.IsZero() {
		if err := l.balances.AddAfter(ctx, tx, account.ID, toDate, shift); err != nil {
			return fmt.Errorf("failed to propagate balance: %w", err)
		}
	}

	if l.metrics != nil {
		l.metrics.BalanceRecalculations.Inc()
	}

	l.logger.Debug().
		Str("account_id", account.ID).
		Time("from", fromDate).
		Time("to", toDate).
		Int("movements", len(movements)).
		Msg("balance range recalculated")

	return nil
}

// BalanceOf returns the balance of account after the movement at pos, or
// its current balance when pos is nil. A cumulative account reads its own
// history before its conversion date and the sum of its subaccounts after.
// On the conversion date both add up, since the split transfers move the
// balance from the account to its subaccounts.
func (l *BalanceLedger) BalanceOf(ctx context.Context, tx Transaction, account *domain.Account, pos *domain.Position) (decimal.Decimal, error) {
	if account.IsCumulative() {
		switch {
		case pos == nil || account.ConvertedBefore(pos.Date):
			return l.subaccountsBalance(ctx, tx, account, pos)
		case account.ConvertedOn(pos.Date):
			own, err := l.ownBalance(ctx, tx, account, *pos)
			if err != nil {
				return decimal.Zero, err
			}
			subs, err := l.subaccountsBalance(ctx, tx, account, pos)
			if err != nil {
				return decimal.Zero, err
			}
			return own.Add(subs), nil
		}
	}

	if pos == nil {
		return l.value(ctx, tx, account.ID, farFuture, true)
	}

	return l.ownBalance(ctx, tx, account, *pos)
}

// ownBalance adds the movements of account on the date of pos up to its
// order to the closing balance of the previous day.
func (l *BalanceLedger) ownBalance(ctx context.Context, tx Transaction, account *domain.Account, pos domain.Position) (decimal.Decimal, error) {
	date := domain.Day(pos.Date)
	total, err := l.valueBefore(ctx, tx, account.ID, date)
	if err != nil {
		return decimal.Zero, err
	}

	movements, err := l.movements.ListByAccount(ctx, tx, account.ID, &date, &date)
	if err != nil {
		return decimal.Zero, err
	}

	for _, m := range movements {
		if m.Order <= pos.Order {
			total = total.Add(m.AmountFor(account.ID, account.Currency))
		}
	}

	return total, nil
}

func (l *BalanceLedger) subaccountsBalance(ctx context.Context, tx Transaction, account *domain.Account, pos *domain.Position) (decimal.Decimal, error) {
	subaccounts, err := l.accounts.ListSubaccounts(ctx, tx, account.ID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, sub := range subaccounts {
		balance, err := l.BalanceOf(ctx, tx, sub, pos)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(balance)
	}

	return total, nil
}

// MovementSum adds up the effect of every movement on account.
func (l *BalanceLedger) MovementSum(ctx context.Context, tx Transaction, account *domain.Account) (decimal.Decimal, error) {
	movements, err := l.movements.ListByAccount(ctx, tx, account.ID, nil, nil)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(m.AmountFor(account.ID, account.Currency))
	}

	return total, nil
}

func (l *BalanceLedger) countRows(operation string) {
	if l.metrics != nil {
		l.metrics.BalanceRowsTouched.WithLabelValues(operation).Inc()
	}
}
