package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/shopspring/decimal"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository on one red-black
// tree per account keyed by date.
type BalanceRepository struct {
	store *Store
}

func (st *state) tree(accountID string, create bool) *redblacktree.Tree {
	tree, ok := st.balances[accountID]
	if !ok && create {
		tree = newBalanceTree()
		st.balances[accountID] = tree
	}
	return tree
}

// Create creates a balance row.
func (r *BalanceRepository) Create(ctx context.Context, tx usecase.Transaction, balance *domain.Balance) error {
	return r.store.update(tx, func(st *state) error {
		date := domain.Day(balance.Date)
		tree := st.tree(balance.AccountID, true)
		if _, found := tree.Get(date); found {
			return fmt.Errorf("balance of %s at %s already exists", balance.AccountID, date.Format(domain.DateFormat))
		}
		row := balance.Clone()
		row.Date = date
		tree.Put(date, row)
		st.balanceAccounts[row.ID] = row.AccountID
		return nil
	})
}

// Update updates the amount of a balance row.
func (r *BalanceRepository) Update(ctx context.Context, tx usecase.Transaction, balance *domain.Balance) error {
	return r.store.update(tx, func(st *state) error {
		row, err := st.balanceByID(balance.ID)
		if err != nil {
			return err
		}
		row.Amount = balance.Amount
		return nil
	})
}

// Delete deletes a balance row.
func (r *BalanceRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	return r.store.update(tx, func(st *state) error {
		row, err := st.balanceByID(id)
		if err != nil {
			return err
		}
		st.tree(row.AccountID, false).Remove(row.Date)
		delete(st.balanceAccounts, id)
		return nil
	})
}

func (st *state) balanceByID(id string) (*domain.Balance, error) {
	accountID, ok := st.balanceAccounts[id]
	if !ok {
		return nil, domain.ErrBalanceNotFound
	}
	tree := st.tree(accountID, false)
	if tree == nil {
		return nil, domain.ErrBalanceNotFound
	}
	it := tree.Iterator()
	for it.Next() {
		if row := it.Value().(*domain.Balance); row.ID == id {
			return row, nil
		}
	}
	return nil, domain.ErrBalanceNotFound
}

// GetAt retrieves the row of an account at date.
func (r *BalanceRepository) GetAt(ctx context.Context, tx usecase.Transaction, accountID string, date time.Time) (*domain.Balance, error) {
	var balance *domain.Balance
	err := r.store.view(tx, func(st *state) error {
		tree := st.tree(accountID, false)
		if tree == nil {
			return domain.ErrBalanceNotFound
		}
		value, found := tree.Get(domain.Day(date))
		if !found {
			return domain.ErrBalanceNotFound
		}
		balance = value.(*domain.Balance).Clone()
		return nil
	})
	return balance, err
}

// GetLatestBefore retrieves the latest row before date, or at date when
// inclusive.
func (r *BalanceRepository) GetLatestBefore(ctx context.Context, tx usecase.Transaction, accountID string, date time.Time, inclusive bool) (*domain.Balance, error) {
	key := domain.Day(date)
	if !inclusive {
		key = key.Add(-time.Nanosecond)
	}

	var balance *domain.Balance
	err := r.store.view(tx, func(st *state) error {
		tree := st.tree(accountID, false)
		if tree == nil {
			return domain.ErrBalanceNotFound
		}
		node, found := tree.Floor(key)
		if !found {
			return domain.ErrBalanceNotFound
		}
		balance = node.Value.(*domain.Balance).Clone()
		return nil
	})
	return balance, err
}

// ListRange lists the rows of an account between two optional dates,
// inclusive, in date order.
func (r *BalanceRepository) ListRange(ctx context.Context, tx usecase.Transaction, accountID string, from, to *time.Time) ([]*domain.Balance, error) {
	var rows []*domain.Balance
	err := r.store.view(tx, func(st *state) error {
		tree := st.tree(accountID, false)
		if tree == nil {
			return nil
		}
		it := tree.Iterator()
		for it.Next() {
			date := it.Key().(time.Time)
			if from != nil && date.Before(domain.Day(*from)) {
				continue
			}
			if to != nil && date.After(domain.Day(*to)) {
				break
			}
			rows = append(rows, it.Value().(*domain.Balance).Clone())
		}
		return nil
	})
	return rows, err
}

// AddAfter adds delta to every row of an account strictly after date.
func (r *BalanceRepository) AddAfter(ctx context.Context, tx usecase.Transaction, accountID string, date time.Time, delta decimal.Decimal) error {
	date = domain.Day(date)
	return r.store.update(tx, func(st *state) error {
		tree := st.tree(accountID, false)
		if tree == nil {
			return nil
		}
		it := tree.Iterator()
		for it.Next() {
			if it.Key().(time.Time).After(date) {
				row := it.Value().(*domain.Balance)
				row.Amount = row.Amount.Add(delta)
			}
		}
		return nil
	})
}

// DeleteByAccount deletes every row of an account.
func (r *BalanceRepository) DeleteByAccount(ctx context.Context, tx usecase.Transaction, accountID string) error {
	return r.store.update(tx, func(st *state) error {
		tree := st.tree(accountID, false)
		if tree == nil {
			return nil
		}
		for _, value := range tree.Values() {
			delete(st.balanceAccounts, value.(*domain.Balance).ID)
		}
		delete(st.balances, accountID)
		return nil
	})
}
