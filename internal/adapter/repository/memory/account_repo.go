package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	return r.store.update(tx, func(st *state) error {
		if _, ok := st.accounts[account.ID]; ok {
			return fmt.Errorf("account %s already exists", account.ID)
		}
		for _, a := range st.accounts {
			if a.Key == account.Key {
				return fmt.Errorf("%w: account %q", domain.ErrDuplicateKey, account.Key)
			}
		}
		st.accounts[account.ID] = account.Clone()
		return nil
	})
}

// Update replaces an account.
func (r *AccountRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	return r.store.update(tx, func(st *state) error {
		if _, ok := st.accounts[account.ID]; !ok {
			return domain.ErrAccountNotFound
		}
		for _, a := range st.accounts {
			if a.ID != account.ID && a.Key == account.Key {
				return fmt.Errorf("%w: account %q", domain.ErrDuplicateKey, account.Key)
			}
		}
		st.accounts[account.ID] = account.Clone()
		return nil
	})
}

// Delete deletes an account.
func (r *AccountRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	return r.store.update(tx, func(st *state) error {
		if _, ok := st.accounts[id]; !ok {
			return domain.ErrAccountNotFound
		}
		delete(st.accounts, id)
		return nil
	})
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	var account *domain.Account
	err := r.store.view(tx, func(st *state) error {
		a, ok := st.accounts[id]
		if !ok {
			return domain.ErrAccountNotFound
		}
		account = a.Clone()
		return nil
	})
	return account, err
}

// GetByKey retrieves an account by key.
func (r *AccountRepository) GetByKey(ctx context.Context, tx usecase.Transaction, key string) (*domain.Account, error) {
	var account *domain.Account
	err := r.store.view(tx, func(st *state) error {
		for _, a := range st.accounts {
			if a.Key == key {
				account = a.Clone()
				return nil
			}
		}
		return domain.ErrAccountNotFound
	})
	return account, err
}

// ListSubaccounts lists the direct subaccounts of parentID.
func (r *AccountRepository) ListSubaccounts(ctx context.Context, tx usecase.Transaction, parentID string) ([]*domain.Account, error) {
	return r.filter(tx, func(a *domain.Account) bool {
		return a.ParentID != nil && *a.ParentID == parentID
	})
}

// ListByHolder lists the accounts owned by holderID.
func (r *AccountRepository) ListByHolder(ctx context.Context, tx usecase.Transaction, holderID string) ([]*domain.Account, error) {
	return r.filter(tx, func(a *domain.Account) bool {
		return a.HolderID == holderID
	})
}

// List lists accounts in creation order.
func (r *AccountRepository) List(ctx context.Context, tx usecase.Transaction, limit, offset int) ([]*domain.Account, error) {
	all, err := r.filter(tx, func(*domain.Account) bool { return true })
	if err != nil {
		return nil, err
	}

	if offset >= len(all) {
		return []*domain.Account{}, nil
	}
	end := min(offset+limit, len(all))

	return all[offset:end], nil
}

func (r *AccountRepository) filter(tx usecase.Transaction, keep func(*domain.Account) bool) ([]*domain.Account, error) {
	var out []*domain.Account
	err := r.store.view(tx, func(st *state) error {
		for _, a := range st.accounts {
			if keep(a) {
				out = append(out, a.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}
