package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/usecase"
)

// HolderRepository implements usecase.HolderRepository.
type HolderRepository struct {
	store *Store
}

// Create creates a new holder.
func (r *HolderRepository) Create(ctx context.Context, tx usecase.Transaction, holder *domain.Holder) error {
	return r.store.update(tx, func(st *state) error {
		for _, h := range st.holders {
			if h.Key == holder.Key {
				return fmt.Errorf("%w: holder %q", domain.ErrDuplicateKey, holder.Key)
			}
		}
		st.holders[holder.ID] = holder.Clone()
		return nil
	})
}

// Delete deletes a holder and drops it from every debtor set.
func (r *HolderRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	return r.store.update(tx, func(st *state) error {
		if _, ok := st.holders[id]; !ok {
			return domain.ErrHolderNotFound
		}
		delete(st.holders, id)
		for _, h := range st.holders {
			h.RemoveDebtor(id)
		}
		return nil
	})
}

// GetByID retrieves a holder by ID.
func (r *HolderRepository) GetByID(ctx context.Context, tx usecase.Transaction, id string) (*domain.Holder, error) {
	var holder *domain.Holder
	err := r.store.view(tx, func(st *state) error {
		h, ok := st.holders[id]
		if !ok {
			return domain.ErrHolderNotFound
		}
		holder = h.Clone()
		return nil
	})
	return holder, err
}

// GetByKey retrieves a holder by key.
func (r *HolderRepository) GetByKey(ctx context.Context, tx usecase.Transaction, key string) (*domain.Holder, error) {
	var holder *domain.Holder
	err := r.store.view(tx, func(st *state) error {
		for _, h := range st.holders {
			if h.Key == key {
				holder = h.Clone()
				return nil
			}
		}
		return domain.ErrHolderNotFound
	})
	return holder, err
}

// List lists holders by key.
func (r *HolderRepository) List(ctx context.Context, tx usecase.Transaction) ([]*domain.Holder, error) {
	var holders []*domain.Holder
	err := r.store.view(tx, func(st *state) error {
		for _, h := range st.holders {
			holders = append(holders, h.Clone())
		}
		return nil
	})
	sort.Slice(holders, func(i, j int) bool { return holders[i].Key < holders[j].Key })
	return holders, err
}

// AddDebtor registers debtorID as a debtor of creditorID.
func (r *HolderRepository) AddDebtor(ctx context.Context, tx usecase.Transaction, creditorID, debtorID string) error {
	return r.store.update(tx, func(st *state) error {
		h, ok := st.holders[creditorID]
		if !ok {
			return domain.ErrHolderNotFound
		}
		h.AddDebtor(debtorID)
		return nil
	})
}

// RemoveDebtor drops debtorID from the debtors of creditorID.
func (r *HolderRepository) RemoveDebtor(ctx context.Context, tx usecase.Transaction, creditorID, debtorID string) error {
	return r.store.update(tx, func(st *state) error {
		h, ok := st.holders[creditorID]
		if !ok {
			return domain.ErrHolderNotFound
		}
		h.RemoveDebtor(debtorID)
		return nil
	})
}
