package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/usecase"
)

// MovementRepository implements usecase.MovementRepository.
type MovementRepository struct {
	store *Store
}

// Create creates a new movement.
func (r *MovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	return r.store.update(tx, func(st *state) error {
		if _, ok := st.movements[movement.ID]; ok {
			return fmt.Errorf("movement %s already exists", movement.ID)
		}
		st.movements[movement.ID] = movement.Clone()
		return nil
	})
}

// Update replaces a movement.
func (r *MovementRepository) Update(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	return r.store.update(tx, func(st *state) error {
		if _, ok := st.movements[movement.ID]; !ok {
			return domain.ErrMovementNotFound
		}
		st.movements[movement.ID] = movement.Clone()
		return nil
	})
}

// Delete deletes a movement.
func (r *MovementRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	return r.store.update(tx, func(st *state) error {
		if _, ok := st.movements[id]; !ok {
			return domain.ErrMovementNotFound
		}
		delete(st.movements, id)
		return nil
	})
}

// GetByID retrieves a movement by ID.
func (r *MovementRepository) GetByID(ctx context.Context, tx usecase.Transaction, id string) (*domain.Movement, error) {
	var movement *domain.Movement
	err := r.store.view(tx, func(st *state) error {
		m, ok := st.movements[id]
		if !ok {
			return domain.ErrMovementNotFound
		}
		movement = m.Clone()
		return nil
	})
	return movement, err
}

// CountByDate counts the movements of a date.
func (r *MovementRepository) CountByDate(ctx context.Context, tx usecase.Transaction, date time.Time) (int, error) {
	date = domain.Day(date)
	count := 0
	err := r.store.view(tx, func(st *state) error {
		for _, m := range st.movements {
			if m.Date.Equal(date) {
				count++
			}
		}
		return nil
	})
	return count, err
}

// ShiftOrders moves the orders of a date from fromOrder on by delta.
func (r *MovementRepository) ShiftOrders(ctx context.Context, tx usecase.Transaction, date time.Time, fromOrder, delta int, exceptID string) error {
	date = domain.Day(date)
	return r.store.update(tx, func(st *state) error {
		for _, m := range st.movements {
			if m.ID != exceptID && m.Date.Equal(date) && m.Order >= fromOrder {
				m.Order += delta
			}
		}
		return nil
	})
}

// ListByDateRange lists the movements between two dates, inclusive.
func (r *MovementRepository) ListByDateRange(ctx context.Context, tx usecase.Transaction, from, to time.Time) ([]*domain.Movement, error) {
	from, to = domain.Day(from), domain.Day(to)
	return r.filter(tx, func(m *domain.Movement) bool {
		return !m.Date.Before(from) && !m.Date.After(to)
	})
}

// ListByAccount lists the movements touching accountID.
func (r *MovementRepository) ListByAccount(ctx context.Context, tx usecase.Transaction, accountID string, from, to *time.Time) ([]*domain.Movement, error) {
	return r.filter(tx, func(m *domain.Movement) bool {
		if !m.Touches(accountID) {
			return false
		}
		if from != nil && m.Date.Before(domain.Day(*from)) {
			return false
		}
		if to != nil && m.Date.After(domain.Day(*to)) {
			return false
		}
		return true
	})
}

func (r *MovementRepository) filter(tx usecase.Transaction, keep func(*domain.Movement) bool) ([]*domain.Movement, error) {
	var out []*domain.Movement
	err := r.store.view(tx, func(st *state) error {
		for _, m := range st.movements {
			if keep(m) {
				out = append(out, m.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Position().Before(out[j].Position())
	})

	return out, nil
}
