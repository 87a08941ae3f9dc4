package postgres

import (
	"context"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/infrastructure/postgres/generated"
	"github.com/iho/cuentas/internal/usecase"
)

// HolderRepository implements usecase.HolderRepository. Debtor sets live in
// their own table.
type HolderRepository struct {
	db generated.DBTX
}

// NewHolderRepository creates a new HolderRepository.
func NewHolderRepository(db generated.DBTX) *HolderRepository {
	return &HolderRepository{db: db}
}

// Create creates a new holder with its debtors.
func (r *HolderRepository) Create(ctx context.Context, tx usecase.Transaction, holder *domain.Holder) error {
	q := queriesFor(r.db, tx)

	err := q.CreateHolder(ctx, generated.CreateHolderParams{
		ID:        holder.ID,
		Key:       holder.Key,
		Name:      holder.Name,
		CreatedAt: timeToPgTimestamptz(holder.CreatedAt),
	})
	if err != nil {
		return mapError(err, domain.ErrHolderNotFound)
	}

	for _, debtorID := range holder.DebtorIDs {
		if err := q.AddHolderDebtor(ctx, generated.AddHolderDebtorParams{CreditorID: holder.ID, DebtorID: debtorID}); err != nil {
			return err
		}
	}

	return nil
}

// Delete deletes a holder. Debtor links cascade.
func (r *HolderRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	rows, err := queriesFor(r.db, tx).DeleteHolder(ctx, id)
	return affected(rows, err, domain.ErrHolderNotFound)
}

// GetByID retrieves a holder by ID.
func (r *HolderRepository) GetByID(ctx context.Context, tx usecase.Transaction, id string) (*domain.Holder, error) {
	q := queriesFor(r.db, tx)

	row, err := q.GetHolderByID(ctx, id)
	if err != nil {
		return nil, mapError(err, domain.ErrHolderNotFound)
	}

	return r.withDebtors(ctx, q, row)
}

// GetByKey retrieves a holder by key.
func (r *HolderRepository) GetByKey(ctx context.Context, tx usecase.Transaction, key string) (*domain.Holder, error) {
	q := queriesFor(r.db, tx)

	row, err := q.GetHolderByKey(ctx, key)
	if err != nil {
		return nil, mapError(err, domain.ErrHolderNotFound)
	}

	return r.withDebtors(ctx, q, row)
}

// List lists holders by key.
func (r *HolderRepository) List(ctx context.Context, tx usecase.Transaction) ([]*domain.Holder, error) {
	q := queriesFor(r.db, tx)

	rows, err := q.ListHolders(ctx)
	if err != nil {
		return nil, err
	}

	holders := make([]*domain.Holder, 0, len(rows))
	for _, row := range rows {
		holder, err := r.withDebtors(ctx, q, row)
		if err != nil {
			return nil, err
		}
		holders = append(holders, holder)
	}

	return holders, nil
}

// AddDebtor registers debtorID as a debtor of creditorID.
func (r *HolderRepository) AddDebtor(ctx context.Context, tx usecase.Transaction, creditorID, debtorID string) error {
	q := queriesFor(r.db, tx)

	if _, err := q.GetHolderByID(ctx, creditorID); err != nil {
		return mapError(err, domain.ErrHolderNotFound)
	}

	return q.AddHolderDebtor(ctx, generated.AddHolderDebtorParams{CreditorID: creditorID, DebtorID: debtorID})
}

// RemoveDebtor drops debtorID from the debtors of creditorID.
func (r *HolderRepository) RemoveDebtor(ctx context.Context, tx usecase.Transaction, creditorID, debtorID string) error {
	q := queriesFor(r.db, tx)

	if _, err := q.GetHolderByID(ctx, creditorID); err != nil {
		return mapError(err, domain.ErrHolderNotFound)
	}

	return q.RemoveHolderDebtor(ctx, generated.RemoveHolderDebtorParams{CreditorID: creditorID, DebtorID: debtorID})
}

func (r *HolderRepository) withDebtors(ctx context.Context, q *generated.Queries, row generated.Holder) (*domain.Holder, error) {
	debtors, err := q.ListHolderDebtors(ctx, row.ID)
	if err != nil {
		return nil, err
	}

	return &domain.Holder{
		ID:        row.ID,
		Key:       row.Key,
		Name:      row.Name,
		DebtorIDs: debtors,
		CreatedAt: row.CreatedAt.Time,
	}, nil
}
