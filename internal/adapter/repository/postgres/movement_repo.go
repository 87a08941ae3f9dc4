package postgres

import (
	"context"
	"time"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/infrastructure/postgres/generated"
	"github.com/iho/cuentas/internal/usecase"
)

// MovementRepository implements usecase.MovementRepository.
type MovementRepository struct {
	db generated.DBTX
}

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(db generated.DBTX) *MovementRepository {
	return &MovementRepository{db: db}
}

// Create creates a new movement.
func (r *MovementRepository) Create(ctx context.Context, tx usecase.Transaction, m *domain.Movement) error {
	err := queriesFor(r.db, tx).CreateMovement(ctx, generated.CreateMovementParams{
		ID:                m.ID,
		Date:              dateToPg(m.Date),
		Position:          int32(m.Order),
		Concept:           m.Concept,
		Detail:            m.Detail,
		Amount:            decimalToNumeric(m.Amount),
		EntryAccountID:    textFromPtr(m.EntryAccountID),
		ExitAccountID:     textFromPtr(m.ExitAccountID),
		Currency:          m.Currency,
		ExchangeRate:      decimalToNumeric(m.ExchangeRate),
		Automatic:         m.Automatic,
		CounterMovementID: textFromPtr(m.CounterMovementID),
		Free:              m.Free,
		CreatedAt:         timeToPgTimestamptz(m.CreatedAt),
		UpdatedAt:         timeToPgTimestamptz(m.UpdatedAt),
	})

	return mapError(err, domain.ErrMovementNotFound)
}

// Update overwrites a stored movement.
func (r *MovementRepository) Update(ctx context.Context, tx usecase.Transaction, m *domain.Movement) error {
	rows, err := queriesFor(r.db, tx).UpdateMovement(ctx, generated.UpdateMovementParams{
		ID:                m.ID,
		Date:              dateToPg(m.Date),
		Position:          int32(m.Order),
		Concept:           m.Concept,
		Detail:            m.Detail,
		Amount:            decimalToNumeric(m.Amount),
		EntryAccountID:    textFromPtr(m.EntryAccountID),
		ExitAccountID:     textFromPtr(m.ExitAccountID),
		Currency:          m.Currency,
		ExchangeRate:      decimalToNumeric(m.ExchangeRate),
		Automatic:         m.Automatic,
		CounterMovementID: textFromPtr(m.CounterMovementID),
		Free:              m.Free,
		UpdatedAt:         timeToPgTimestamptz(m.UpdatedAt),
	})

	return affected(rows, err, domain.ErrMovementNotFound)
}

// Delete deletes a movement.
func (r *MovementRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	rows, err := queriesFor(r.db, tx).DeleteMovement(ctx, id)
	return affected(rows, err, domain.ErrMovementNotFound)
}

// GetByID retrieves a movement by ID.
func (r *MovementRepository) GetByID(ctx context.Context, tx usecase.Transaction, id string) (*domain.Movement, error) {
	row, err := queriesFor(r.db, tx).GetMovementByID(ctx, id)
	if err != nil {
		return nil, mapError(err, domain.ErrMovementNotFound)
	}

	return rowToMovement(row), nil
}

// CountByDate counts the movements of date.
func (r *MovementRepository) CountByDate(ctx context.Context, tx usecase.Transaction, date time.Time) (int, error) {
	count, err := queriesFor(r.db, tx).CountMovementsByDate(ctx, dateToPg(date))
	return int(count), err
}

// ShiftOrders moves a block of movements of date by delta positions.
func (r *MovementRepository) ShiftOrders(ctx context.Context, tx usecase.Transaction, date time.Time, fromOrder, delta int, exceptID string) error {
	return queriesFor(r.db, tx).ShiftMovementPositions(ctx, generated.ShiftMovementPositionsParams{
		Date:         dateToPg(date),
		FromPosition: int32(fromOrder),
		Delta:        int32(delta),
		ExceptID:     exceptID,
	})
}

// ListByDateRange lists the movements between two inclusive dates.
func (r *MovementRepository) ListByDateRange(ctx context.Context, tx usecase.Transaction, from, to time.Time) ([]*domain.Movement, error) {
	rows, err := queriesFor(r.db, tx).ListMovementsByDateRange(ctx, generated.ListMovementsByDateRangeParams{
		FromDate: dateToPg(from),
		ToDate:   dateToPg(to),
	})
	if err != nil {
		return nil, err
	}

	return rowsToMovements(rows), nil
}

// ListByAccount lists the movements touching accountID.
func (r *MovementRepository) ListByAccount(ctx context.Context, tx usecase.Transaction, accountID string, from, to *time.Time) ([]*domain.Movement, error) {
	rows, err := queriesFor(r.db, tx).ListMovementsByAccount(ctx, generated.ListMovementsByAccountParams{
		AccountID: textFromPtr(&accountID),
		FromDate:  optionalDateToPg(from),
		ToDate:    optionalDateToPg(to),
	})
	if err != nil {
		return nil, err
	}

	return rowsToMovements(rows), nil
}

func rowsToMovements(rows []generated.Movement) []*domain.Movement {
	movements := make([]*domain.Movement, 0, len(rows))
	for _, row := range rows {
		movements = append(movements, rowToMovement(row))
	}
	return movements
}

func rowToMovement(row generated.Movement) *domain.Movement {
	return &domain.Movement{
		ID:                row.ID,
		Date:              pgToDate(row.Date),
		Order:             int(row.Position),
		Concept:           row.Concept,
		Detail:            row.Detail,
		Amount:            numericToDecimal(row.Amount),
		EntryAccountID:    ptrFromText(row.EntryAccountID),
		ExitAccountID:     ptrFromText(row.ExitAccountID),
		Currency:          row.Currency,
		ExchangeRate:      numericToDecimal(row.ExchangeRate),
		Automatic:         row.Automatic,
		CounterMovementID: ptrFromText(row.CounterMovementID),
		Free:              row.Free,
		CreatedAt:         row.CreatedAt.Time,
		UpdatedAt:         row.UpdatedAt.Time,
	}
}
