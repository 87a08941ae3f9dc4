package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/infrastructure/postgres/generated"
	"github.com/iho/cuentas/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// queriesFor binds queries to tx, or to the pool when tx is nil.
func queriesFor(db generated.DBTX, tx usecase.Transaction) *generated.Queries {
	if tx == nil {
		return generated.New(db)
	}
	return generated.New(tx.(*Tx).PgxTx())
}

// mapError translates driver errors into domain errors.
func mapError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateKey, pgErr.ConstraintName)
	}

	return err
}

// affected turns a zero row count into notFound.
func affected(rows int64, err error, notFound error) error {
	if err != nil {
		return mapError(err, notFound)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func dateToPg(t time.Time) pgtype.Date {
	return pgtype.Date{Time: domain.Day(t), Valid: true}
}

func optionalDateToPg(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return dateToPg(*t)
}

func pgToDate(d pgtype.Date) time.Time {
	return domain.Day(d.Time)
}

func pgToOptionalDate(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := pgToDate(d)
	return &t
}

func textFromPtr(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func ptrFromText(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}
