package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cuentas/internal/domain"
)

var (
	accountColumns  = []string{"id", "key", "name", "holder_id", "parent_id", "kind", "currency", "counter_account_id", "conversion_date", "created_at", "updated_at"}
	movementColumns = []string{"id", "date", "position", "concept", "detail", "amount", "entry_account_id", "exit_account_id", "currency", "exchange_rate", "automatic", "counter_movement_id", "free", "created_at", "updated_at"}
	balanceColumns  = []string{"id", "account_id", "date", "amount"}
	holderColumns   = []string{"id", "key", "name", "created_at"}
)

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAccountRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	pool := newMockPool(t)
	repo := NewAccountRepository(pool)
	now := time.Now().UTC()

	pool.ExpectQuery("FROM accounts").
		WithArgs("acc-1").
		WillReturnRows(pgxmock.NewRows(accountColumns).
			AddRow("acc-1", "ahorros", "Ahorros", "h1", nil, "cumulative", "ARS", nil, date("2024-02-01"), now, now))
	pool.ExpectQuery("FROM accounts").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	account, err := repo.GetByID(ctx, nil, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "ahorros", account.Key)
	assert.True(t, account.IsCumulative())
	assert.Nil(t, account.ParentID)
	require.NotNil(t, account.ConversionDate)
	assert.Equal(t, date("2024-02-01"), *account.ConversionDate)

	_, err = repo.GetByID(ctx, nil, "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	assertExpectations(t, pool)
}

func TestAccountRepository_CreateDuplicateKey(t *testing.T) {
	pool := newMockPool(t)
	repo := NewAccountRepository(pool)

	pool.ExpectExec("INSERT INTO accounts").
		WithArgs(anyArgs(len(accountColumns))...).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "accounts_key_key"})

	err := repo.Create(context.Background(), nil, &domain.Account{ID: "acc-1", Key: "caja", Kind: domain.AccountInteractive})
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)
	assert.ErrorIs(t, err, domain.ErrValidation)

	assertExpectations(t, pool)
}

func TestAccountRepository_DeleteMissing(t *testing.T) {
	pool := newMockPool(t)
	repo := NewAccountRepository(pool)

	pool.ExpectExec("DELETE FROM accounts").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), nil, "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	assertExpectations(t, pool)
}

func TestMovementRepository_ListByAccount(t *testing.T) {
	pool := newMockPool(t)
	repo := NewMovementRepository(pool)
	now := time.Now().UTC()

	pool.ExpectQuery("FROM movements").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(movementColumns).
			AddRow("m1", date("2024-01-01"), int32(1), "Sueldo", "", "1500.50", "caja", nil, "ARS", "1", false, nil, false, now, now).
			AddRow("m2", date("2024-01-01"), int32(2), "Préstamo", "", "30", "caja", "banco", "ARS", "1", false, "m3", false, now, now))

	movements, err := repo.ListByAccount(context.Background(), nil, "caja", nil, nil)
	require.NoError(t, err)
	require.Len(t, movements, 2)

	assert.Equal(t, 1, movements[0].Order)
	assert.True(t, decimal.RequireFromString("1500.5").Equal(movements[0].Amount))
	assert.Equal(t, "caja", movements[0].EntryID())
	assert.Nil(t, movements[0].ExitAccountID)

	assert.Equal(t, "banco", movements[1].ExitID())
	assert.True(t, movements[1].HasCounterMovement())

	assertExpectations(t, pool)
}

func TestMovementRepository_ShiftOrders(t *testing.T) {
	pool := newMockPool(t)
	repo := NewMovementRepository(pool)

	pool.ExpectExec("UPDATE movements").
		WithArgs(pgxmock.AnyArg(), int32(2), int32(-1), "m1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	err := repo.ShiftOrders(context.Background(), nil, date("2024-01-01"), 2, -1, "m1")
	require.NoError(t, err)

	assertExpectations(t, pool)
}

func TestBalanceRepository_GetLatestBefore(t *testing.T) {
	pool := newMockPool(t)
	repo := NewBalanceRepository(pool)

	pool.ExpectQuery(`date < \$2`).
		WithArgs("caja", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(balanceColumns).AddRow("b1", "caja", date("2024-01-01"), "100"))
	pool.ExpectQuery(`date <= \$2`).
		WithArgs("caja", pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	row, err := repo.GetLatestBefore(context.Background(), nil, "caja", date("2024-01-05"), false)
	require.NoError(t, err)
	assert.Equal(t, date("2024-01-01"), row.Date)
	assert.True(t, decimal.NewFromInt(100).Equal(row.Amount))

	_, err = repo.GetLatestBefore(context.Background(), nil, "caja", date("2023-12-31"), true)
	assert.ErrorIs(t, err, domain.ErrBalanceNotFound)

	assertExpectations(t, pool)
}

func TestHolderRepository_GetByKeyLoadsDebtors(t *testing.T) {
	pool := newMockPool(t)
	repo := NewHolderRepository(pool)

	pool.ExpectQuery("FROM holders").
		WithArgs("ana").
		WillReturnRows(pgxmock.NewRows(holderColumns).AddRow("h1", "ana", "Ana", time.Now().UTC()))
	pool.ExpectQuery("FROM holder_debtors").
		WithArgs("h1").
		WillReturnRows(pgxmock.NewRows([]string{"debtor_id"}).AddRow("h2"))

	holder, err := repo.GetByKey(context.Background(), nil, "ana")
	require.NoError(t, err)
	assert.True(t, holder.HasDebtor("h2"))

	assertExpectations(t, pool)
}

func TestCurrencyRepository_GetQuoteAtMissing(t *testing.T) {
	pool := newMockPool(t)
	repo := NewCurrencyRepository(pool)

	pool.ExpectQuery("FROM quotes").
		WithArgs("USD", pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetQuoteAt(context.Background(), nil, "USD", date("2024-01-01"))
	assert.ErrorIs(t, err, domain.ErrQuoteNotFound)

	assertExpectations(t, pool)
}

func TestRepositoriesRunInsideTransaction(t *testing.T) {
	ctx := context.Background()
	pool := newMockPool(t)
	repos := NewRepositories(pool)

	pool.ExpectBeginTx(serializable)
	pool.ExpectExec("INSERT INTO balances").
		WithArgs("b1", "caja", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectExec("UPDATE balances").
		WithArgs("caja", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	pool.ExpectCommit()

	tx, err := newTxManagerWithPool(pool).Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, repos.Balances.Create(ctx, tx, &domain.Balance{
		ID:        "b1",
		AccountID: "caja",
		Date:      date("2024-01-01"),
		Amount:    decimal.NewFromInt(10),
	}))
	require.NoError(t, repos.Balances.AddAfter(ctx, tx, "caja", date("2024-01-01"), decimal.NewFromInt(10)))
	require.NoError(t, tx.Commit(ctx))

	assertExpectations(t, pool)
}
