package usecase_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/cuentas/internal/adapter/repository/memory"
	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/infrastructure/metrics"
	"github.com/iho/cuentas/internal/usecase"
)

type sequenceGenerator struct {
	n atomic.Int64
}

func (g *sequenceGenerator) Generate() string {
	return fmt.Sprintf("id-%06d", g.n.Add(1))
}

type fixture struct {
	ctx            context.Context
	deps           usecase.Deps
	store          *memory.Store
	repos          usecase.Repositories
	metrics        *metrics.Metrics
	ledger         *usecase.BalanceLedger
	currencies     *usecase.CurrencyUseCase
	movements      *usecase.MovementUseCase
	accounts       *usecase.AccountUseCase
	holders        *usecase.HolderUseCase
	reconciliation *usecase.ReconciliationUseCase
	consistency    *usecase.LedgerUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	deps := usecase.Deps{
		TxManager: store,
		Repos:     store.Repositories(),
		IDGen:     &sequenceGenerator{},
		Logger:    zerolog.Nop(),
		Metrics:   metrics.New(prometheus.NewRegistry()),
	}
	defaults := usecase.HolderDefaults{Key: "titular", Name: "Titular"}

	f := &fixture{
		ctx:     context.Background(),
		deps:    deps,
		store:   store,
		repos:   deps.Repos,
		metrics: deps.Metrics,
	}
	services := usecase.NewServices(deps, usecase.ServiceOptions{DefaultCurrency: "ARS", Holder: defaults})
	f.ledger = services.Ledger
	f.currencies = services.Currencies
	f.movements = services.Movements
	f.accounts = services.Accounts
	f.holders = services.Holders
	f.reconciliation = services.Reconciliation
	f.consistency = services.Consistency

	return f
}

func day(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func (f *fixture) holder(t *testing.T, key string) *domain.Holder {
	t.Helper()
	h, err := f.holders.CreateHolder(f.ctx, usecase.CreateHolderInput{Key: key, Name: key})
	require.NoError(t, err)
	return h
}

func (f *fixture) account(t *testing.T, key string, opts ...func(*usecase.CreateAccountInput)) *domain.Account {
	t.Helper()
	input := usecase.CreateAccountInput{Name: key, Key: key}
	for _, opt := range opts {
		opt(&input)
	}
	a, err := f.accounts.CreateAccount(f.ctx, input)
	require.NoError(t, err)
	return a
}

func ownedBy(h *domain.Holder) func(*usecase.CreateAccountInput) {
	return func(in *usecase.CreateAccountInput) { in.HolderID = h.ID }
}

func inCurrency(code string) func(*usecase.CreateAccountInput) {
	return func(in *usecase.CreateAccountInput) { in.Currency = code }
}

func (f *fixture) move(t *testing.T, concept, amount, entry, exit, date string) *domain.Movement {
	t.Helper()
	m, err := f.movements.CreateMovement(f.ctx, usecase.CreateMovementInput{
		Concept:        concept,
		Amount:         dec(amount),
		EntryAccountID: entry,
		ExitAccountID:  exit,
		Date:           dayPtr(date),
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) balance(t *testing.T, accountID string) decimal.Decimal {
	t.Helper()
	b, err := f.accounts.Balance(f.ctx, accountID, nil)
	require.NoError(t, err)
	return b
}

func (f *fixture) balanceAt(t *testing.T, accountID, date string, order int) decimal.Decimal {
	t.Helper()
	pos := domain.NewPosition(day(date), order)
	b, err := f.accounts.Balance(f.ctx, accountID, &pos)
	require.NoError(t, err)
	return b
}

func (f *fixture) rows(t *testing.T, accountID string) []*domain.Balance {
	t.Helper()
	rows, err := f.repos.Balances.ListRange(f.ctx, nil, accountID, nil, nil)
	require.NoError(t, err)
	return rows
}

// requireConsistent checks every account against its movements and the
// symmetry of credit accounts.
func (f *fixture) requireConsistent(t *testing.T) {
	t.Helper()
	ok, err := f.consistency.CheckConsistency(f.ctx)
	require.NoError(t, err)
	require.True(t, ok)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), fmt.Sprint(msgAndArgs...))
}

// requireDenseOrders checks that the orders on date run from 0 without gaps
// or repeats.
func (f *fixture) requireDenseOrders(t *testing.T, date string) {
	t.Helper()
	movements, err := f.movements.ListByDateRange(f.ctx, day(date), day(date))
	require.NoError(t, err)

	seen := make(map[int]bool, len(movements))
	for _, m := range movements {
		require.Falsef(t, seen[m.Order], "order %d used twice on %s", m.Order, date)
		seen[m.Order] = true
	}
	for order := range len(movements) {
		require.Truef(t, seen[order], "order %d missing on %s", order, date)
	}
}
