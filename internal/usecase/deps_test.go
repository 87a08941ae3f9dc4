package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/infrastructure/metrics"
	"github.com/iho/cuentas/internal/usecase"
	"github.com/iho/cuentas/internal/usecase/mocks"
)

type mockedDeps struct {
	deps       usecase.Deps
	txManager  *mocks.MockTransactionManager
	tx         *mocks.MockTransaction
	currencies *mocks.MockCurrencyRepository
	retrier    *mocks.MockRetrier
}

func newMockedDeps(t *testing.T, withRetrier bool) *mockedDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := &mockedDeps{
		txManager:  mocks.NewMockTransactionManager(ctrl),
		tx:         mocks.NewMockTransaction(ctrl),
		currencies: mocks.NewMockCurrencyRepository(ctrl),
	}
	m.deps = usecase.Deps{
		TxManager: m.txManager,
		Repos:     usecase.Repositories{Currencies: m.currencies},
		IDGen:     &sequenceGenerator{},
		Logger:    zerolog.Nop(),
		Metrics:   metrics.New(prometheus.NewRegistry()),
	}
	if withRetrier {
		m.retrier = mocks.NewMockRetrier(ctrl)
		m.deps.Retrier = m.retrier
	}
	return m
}

func TestCommandCommitsOnSuccess(t *testing.T) {
	m := newMockedDeps(t, false)
	uc := usecase.NewCurrencyUseCase(m.deps, nil, "ARS")

	gomock.InOrder(
		m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil),
		m.currencies.EXPECT().GetByCode(gomock.Any(), m.tx, "USD").Return(nil, domain.ErrCurrencyNotFound),
		m.currencies.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil),
		m.tx.EXPECT().Commit(gomock.Any()).Return(nil),
	)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()

	_, err := uc.CreateCurrency(context.Background(), usecase.CreateCurrencyInput{Code: "USD"})
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.deps.Metrics.Commands.WithLabelValues("create_currency", "ok")))
}

func TestCommandRollsBackOnError(t *testing.T) {
	m := newMockedDeps(t, false)
	uc := usecase.NewCurrencyUseCase(m.deps, nil, "ARS")
	storageErr := errors.New("disk full")

	gomock.InOrder(
		m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil),
		m.currencies.EXPECT().GetByCode(gomock.Any(), m.tx, "USD").Return(nil, domain.ErrCurrencyNotFound),
		m.currencies.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(storageErr),
		m.tx.EXPECT().Rollback(gomock.Any()).Return(nil),
	)

	_, err := uc.CreateCurrency(context.Background(), usecase.CreateCurrencyInput{Code: "USD"})
	assert.ErrorIs(t, err, storageErr)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.deps.Metrics.Commands.WithLabelValues("create_currency", "internal")))
}

func TestCommandReportsErrorKind(t *testing.T) {
	m := newMockedDeps(t, false)
	uc := usecase.NewCurrencyUseCase(m.deps, nil, "ARS")

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.currencies.EXPECT().GetByCode(gomock.Any(), m.tx, "USD").Return(&domain.Currency{Code: "USD"}, nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	_, err := uc.CreateCurrency(context.Background(), usecase.CreateCurrencyInput{Code: "USD"})
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.deps.Metrics.Commands.WithLabelValues("create_currency", "validation")))
}

func TestCommandBeginFailure(t *testing.T) {
	m := newMockedDeps(t, false)
	uc := usecase.NewCurrencyUseCase(m.deps, nil, "ARS")
	beginErr := errors.New("connection refused")

	m.txManager.EXPECT().Begin(gomock.Any()).Return(nil, beginErr)

	_, err := uc.CreateCurrency(context.Background(), usecase.CreateCurrencyInput{Code: "USD"})
	assert.ErrorIs(t, err, beginErr)
}

func TestCommandRunsThroughRetrier(t *testing.T) {
	m := newMockedDeps(t, true)
	uc := usecase.NewCurrencyUseCase(m.deps, nil, "ARS")
	transient := errors.New("serialization failure")

	m.retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, op func() error) error {
			if err := op(); !errors.Is(err, transient) {
				return err
			}
			return op()
		})

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil).Times(2)
	m.currencies.EXPECT().GetByCode(gomock.Any(), m.tx, "USD").Return(nil, domain.ErrCurrencyNotFound).Times(2)
	gomock.InOrder(
		m.currencies.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(transient),
		m.currencies.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil),
	)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()

	currency, err := uc.CreateCurrency(context.Background(), usecase.CreateCurrencyInput{Code: "usd"})
	require.NoError(t, err)
	assert.Equal(t, "USD", currency.Code)
}
