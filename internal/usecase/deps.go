package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/infrastructure/metrics"
)

// Deps holds the collaborators shared by the use cases.
type Deps struct {
	TxManager TransactionManager
	Repos     Repositories
	IDGen     IDGenerator
	// Retrier is optional. When set, whole commands are retried on
	// transient storage failures.
	Retrier Retrier
	Logger  zerolog.Logger
	// Metrics is optional.
	Metrics *metrics.Metrics
}

// txRunner runs commands inside a single transaction.
type txRunner struct {
	txManager TransactionManager
	retrier   Retrier
	metrics   *metrics.Metrics
}

func newTxRunner(deps Deps) txRunner {
	return txRunner{
		txManager: deps.TxManager,
		retrier:   deps.Retrier,
		metrics:   deps.Metrics,
	}
}

// inTx runs fn in a new transaction and commits it when fn succeeds.
// fn may run more than once when a retrier is configured.
func (r txRunner) inTx(ctx context.Context, command string, fn func(ctx context.Context, tx Transaction) error) error {
	start := time.Now()

	op := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := r.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		if err := fn(txCtx, tx); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	}

	var err error
	if r.retrier != nil {
		err = r.retrier.Retry(ctx, op)
	} else {
		err = op()
	}

	status := "ok"
	if err != nil {
		status = domain.KindOf(err)
	}
	r.metrics.ObserveCommand(command, time.Since(start), status)

	return err
}
