package usecase

import (
	"context"
	"fmt"

	"github.com/iho/cuentas/internal/domain"
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	reconciliation *ReconciliationUseCase
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(reconciliation *ReconciliationUseCase) *LedgerUseCase {
	return &LedgerUseCase{
		reconciliation: reconciliation,
	}
}

// CheckConsistency verifies that every account reconciles with its
// movements and that credit accounts mirror each other.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (bool, error) {
	report, err := uc.reconciliation.GenerateReconciliationReport(ctx)
	if err != nil {
		return false, err
	}

	if len(report.Discrepancies) > 0 {
		first := report.Discrepancies[0]
		return false, fmt.Errorf("%w: %d accounts out of balance, %s recorded %s but movements add up to %s",
			domain.ErrInconsistentLedger, len(report.Discrepancies),
			first.AccountKey, first.RecordedBalance.String(), first.CalculatedBalance.String())
	}

	if !report.LedgerConsistent {
		return false, report.LedgerError
	}

	return true, nil
}
