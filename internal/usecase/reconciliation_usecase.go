package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cuentas/internal/domain"
)

// ReconciliationUseCase handles balance reconciliation operations
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	ledger      *BalanceLedger
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(deps Deps, ledger *BalanceLedger) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: deps.Repos.Accounts,
		ledger:      ledger,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	AccountKey        string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileAccount compares the balance kept in balance rows with the one
// obtained by adding up movements.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, nil, accountID)
	if err != nil {
		return nil, err
	}

	return uc.reconcile(ctx, account)
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, account *domain.Account) (*ReconciliationResult, error) {
	recorded, err := uc.ledger.BalanceOf(ctx, nil, account, nil)
	if err != nil {
		return nil, err
	}

	calculated, err := uc.calculated(ctx, account)
	if err != nil {
		return nil, err
	}

	return &ReconciliationResult{
		AccountID:         account.ID,
		AccountKey:        account.Key,
		RecordedBalance:   recorded,
		CalculatedBalance: calculated,
		Difference:        recorded.Sub(calculated),
		IsReconciled:      recorded.Equal(calculated),
		LastChecked:       time.Now().UTC(),
	}, nil
}

// calculated adds up the movements of an interactive account, or of every
// interactive account under a cumulative one.
func (uc *ReconciliationUseCase) calculated(ctx context.Context, account *domain.Account) (decimal.Decimal, error) {
	if account.IsInteractive() {
		return uc.ledger.MovementSum(ctx, nil, account)
	}

	subaccounts, err := uc.accountRepo.ListSubaccounts(ctx, nil, account.ID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, sub := range subaccounts {
		balance, err := uc.calculated(ctx, sub)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(balance)
	}

	return total, nil
}

// ReconcileAllAccounts reconciles all accounts in the system
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	accounts, err := uc.allAccounts(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*ReconciliationResult, 0, len(accounts))
	for _, account := range accounts {
		result, err := uc.reconcile(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile account %s: %w", account.ID, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// CheckLedgerConsistency verifies that every pair of credit accounts mirrors
// the same debt.
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) error {
	accounts, err := uc.allAccounts(ctx)
	if err != nil {
		return err
	}

	byID := make(map[string]*domain.Account, len(accounts))
	for _, account := range accounts {
		byID[account.ID] = account
	}

	for _, account := range accounts {
		if !account.IsCredit() {
			continue
		}

		counter, ok := byID[*account.CounterAccountID]
		if !ok || domain.StringValue(counter.CounterAccountID) != account.ID {
			return fmt.Errorf("%w: credit account %s has no matching counter account",
				domain.ErrInconsistentLedger, account.Key)
		}

		own, err := uc.ledger.BalanceOf(ctx, nil, account, nil)
		if err != nil {
			return err
		}

		mirrored, err := uc.ledger.BalanceOf(ctx, nil, counter, nil)
		if err != nil {
			return err
		}

		if !own.Add(mirrored).IsZero() {
			return fmt.Errorf("%w: credit accounts %s=%s and %s=%s do not mirror each other",
				domain.ErrInconsistentLedger, account.Key, own.String(), counter.Key, mirrored.String())
		}
	}

	return nil
}

func (uc *ReconciliationUseCase) allAccounts(ctx context.Context) ([]*domain.Account, error) {
	limit, offset, _ := domain.ValidatePagination(reconciliationPageSize, 0)

	var all []*domain.Account
	for {
		page, err := uc.accountRepo.List(ctx, nil, limit, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < limit {
			return all, nil
		}
		offset += limit
	}
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	LedgerConsistent   bool
	LedgerError        error
	CheckedAt          time.Time
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	// Reconcile all accounts
	results, err := uc.ReconcileAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	// Check ledger consistency
	ledgerErr := uc.CheckLedgerConsistency(ctx)

	// Build report
	report := &ReconciliationReport{
		TotalAccounts:    len(results),
		Discrepancies:    make([]*ReconciliationResult, 0),
		LedgerConsistent: ledgerErr == nil,
		LedgerError:      ledgerErr,
		CheckedAt:        time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
