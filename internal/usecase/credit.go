package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/cuentas/internal/domain"
)

// isLoan reports whether m moves money between two holders and so needs a
// counter-movement between their credit accounts.
func isLoan(m *domain.Movement, current legs) bool {
	if m.Automatic || m.Free || current.entry == nil || current.exit == nil {
		return false
	}
	if current.entry.IsCredit() || current.exit.IsCredit() {
		return false
	}
	return current.entry.HolderID != current.exit.HolderID
}

// generateCounterMovement records the debt created by loan m between the
// credit accounts of its holders and links both movements.
func (uc *MovementUseCase) generateCounterMovement(ctx context.Context, tx Transaction, m *domain.Movement, current legs) error {
	lender, err := uc.holderRepo.GetByID(ctx, tx, current.exit.HolderID)
	if err != nil {
		return err
	}

	borrower, err := uc.holderRepo.GetByID(ctx, tx, current.entry.HolderID)
	if err != nil {
		return err
	}

	creditor, debtor, err := uc.creditAccounts(ctx, tx, lender, borrower, m.Currency)
	if err != nil {
		return err
	}

	amount := m.Amount
	if creditor.Currency != m.Currency {
		date := m.Date
		amount, err = uc.currencies.convert(ctx, tx, m.Amount, m.Currency, creditor.Currency, &date)
		if err != nil {
			return err
		}
	}

	order, err := uc.movementRepo.CountByDate(ctx, tx, m.Date)
	if err != nil {
		return err
	}

	previous, err := uc.ledger.BalanceOf(ctx, tx, creditor, &domain.Position{Date: m.Date, Order: order - 1})
	if err != nil {
		return err
	}

	counter := &domain.Movement{
		Date:              m.Date,
		Concept:           domain.CreditConcept(previous, amount),
		Detail:            m.Concept,
		Amount:            amount,
		EntryAccountID:    domain.StringPtr(creditor.ID),
		ExitAccountID:     domain.StringPtr(debtor.ID),
		Currency:          creditor.Currency,
		Automatic:         true,
		Free:              true,
		CounterMovementID: domain.StringPtr(m.ID),
	}
	if err := uc.create(ctx, tx, counter, nil); err != nil {
		return fmt.Errorf("failed to create counter-movement: %w", err)
	}

	m.CounterMovementID = domain.StringPtr(counter.ID)
	m.UpdatedAt = time.Now().UTC()
	if err := uc.movementRepo.Update(ctx, tx, m); err != nil {
		return fmt.Errorf("failed to link counter-movement: %w", err)
	}

	if uc.metrics != nil {
		uc.metrics.CounterMovements.WithLabelValues("generate").Inc()
	}

	uc.logger.Info().
		Str("movement_id", m.ID).
		Str("counter_movement_id", counter.ID).
		Str("lender", lender.Key).
		Str("borrower", borrower.Key).
		Str("concept", counter.Concept).
		Msg("counter-movement generated")

	return uc.syncDebtors(ctx, tx, creditor, lender.ID, borrower.ID)
}

// removeCounterMovement deletes the counter-movement of m and unlinks it in
// memory, keeping the order of m in step with the store. Callers persist m
// when it still exists.
func (uc *MovementUseCase) removeCounterMovement(ctx context.Context, tx Transaction, m *domain.Movement) error {
	counter, err := uc.movementRepo.GetByID(ctx, tx, *m.CounterMovementID)
	if errors.Is(err, domain.ErrMovementNotFound) {
		m.CounterMovementID = nil
		return nil
	}
	if err != nil {
		return err
	}

	if err := uc.delete(ctx, tx, counter, true); err != nil {
		return fmt.Errorf("failed to delete counter-movement: %w", err)
	}

	m.CounterMovementID = nil
	// delete compacted the orders after the counter-movement on its date.
	if counter.Date.Equal(m.Date) && counter.Order < m.Order {
		m.Order--
	}

	if uc.metrics != nil {
		uc.metrics.CounterMovements.WithLabelValues("remove").Inc()
	}

	return nil
}

// creditAccounts returns the credit accounts of the pair (creditor, debtor),
// creating both in currency when missing.
func (uc *MovementUseCase) creditAccounts(ctx context.Context, tx Transaction, creditor, debtor *domain.Holder, currency string) (*domain.Account, *domain.Account, error) {
	own, err := uc.accountRepo.GetByKey(ctx, tx, domain.CreditAccountKey(creditor.Key, debtor.Key))
	if err == nil {
		counter, err := uc.accountRepo.GetByID(ctx, tx, domain.StringValue(own.CounterAccountID))
		if err != nil {
			return nil, nil, fmt.Errorf("credit account %s: %w", own.Key, err)
		}
		return own, counter, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, nil, err
	}

	now := time.Now().UTC()
	own = &domain.Account{
		ID:        uc.idGen.Generate(),
		Key:       domain.CreditAccountKey(creditor.Key, debtor.Key),
		Name:      domain.CreditAccountName(debtor),
		HolderID:  creditor.ID,
		Kind:      domain.AccountInteractive,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	counter := &domain.Account{
		ID:        uc.idGen.Generate(),
		Key:       domain.CreditAccountKey(debtor.Key, creditor.Key),
		Name:      domain.CreditAccountName(creditor),
		HolderID:  debtor.ID,
		Kind:      domain.AccountInteractive,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	own.CounterAccountID = domain.StringPtr(counter.ID)
	counter.CounterAccountID = domain.StringPtr(own.ID)

	for _, acc := range []*domain.Account{own, counter} {
		if err := uc.accountRepo.Create(ctx, tx, acc); err != nil {
			return nil, nil, fmt.Errorf("failed to create credit account %s: %w", acc.Key, err)
		}
	}

	uc.logger.Info().
		Str("creditor", creditor.Key).
		Str("debtor", debtor.Key).
		Str("currency", currency).
		Msg("credit accounts created")

	return own, counter, nil
}

// syncDebtors derives who owes whom from the balance of the creditor's
// credit account.
func (uc *MovementUseCase) syncDebtors(ctx context.Context, tx Transaction, creditAccount *domain.Account, creditorID, debtorID string) error {
	balance, err := uc.ledger.BalanceOf(ctx, tx, creditAccount, nil)
	if err != nil {
		return err
	}

	creditorOwed, debtorOwed := domain.DebtorRelation(balance)

	if err := uc.setDebtor(ctx, tx, creditorID, debtorID, creditorOwed); err != nil {
		return err
	}

	return uc.setDebtor(ctx, tx, debtorID, creditorID, debtorOwed)
}

func (uc *MovementUseCase) setDebtor(ctx context.Context, tx Transaction, holderID, debtorID string, owed bool) error {
	holder, err := uc.holderRepo.GetByID(ctx, tx, holderID)
	if err != nil {
		return err
	}

	if owed == holder.HasDebtor(debtorID) {
		return nil
	}

	if owed {
		return uc.holderRepo.AddDebtor(ctx, tx, holderID, debtorID)
	}

	return uc.holderRepo.RemoveDebtor(ctx, tx, holderID, debtorID)
}
