package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/infrastructure/metrics"
)

// MovementUseCase handles movement business logic.
type MovementUseCase struct {
	txRunner
	accountRepo  AccountRepository
	movementRepo MovementRepository
	holderRepo   HolderRepository
	ledger       *BalanceLedger
	currencies   *CurrencyUseCase
	idGen        IDGenerator
	logger       zerolog.Logger
	metrics      *metrics.Metrics
}

// NewMovementUseCase creates a new MovementUseCase.
func NewMovementUseCase(deps Deps, ledger *BalanceLedger, currencies *CurrencyUseCase) *MovementUseCase {
	return &MovementUseCase{
		txRunner:     newTxRunner(deps),
		accountRepo:  deps.Repos.Accounts,
		movementRepo: deps.Repos.Movements,
		holderRepo:   deps.Repos.Holders,
		ledger:       ledger,
		currencies:   currencies,
		idGen:        deps.IDGen,
		logger:       deps.Logger.With().Str("component", "movements").Logger(),
		metrics:      deps.Metrics,
	}
}

// CreateMovementInput represents input for creating a movement.
type CreateMovementInput struct {
	Date           *time.Time
	ExchangeRate   *decimal.Decimal
	Concept        string
	Detail         string
	EntryAccountID string
	ExitAccountID  string
	Currency       string
	Amount         decimal.Decimal
	Free           bool
}

// ModifyMovementInput represents a partial update of a movement. Nil fields
// keep their value; an empty account ID clears the leg.
type ModifyMovementInput struct {
	Concept        *string
	Detail         *string
	Amount         *decimal.Decimal
	EntryAccountID *string
	ExitAccountID  *string
	Date           *time.Time
	Order          *int
	ExchangeRate   *decimal.Decimal
	Free           *bool
	// KeepOrder keeps the order when the date changes instead of appending
	// the movement at the end of the new date.
	KeepOrder bool
}

// legs holds the accounts a movement touches.
type legs struct {
	entry *domain.Account
	exit  *domain.Account
}

func (l legs) all() []*domain.Account {
	out := make([]*domain.Account, 0, 2)
	if l.entry != nil {
		out = append(out, l.entry)
	}
	if l.exit != nil {
		out = append(out, l.exit)
	}
	return out
}

// modifyOptions relaxes the checks of internal modifications.
type modifyOptions struct {
	allowAutomatic bool
}

// CreateMovement records a new movement at the end of its date.
func (uc *MovementUseCase) CreateMovement(ctx context.Context, input CreateMovementInput) (*domain.Movement, error) {
	date := domain.Today()
	if input.Date != nil {
		date = domain.Day(*input.Date)
	}

	var movement *domain.Movement

	err := uc.inTx(ctx, "create_movement", func(ctx context.Context, tx Transaction) error {
		movement = &domain.Movement{
			Date:           date,
			Concept:        strings.TrimSpace(input.Concept),
			Detail:         strings.TrimSpace(input.Detail),
			Amount:         input.Amount,
			EntryAccountID: domain.StringPtr(input.EntryAccountID),
			ExitAccountID:  domain.StringPtr(input.ExitAccountID),
			Currency:       domain.NormalizeCurrencyCode(input.Currency),
			Free:           input.Free,
		}
		return uc.create(ctx, tx, movement, input.ExchangeRate)
	})
	if err != nil {
		return nil, err
	}

	return movement, nil
}

// ModifyMovement applies a partial update to a movement.
func (uc *MovementUseCase) ModifyMovement(ctx context.Context, id string, input ModifyMovementInput) (*domain.Movement, error) {
	var movement *domain.Movement

	err := uc.inTx(ctx, "modify_movement", func(ctx context.Context, tx Transaction) error {
		var err error
		movement, err = uc.modify(ctx, tx, id, input, modifyOptions{})
		return err
	})
	if err != nil {
		return nil, err
	}

	return movement, nil
}

// DeleteMovement deletes a movement. Automatic movements need force.
func (uc *MovementUseCase) DeleteMovement(ctx context.Context, id string, force bool) error {
	return uc.inTx(ctx, "delete_movement", func(ctx context.Context, tx Transaction) error {
		movement, err := uc.movementRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		return uc.delete(ctx, tx, movement, force)
	})
}

// GetMovement retrieves a movement by ID.
func (uc *MovementUseCase) GetMovement(ctx context.Context, id string) (*domain.Movement, error) {
	return uc.movementRepo.GetByID(ctx, nil, id)
}

// ListByAccount lists the movements of an account in position order.
func (uc *MovementUseCase) ListByAccount(ctx context.Context, accountID string, from, to *time.Time) ([]*domain.Movement, error) {
	if _, err := uc.accountRepo.GetByID(ctx, nil, accountID); err != nil {
		return nil, err
	}
	return uc.movementRepo.ListByAccount(ctx, nil, accountID, from, to)
}

// ListByDateRange lists every movement between two dates in position order.
func (uc *MovementUseCase) ListByDateRange(ctx context.Context, from, to time.Time) ([]*domain.Movement, error) {
	return uc.movementRepo.ListByDateRange(ctx, nil, domain.Day(from), domain.Day(to))
}

// create validates m, appends it to its date, registers its balances and
// generates its counter-movement when it is a loan.
func (uc *MovementUseCase) create(ctx context.Context, tx Transaction, m *domain.Movement, rate *decimal.Decimal) error {
	m.Date = domain.Day(m.Date)

	current, err := uc.loadLegs(ctx, tx, m)
	if err != nil {
		return err
	}

	if err := uc.validate(m, nil, current, legs{}); err != nil {
		return err
	}

	if err := uc.resolveCurrency(ctx, tx, m, current, rate); err != nil {
		return err
	}

	order, err := uc.movementRepo.CountByDate(ctx, tx, m.Date)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	m.ID = uc.idGen.Generate()
	m.Order = order
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := uc.movementRepo.Create(ctx, tx, m); err != nil {
		return fmt.Errorf("failed to create movement: %w", err)
	}

	for _, acc := range current.all() {
		if _, err := uc.ledger.Register(ctx, tx, acc.ID, m.Date, m.AmountFor(acc.ID, acc.Currency)); err != nil {
			return err
		}
	}

	if isLoan(m, current) {
		if err := uc.generateCounterMovement(ctx, tx, m, current); err != nil {
			return err
		}
	}

	if uc.metrics != nil {
		uc.metrics.MovementsCreated.Inc()
		uc.metrics.MovementAmount.Observe(m.Amount.InexactFloat64())
	}

	uc.logger.Debug().
		Str("movement_id", m.ID).
		Str("position", m.Position().String()).
		Str("amount", m.Amount.String()).
		Bool("automatic", m.Automatic).
		Msg("movement created")

	return nil
}

// modify applies input to the movement id and brings balances, positions
// and counter-movements in line with the new version.
func (uc *MovementUseCase) modify(ctx context.Context, tx Transaction, id string, input ModifyMovementInput, opts modifyOptions) (*domain.Movement, error) {
	prev, err := uc.movementRepo.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if prev.Automatic && !opts.allowAutomatic {
		return nil, domain.ErrAutomaticMovement
	}

	m := prev.Clone()
	applyModification(m, input)

	previous, err := uc.loadLegs(ctx, tx, prev)
	if err != nil {
		return nil, err
	}

	current, err := uc.loadLegs(ctx, tx, m)
	if err != nil {
		return nil, err
	}

	if err := uc.validate(m, prev, current, previous); err != nil {
		return nil, err
	}

	diff := m.Diff(prev)
	legsChanged := diff.Entry || diff.Exit
	if legsChanged && !currencyOfLegs(m.Currency, current) {
		m.Currency = ""
	}
	if legsChanged || diff.Date || input.ExchangeRate != nil {
		if err := uc.resolveCurrency(ctx, tx, m, current, input.ExchangeRate); err != nil {
			return nil, err
		}
	} else if err := roundAmount(m); err != nil {
		return nil, err
	}

	if diff.Date || input.Order != nil {
		if err := uc.reposition(ctx, tx, prev, m, input.KeepOrder || input.Order != nil); err != nil {
			return nil, err
		}
	}

	m.UpdatedAt = time.Now().UTC()
	if err := uc.movementRepo.Update(ctx, tx, m); err != nil {
		return nil, fmt.Errorf("failed to update movement: %w", err)
	}

	if err := uc.applyBalanceChanges(ctx, tx, prev, m, previous, current); err != nil {
		return nil, err
	}

	loan := isLoan(m, current)
	switch {
	case !prev.HasCounterMovement() && loan:
		if err := uc.generateCounterMovement(ctx, tx, m, current); err != nil {
			return nil, err
		}
	case prev.HasCounterMovement() && !loan:
		if err := uc.removeCounterMovement(ctx, tx, m); err != nil {
			return nil, err
		}
		if err := uc.movementRepo.Update(ctx, tx, m); err != nil {
			return nil, fmt.Errorf("failed to update movement: %w", err)
		}
	case prev.HasCounterMovement() && loan && m.Diff(prev).AffectsCredit():
		if err := uc.removeCounterMovement(ctx, tx, m); err != nil {
			return nil, err
		}
		if err := uc.generateCounterMovement(ctx, tx, m, current); err != nil {
			return nil, err
		}
	}

	if uc.metrics != nil {
		uc.metrics.MovementsModified.Inc()
	}

	uc.logger.Debug().
		Str("movement_id", m.ID).
		Str("from", prev.Position().String()).
		Str("to", m.Position().String()).
		Msg("movement modified")

	return m, nil
}

// delete removes m, compacts the orders of its date and reverts its
// balances. Deleting a loan deletes its counter-movement too.
func (uc *MovementUseCase) delete(ctx context.Context, tx Transaction, m *domain.Movement, force bool) error {
	if m.Automatic && !force {
		return domain.ErrAutomaticMovement
	}

	current, err := uc.loadLegs(ctx, tx, m)
	if err != nil {
		return err
	}

	for _, acc := range current.all() {
		if acc.IsCumulative() {
			return fmt.Errorf("%w: %s", domain.ErrCumulativeMovementDelete, acc.Key)
		}
	}

	if err := uc.movementRepo.Delete(ctx, tx, m.ID); err != nil {
		return err
	}

	if err := uc.movementRepo.ShiftOrders(ctx, tx, m.Date, m.Order+1, -1, ""); err != nil {
		return err
	}

	for _, acc := range current.all() {
		if err := uc.ledger.Unregister(ctx, tx, acc.ID, m.Date, m.AmountFor(acc.ID, acc.Currency)); err != nil {
			return err
		}
	}

	if m.HasCounterMovement() {
		if m.Automatic {
			if err := uc.unlinkOriginal(ctx, tx, m); err != nil {
				return err
			}
		} else if err := uc.removeCounterMovement(ctx, tx, m); err != nil {
			return err
		}
	}

	if m.Automatic && current.entry != nil && current.exit != nil && current.entry.IsCredit() {
		if err := uc.syncDebtors(ctx, tx, current.entry, current.entry.HolderID, current.exit.HolderID); err != nil {
			return err
		}
	}

	if uc.metrics != nil {
		uc.metrics.MovementsDeleted.Inc()
	}

	uc.logger.Debug().
		Str("movement_id", m.ID).
		Str("position", m.Position().String()).
		Msg("movement deleted")

	return nil
}

func applyModification(m *domain.Movement, input ModifyMovementInput) {
	if input.Concept != nil {
		m.Concept = strings.TrimSpace(*input.Concept)
	}
	if input.Detail != nil {
		m.Detail = strings.TrimSpace(*input.Detail)
	}
	if input.Amount != nil {
		m.Amount = *input.Amount
	}
	if input.EntryAccountID != nil {
		m.EntryAccountID = domain.StringPtr(*input.EntryAccountID)
	}
	if input.ExitAccountID != nil {
		m.ExitAccountID = domain.StringPtr(*input.ExitAccountID)
	}
	if input.Date != nil {
		m.Date = domain.Day(*input.Date)
	}
	if input.Order != nil {
		m.Order = *input.Order
	}
	if input.Free != nil {
		m.Free = *input.Free
	}
}

func (uc *MovementUseCase) loadLegs(ctx context.Context, tx Transaction, m *domain.Movement) (legs, error) {
	var (
		out legs
		err error
	)

	if m.EntryAccountID != nil {
		if out.entry, err = uc.accountRepo.GetByID(ctx, tx, *m.EntryAccountID); err != nil {
			return out, fmt.Errorf("entry account: %w", err)
		}
	}

	if m.ExitAccountID != nil {
		if out.exit, err = uc.accountRepo.GetByID(ctx, tx, *m.ExitAccountID); err != nil {
			return out, fmt.Errorf("exit account: %w", err)
		}
	}

	return out, nil
}

// validate runs the movement rules against the accounts of the new version
// and, when modifying, of the previous version.
func (uc *MovementUseCase) validate(m, prev *domain.Movement, current, previous legs) error {
	if err := m.Validate(); err != nil {
		return err
	}

	if err := domain.ValidateConcept(m.Concept); err != nil {
		return err
	}

	if prev == nil {
		for _, acc := range current.all() {
			if acc.IsCumulative() {
				return fmt.Errorf("%w: %s", domain.ErrCumulativeAccount, acc.Key)
			}
		}
	} else if err := checkCumulativeLegs(m, prev, current, previous); err != nil {
		return err
	}

	if err := checkCreditLeg(current.entry, current.exit); err != nil {
		return err
	}

	return checkCreditLeg(current.exit, current.entry)
}

// checkCumulativeLegs keeps a movement attached to an account that became
// cumulative exactly as it was when the account was converted.
func checkCumulativeLegs(m, prev *domain.Movement, current, previous legs) error {
	slots := []struct {
		was *domain.Account
		now string
	}{
		{previous.entry, m.EntryID()},
		{previous.exit, m.ExitID()},
	}

	for _, slot := range slots {
		if slot.was == nil || !slot.was.IsCumulative() {
			continue
		}
		if !m.Amount.Equal(prev.Amount) {
			return fmt.Errorf("%w: %s", domain.ErrCumulativeAmountChange, slot.was.Key)
		}
		if slot.now != slot.was.ID {
			return fmt.Errorf("%w: %s", domain.ErrCumulativeAccountRemoved, slot.was.Key)
		}
		if slot.was.ConversionDate != nil && m.Date.After(*slot.was.ConversionDate) {
			return fmt.Errorf("%w: %s was converted on %s",
				domain.ErrDateAfterConversion, slot.was.Key, slot.was.ConversionDate.Format(domain.DateFormat))
		}
	}

	added := []struct {
		acc *domain.Account
		was string
	}{
		{current.entry, prev.EntryID()},
		{current.exit, prev.ExitID()},
	}

	for _, leg := range added {
		if leg.acc != nil && leg.acc.IsCumulative() && leg.acc.ID != leg.was {
			return fmt.Errorf("%w: %s", domain.ErrCumulativeAccount, leg.acc.Key)
		}
	}

	return nil
}

// checkCreditLeg requires the other leg of a credit account to be its
// counter account.
func checkCreditLeg(acc, other *domain.Account) error {
	if acc == nil || !acc.IsCredit() {
		return nil
	}
	if other == nil || *acc.CounterAccountID != other.ID {
		return fmt.Errorf("%w: %s", domain.ErrCreditAccountMismatch, acc.Key)
	}
	return nil
}

func currencyOfLegs(code string, current legs) bool {
	for _, acc := range current.all() {
		if acc.Currency == code {
			return true
		}
	}
	return false
}

// resolveCurrency defaults the movement currency to the exit account's and
// fixes the exchange rate between legs kept in different currencies.
func (uc *MovementUseCase) resolveCurrency(ctx context.Context, tx Transaction, m *domain.Movement, current legs, rate *decimal.Decimal) error {
	if m.Currency == "" {
		if current.exit != nil {
			m.Currency = current.exit.Currency
		} else {
			m.Currency = current.entry.Currency
		}
	}

	if !currencyOfLegs(m.Currency, current) {
		return fmt.Errorf("%w: %s matches no leg", domain.ErrCurrencyMismatch, m.Currency)
	}

	m.ExchangeRate = decimal.NewFromInt(1)
	if current.entry == nil || current.exit == nil || current.entry.Currency == current.exit.Currency {
		return roundAmount(m)
	}

	other := current.entry.Currency
	if m.Currency == other {
		other = current.exit.Currency
	}

	if rate != nil {
		if !rate.IsPositive() {
			return fmt.Errorf("%w: exchange rate must be positive", domain.ErrInvalidAmount)
		}
		m.ExchangeRate = *rate
	} else {
		date := m.Date
		r, err := uc.currencies.rate(ctx, tx, m.Currency, other, &date)
		if err != nil {
			return err
		}
		m.ExchangeRate = r
	}

	return roundAmount(m)
}

// roundAmount rounds the amount of m to the minor unit of its currency. An
// amount that rounds to zero is rejected.
func roundAmount(m *domain.Movement) error {
	m.Amount = domain.RoundAmount(m.Amount, m.Currency)
	if !m.Amount.IsPositive() {
		return fmt.Errorf("%w: rounds to zero in %s", domain.ErrInvalidAmount, m.Currency)
	}
	return nil
}

// reposition frees the previous slot of the movement and places it on its
// new date, at the end unless keepOrder.
func (uc *MovementUseCase) reposition(ctx context.Context, tx Transaction, prev, m *domain.Movement, keepOrder bool) error {
	if err := uc.movementRepo.ShiftOrders(ctx, tx, prev.Date, prev.Order+1, -1, m.ID); err != nil {
		return err
	}

	count, err := uc.movementRepo.CountByDate(ctx, tx, m.Date)
	if err != nil {
		return err
	}
	if m.Date.Equal(prev.Date) {
		count--
	}

	target := count
	if keepOrder {
		target = max(0, min(m.Order, count))
	}

	if err := uc.movementRepo.ShiftOrders(ctx, tx, m.Date, target, 1, m.ID); err != nil {
		return err
	}

	m.Order = target

	return nil
}

// applyBalanceChanges updates the balance rows of every account touched by
// either version of a modified movement.
func (uc *MovementUseCase) applyBalanceChanges(ctx context.Context, tx Transaction, prev, m *domain.Movement, previous, current legs) error {
	before := make(map[string]decimal.Decimal, 2)
	for _, acc := range previous.all() {
		before[acc.ID] = prev.AmountFor(acc.ID, acc.Currency)
	}

	after := make(map[string]decimal.Decimal, 2)
	for _, acc := range current.all() {
		after[acc.ID] = m.AmountFor(acc.ID, acc.Currency)
	}

	from := domain.MinPosition(prev.Position(), m.Position())
	to := domain.MaxPosition(prev.Position(), m.Position())
	dateChanged := !prev.Date.Equal(m.Date)

	for _, acc := range previous.all() {
		amount, kept := after[acc.ID]
		if !kept {
			if err := uc.ledger.Unregister(ctx, tx, acc.ID, prev.Date, before[acc.ID]); err != nil {
				return err
			}
			continue
		}
		if dateChanged || !amount.Equal(before[acc.ID]) {
			if err := uc.ledger.RecalculateRange(ctx, tx, acc, from, to); err != nil {
				return err
			}
		}
	}

	for _, acc := range current.all() {
		if _, existed := before[acc.ID]; existed {
			continue
		}
		if _, err := uc.ledger.Register(ctx, tx, acc.ID, m.Date, after[acc.ID]); err != nil {
			return err
		}
	}

	return nil
}

// unlinkOriginal clears the link from the original of a deleted
// counter-movement.
func (uc *MovementUseCase) unlinkOriginal(ctx context.Context, tx Transaction, counter *domain.Movement) error {
	original, err := uc.movementRepo.GetByID(ctx, tx, *counter.CounterMovementID)
	if errors.Is(err, domain.ErrMovementNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if original.CounterMovementID == nil || *original.CounterMovementID != counter.ID {
		return nil
	}

	original.CounterMovementID = nil
	original.UpdatedAt = time.Now().UTC()

	return uc.movementRepo.Update(ctx, tx, original)
}
