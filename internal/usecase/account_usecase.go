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

// HolderDefaults names the holder of accounts created without one.
type HolderDefaults struct {
	Key  string
	Name string
}

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txRunner
	accountRepo  AccountRepository
	movementRepo MovementRepository
	balanceRepo  BalanceRepository
	holderRepo   HolderRepository
	ledger       *BalanceLedger
	movements    *MovementUseCase
	currencies   *CurrencyUseCase
	idGen        IDGenerator
	defaults     HolderDefaults
	logger       zerolog.Logger
	metrics      *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	deps Deps,
	ledger *BalanceLedger,
	movements *MovementUseCase,
	currencies *CurrencyUseCase,
	defaults HolderDefaults,
) *AccountUseCase {
	return &AccountUseCase{
		txRunner:     newTxRunner(deps),
		accountRepo:  deps.Repos.Accounts,
		movementRepo: deps.Repos.Movements,
		balanceRepo:  deps.Repos.Balances,
		holderRepo:   deps.Repos.Holders,
		ledger:       ledger,
		movements:    movements,
		currencies:   currencies,
		idGen:        deps.IDGen,
		defaults:     defaults,
		logger:       deps.Logger.With().Str("component", "accounts").Logger(),
		metrics:      deps.Metrics,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	OpeningBalance *decimal.Decimal
	Date           *time.Time
	Name           string
	Key            string
	ParentID       string
	HolderID       string
	Currency       string
}

// CreateAccount creates an interactive account, recording its opening
// balance as a movement.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	var account *domain.Account

	err := uc.inTx(ctx, "create_account", func(ctx context.Context, tx Transaction) error {
		var err error
		account, err = uc.create(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, nil, id)
}

// GetAccountByKey retrieves an account by key.
func (uc *AccountUseCase) GetAccountByKey(ctx context.Context, key string) (*domain.Account, error) {
	return uc.accountRepo.GetByKey(ctx, nil, domain.NormalizeKey(key))
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset, err := domain.ValidatePagination(input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}
	return uc.accountRepo.List(ctx, nil, limit, offset)
}

// ListSubaccounts lists the direct subaccounts of an account.
func (uc *AccountUseCase) ListSubaccounts(ctx context.Context, id string) ([]*domain.Account, error) {
	if _, err := uc.accountRepo.GetByID(ctx, nil, id); err != nil {
		return nil, err
	}
	return uc.accountRepo.ListSubaccounts(ctx, nil, id)
}

// UpdateAccountInput represents a rename of an account.
type UpdateAccountInput struct {
	Name     *string
	Key      *string
	HolderID *string
	ParentID *string
}

// UpdateAccount renames an account. Holder and parent cannot change once
// set.
func (uc *AccountUseCase) UpdateAccount(ctx context.Context, id string, input UpdateAccountInput) (*domain.Account, error) {
	var account *domain.Account

	err := uc.inTx(ctx, "update_account", func(ctx context.Context, tx Transaction) error {
		prev, err := uc.accountRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}

		account = prev.Clone()
		if input.Name != nil {
			if err := domain.ValidateAccountName(*input.Name); err != nil {
				return err
			}
			account.Name = strings.TrimSpace(*input.Name)
		}
		if input.Key != nil {
			key := domain.NormalizeKey(*input.Key)
			if key != prev.Key {
				if err := uc.checkNewKey(ctx, tx, key); err != nil {
					return err
				}
				account.Key = key
			}
		}
		if input.HolderID != nil {
			account.HolderID = *input.HolderID
		}
		if input.ParentID != nil {
			account.ParentID = domain.StringPtr(*input.ParentID)
		}

		if err := account.ValidateUpdate(prev); err != nil {
			return err
		}
		if account.ParentID != nil && prev.ParentID == nil {
			if err := uc.checkParent(ctx, tx, account, *account.ParentID); err != nil {
				return err
			}
		}

		account.UpdatedAt = time.Now().UTC()
		return uc.accountRepo.Update(ctx, tx, account)
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// Balance returns the balance of an account after the movement at pos, or
// its current balance when pos is nil.
func (uc *AccountUseCase) Balance(ctx context.Context, id string, pos *domain.Position) (decimal.Decimal, error) {
	account, err := uc.accountRepo.GetByID(ctx, nil, id)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := uc.ledger.BalanceOf(ctx, nil, account, pos)
	if err != nil {
		return decimal.Zero, err
	}

	if uc.metrics != nil && pos == nil {
		uc.metrics.AccountBalance.WithLabelValues(account.Key, account.Currency).Set(balance.InexactFloat64())
	}

	return balance, nil
}

// BalanceIn returns the balance of an account converted to currency at the
// date of pos, or at the latest quotes when pos is nil.
func (uc *AccountUseCase) BalanceIn(ctx context.Context, id, currency string, pos *domain.Position) (decimal.Decimal, error) {
	account, err := uc.accountRepo.GetByID(ctx, nil, id)
	if err != nil {
		return decimal.Zero, err
	}

	return uc.balanceIn(ctx, nil, account, domain.NormalizeCurrencyCode(currency), pos)
}

func (uc *AccountUseCase) balanceIn(ctx context.Context, tx Transaction, account *domain.Account, currency string, pos *domain.Position) (decimal.Decimal, error) {
	balance, err := uc.ledger.BalanceOf(ctx, tx, account, pos)
	if err != nil {
		return decimal.Zero, err
	}

	if currency == "" || currency == account.Currency {
		return balance, nil
	}

	var date *time.Time
	if pos != nil {
		date = &pos.Date
	}

	return uc.currencies.convert(ctx, tx, balance, account.Currency, currency, date)
}

// SplitAccount turns an interactive account into a cumulative one and
// moves its balance into new subaccounts. date defaults to today.
func (uc *AccountUseCase) SplitAccount(ctx context.Context, id string, specs []domain.SubaccountSpec, date *time.Time) ([]*domain.Account, error) {
	var subaccounts []*domain.Account

	err := uc.inTx(ctx, "split_account", func(ctx context.Context, tx Transaction) error {
		var err error
		subaccounts, err = uc.split(ctx, tx, id, specs, date)
		return err
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsSplit.Inc()
	}

	return subaccounts, nil
}

// DeleteAccount deletes an account with a zero balance.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, id string) error {
	return uc.inTx(ctx, "delete_account", func(ctx context.Context, tx Transaction) error {
		account, err := uc.accountRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		return uc.delete(ctx, tx, account)
	})
}

func (uc *AccountUseCase) create(ctx context.Context, tx Transaction, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	key := domain.NormalizeKey(input.Key)
	if err := uc.checkNewKey(ctx, tx, key); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		Key:       key,
		Name:      strings.TrimSpace(input.Name),
		Kind:      domain.AccountInteractive,
		Currency:  domain.NormalizeCurrencyCode(input.Currency),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if input.ParentID != "" {
		if err := uc.checkParent(ctx, tx, account, input.ParentID); err != nil {
			return nil, err
		}
	}

	if err := uc.assignHolder(ctx, tx, account, input.HolderID); err != nil {
		return nil, err
	}

	if account.Currency == "" {
		account.Currency = uc.currencies.DefaultCurrency()
	}
	if err := uc.currencies.ensureCurrency(ctx, tx, account.Currency); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if input.OpeningBalance != nil && !input.OpeningBalance.IsZero() {
		if err := uc.openingBalance(ctx, tx, account, *input.OpeningBalance, input.Date); err != nil {
			return nil, err
		}
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	uc.logger.Debug().
		Str("account_id", account.ID).
		Str("key", account.Key).
		Str("holder_id", account.HolderID).
		Msg("account created")

	return account, nil
}

func (uc *AccountUseCase) checkNewKey(ctx context.Context, tx Transaction, key string) error {
	if err := domain.ValidateKey(key); err != nil {
		return err
	}

	_, err := uc.accountRepo.GetByKey(ctx, tx, key)
	if err == nil {
		return fmt.Errorf("%w: account %q", domain.ErrDuplicateKey, key)
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return err
	}

	return nil
}

// checkParent attaches account under parentID. A subaccount inherits the
// parent's currency.
func (uc *AccountUseCase) checkParent(ctx context.Context, tx Transaction, account *domain.Account, parentID string) error {
	parent, err := uc.accountRepo.GetByID(ctx, tx, parentID)
	if err != nil {
		return fmt.Errorf("parent: %w", err)
	}

	if !parent.IsCumulative() {
		return fmt.Errorf("%w: %s", domain.ErrParentNotCumulative, parent.Key)
	}

	if err := uc.checkHierarchy(ctx, tx, account.ID, parent); err != nil {
		return err
	}

	account.ParentID = domain.StringPtr(parent.ID)
	account.Currency = parent.Currency
	if account.HolderID == "" {
		account.HolderID = parent.HolderID
	}

	return nil
}

// checkHierarchy walks up from parent and fails when it reaches accountID or
// loops.
func (uc *AccountUseCase) checkHierarchy(ctx context.Context, tx Transaction, accountID string, parent *domain.Account) error {
	seen := map[string]bool{}
	for current := parent; current != nil; {
		if current.ID == accountID || seen[current.ID] {
			return fmt.Errorf("%w: %s", domain.ErrCircularHierarchy, parent.Key)
		}
		seen[current.ID] = true

		if current.ParentID == nil {
			return nil
		}

		next, err := uc.accountRepo.GetByID(ctx, tx, *current.ParentID)
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

func (uc *AccountUseCase) assignHolder(ctx context.Context, tx Transaction, account *domain.Account, holderRef string) error {
	if holderRef == "" {
		if account.HolderID != "" {
			return nil
		}
		holder, err := defaultHolder(ctx, tx, uc.holderRepo, uc.idGen, uc.defaults)
		if err != nil {
			return err
		}
		account.HolderID = holder.ID
		return nil
	}

	holder, err := resolveHolder(ctx, tx, uc.holderRepo, holderRef)
	if err != nil {
		return err
	}
	account.HolderID = holder.ID

	return nil
}

func (uc *AccountUseCase) openingBalance(ctx context.Context, tx Transaction, account *domain.Account, amount decimal.Decimal, date *time.Time) error {
	m := &domain.Movement{
		Date:     domain.Today(),
		Concept:  domain.ConceptOpeningBalance,
		Amount:   amount.Abs(),
		Currency: account.Currency,
	}
	if date != nil {
		m.Date = domain.Day(*date)
	}

	if amount.IsPositive() {
		m.EntryAccountID = domain.StringPtr(account.ID)
	} else {
		m.ExitAccountID = domain.StringPtr(account.ID)
	}

	return uc.movements.create(ctx, tx, m, nil)
}

func (uc *AccountUseCase) split(ctx context.Context, tx Transaction, id string, specs []domain.SubaccountSpec, date *time.Time) ([]*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if account.IsCredit() {
		return nil, fmt.Errorf("%w: %s", domain.ErrCreditAccountSplit, account.Key)
	}
	if account.IsCumulative() {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyCumulative, account.Key)
	}

	balance, err := uc.ledger.BalanceOf(ctx, tx, account, nil)
	if err != nil {
		return nil, err
	}

	sum, err := uc.ledger.MovementSum(ctx, tx, account)
	if err != nil {
		return nil, err
	}

	if !balance.Equal(sum) {
		return nil, fmt.Errorf("%w: %s has balance %s but its movements add up to %s",
			domain.ErrInconsistentLedger, account.Key, balance.String(), sum.String())
	}

	splits, err := domain.ResolveSplit(balance, account.Currency, specs)
	if err != nil {
		return nil, err
	}

	if err := uc.checkSplitKeys(ctx, tx, splits); err != nil {
		return nil, err
	}

	day := domain.Today()
	if date != nil {
		day = domain.Day(*date)
	}

	history, err := uc.movementRepo.ListByAccount(ctx, tx, account.ID, nil, nil)
	if err != nil {
		return nil, err
	}
	if n := len(history); n > 0 && day.Before(domain.Day(history[n-1].Date)) {
		return nil, fmt.Errorf("%w: last movement of %s is on %s",
			domain.ErrSplitBeforeLastMovement, account.Key, history[n-1].Date.Format(domain.DateFormat))
	}

	transfers := make([]*domain.Movement, len(splits))
	for i, s := range splits {
		if s.Amount.IsZero() {
			continue
		}
		m := &domain.Movement{
			Date:     day,
			Concept:  domain.ConceptBalanceTransfer,
			Detail:   fmt.Sprintf("Saldo pasado por %s a nueva subcuenta %s", account.Name, strings.TrimSpace(s.Name)),
			Amount:   s.Amount.Abs(),
			Currency: account.Currency,
		}
		if s.Amount.IsPositive() {
			m.ExitAccountID = domain.StringPtr(account.ID)
		} else {
			m.EntryAccountID = domain.StringPtr(account.ID)
		}
		if err := uc.movements.create(ctx, tx, m, nil); err != nil {
			return nil, fmt.Errorf("failed to create balance transfer: %w", err)
		}
		transfers[i] = m
	}

	if err := account.ConvertToCumulative(day); err != nil {
		return nil, err
	}
	account.UpdatedAt = time.Now().UTC()
	if err := uc.accountRepo.Update(ctx, tx, account); err != nil {
		return nil, fmt.Errorf("failed to convert account: %w", err)
	}

	subaccounts := make([]*domain.Account, len(splits))
	for i, s := range splits {
		sub, err := uc.create(ctx, tx, CreateAccountInput{
			Name:     s.Name,
			Key:      s.Key,
			ParentID: account.ID,
			HolderID: s.HolderID,
		})
		if err != nil {
			return nil, fmt.Errorf("subaccount %q: %w", s.Key, err)
		}
		subaccounts[i] = sub

		if transfers[i] == nil {
			continue
		}

		free := s.Free
		patch := ModifyMovementInput{Free: &free}
		if s.Amount.IsPositive() {
			patch.EntryAccountID = &sub.ID
		} else {
			patch.ExitAccountID = &sub.ID
		}
		if _, err := uc.movements.modify(ctx, tx, transfers[i].ID, patch, modifyOptions{}); err != nil {
			return nil, fmt.Errorf("failed to attach balance transfer to %q: %w", s.Key, err)
		}
	}

	uc.logger.Info().
		Str("account_id", account.ID).
		Str("key", account.Key).
		Str("balance", balance.String()).
		Int("subaccounts", len(subaccounts)).
		Time("date", day).
		Msg("account split")

	return subaccounts, nil
}

func (uc *AccountUseCase) checkSplitKeys(ctx context.Context, tx Transaction, splits []domain.Split) error {
	seen := make(map[string]bool, len(splits))
	for _, s := range splits {
		key := domain.NormalizeKey(s.Key)
		if seen[key] {
			return fmt.Errorf("%w: %q appears twice", domain.ErrDuplicateKey, key)
		}
		seen[key] = true

		if err := domain.ValidateAccountName(s.Name); err != nil {
			return err
		}
		if err := uc.checkNewKey(ctx, tx, key); err != nil {
			return err
		}
	}
	return nil
}

func (uc *AccountUseCase) delete(ctx context.Context, tx Transaction, account *domain.Account) error {
	balance, err := uc.ledger.BalanceOf(ctx, tx, account, nil)
	if err != nil {
		return err
	}

	if !balance.IsZero() {
		return fmt.Errorf("%w: %s has balance %s", domain.ErrNonZeroBalance, account.Key, balance.String())
	}

	movements, err := uc.movementRepo.ListByAccount(ctx, tx, account.ID, nil, nil)
	if err != nil {
		return err
	}

	if account.IsCumulative() {
		subaccounts, err := uc.accountRepo.ListSubaccounts(ctx, tx, account.ID)
		if err != nil {
			return err
		}
		if len(subaccounts) > 0 {
			return fmt.Errorf("%w: %s", domain.ErrAccountHasSubaccounts, account.Key)
		}
		if len(movements) > 0 {
			return fmt.Errorf("%w: %s", domain.ErrAccountHasMovements, account.Key)
		}
	}

	for _, m := range movements {
		if m.IsTransfer() {
			return fmt.Errorf("%w: %s shares movement %s with another account",
				domain.ErrAccountHasMovements, account.Key, m.ID)
		}
	}

	// Single-leg movements go away with the account, latest first so that
	// order compaction does not touch the ones still to delete.
	for i := len(movements) - 1; i >= 0; i-- {
		if err := uc.movements.delete(ctx, tx, movements[i], true); err != nil {
			return err
		}
	}

	if err := uc.balanceRepo.DeleteByAccount(ctx, tx, account.ID); err != nil {
		return err
	}

	if err := uc.accountRepo.Delete(ctx, tx, account.ID); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsDeleted.Inc()
	}

	uc.logger.Info().
		Str("account_id", account.ID).
		Str("key", account.Key).
		Msg("account deleted")

	return nil
}
