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
)

// HolderUseCase handles account holders.
type HolderUseCase struct {
	txRunner
	holderRepo  HolderRepository
	accountRepo AccountRepository
	accounts    *AccountUseCase
	currencies  *CurrencyUseCase
	idGen       IDGenerator
	defaults    HolderDefaults
	logger      zerolog.Logger
}

// NewHolderUseCase creates a new HolderUseCase.
func NewHolderUseCase(deps Deps, accounts *AccountUseCase, currencies *CurrencyUseCase, defaults HolderDefaults) *HolderUseCase {
	return &HolderUseCase{
		txRunner:    newTxRunner(deps),
		holderRepo:  deps.Repos.Holders,
		accountRepo: deps.Repos.Accounts,
		accounts:    accounts,
		currencies:  currencies,
		idGen:       deps.IDGen,
		defaults:    defaults,
		logger:      deps.Logger.With().Str("component", "holders").Logger(),
	}
}

// CreateHolderInput represents input for creating a holder.
type CreateHolderInput struct {
	Key  string
	Name string
}

// CreateHolder creates a new holder.
func (uc *HolderUseCase) CreateHolder(ctx context.Context, input CreateHolderInput) (*domain.Holder, error) {
	key := domain.NormalizeKey(input.Key)
	if err := domain.ValidateKey(key); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: holder name cannot be empty", domain.ErrInvalidAccountName)
	}

	holder := &domain.Holder{
		ID:        uc.idGen.Generate(),
		Key:       key,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	err := uc.inTx(ctx, "create_holder", func(ctx context.Context, tx Transaction) error {
		_, err := uc.holderRepo.GetByKey(ctx, tx, key)
		if err == nil {
			return fmt.Errorf("%w: holder %q", domain.ErrDuplicateKey, key)
		}
		if !errors.Is(err, domain.ErrHolderNotFound) {
			return err
		}
		return uc.holderRepo.Create(ctx, tx, holder)
	})
	if err != nil {
		return nil, err
	}

	return holder, nil
}

// GetHolder retrieves a holder by ID or key.
func (uc *HolderUseCase) GetHolder(ctx context.Context, ref string) (*domain.Holder, error) {
	return resolveHolder(ctx, nil, uc.holderRepo, ref)
}

// ListHolders lists all holders.
func (uc *HolderUseCase) ListHolders(ctx context.Context) ([]*domain.Holder, error) {
	return uc.holderRepo.List(ctx, nil)
}

// ListAccounts lists the accounts owned by a holder.
func (uc *HolderUseCase) ListAccounts(ctx context.Context, ref string) ([]*domain.Account, error) {
	holder, err := resolveHolder(ctx, nil, uc.holderRepo, ref)
	if err != nil {
		return nil, err
	}
	return uc.accountRepo.ListByHolder(ctx, nil, holder.ID)
}

// GetOrCreateDefaultHolder returns the holder of accounts created without
// one.
func (uc *HolderUseCase) GetOrCreateDefaultHolder(ctx context.Context) (*domain.Holder, error) {
	var holder *domain.Holder

	err := uc.inTx(ctx, "default_holder", func(ctx context.Context, tx Transaction) error {
		var err error
		holder, err = defaultHolder(ctx, tx, uc.holderRepo, uc.idGen, uc.defaults)
		return err
	})
	if err != nil {
		return nil, err
	}

	return holder, nil
}

// Capital returns the sum of the holder's interactive accounts converted to
// currency, the default currency when empty.
func (uc *HolderUseCase) Capital(ctx context.Context, ref, currency string) (decimal.Decimal, error) {
	holder, err := resolveHolder(ctx, nil, uc.holderRepo, ref)
	if err != nil {
		return decimal.Zero, err
	}
	return uc.capital(ctx, nil, holder, currency)
}

func (uc *HolderUseCase) capital(ctx context.Context, tx Transaction, holder *domain.Holder, currency string) (decimal.Decimal, error) {
	currency = domain.NormalizeCurrencyCode(currency)
	if currency == "" {
		currency = uc.currencies.DefaultCurrency()
	}

	accounts, err := uc.accountRepo.ListByHolder(ctx, tx, holder.ID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, account := range accounts {
		if !account.IsInteractive() {
			continue
		}
		balance, err := uc.accounts.balanceIn(ctx, tx, account, currency, nil)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(balance)
	}

	return total, nil
}

// DeleteHolder deletes a holder without capital together with its accounts.
func (uc *HolderUseCase) DeleteHolder(ctx context.Context, ref string) error {
	return uc.inTx(ctx, "delete_holder", func(ctx context.Context, tx Transaction) error {
		holder, err := resolveHolder(ctx, tx, uc.holderRepo, ref)
		if err != nil {
			return err
		}

		capital, err := uc.capital(ctx, tx, holder, "")
		if err != nil {
			return err
		}
		if !capital.IsZero() {
			return fmt.Errorf("%w: %s holds %s", domain.ErrHolderHasCapital, holder.Key, capital.String())
		}

		accounts, err := uc.accountRepo.ListByHolder(ctx, tx, holder.ID)
		if err != nil {
			return err
		}

		// Subaccounts before their parents.
		for _, account := range orderForDeletion(accounts) {
			if err := uc.accounts.delete(ctx, tx, account); err != nil {
				return err
			}
		}

		uc.logger.Info().Str("holder_id", holder.ID).Str("key", holder.Key).Msg("holder deleted")

		return uc.holderRepo.Delete(ctx, tx, holder.ID)
	})
}

// orderForDeletion places every account after its descendants.
func orderForDeletion(accounts []*domain.Account) []*domain.Account {
	byID := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	depth := func(a *domain.Account) int {
		d := 0
		for a.ParentID != nil {
			parent, ok := byID[*a.ParentID]
			if !ok {
				break
			}
			a = parent
			d++
		}
		return d
	}

	ordered := make([]*domain.Account, len(accounts))
	copy(ordered, accounts)
	depths := make(map[string]int, len(accounts))
	for _, a := range ordered {
		depths[a.ID] = depth(a)
	}
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && depths[ordered[j].ID] > depths[ordered[j-1].ID]; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}

	return ordered
}

// defaultHolder returns the configured default holder, creating it on first
// use.
func defaultHolder(ctx context.Context, tx Transaction, repo HolderRepository, idGen IDGenerator, defaults HolderDefaults) (*domain.Holder, error) {
	key := domain.NormalizeKey(defaults.Key)

	holder, err := repo.GetByKey(ctx, tx, key)
	if err == nil {
		return holder, nil
	}
	if !errors.Is(err, domain.ErrHolderNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(defaults.Name)
	if name == "" {
		name = key
	}

	holder = &domain.Holder{
		ID:        idGen.Generate(),
		Key:       key,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(ctx, tx, holder); err != nil {
		return nil, fmt.Errorf("failed to create default holder: %w", err)
	}

	return holder, nil
}

// resolveHolder finds a holder by ID, then by key.
func resolveHolder(ctx context.Context, tx Transaction, repo HolderRepository, ref string) (*domain.Holder, error) {
	holder, err := repo.GetByID(ctx, tx, ref)
	if err == nil || !errors.Is(err, domain.ErrHolderNotFound) {
		return holder, err
	}
	return repo.GetByKey(ctx, tx, domain.NormalizeKey(ref))
}
