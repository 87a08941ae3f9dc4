package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/infrastructure/metrics"
)

const quoteCachePrefix = "quote:current:"

// CurrencyUseCase handles currencies, quotes and conversions.
type CurrencyUseCase struct {
	txRunner
	currencyRepo    CurrencyRepository
	cache           Cache
	idGen           IDGenerator
	defaultCurrency string
	logger          zerolog.Logger
	metrics         *metrics.Metrics
}

// NewCurrencyUseCase creates a new CurrencyUseCase. cache may be nil.
// defaultCurrency is created on first use.
func NewCurrencyUseCase(deps Deps, cache Cache, defaultCurrency string) *CurrencyUseCase {
	return &CurrencyUseCase{
		txRunner:        newTxRunner(deps),
		currencyRepo:    deps.Repos.Currencies,
		cache:           cache,
		idGen:           deps.IDGen,
		defaultCurrency: domain.NormalizeCurrencyCode(defaultCurrency),
		logger:          deps.Logger.With().Str("component", "currencies").Logger(),
		metrics:         deps.Metrics,
	}
}

// DefaultCurrency returns the code accounts use when none is given.
func (uc *CurrencyUseCase) DefaultCurrency() string {
	return uc.defaultCurrency
}

// CreateCurrencyInput represents input for creating a currency.
type CreateCurrencyInput struct {
	Code   string
	Name   string
	Plural string
}

// CreateCurrency creates a new currency.
func (uc *CurrencyUseCase) CreateCurrency(ctx context.Context, input CreateCurrencyInput) (*domain.Currency, error) {
	code := domain.NormalizeCurrencyCode(input.Code)
	if err := domain.ValidateCurrency(code); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = code
	}

	currency := &domain.Currency{
		Code:      code,
		Name:      name,
		Plural:    strings.TrimSpace(input.Plural),
		CreatedAt: time.Now().UTC(),
	}

	err := uc.inTx(ctx, "create_currency", func(ctx context.Context, tx Transaction) error {
		_, err := uc.currencyRepo.GetByCode(ctx, tx, code)
		if err == nil {
			return fmt.Errorf("%w: currency %s already exists", domain.ErrDuplicateKey, code)
		}
		if !errors.Is(err, domain.ErrCurrencyNotFound) {
			return err
		}
		return uc.currencyRepo.Create(ctx, tx, currency)
	})
	if err != nil {
		return nil, err
	}

	return currency, nil
}

// GetCurrency retrieves a currency by code.
func (uc *CurrencyUseCase) GetCurrency(ctx context.Context, code string) (*domain.Currency, error) {
	return uc.currencyRepo.GetByCode(ctx, nil, domain.NormalizeCurrencyCode(code))
}

// ListCurrencies lists all currencies.
func (uc *CurrencyUseCase) ListCurrencies(ctx context.Context) ([]*domain.Currency, error) {
	return uc.currencyRepo.List(ctx, nil)
}

// AddQuoteInput represents input for quoting a currency.
type AddQuoteInput struct {
	Date *time.Time
	Buy  decimal.Decimal
	Sell decimal.Decimal
}

// AddQuote records a quote for a currency and drops its cached current quote.
func (uc *CurrencyUseCase) AddQuote(ctx context.Context, code string, input AddQuoteInput) (*domain.Quote, error) {
	code = domain.NormalizeCurrencyCode(code)

	date := domain.Today()
	if input.Date != nil {
		date = domain.Day(*input.Date)
	}

	quote := &domain.Quote{
		ID:       uc.idGen.Generate(),
		Currency: code,
		Date:     date,
		Buy:      input.Buy,
		Sell:     input.Sell,
	}
	if err := quote.Validate(); err != nil {
		return nil, err
	}

	err := uc.inTx(ctx, "add_quote", func(ctx context.Context, tx Transaction) error {
		if _, err := uc.currencyRepo.GetByCode(ctx, tx, code); err != nil {
			return err
		}
		return uc.currencyRepo.CreateQuote(ctx, tx, quote)
	})
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Delete(ctx, quoteCachePrefix+code); err != nil {
			uc.logger.Warn().Err(err).Str("currency", code).Msg("failed to invalidate cached quote")
		}
	}

	return quote, nil
}

// CurrentQuote returns the latest quote of a currency, or a unit quote when
// it was never quoted.
func (uc *CurrencyUseCase) CurrentQuote(ctx context.Context, code string) (*domain.Quote, error) {
	code = domain.NormalizeCurrencyCode(code)

	if quote, ok := uc.cachedQuote(ctx, code); ok {
		return quote, nil
	}

	if _, err := uc.currencyRepo.GetByCode(ctx, nil, code); err != nil {
		return nil, err
	}

	quote, err := uc.currencyRepo.GetLatestQuote(ctx, nil, code)
	if errors.Is(err, domain.ErrQuoteNotFound) {
		quote, err = domain.UnitQuote(code), nil
	}
	if err != nil {
		return nil, err
	}

	uc.storeQuote(ctx, quote)

	return quote, nil
}

// Rate returns the sell rate from one currency to another at date, or at
// the latest quote when date is nil.
func (uc *CurrencyUseCase) Rate(ctx context.Context, from, to string, date *time.Time) (decimal.Decimal, error) {
	return uc.rate(ctx, nil, from, to, date)
}

// Convert converts amount between currencies and rounds it to the target's
// minor unit.
func (uc *CurrencyUseCase) Convert(ctx context.Context, amount decimal.Decimal, from, to string, date *time.Time) (decimal.Decimal, error) {
	return uc.convert(ctx, nil, amount, from, to, date)
}

func (uc *CurrencyUseCase) convert(ctx context.Context, tx Transaction, amount decimal.Decimal, from, to string, date *time.Time) (decimal.Decimal, error) {
	rate, err := uc.rate(ctx, tx, from, to, date)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.RoundAmount(amount.Mul(rate), to), nil
}

func (uc *CurrencyUseCase) rate(ctx context.Context, tx Transaction, from, to string, date *time.Time) (decimal.Decimal, error) {
	from, to = domain.NormalizeCurrencyCode(from), domain.NormalizeCurrencyCode(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	fromQuote, err := uc.quoteAt(ctx, tx, from, date)
	if err != nil {
		return decimal.Zero, err
	}

	toQuote, err := uc.quoteAt(ctx, tx, to, date)
	if err != nil {
		return decimal.Zero, err
	}

	return domain.Rate(fromQuote, toQuote, false), nil
}

// quoteAt returns the quote in force at date, the latest one when date is
// nil, and a unit quote when there is none.
func (uc *CurrencyUseCase) quoteAt(ctx context.Context, tx Transaction, code string, date *time.Time) (*domain.Quote, error) {
	var (
		quote *domain.Quote
		err   error
	)

	if date == nil {
		if cached, ok := uc.cachedQuote(ctx, code); ok {
			return cached, nil
		}
		quote, err = uc.currencyRepo.GetLatestQuote(ctx, tx, code)
	} else {
		quote, err = uc.currencyRepo.GetQuoteAt(ctx, tx, code, domain.Day(*date))
	}

	if errors.Is(err, domain.ErrQuoteNotFound) {
		return domain.UnitQuote(code), nil
	}
	if err != nil {
		return nil, err
	}

	return quote, nil
}

// ensureCurrency checks that code exists, creating the default currency on
// first use.
func (uc *CurrencyUseCase) ensureCurrency(ctx context.Context, tx Transaction, code string) error {
	if err := domain.ValidateCurrency(code); err != nil {
		return err
	}

	_, err := uc.currencyRepo.GetByCode(ctx, tx, code)
	if err == nil || !errors.Is(err, domain.ErrCurrencyNotFound) || code != uc.defaultCurrency {
		return err
	}

	return uc.currencyRepo.Create(ctx, tx, &domain.Currency{
		Code:      code,
		Name:      code,
		CreatedAt: time.Now().UTC(),
	})
}

func (uc *CurrencyUseCase) cachedQuote(ctx context.Context, code string) (*domain.Quote, bool) {
	if uc.cache == nil {
		return nil, false
	}

	raw, err := uc.cache.Get(ctx, quoteCachePrefix+code)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			uc.logger.Warn().Err(err).Str("currency", code).Msg("failed to read cached quote")
		}
		if uc.metrics != nil {
			uc.metrics.QuoteCacheMisses.Inc()
		}
		return nil, false
	}

	var quote domain.Quote
	if err := json.Unmarshal([]byte(raw), &quote); err != nil {
		uc.logger.Warn().Err(err).Str("currency", code).Msg("dropping malformed cached quote")
		return nil, false
	}

	if uc.metrics != nil {
		uc.metrics.QuoteCacheHits.Inc()
	}

	return &quote, true
}

func (uc *CurrencyUseCase) storeQuote(ctx context.Context, quote *domain.Quote) {
	if uc.cache == nil {
		return
	}

	raw, err := json.Marshal(quote)
	if err != nil {
		return
	}

	if err := uc.cache.Set(ctx, quoteCachePrefix+quote.Currency, string(raw), DefaultQuoteCacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("currency", quote.Currency).Msg("failed to cache quote")
	}
}
