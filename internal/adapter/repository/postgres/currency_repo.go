package postgres

import (
	"context"
	"time"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/infrastructure/postgres/generated"
	"github.com/iho/cuentas/internal/usecase"
)

// CurrencyRepository implements usecase.CurrencyRepository.
type CurrencyRepository struct {
	db generated.DBTX
}

// NewCurrencyRepository creates a new CurrencyRepository.
func NewCurrencyRepository(db generated.DBTX) *CurrencyRepository {
	return &CurrencyRepository{db: db}
}

// Create creates a new currency.
func (r *CurrencyRepository) Create(ctx context.Context, tx usecase.Transaction, currency *domain.Currency) error {
	err := queriesFor(r.db, tx).CreateCurrency(ctx, generated.CreateCurrencyParams{
		Code:      currency.Code,
		Name:      currency.Name,
		Plural:    currency.Plural,
		CreatedAt: timeToPgTimestamptz(currency.CreatedAt),
	})

	return mapError(err, domain.ErrCurrencyNotFound)
}

// GetByCode retrieves a currency by code.
func (r *CurrencyRepository) GetByCode(ctx context.Context, tx usecase.Transaction, code string) (*domain.Currency, error) {
	row, err := queriesFor(r.db, tx).GetCurrencyByCode(ctx, code)
	if err != nil {
		return nil, mapError(err, domain.ErrCurrencyNotFound)
	}

	return rowToCurrency(row), nil
}

// List lists currencies by code.
func (r *CurrencyRepository) List(ctx context.Context, tx usecase.Transaction) ([]*domain.Currency, error) {
	rows, err := queriesFor(r.db, tx).ListCurrencies(ctx)
	if err != nil {
		return nil, err
	}

	currencies := make([]*domain.Currency, 0, len(rows))
	for _, row := range rows {
		currencies = append(currencies, rowToCurrency(row))
	}

	return currencies, nil
}

// CreateQuote stores a quote.
func (r *CurrencyRepository) CreateQuote(ctx context.Context, tx usecase.Transaction, quote *domain.Quote) error {
	err := queriesFor(r.db, tx).CreateQuote(ctx, generated.CreateQuoteParams{
		ID:       quote.ID,
		Currency: quote.Currency,
		Date:     dateToPg(quote.Date),
		Buy:      decimalToNumeric(quote.Buy),
		Sell:     decimalToNumeric(quote.Sell),
	})

	return mapError(err, domain.ErrCurrencyNotFound)
}

// GetLatestQuote returns the most recent quote of code.
func (r *CurrencyRepository) GetLatestQuote(ctx context.Context, tx usecase.Transaction, code string) (*domain.Quote, error) {
	row, err := queriesFor(r.db, tx).GetLatestQuote(ctx, code)
	if err != nil {
		return nil, mapError(err, domain.ErrQuoteNotFound)
	}

	return rowToQuote(row), nil
}

// GetQuoteAt returns the quote of code in force at date.
func (r *CurrencyRepository) GetQuoteAt(ctx context.Context, tx usecase.Transaction, code string, date time.Time) (*domain.Quote, error) {
	row, err := queriesFor(r.db, tx).GetQuoteAt(ctx, generated.GetQuoteAtParams{
		Currency: code,
		Date:     dateToPg(date),
	})
	if err != nil {
		return nil, mapError(err, domain.ErrQuoteNotFound)
	}

	return rowToQuote(row), nil
}

func rowToCurrency(row generated.Currency) *domain.Currency {
	return &domain.Currency{
		Code:      row.Code,
		Name:      row.Name,
		Plural:    row.Plural,
		CreatedAt: row.CreatedAt.Time,
	}
}

func rowToQuote(row generated.Quote) *domain.Quote {
	return &domain.Quote{
		ID:       row.ID,
		Currency: row.Currency,
		Date:     pgToDate(row.Date),
		Buy:      numericToDecimal(row.Buy),
		Sell:     numericToDecimal(row.Sell),
	}
}
