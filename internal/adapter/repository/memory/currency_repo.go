package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/usecase"
)

// CurrencyRepository implements usecase.CurrencyRepository.
type CurrencyRepository struct {
	store *Store
}

// Create creates a new currency.
func (r *CurrencyRepository) Create(ctx context.Context, tx usecase.Transaction, currency *domain.Currency) error {
	return r.store.update(tx, func(st *state) error {
		if _, ok := st.currencies[currency.Code]; ok {
			return fmt.Errorf("%w: currency %s", domain.ErrDuplicateKey, currency.Code)
		}
		v := *currency
		st.currencies[currency.Code] = &v
		return nil
	})
}

// GetByCode retrieves a currency by code.
func (r *CurrencyRepository) GetByCode(ctx context.Context, tx usecase.Transaction, code string) (*domain.Currency, error) {
	var currency *domain.Currency
	err := r.store.view(tx, func(st *state) error {
		c, ok := st.currencies[code]
		if !ok {
			return domain.ErrCurrencyNotFound
		}
		v := *c
		currency = &v
		return nil
	})
	return currency, err
}

// List lists currencies by code.
func (r *CurrencyRepository) List(ctx context.Context, tx usecase.Transaction) ([]*domain.Currency, error) {
	var currencies []*domain.Currency
	err := r.store.view(tx, func(st *state) error {
		for _, c := range st.currencies {
			v := *c
			currencies = append(currencies, &v)
		}
		return nil
	})
	sort.Slice(currencies, func(i, j int) bool { return currencies[i].Code < currencies[j].Code })
	return currencies, err
}

// CreateQuote records a quote. Quotes of a currency stay sorted by date;
// a later quote of the same date wins.
func (r *CurrencyRepository) CreateQuote(ctx context.Context, tx usecase.Transaction, quote *domain.Quote) error {
	return r.store.update(tx, func(st *state) error {
		if _, ok := st.currencies[quote.Currency]; !ok {
			return domain.ErrCurrencyNotFound
		}
		v := *quote
		v.Date = domain.Day(v.Date)
		quotes := append(st.quotes[quote.Currency], &v)
		sort.SliceStable(quotes, func(i, j int) bool { return quotes[i].Date.Before(quotes[j].Date) })
		st.quotes[quote.Currency] = quotes
		return nil
	})
}

// GetLatestQuote retrieves the latest quote of a currency.
func (r *CurrencyRepository) GetLatestQuote(ctx context.Context, tx usecase.Transaction, code string) (*domain.Quote, error) {
	var quote *domain.Quote
	err := r.store.view(tx, func(st *state) error {
		quotes := st.quotes[code]
		if len(quotes) == 0 {
			return domain.ErrQuoteNotFound
		}
		v := *quotes[len(quotes)-1]
		quote = &v
		return nil
	})
	return quote, err
}

// GetQuoteAt retrieves the quote in force at date.
func (r *CurrencyRepository) GetQuoteAt(ctx context.Context, tx usecase.Transaction, code string, date time.Time) (*domain.Quote, error) {
	date = domain.Day(date)
	var quote *domain.Quote
	err := r.store.view(tx, func(st *state) error {
		quotes := st.quotes[code]
		i := sort.Search(len(quotes), func(i int) bool { return quotes[i].Date.After(date) })
		if i == 0 {
			return domain.ErrQuoteNotFound
		}
		v := *quotes[i-1]
		quote = &v
		return nil
	})
	return quote, err
}
