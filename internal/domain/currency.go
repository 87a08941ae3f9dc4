package domain

import (
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// defaultFraction is used for codes go-money does not know.
const defaultFraction = 2

// Currency is a unit accounts are kept in.
type Currency struct {
	Code      string
	Name      string
	Plural    string
	CreatedAt time.Time
}

// Quote is the buy/sell price of a currency at a date, expressed in the
// ledger's reference unit.
type Quote struct {
	ID       string
	Currency string
	Date     time.Time
	Buy      decimal.Decimal
	Sell     decimal.Decimal
}

// UnitQuote is the quote of a currency with no quotes at all.
func UnitQuote(code string) *Quote {
	return &Quote{Currency: code, Buy: decimal.NewFromInt(1), Sell: decimal.NewFromInt(1)}
}

// Price returns the buy or sell price.
func (q *Quote) Price(buy bool) decimal.Decimal {
	if buy {
		return q.Buy
	}
	return q.Sell
}

// Validate checks quote prices.
func (q *Quote) Validate() error {
	if !q.Buy.IsPositive() || !q.Sell.IsPositive() {
		return ErrInvalidQuote
	}
	return nil
}

// NormalizeCurrencyCode upper-cases and trims a code.
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CurrencyFraction returns the number of minor-unit digits of a currency.
func CurrencyFraction(code string) int32 {
	c := money.GetCurrency(NormalizeCurrencyCode(code))
	if c == nil {
		return defaultFraction
	}
	return int32(c.Fraction)
}

// RoundAmount rounds amount to the minor unit of currency.
func RoundAmount(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Round(CurrencyFraction(code))
}

// FormatAmount renders amount with the currency's symbol and separators.
func FormatAmount(amount decimal.Decimal, code string) string {
	code = NormalizeCurrencyCode(code)
	fraction := CurrencyFraction(code)
	minor := amount.Round(fraction).Shift(fraction).IntPart()
	return money.New(minor, code).Display()
}

// Rate returns how many units of to's currency one unit of from's currency
// is worth.
func Rate(from, to *Quote, buy bool) decimal.Decimal {
	if from.Currency != "" && from.Currency == to.Currency {
		return decimal.NewFromInt(1)
	}
	return from.Price(buy).Div(to.Price(buy))
}
