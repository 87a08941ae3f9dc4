package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the running balance of an account after the last movement of
// a date.
type Balance struct {
	ID        string
	AccountID string
	Date      time.Time
	Amount    decimal.Decimal
}

// Clone returns a copy of the balance row.
func (b *Balance) Clone() *Balance {
	c := *b
	return &c
}
