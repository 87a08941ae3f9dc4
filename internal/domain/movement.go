package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Concepts of system generated movements.
const (
	ConceptOpeningBalance  = "Saldo inicial"
	ConceptBalanceTransfer = "Traspaso de saldo"
)

// Movement is a dated, ordered transfer into an entry account and/or out of
// an exit account.
type Movement struct {
	ID                string
	Date              time.Time
	Order             int
	Concept           string
	Detail            string
	Amount            decimal.Decimal
	EntryAccountID    *string
	ExitAccountID     *string
	Currency          string
	ExchangeRate      decimal.Decimal
	Automatic         bool
	CounterMovementID *string
	Free              bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Position returns the movement's ordering key.
func (m *Movement) Position() Position {
	return Position{Date: m.Date, Order: m.Order}
}

// EntryID returns the entry account ID or "".
func (m *Movement) EntryID() string { return StringValue(m.EntryAccountID) }

// ExitID returns the exit account ID or "".
func (m *Movement) ExitID() string { return StringValue(m.ExitAccountID) }

// AccountIDs returns the IDs of the accounts the movement touches, entry
// first.
func (m *Movement) AccountIDs() []string {
	ids := make([]string, 0, 2)
	if m.EntryAccountID != nil {
		ids = append(ids, *m.EntryAccountID)
	}
	if m.ExitAccountID != nil {
		ids = append(ids, *m.ExitAccountID)
	}
	return ids
}

// Touches reports whether the movement has accountID on either leg.
func (m *Movement) Touches(accountID string) bool {
	return m.EntryID() == accountID || m.ExitID() == accountID
}

// IsTransfer reports whether both legs are set.
func (m *Movement) IsTransfer() bool {
	return m.EntryAccountID != nil && m.ExitAccountID != nil
}

// HasCounterMovement reports whether the movement is one leg of a credit
// transaction.
func (m *Movement) HasCounterMovement() bool { return m.CounterMovementID != nil }

// Validate checks the field rules that need no other entity: a positive
// amount, a concept and at least one leg, with different legs.
func (m *Movement) Validate() error {
	if strings.TrimSpace(m.Concept) == "" {
		return ErrInvalidConcept
	}
	if !m.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if m.EntryAccountID == nil && m.ExitAccountID == nil {
		return ErrMissingAccounts
	}
	if m.IsTransfer() && *m.EntryAccountID == *m.ExitAccountID {
		return ErrSameAccount
	}
	return nil
}

// AmountFor returns the signed effect of the movement on an account kept in
// currency: positive on the entry leg, negative on the exit leg, converted
// with the movement's exchange rate when currencies differ. It is zero for
// an account the movement does not touch.
func (m *Movement) AmountFor(accountID, currency string) decimal.Decimal {
	amount := decimal.Zero
	if m.EntryID() == accountID {
		amount = m.Amount
	} else if m.ExitID() == accountID {
		amount = m.Amount.Neg()
	} else {
		return amount
	}
	if currency != "" && m.Currency != "" && currency != m.Currency {
		rate := m.ExchangeRate
		if rate.IsZero() {
			rate = decimal.NewFromInt(1)
		}
		amount = amount.Mul(rate)
	}
	return RoundAmount(amount, currency)
}

// Clone returns a deep copy of the movement.
func (m *Movement) Clone() *Movement {
	c := *m
	c.EntryAccountID = cloneString(m.EntryAccountID)
	c.ExitAccountID = cloneString(m.ExitAccountID)
	c.CounterMovementID = cloneString(m.CounterMovementID)
	return &c
}

// MovementDiff lists which persisted fields changed between two versions of
// a movement.
type MovementDiff struct {
	Amount bool
	Entry  bool
	Exit   bool
	Date   bool
	Order  bool
}

// Diff compares m against its previous version.
func (m *Movement) Diff(prev *Movement) MovementDiff {
	return MovementDiff{
		Amount: !m.Amount.Equal(prev.Amount),
		Entry:  m.EntryID() != prev.EntryID(),
		Exit:   m.ExitID() != prev.ExitID(),
		Date:   !m.Date.Equal(prev.Date),
		Order:  m.Order != prev.Order,
	}
}

// Any reports whether any balance-relevant field changed.
func (d MovementDiff) Any() bool {
	return d.Amount || d.Entry || d.Exit || d.Date || d.Order
}

// AffectsCredit reports whether a counter-movement must be regenerated.
func (d MovementDiff) AffectsCredit() bool {
	return d.Amount || d.Entry || d.Exit || d.Date
}
