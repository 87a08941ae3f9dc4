package domain

import (
	"time"
)

// AccountKind tags the variant of an account.
type AccountKind string

const (
	// AccountInteractive is a leaf account that accepts movements.
	AccountInteractive AccountKind = "interactive"
	// AccountCumulative is a composite account whose balance is the sum of
	// its subaccounts.
	AccountCumulative AccountKind = "cumulative"
)

// Account is a node of the account tree. Interactive accounts carry a
// currency and, for credit accounts, a counter account. Cumulative accounts
// carry the date they stopped being interactive; they keep the ID and the
// movement history they had before.
type Account struct {
	ID               string
	Key              string
	Name             string
	HolderID         string
	ParentID         *string
	Kind             AccountKind
	Currency         string
	CounterAccountID *string
	ConversionDate   *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsCumulative reports whether the account is a composite account.
func (a *Account) IsCumulative() bool { return a.Kind == AccountCumulative }

// IsInteractive reports whether the account accepts movements.
func (a *Account) IsInteractive() bool { return a.Kind != AccountCumulative }

// IsCredit reports whether the account mirrors a debt between two holders.
func (a *Account) IsCredit() bool { return a.CounterAccountID != nil }

// HasParent reports whether the account is a subaccount.
func (a *Account) HasParent() bool { return a.ParentID != nil }

// ConvertToCumulative turns an interactive account into a cumulative one in
// place, keeping its identity.
func (a *Account) ConvertToCumulative(date time.Time) error {
	if a.IsCumulative() {
		return ErrAlreadyCumulative
	}
	if a.IsCredit() {
		return ErrCreditAccountSplit
	}
	d := Day(date)
	a.Kind = AccountCumulative
	a.ConversionDate = &d
	return nil
}

// ConvertedBefore reports whether the account was already cumulative for the
// whole of date, that is, converted on an earlier day.
func (a *Account) ConvertedBefore(date time.Time) bool {
	return a.IsCumulative() && a.ConversionDate != nil && Day(date).After(*a.ConversionDate)
}

// ConvertedOn reports whether the account became cumulative on date.
func (a *Account) ConvertedOn(date time.Time) bool {
	return a.IsCumulative() && a.ConversionDate != nil && Day(date).Equal(*a.ConversionDate)
}

// ValidateUpdate checks the immutable fields of a persisted account against
// its previous state.
func (a *Account) ValidateUpdate(prev *Account) error {
	if prev.HolderID != "" && prev.HolderID != a.HolderID {
		return ErrImmutableHolder
	}
	if prev.ParentID != nil && (a.ParentID == nil || *a.ParentID != *prev.ParentID) {
		return ErrImmutableParent
	}
	return nil
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	c := *a
	c.ParentID = cloneString(a.ParentID)
	c.CounterAccountID = cloneString(a.CounterAccountID)
	if a.ConversionDate != nil {
		d := *a.ConversionDate
		c.ConversionDate = &d
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StringPtr returns a pointer to s, or nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue returns the pointed string, or "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
