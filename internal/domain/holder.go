package domain

import (
	"slices"
	"time"
)

// Holder owns accounts. DebtorIDs lists the holders that currently owe this
// one money.
type Holder struct {
	ID        string
	Key       string
	Name      string
	DebtorIDs []string
	CreatedAt time.Time
}

// HasDebtor reports whether holderID owes h.
func (h *Holder) HasDebtor(holderID string) bool {
	return slices.Contains(h.DebtorIDs, holderID)
}

// AddDebtor registers holderID as a debtor. It reports whether the set
// changed.
func (h *Holder) AddDebtor(holderID string) bool {
	if h.HasDebtor(holderID) {
		return false
	}
	h.DebtorIDs = append(h.DebtorIDs, holderID)
	return true
}

// RemoveDebtor drops holderID from the debtor set. It reports whether the set
// changed.
func (h *Holder) RemoveDebtor(holderID string) bool {
	i := slices.Index(h.DebtorIDs, holderID)
	if i < 0 {
		return false
	}
	h.DebtorIDs = slices.Delete(h.DebtorIDs, i, i+1)
	return true
}

// Clone returns a deep copy of the holder.
func (h *Holder) Clone() *Holder {
	c := *h
	c.DebtorIDs = slices.Clone(h.DebtorIDs)
	return &c
}
