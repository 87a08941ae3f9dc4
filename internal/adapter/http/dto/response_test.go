package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cuentas/internal/domain"
)

func TestAccountFromDomain(t *testing.T) {
	conversion := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	parent := "padre"
	account := &domain.Account{
		ID:             "acc-1",
		Key:            "caja",
		Name:           "Caja",
		HolderID:       "h1",
		ParentID:       &parent,
		Kind:           domain.AccountCumulative,
		Currency:       "ARS",
		ConversionDate: &conversion,
	}

	resp := AccountFromDomain(account)

	if resp.ID != "acc-1" || resp.Key != "caja" || resp.Kind != "cumulative" || resp.HolderID != "h1" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.ParentID == nil || *resp.ParentID != "padre" {
		t.Fatalf("expected parent to be copied")
	}
	if resp.ConversionDate != "2024-03-01" {
		t.Fatalf("unexpected conversion date %q", resp.ConversionDate)
	}
}

func TestMovementFromDomain(t *testing.T) {
	entry := "caja"
	m := &domain.Movement{
		ID:             "m1",
		Date:           time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Order:          3,
		Concept:        "sueldo",
		Amount:         decimal.RequireFromString("100.50"),
		EntryAccountID: &entry,
		Currency:       "ARS",
		ExchangeRate:   decimal.NewFromInt(1),
	}

	resp := MovementFromDomain(m)

	if resp.Date != "2024-01-15" || resp.Order != 3 || resp.ExitAccountID != nil {
		t.Fatalf("unexpected response %+v", resp)
	}
	if !resp.Amount.Equal(m.Amount) {
		t.Fatalf("expected amount %s, got %s", m.Amount, resp.Amount)
	}
}

func TestNewBalanceResponse(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	current := NewBalanceResponse("acc", "ARS", decimal.NewFromInt(5), nil)
	if current.Date != "" || current.Order != nil {
		t.Fatalf("current balance should not carry a position: %+v", current)
	}

	endOfDay := domain.EndOfDay(date)
	atDate := NewBalanceResponse("acc", "ARS", decimal.NewFromInt(5), &endOfDay)
	if atDate.Date != "2024-01-15" || atDate.Order != nil {
		t.Fatalf("unexpected end of day response %+v", atDate)
	}

	pos := domain.NewPosition(date, 2)
	atPos := NewBalanceResponse("acc", "ARS", decimal.NewFromInt(5), &pos)
	if atPos.Order == nil || *atPos.Order != 2 {
		t.Fatalf("expected order 2, got %+v", atPos)
	}
	if atPos.Formatted == "" {
		t.Fatalf("expected a formatted amount")
	}
}

func TestHolderFromDomain_EmptyDebtors(t *testing.T) {
	resp := HolderFromDomain(&domain.Holder{ID: "h1", Key: "ana", Name: "Ana"})
	if resp.DebtorIDs == nil || len(resp.DebtorIDs) != 0 {
		t.Fatalf("expected an empty debtor list, got %v", resp.DebtorIDs)
	}
}

func TestQuoteFromDomain_UnitQuoteHasNoDate(t *testing.T) {
	resp := QuoteFromDomain(domain.UnitQuote("USD"))
	if resp.Date != "" || !resp.Sell.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("unexpected unit quote %+v", resp)
	}
}
