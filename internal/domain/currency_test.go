package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCurrencyFraction(t *testing.T) {
	tests := []struct {
		code string
		want int32
	}{
		{"USD", 2},
		{"ars", 2},
		{"JPY", 0},
		{"XXZ", defaultFraction},
	}
	for _, tt := range tests {
		if got := CurrencyFraction(tt.code); got != tt.want {
			t.Errorf("CurrencyFraction(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestRoundAmount(t *testing.T) {
	if got := RoundAmount(decimal.RequireFromString("1.005"), "USD"); !got.Equal(decimal.RequireFromString("1.01")) {
		t.Fatalf("expected 1.01, got %s", got)
	}
	if got := RoundAmount(decimal.RequireFromString("149.5"), "JPY"); !got.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected 150, got %s", got)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount string
		code   string
		want   string
	}{
		{"12345.67", "USD", "$12,345.67"},
		{"-10.5", "USD", "-$10.50"},
		{"12345.67", "ARS", "$12.345,67"},
	}
	for _, tt := range tests {
		if got := FormatAmount(decimal.RequireFromString(tt.amount), tt.code); got != tt.want {
			t.Errorf("FormatAmount(%s, %s) = %q, want %q", tt.amount, tt.code, got, tt.want)
		}
	}
}

func TestQuotes(t *testing.T) {
	usd := &Quote{Currency: "USD", Buy: decimal.NewFromInt(990), Sell: decimal.NewFromInt(1000)}
	ars := UnitQuote("ARS")

	if got := Rate(usd, ars, false); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected the sell price, got %s", got)
	}
	if got := Rate(usd, ars, true); !got.Equal(decimal.NewFromInt(990)) {
		t.Fatalf("expected the buy price, got %s", got)
	}
	if got := Rate(ars, usd, false); !got.Equal(decimal.RequireFromString("0.001")) {
		t.Fatalf("expected 0.001, got %s", got)
	}
	if got := Rate(usd, usd, false); !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("same currency rate must be 1, got %s", got)
	}

	bad := &Quote{Buy: decimal.Zero, Sell: decimal.NewFromInt(1)}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidQuote) {
		t.Fatalf("expected ErrInvalidQuote, got %v", err)
	}
}
