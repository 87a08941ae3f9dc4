package domain

import (
	"testing"
	"time"
)

func TestPositionOrdering(t *testing.T) {
	jan1 := time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)
	jan2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b Position
		want int
	}{
		{"earlier date", NewPosition(jan1, 5), NewPosition(jan2, 0), -1},
		{"same date lower order", NewPosition(jan1, 0), NewPosition(jan1, 1), -1},
		{"equal", NewPosition(jan1, 3), NewPosition(jan1.Add(-time.Hour), 3), 0},
		{"end of day after any order", EndOfDay(jan1), NewPosition(jan1, 1000), 1},
		{"start of day before order zero", StartOfDay(jan2), NewPosition(jan2, 0), -1},
		{"end of day before next day", EndOfDay(jan1), StartOfDay(jan2), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Fatalf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMinMaxPosition(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewPosition(day, 1)
	b := NewPosition(day, 2)

	if !MinPosition(b, a).Equal(a) {
		t.Fatal("expected a as the minimum")
	}
	if !MaxPosition(a, b).Equal(b) {
		t.Fatal("expected b as the maximum")
	}
	if got := a.String(); got != "2024-01-01#1" {
		t.Fatalf("unexpected string %q", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Day() != 29 || d.Month() != time.February {
		t.Fatalf("unexpected date %v", d)
	}

	if _, err := ParseDate("29/02/2024"); err == nil {
		t.Fatal("expected an error for a foreign format")
	}
}
