package integration

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/cuentas/internal/usecase"
	"github.com/iho/cuentas/tests/testutil"
)

func TestConcurrentMovements(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	l := testutil.NewLedger(t, testDB)

	source := l.Account("origen", "")
	dest := l.Account("destino", "")
	l.Move("apertura", "1000", source.ID, "", "2024-01-01")

	const numMovements = 50
	date := testutil.Day("2024-01-02")

	var (
		wg           sync.WaitGroup
		successCount atomic.Int32
		errorCount   atomic.Int32
	)
	wg.Add(numMovements)

	for range numMovements {
		go func() {
			defer wg.Done()

			_, err := l.Movements.CreateMovement(l.Ctx, usecase.CreateMovementInput{
				Concept:        "transferencia",
				Amount:         decimal.NewFromInt(10),
				EntryAccountID: dest.ID,
				ExitAccountID:  source.ID,
				Date:           &date,
			})
			if err != nil {
				errorCount.Add(1)
				return
			}
			successCount.Add(1)
		}()
	}

	wg.Wait()

	ok := successCount.Load()
	if ok == 0 {
		t.Fatalf("expected some movements to succeed (errors: %d)", errorCount.Load())
	}

	// Every committed movement is reflected exactly once.
	moved := decimal.NewFromInt(int64(ok) * 10)
	testutil.RequireBalance(t, decimal.NewFromInt(1000).Sub(moved).String(), l.Balance(source.ID))
	testutil.RequireBalance(t, moved.String(), l.Balance(dest.ID))

	movements, err := l.Movements.ListByDateRange(l.Ctx, date, date)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(movements) != int(ok) {
		t.Fatalf("expected %d movements, got %d", ok, len(movements))
	}
	seen := make(map[int]bool, len(movements))
	for _, m := range movements {
		if seen[m.Order] {
			t.Fatalf("order %d used twice", m.Order)
		}
		seen[m.Order] = true
	}

	l.RequireConsistent()
}
