package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/usecase"
)

type creditFixture struct {
	*fixture
	ana, beto  *domain.Holder
	cajaAna    *domain.Account
	cajaBeto   *domain.Account
	anaOwedBy  *domain.Account
	betoOwedBy *domain.Account
}

// newCreditFixture lends 30 from ana to beto.
func newCreditFixture(t *testing.T) (*creditFixture, *domain.Movement) {
	t.Helper()

	f := newFixture(t)
	cf := &creditFixture{fixture: f}
	cf.ana = f.holder(t, "ana")
	cf.beto = f.holder(t, "beto")
	cf.cajaAna = f.account(t, "caja-ana", ownedBy(cf.ana))
	cf.cajaBeto = f.account(t, "caja-beto", ownedBy(cf.beto))

	loan := f.move(t, "préstamo", "30", cf.cajaBeto.ID, cf.cajaAna.ID, "2024-01-10")

	var err error
	cf.anaOwedBy, err = f.accounts.GetAccountByKey(f.ctx, domain.CreditAccountKey("ana", "beto"))
	require.NoError(t, err)
	cf.betoOwedBy, err = f.accounts.GetAccountByKey(f.ctx, domain.CreditAccountKey("beto", "ana"))
	require.NoError(t, err)

	return cf, loan
}

func (cf *creditFixture) debtors(t *testing.T, h *domain.Holder) []string {
	t.Helper()
	got, err := cf.holders.GetHolder(cf.ctx, h.ID)
	require.NoError(t, err)
	return got.DebtorIDs
}

func (cf *creditFixture) counterOf(t *testing.T, m *domain.Movement) *domain.Movement {
	t.Helper()
	original, err := cf.movements.GetMovement(cf.ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, original.CounterMovementID)
	counter, err := cf.movements.GetMovement(cf.ctx, *original.CounterMovementID)
	require.NoError(t, err)
	return counter
}

func TestCredit_LoanBetweenHolders(t *testing.T) {
	cf, loan := newCreditFixture(t)

	assert.Equal(t, cf.ana.ID, cf.anaOwedBy.HolderID)
	assert.Equal(t, cf.beto.ID, cf.betoOwedBy.HolderID)
	assert.Equal(t, cf.betoOwedBy.ID, domain.StringValue(cf.anaOwedBy.CounterAccountID))
	assert.Equal(t, cf.anaOwedBy.ID, domain.StringValue(cf.betoOwedBy.CounterAccountID))
	assert.Equal(t, "Crédito con beto", cf.anaOwedBy.Name)

	counter := cf.counterOf(t, loan)
	assert.Equal(t, domain.ConceptCreditConstitution, counter.Concept)
	assert.Equal(t, "préstamo", counter.Detail)
	assert.True(t, counter.Automatic)
	assert.True(t, counter.Free)
	assert.Equal(t, loan.ID, domain.StringValue(counter.CounterMovementID))
	assert.Equal(t, cf.anaOwedBy.ID, counter.EntryID())
	assert.Equal(t, cf.betoOwedBy.ID, counter.ExitID())
	assert.Equal(t, loan.Order+1, counter.Order)
	requireDecimal(t, "30", counter.Amount)

	requireDecimal(t, "30", cf.balance(t, cf.anaOwedBy.ID))
	requireDecimal(t, "-30", cf.balance(t, cf.betoOwedBy.ID))

	assert.Equal(t, []string{cf.beto.ID}, cf.debtors(t, cf.ana))
	assert.Empty(t, cf.debtors(t, cf.beto))

	cf.requireConsistent(t)
}

func TestCredit_DeleteLoanRemovesCounterMovement(t *testing.T) {
	cf, loan := newCreditFixture(t)
	counter := cf.counterOf(t, loan)

	require.NoError(t, cf.movements.DeleteMovement(cf.ctx, loan.ID, false))

	_, err := cf.movements.GetMovement(cf.ctx, counter.ID)
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)

	requireDecimal(t, "0", cf.balance(t, cf.anaOwedBy.ID))
	requireDecimal(t, "0", cf.balance(t, cf.betoOwedBy.ID))
	assert.Empty(t, cf.debtors(t, cf.ana))

	cf.requireConsistent(t)
}

func TestCredit_Concepts(t *testing.T) {
	tests := []struct {
		name        string
		amount      string
		fromBeto    bool
		wantConcept string
		wantAnaOwed bool
		wantBetoOwd bool
	}{
		{name: "more lending", amount: "20", wantConcept: domain.ConceptCreditIncrease, wantAnaOwed: true},
		{name: "full repayment", amount: "30", fromBeto: true, wantConcept: domain.ConceptCreditCancellation},
		{name: "partial repayment", amount: "10", fromBeto: true, wantConcept: domain.ConceptCreditPartialPay, wantAnaOwed: true},
		{name: "overpayment", amount: "50", fromBeto: true, wantConcept: domain.ConceptCreditOverpayment, wantBetoOwd: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cf, _ := newCreditFixture(t)

			entry, exit := cf.cajaBeto.ID, cf.cajaAna.ID
			if tt.fromBeto {
				entry, exit = exit, entry
			}
			m := cf.move(t, "pago", tt.amount, entry, exit, "2024-01-20")

			assert.Equal(t, tt.wantConcept, cf.counterOf(t, m).Concept)
			assert.Equal(t, tt.wantAnaOwed, len(cf.debtors(t, cf.ana)) == 1)
			assert.Equal(t, tt.wantBetoOwd, len(cf.debtors(t, cf.beto)) == 1)
			cf.requireConsistent(t)
		})
	}
}

func TestCredit_ModifyLoan(t *testing.T) {
	t.Run("amount change regenerates the counter-movement", func(t *testing.T) {
		cf, loan := newCreditFixture(t)
		before := cf.counterOf(t, loan)

		_, err := cf.movements.ModifyMovement(cf.ctx, loan.ID, usecase.ModifyMovementInput{Amount: decPtr("45")})
		require.NoError(t, err)

		after := cf.counterOf(t, loan)
		assert.NotEqual(t, before.ID, after.ID)
		assert.Equal(t, domain.ConceptCreditConstitution, after.Concept)
		requireDecimal(t, "45", cf.balance(t, cf.anaOwedBy.ID))
		cf.requireConsistent(t)
	})

	t.Run("concept change keeps the counter-movement", func(t *testing.T) {
		cf, loan := newCreditFixture(t)
		before := cf.counterOf(t, loan)

		concept := "préstamo para alquiler"
		_, err := cf.movements.ModifyMovement(cf.ctx, loan.ID, usecase.ModifyMovementInput{Concept: &concept})
		require.NoError(t, err)

		assert.Equal(t, before.ID, cf.counterOf(t, loan).ID)
	})

	t.Run("same holder drops the counter-movement", func(t *testing.T) {
		cf, loan := newCreditFixture(t)
		other := cf.account(t, "banco-ana", ownedBy(cf.ana))
		counter := cf.counterOf(t, loan)

		modified, err := cf.movements.ModifyMovement(cf.ctx, loan.ID, usecase.ModifyMovementInput{EntryAccountID: &other.ID})
		require.NoError(t, err)
		assert.Nil(t, modified.CounterMovementID)

		stored, err := cf.movements.GetMovement(cf.ctx, loan.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.CounterMovementID)

		_, err = cf.movements.GetMovement(cf.ctx, counter.ID)
		assert.ErrorIs(t, err, domain.ErrMovementNotFound)
		assert.Empty(t, cf.debtors(t, cf.ana))
		cf.requireConsistent(t)
	})

	t.Run("free movements carry no debt", func(t *testing.T) {
		cf, loan := newCreditFixture(t)

		free := true
		modified, err := cf.movements.ModifyMovement(cf.ctx, loan.ID, usecase.ModifyMovementInput{Free: &free})
		require.NoError(t, err)
		assert.Nil(t, modified.CounterMovementID)
		requireDecimal(t, "0", cf.balance(t, cf.anaOwedBy.ID))
		cf.requireConsistent(t)
	})
}

func TestCredit_FreeTransferHasNoCounterMovement(t *testing.T) {
	f := newFixture(t)
	ana := f.holder(t, "ana")
	beto := f.holder(t, "beto")
	a := f.account(t, "caja-ana", ownedBy(ana))
	b := f.account(t, "caja-beto", ownedBy(beto))

	m, err := f.movements.CreateMovement(f.ctx, usecase.CreateMovementInput{
		Concept:        "regalo",
		Amount:         dec("30"),
		EntryAccountID: b.ID,
		ExitAccountID:  a.ID,
		Date:           dayPtr("2024-01-10"),
		Free:           true,
	})
	require.NoError(t, err)
	assert.Nil(t, m.CounterMovementID)

	_, err = f.accounts.GetAccountByKey(f.ctx, domain.CreditAccountKey("ana", "beto"))
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestCredit_CreditAccountsOnlyMoveAgainstTheirCounter(t *testing.T) {
	cf, _ := newCreditFixture(t)

	_, err := cf.movements.CreateMovement(cf.ctx, usecase.CreateMovementInput{
		Concept:        "x",
		Amount:         dec("5"),
		EntryAccountID: cf.anaOwedBy.ID,
		ExitAccountID:  cf.cajaAna.ID,
		Date:           dayPtr("2024-01-11"),
	})
	assert.ErrorIs(t, err, domain.ErrCreditAccountMismatch)

	_, err = cf.movements.CreateMovement(cf.ctx, usecase.CreateMovementInput{
		Concept:        "x",
		Amount:         dec("5"),
		EntryAccountID: cf.anaOwedBy.ID,
		Date:           dayPtr("2024-01-11"),
	})
	assert.ErrorIs(t, err, domain.ErrCreditAccountMismatch)
}

func TestCredit_CreditAccountsCannotBeSplit(t *testing.T) {
	cf, _ := newCreditFixture(t)

	_, err := cf.accounts.SplitAccount(cf.ctx, cf.anaOwedBy.ID, []domain.SubaccountSpec{{Name: "x", Key: "x"}}, nil)
	assert.ErrorIs(t, err, domain.ErrCreditAccountSplit)
}

func TestCredit_OrdersStayDenseWhenCounterMovementIsReplaced(t *testing.T) {
	second := 1

	t.Run("loan made free", func(t *testing.T) {
		cf, loan := newCreditFixture(t)

		_, err := cf.movements.ModifyMovement(cf.ctx, loan.ID, usecase.ModifyMovementInput{Order: &second})
		require.NoError(t, err)
		assert.Equal(t, 0, cf.counterOf(t, loan).Order)

		free := true
		modified, err := cf.movements.ModifyMovement(cf.ctx, loan.ID, usecase.ModifyMovementInput{Free: &free})
		require.NoError(t, err)
		assert.Nil(t, modified.CounterMovementID)
		assert.Equal(t, 0, modified.Order)

		other := cf.move(t, "otro", "5", cf.cajaAna.ID, "", "2024-01-10")
		assert.Equal(t, 1, other.Order)

		cf.requireDenseOrders(t, "2024-01-10")
		assert.Empty(t, cf.debtors(t, cf.ana))
		cf.requireConsistent(t)
	})

	t.Run("loan amount changed", func(t *testing.T) {
		cf, loan := newCreditFixture(t)

		_, err := cf.movements.ModifyMovement(cf.ctx, loan.ID, usecase.ModifyMovementInput{Order: &second})
		require.NoError(t, err)

		modified, err := cf.movements.ModifyMovement(cf.ctx, loan.ID, usecase.ModifyMovementInput{Amount: decPtr("40")})
		require.NoError(t, err)
		assert.Equal(t, 0, modified.Order)

		counter := cf.counterOf(t, loan)
		assert.Equal(t, 1, counter.Order)
		requireDecimal(t, "40", counter.Amount)

		cf.move(t, "otro", "5", cf.cajaAna.ID, "", "2024-01-10")

		cf.requireDenseOrders(t, "2024-01-10")
		requireDecimal(t, "40", cf.balance(t, cf.anaOwedBy.ID))
		cf.requireConsistent(t)
	})
}

func TestCredit_ForceDeletingCounterMovementClearsDebtors(t *testing.T) {
	cf, loan := newCreditFixture(t)
	require.Equal(t, []string{cf.beto.ID}, cf.debtors(t, cf.ana))

	counter := cf.counterOf(t, loan)
	require.ErrorIs(t, cf.movements.DeleteMovement(cf.ctx, counter.ID, false), domain.ErrAutomaticMovement)
	require.NoError(t, cf.movements.DeleteMovement(cf.ctx, counter.ID, true))

	original, err := cf.movements.GetMovement(cf.ctx, loan.ID)
	require.NoError(t, err)
	assert.Nil(t, original.CounterMovementID)

	requireDecimal(t, "0", cf.balance(t, cf.anaOwedBy.ID))
	assert.Empty(t, cf.debtors(t, cf.ana))
	assert.Empty(t, cf.debtors(t, cf.beto))
}
