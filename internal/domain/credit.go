package domain

import (
	"github.com/shopspring/decimal"
)

// Concepts of counter-movements.
const (
	ConceptCreditIncrease     = "Aumento de crédito"
	ConceptCreditCancellation = "Cancelación de crédito"
	ConceptCreditOverpayment  = "Pago en exceso de crédito"
	ConceptCreditPartialPay   = "Pago a cuenta de crédito"
	ConceptCreditConstitution = "Constitución de crédito"
)

// creditKeyPrefix marks keys reserved for credit accounts.
const creditKeyPrefix = "_"

// CreditAccountKey is the key of the account, owned by the creditor, that
// tracks what debtor owes it.
func CreditAccountKey(creditorKey, debtorKey string) string {
	return creditKeyPrefix + creditorKey + "-" + debtorKey
}

// CreditAccountName is the display name of a credit account owned by a
// holder and kept against other.
func CreditAccountName(other *Holder) string {
	return "Crédito con " + other.Name
}

// CreditConcept picks the concept of a counter-movement from the creditor
// mirror balance before the transfer and the transferred amount.
func CreditConcept(previous, amount decimal.Decimal) string {
	switch {
	case previous.IsPositive():
		return ConceptCreditIncrease
	case previous.IsZero():
		return ConceptCreditConstitution
	}
	owed := previous.Neg()
	switch amount.Cmp(owed) {
	case 0:
		return ConceptCreditCancellation
	case 1:
		return ConceptCreditOverpayment
	default:
		return ConceptCreditPartialPay
	}
}

// DebtorRelation tells who owes whom given the creditor mirror balance of
// the pair (creditor, debtor): creditorOwed when debtor owes creditor,
// debtorOwed when the roles are inverted, neither when the debt is settled.
func DebtorRelation(creditorBalance decimal.Decimal) (creditorOwed, debtorOwed bool) {
	return creditorBalance.IsPositive(), creditorBalance.IsNegative()
}
