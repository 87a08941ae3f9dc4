package domain

import "errors"

// Error kinds. Every sentinel below unwraps to exactly one of them.
var (
	ErrValidation   = errors.New("validation error")
	ErrPrecondition = errors.New("precondition failed")
	ErrNotFound     = errors.New("not found")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func validationError(msg string) error   { return &kindError{kind: ErrValidation, msg: msg} }
func preconditionError(msg string) error { return &kindError{kind: ErrPrecondition, msg: msg} }
func notFoundError(msg string) error     { return &kindError{kind: ErrNotFound, msg: msg} }

var (
	// Movement errors
	ErrMissingAccounts          = validationError("movement needs an entry or an exit account")
	ErrSameAccount              = validationError("entry and exit accounts must differ")
	ErrInvalidAmount            = validationError("amount must be positive")
	ErrCurrencyMismatch         = validationError("movement currency must match one of its accounts")
	ErrCumulativeAccount        = validationError("cumulative accounts cannot receive movements")
	ErrAutomaticMovement        = validationError("automatic movements cannot be changed directly")
	ErrCumulativeAmountChange   = validationError("cannot change the amount of a movement of a cumulative account")
	ErrCumulativeAccountRemoved = validationError("cannot replace the cumulative account of a movement")
	ErrDateAfterConversion      = validationError("movement date is after the account conversion date")
	ErrCreditAccountMismatch    = validationError("credit accounts only move against their counter account")
	ErrInvalidConcept           = validationError("concept cannot be empty")

	// Account errors
	ErrInvalidAccountName  = validationError("invalid account name")
	ErrInvalidKey          = validationError("invalid account key")
	ErrDuplicateKey        = validationError("key already in use")
	ErrParentNotCumulative = validationError("parent account must be cumulative")
	ErrImmutableHolder     = validationError("account holder cannot change")
	ErrImmutableParent     = validationError("account parent cannot change")
	ErrCircularHierarchy   = validationError("circular account hierarchy")
	ErrAlreadyCumulative   = validationError("account is already cumulative")
	ErrCreditAccountSplit  = validationError("credit accounts cannot be split")

	// Split errors
	ErrNoSubaccounts           = validationError("split needs at least one subaccount")
	ErrInvalidSubaccountSpec   = validationError("invalid subaccount spec")
	ErrSplitAmbiguousBalance   = validationError("only one subaccount may omit its balance")
	ErrSplitSumMismatch        = validationError("subaccount balances do not add up to the account balance")
	ErrSplitBeforeLastMovement = validationError("split date is before the last movement of the account")

	// Currency errors
	ErrInvalidCurrency = validationError("invalid currency code")
	ErrInvalidQuote    = validationError("quotes must be positive")

	// Precondition errors
	ErrNonZeroBalance           = preconditionError("account balance is not zero")
	ErrAccountHasSubaccounts    = preconditionError("account still has subaccounts")
	ErrAccountHasMovements      = preconditionError("account still has movements")
	ErrCumulativeMovementDelete = preconditionError("cannot delete a movement of a cumulative account")
	ErrInconsistentLedger       = preconditionError("account balance does not match its movements")
	ErrHolderHasCapital         = preconditionError("holder capital is not zero")

	// Not found errors
	ErrAccountNotFound  = notFoundError("account not found")
	ErrHolderNotFound   = notFoundError("holder not found")
	ErrMovementNotFound = notFoundError("movement not found")
	ErrCurrencyNotFound = notFoundError("currency not found")
	ErrQuoteNotFound    = notFoundError("quote not found")
	ErrBalanceNotFound  = notFoundError("balance not found")
)

// KindOf returns the name of the kind of err: "validation", "precondition",
// "not_found" or "internal".
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrPrecondition):
		return "precondition"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
