package usecase

// ServiceOptions holds the ledger-wide settings of the use cases.
type ServiceOptions struct {
	// DefaultCurrency is the currency of accounts created without one and
	// the reference currency of holder capital.
	DefaultCurrency string
	Holder          HolderDefaults
	// QuoteCache is optional.
	QuoteCache Cache
}

// Services bundles every use case sharing one set of dependencies.
type Services struct {
	Ledger         *BalanceLedger
	Currencies     *CurrencyUseCase
	Movements      *MovementUseCase
	Accounts       *AccountUseCase
	Holders        *HolderUseCase
	Reconciliation *ReconciliationUseCase
	Consistency    *LedgerUseCase
}

// NewServices wires the use cases together.
func NewServices(deps Deps, opts ServiceOptions) *Services {
	s := &Services{}
	s.Ledger = NewBalanceLedger(deps)
	s.Currencies = NewCurrencyUseCase(deps, opts.QuoteCache, opts.DefaultCurrency)
	s.Movements = NewMovementUseCase(deps, s.Ledger, s.Currencies)
	s.Accounts = NewAccountUseCase(deps, s.Ledger, s.Movements, s.Currencies, opts.Holder)
	s.Holders = NewHolderUseCase(deps, s.Accounts, s.Currencies, opts.Holder)
	s.Reconciliation = NewReconciliationUseCase(deps, s.Ledger)
	s.Consistency = NewLedgerUseCase(s.Reconciliation)
	return s
}
