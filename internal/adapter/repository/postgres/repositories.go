package postgres

import (
	"github.com/iho/cuentas/internal/infrastructure/postgres/generated"
	"github.com/iho/cuentas/internal/usecase"
)

// NewRepositories wires every repository to db.
func NewRepositories(db generated.DBTX) usecase.Repositories {
	return usecase.Repositories{
		Accounts:   NewAccountRepository(db),
		Movements:  NewMovementRepository(db),
		Balances:   NewBalanceRepository(db),
		Holders:    NewHolderRepository(db),
		Currencies: NewCurrencyRepository(db),
	}
}
