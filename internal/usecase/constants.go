package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultQuoteCacheTTL is how long current quotes stay cached
	DefaultQuoteCacheTTL = 5 * time.Minute

	// reconciliationPageSize bounds account listings of full-ledger checks
	reconciliationPageSize = 10000
)

// farFuture is used to read the latest balance row of an account.
var farFuture = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
