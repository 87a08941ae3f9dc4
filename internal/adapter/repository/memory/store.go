// Package memory implements the persistence ports in process memory.
// Transactions work on a private copy of the data that replaces the
// committed copy on commit; writers are serialized.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"

	"github.com/iho/cuentas/internal/domain"
	"github.com/iho/cuentas/internal/usecase"
)

// ErrTxClosed is returned when committing a finished transaction.
var ErrTxClosed = errors.New("transaction already closed")

type state struct {
	accounts   map[string]*domain.Account
	movements  map[string]*domain.Movement
	holders    map[string]*domain.Holder
	currencies map[string]*domain.Currency
	quotes     map[string][]*domain.Quote
	// balances indexes the rows of every account by date.
	balances map[string]*redblacktree.Tree
	// balanceAccounts maps a row ID to its account.
	balanceAccounts map[string]string
}

func newState() *state {
	return &state{
		accounts:        make(map[string]*domain.Account),
		movements:       make(map[string]*domain.Movement),
		holders:         make(map[string]*domain.Holder),
		currencies:      make(map[string]*domain.Currency),
		quotes:          make(map[string][]*domain.Quote),
		balances:        make(map[string]*redblacktree.Tree),
		balanceAccounts: make(map[string]string),
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, a := range s.accounts {
		c.accounts[id] = a.Clone()
	}
	for id, m := range s.movements {
		c.movements[id] = m.Clone()
	}
	for id, h := range s.holders {
		c.holders[id] = h.Clone()
	}
	for code, cur := range s.currencies {
		v := *cur
		c.currencies[code] = &v
	}
	for code, quotes := range s.quotes {
		copied := make([]*domain.Quote, len(quotes))
		for i, q := range quotes {
			v := *q
			copied[i] = &v
		}
		c.quotes[code] = copied
	}
	for accountID, tree := range s.balances {
		copied := newBalanceTree()
		it := tree.Iterator()
		for it.Next() {
			copied.Put(it.Key(), it.Value().(*domain.Balance).Clone())
		}
		c.balances[accountID] = copied
	}
	for id, accountID := range s.balanceAccounts {
		c.balanceAccounts[id] = accountID
	}
	return c
}

func newBalanceTree() *redblacktree.Tree {
	return redblacktree.NewWith(utils.TimeComparator)
}

// Store holds the committed data and implements usecase.TransactionManager.
type Store struct {
	mu        sync.RWMutex
	writers   sync.Mutex
	committed *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{committed: newState()}
}

// Repositories returns the repositories backed by the store.
func (s *Store) Repositories() usecase.Repositories {
	return usecase.Repositories{
		Accounts:   &AccountRepository{store: s},
		Movements:  &MovementRepository{store: s},
		Balances:   &BalanceRepository{store: s},
		Holders:    &HolderRepository{store: s},
		Currencies: &CurrencyRepository{store: s},
	}
}

// Begin starts a new transaction. It blocks while another one is open.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.writers.Lock()

	s.mu.RLock()
	working := s.committed.clone()
	s.mu.RUnlock()

	return &Tx{store: s, state: working}, nil
}

// Tx is a store transaction.
type Tx struct {
	store *Store
	state *state
	done  bool
}

// Commit publishes the transaction's changes.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxClosed
	}
	t.done = true

	t.store.mu.Lock()
	t.store.committed = t.state
	t.store.mu.Unlock()

	t.store.writers.Unlock()

	return nil
}

// Rollback discards the transaction's changes. It is a no-op after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.writers.Unlock()
	return nil
}

// view runs fn against the state seen by tx.
func (s *Store) view(tx usecase.Transaction, fn func(st *state) error) error {
	if t, ok := tx.(*Tx); ok && t != nil {
		return fn(t.state)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(s.committed)
}

// update runs fn against the state written by tx, or against the committed
// state when there is no transaction.
func (s *Store) update(tx usecase.Transaction, fn func(st *state) error) error {
	if t, ok := tx.(*Tx); ok && t != nil {
		if t.done {
			return ErrTxClosed
		}
		return fn(t.state)
	}

	s.writers.Lock()
	defer s.writers.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s.committed)
}
