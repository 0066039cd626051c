// Package memory provides in-process implementations of the repository ports for tests and
// local runs without PostgreSQL.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
)

type txCtxKey struct{}

// Store keeps every table in maps. Units of work are serialised and rolled back from a
// snapshot on error.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	accounts     map[string]domain.Account // tenantID|accountID
	accountCodes map[string]string         // tenantID|code -> accountID
	txns         map[string]domain.Transaction
	postingKeys  map[string]string // tenantID|postingKey -> transactionID
	mappings     []domain.AccountMapping
	budgets      map[string]domain.BudgetExecution // tenantID|accountID|year|month
	invoices     map[string]domain.Invoice         // tenantID|invoiceID
	events       map[string]*storedEvent
	eventOrder   []string

	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]domain.Account),
		accountCodes: make(map[string]string),
		txns:         make(map[string]domain.Transaction),
		postingKeys:  make(map[string]string),
		budgets:      make(map[string]domain.BudgetExecution),
		invoices:     make(map[string]domain.Invoice),
		events:       make(map[string]*storedEvent),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the clock used for event scheduling.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Provider exposes the store through the repository ports.
func (s *Store) Provider() *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		TxManager:   s,
		AccountRepo: s,
		LedgerRepo:  s,
		MappingRepo: s,
		BudgetRepo:  s,
		BillingRepo: s,
		EventQueue:  s,
	}
}

var _ portsrepo.TransactionManager = (*Store)(nil)

// WithinTransaction runs fn as one unit of work. Nested calls join the outer one.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txCtxKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txCtxKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	accounts     map[string]domain.Account
	accountCodes map[string]string
	txns         map[string]domain.Transaction
	postingKeys  map[string]string
	mappings     []domain.AccountMapping
	budgets      map[string]domain.BudgetExecution
	eventIDs     map[string]struct{}
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	txns := make(map[string]domain.Transaction, len(s.txns))
	for id, t := range s.txns {
		txns[id] = copyTransaction(t)
	}
	eventIDs := make(map[string]struct{}, len(s.events))
	for id := range s.events {
		eventIDs[id] = struct{}{}
	}
	return snapshot{
		accounts:     maps.Clone(s.accounts),
		accountCodes: maps.Clone(s.accountCodes),
		txns:         txns,
		postingKeys:  maps.Clone(s.postingKeys),
		mappings:     append([]domain.AccountMapping(nil), s.mappings...),
		budgets:      maps.Clone(s.budgets),
		eventIDs:     eventIDs,
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = snap.accounts
	s.accountCodes = snap.accountCodes
	s.txns = snap.txns
	s.postingKeys = snap.postingKeys
	s.mappings = snap.mappings
	s.budgets = snap.budgets
	// only events published by the failed unit of work are dropped
	order := s.eventOrder[:0:0]
	for _, id := range s.eventOrder {
		if _, ok := snap.eventIDs[id]; ok {
			order = append(order, id)
			continue
		}
		delete(s.events, id)
	}
	s.eventOrder = order
}

func tenantKey(tenantID, id string) string {
	return tenantID + "|" + id
}
