package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/storage"
	"saldo/internal/storage/memory"
)

// failingStore fails every call with err.
type failingStore struct {
	err error
}

var _ storage.Store = (*failingStore)(nil)

func (s *failingStore) FindOwnerByEmail(context.Context, string) (core.Owner, error) {
	return core.Owner{}, s.err
}

func (s *failingStore) InsertOwner(context.Context, core.Owner) error {
	return s.err
}

func (s *failingStore) ListCategories(context.Context, string) ([]core.Category, error) {
	return nil, s.err
}

func (s *failingStore) InsertCategory(context.Context, core.Category) error {
	return s.err
}

func (s *failingStore) DeleteCategory(context.Context, string, string) error {
	return s.err
}

func (s *failingStore) InsertTransactions(context.Context, []core.Transaction) error {
	return s.err
}

func (s *failingStore) QueryTransactions(context.Context, string, core.TransactionFilter) ([]core.Transaction, error) {
	return nil, s.err
}

func (s *failingStore) DeleteTransaction(context.Context, string, string) (bool, error) {
	return false, s.err
}

func (s *failingStore) DeleteTransactionGroup(context.Context, string, string) (int64, error) {
	return 0, s.err
}

func (s *failingStore) Ping(context.Context) error {
	return s.err
}

func (s *failingStore) Close() error {
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []amqp.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type fixture struct {
	store     *memory.Store
	owner     core.Owner
	pub       *recordingPublisher
	cats      *CategoryService
	txs       *TransactionService
	dashboard *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	owner, err := NewProvisioner(store).EnsureOwner(context.Background(), "demo@local")
	require.NoError(t, err)

	pub := &recordingPublisher{}
	return &fixture{
		store:     store,
		owner:     owner,
		pub:       pub,
		cats:      NewCategoryService(store),
		txs:       NewTransactionService(store, pub, 0),
		dashboard: NewDashboardService(store),
	}
}

func (f *fixture) category(t *testing.T, name string) core.Category {
	t.Helper()
	c, err := f.cats.Create(context.Background(), f.owner.ID, name)
	require.NoError(t, err)
	return c
}

func (f *fixture) create(t *testing.T, in core.NewTransaction) []core.Transaction {
	t.Helper()
	rows, err := f.txs.Create(context.Background(), f.owner.ID, in)
	require.NoError(t, err)
	return rows
}

func monthFilter(t *testing.T, month string) core.TransactionFilter {
	t.Helper()
	w, err := core.MonthWindow(month)
	require.NoError(t, err)
	return core.TransactionFilter{Window: w}
}
