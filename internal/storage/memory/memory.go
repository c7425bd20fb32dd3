// Package memory is an in-process storage.Store used for local runs and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"saldo/internal/core"
	"saldo/internal/storage"
)

type Store struct {
	mu      sync.Mutex
	owners  map[string]core.Owner // by id
	byEmail map[string]string
	cats    map[string]core.Category
	txs     []core.Transaction
	txIDs   map[string]struct{}
	closed  bool
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		owners:  map[string]core.Owner{},
		byEmail: map[string]string{},
		cats:    map[string]core.Category{},
		txIDs:   map[string]struct{}{},
	}
}

func (s *Store) FindOwnerByEmail(_ context.Context, email string) (core.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return core.Owner{}, storage.ErrNotFound
	}
	return s.owners[id], nil
}

func (s *Store) InsertOwner(_ context.Context, o core.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[o.Email]; ok {
		return fmt.Errorf("insert owner: %w", storage.ErrDuplicateKey)
	}
	if _, ok := s.owners[o.ID]; ok {
		return fmt.Errorf("insert owner: %w", storage.ErrDuplicateKey)
	}
	s.owners[o.ID] = o
	s.byEmail[o.Email] = o.ID
	return nil
}

// ListCategories returns the owner's categories ordered by name.
func (s *Store) ListCategories(_ context.Context, ownerID string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Category{}
	for _, c := range s.cats {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) InsertCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[c.OwnerID]; !ok {
		return fmt.Errorf("insert category: %w", storage.ErrInvalidReference)
	}
	if _, ok := s.cats[c.ID]; ok {
		return fmt.Errorf("insert category: %w", storage.ErrDuplicateKey)
	}
	for _, existing := range s.cats {
		if existing.OwnerID == c.OwnerID && existing.Name == c.Name {
			return fmt.Errorf("insert category: %w", storage.ErrDuplicateKey)
		}
	}
	s.cats[c.ID] = c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cats[id]
	if !ok || c.OwnerID != ownerID {
		return nil
	}
	delete(s.cats, id)
	for i := range s.txs {
		if s.txs[i].OwnerID == ownerID && s.txs[i].CategoryID == id {
			s.txs[i].CategoryID = ""
		}
	}
	return nil
}

// InsertTransactions checks every row before appending any of them.
func (s *Store) InsertTransactions(_ context.Context, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[string]struct{}, len(txs))
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, ok := s.owners[t.OwnerID]; !ok {
			return fmt.Errorf("insert transaction: %w", storage.ErrInvalidReference)
		}
		if t.CategoryID != "" {
			if _, ok := s.cats[t.CategoryID]; !ok {
				return fmt.Errorf("insert transaction: %w", storage.ErrInvalidReference)
			}
		}
		_, seen := batch[t.ID]
		_, stored := s.txIDs[t.ID]
		if seen || stored {
			return fmt.Errorf("insert transaction: %w", storage.ErrDuplicateKey)
		}
		batch[t.ID] = struct{}{}
	}

	for _, t := range txs {
		s.txs = append(s.txs, t)
		s.txIDs[t.ID] = struct{}{}
	}
	return nil
}

// QueryTransactions returns matching rows newest first.
func (s *Store) QueryTransactions(_ context.Context, ownerID string, f core.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Transaction{}
	for _, t := range s.txs {
		if t.OwnerID == ownerID && f.Matches(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.removeLocked(func(t core.Transaction) bool {
		return t.OwnerID == ownerID && t.ID == id
	})
	return n > 0, nil
}

func (s *Store) DeleteTransactionGroup(_ context.Context, ownerID, groupID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if groupID == "" {
		return 0, nil
	}
	return s.removeLocked(func(t core.Transaction) bool {
		return t.OwnerID == ownerID && t.RecurrenceGroupID == groupID
	}), nil
}

func (s *Store) removeLocked(match func(core.Transaction) bool) int64 {
	kept := s.txs[:0]
	var n int64
	for _, t := range s.txs {
		if match(t) {
			delete(s.txIDs, t.ID)
			n++
			continue
		}
		kept = append(kept, t)
	}
	s.txs = kept
	return n
}

func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("memory store closed")
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
