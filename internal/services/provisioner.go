// Package services provides the ledger operations used by the HTTP adapter
// and the command line entry points.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"saldo/internal/cache"
	"saldo/internal/core"
	"saldo/internal/storage"
)

const (
	ownerCacheSize   = 16
	ownerCacheTTL    = 24 * time.Hour
	provisionTimeout = 10 * time.Second
)

// Provisioner resolves the owner record for a natural key, creating it on
// first use. Concurrent first uses converge on a single owner.
type Provisioner struct {
	store storage.OwnerStore
	cache *cache.LRUCache[core.Owner]
	group singleflight.Group
}

func NewProvisioner(store storage.OwnerStore) *Provisioner {
	return &Provisioner{
		store: store,
		cache: cache.NewLRUCache[core.Owner](ownerCacheSize, ownerCacheTTL),
	}
}

// Cache exposes the owner cache so it can be registered for expiry cleanup.
func (p *Provisioner) Cache() *cache.LRUCache[core.Owner] {
	return p.cache
}

// EnsureOwner returns the owner identified by email, creating it if needed.
func (p *Provisioner) EnsureOwner(ctx context.Context, email string) (core.Owner, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return core.Owner{}, fmt.Errorf("%w: owner email is empty", core.ErrInvalidInput)
	}

	if o, ok := p.cache.Get(email); ok {
		return o, nil
	}

	// The shared call outlives any single caller; each caller still stops
	// waiting when its own context ends.
	ch := p.group.DoChan(email, func() (any, error) {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), provisionTimeout)
		defer cancel()
		o, err := p.provision(pctx, email)
		if err != nil {
			return nil, err
		}
		p.cache.Set(email, o)
		return o, nil
	})

	select {
	case <-ctx.Done():
		return core.Owner{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return core.Owner{}, res.Err
		}
		return res.Val.(core.Owner), nil
	}
}

func (p *Provisioner) provision(ctx context.Context, email string) (core.Owner, error) {
	o, err := p.store.FindOwnerByEmail(ctx, email)
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return core.Owner{}, fmt.Errorf("find owner: %w", err)
	}

	o = core.Owner{ID: uuid.NewString(), Email: email}
	insertErr := p.store.InsertOwner(ctx, o)
	if insertErr == nil {
		slog.InfoContext(ctx, "Owner provisioned", "owner_id", o.ID)
		return o, nil
	}
	if !errors.Is(insertErr, storage.ErrDuplicateKey) {
		return core.Owner{}, fmt.Errorf("create owner: %w", insertErr)
	}

	// another writer won the race; its row is the owner
	existing, err := p.store.FindOwnerByEmail(ctx, email)
	if err != nil {
		slog.ErrorContext(ctx, "Owner missing after duplicate insert", "error", err)
		return core.Owner{}, fmt.Errorf("create owner: %w", insertErr)
	}
	slog.DebugContext(ctx, "Owner created concurrently, using existing row", "owner_id", existing.ID)
	return existing, nil
}
