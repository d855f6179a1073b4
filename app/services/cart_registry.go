package services

import (
	"context"
	"sync"
	"time"

	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/Rakhulsr/go-bookstore/app/repositories"
	"github.com/Rakhulsr/go-bookstore/app/utils/debounce"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

type RegistryOptions struct {
	Storage      repositories.Storage
	Remote       RemoteCartClient
	Validate     *validator.Validate
	NewScheduler debounce.Factory
	Debounce     time.Duration
}

type registryEntry struct {
	store    *CartStore
	lastSeen time.Time
}

// CartRegistry owns one CartStore per browser session.
type CartRegistry struct {
	opts    RegistryOptions
	fetches singleflight.Group

	mu     sync.Mutex
	stores map[string]*registryEntry
	now    func() time.Time
}

func NewCartRegistry(opts RegistryOptions) *CartRegistry {
	if opts.NewScheduler == nil {
		opts.NewScheduler = debounce.TimerFactory
	}
	if opts.Validate == nil {
		opts.Validate = validator.New()
	}
	return &CartRegistry{
		opts:   opts,
		stores: make(map[string]*registryEntry),
		now:    time.Now,
	}
}

// Get returns the store of browserID reconciled with identity. A store seen
// for the first time is loaded from durable storage and, for a signed-in
// identity, refreshed from the server cart.
func (r *CartRegistry) Get(ctx context.Context, browserID string, identity models.Identity) *CartStore {
	r.mu.Lock()
	entry, ok := r.stores[browserID]
	if ok {
		entry.lastSeen = r.now()
	}
	r.mu.Unlock()

	if ok {
		entry.store.SetIdentity(ctx, identity)
		return entry.store
	}

	store := NewCartStore(ctx, StoreOptions{
		Slots:     repositories.NewSlotRepository(repositories.Scoped(r.opts.Storage, browserID), r.opts.Validate),
		Remote:    r.opts.Remote,
		Scheduler: r.opts.NewScheduler(),
		Fetches:   &r.fetches,
		Validate:  r.opts.Validate,
		Debounce:  r.opts.Debounce,
	}, identity)

	r.mu.Lock()
	if existing, raced := r.stores[browserID]; raced {
		r.mu.Unlock()
		existing.store.SetIdentity(ctx, identity)
		return existing.store
	}
	r.stores[browserID] = &registryEntry{store: store, lastSeen: r.now()}
	r.mu.Unlock()

	if !identity.IsGuest() {
		if _, err := store.Refresh(ctx); err != nil {
			log.Warn().Err(err).Str("browser", browserID).Msg("Get: initial cart refresh failed")
		}
	}
	return store
}

func (r *CartRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Sweep flushes and forgets stores idle for longer than idle. Their state
// stays in durable storage and is reloaded on the next request.
func (r *CartRegistry) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var stale []*CartStore
	for id, entry := range r.stores {
		if entry.lastSeen.Before(cutoff) {
			stale = append(stale, entry.store)
			delete(r.stores, id)
		}
	}
	r.mu.Unlock()

	for _, store := range stale {
		store.Flush(ctx)
	}
	return len(stale)
}

// FlushAll pushes every pending debounced sync, used on shutdown.
func (r *CartRegistry) FlushAll(ctx context.Context) {
	r.mu.Lock()
	stores := make([]*CartStore, 0, len(r.stores))
	for _, entry := range r.stores {
		stores = append(stores, entry.store)
	}
	r.mu.Unlock()

	for _, store := range stores {
		store.Flush(ctx)
	}
	log.Info().Int("stores", len(stores)).Msg("FlushAll: pending cart syncs pushed")
}
