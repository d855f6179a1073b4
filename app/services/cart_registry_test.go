package services

import (
	"context"
	"testing"
	"time"

	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/Rakhulsr/go-bookstore/app/repositories"
	"github.com/Rakhulsr/go-bookstore/app/utils/debounce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(remote *fakeRemote) (*CartRegistry, *repositories.MemoryStorage, *[]*debounce.ManualScheduler) {
	storage := repositories.NewMemoryStorage()
	var scheds []*debounce.ManualScheduler
	reg := NewCartRegistry(RegistryOptions{
		Storage: storage,
		Remote:  remote,
		NewScheduler: func() debounce.Scheduler {
			m := debounce.NewManualScheduler()
			scheds = append(scheds, m)
			return m
		},
	})
	return reg, storage, &scheds
}

func TestRegistry_OneStorePerBrowser(t *testing.T) {
	ctx := context.Background()
	reg, _, _ := newTestRegistry(newFakeRemote())

	a := reg.Get(ctx, "browser-a", guest)
	require.NoError(t, a.AddItem(ctx, product("p", 1), 1))

	assert.Same(t, a, reg.Get(ctx, "browser-a", guest))
	b := reg.Get(ctx, "browser-b", guest)
	assert.NotSame(t, a, b)
	assert.Empty(t, b.Items())
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_ReconcilesIdentityOnGet(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.seed("x", line("srv", 1, 2))
	reg, _, _ := newTestRegistry(remote)

	s := reg.Get(ctx, "browser-a", guest)
	require.NoError(t, s.AddItem(ctx, product("g", 1), 1))

	s = reg.Get(ctx, "browser-a", userX)
	assert.Equal(t, userX, s.Identity())
	assert.ElementsMatch(t, []models.CartItem{line("srv", 1, 2), line("g", 1, 1)}, s.Items())
}

func TestRegistry_NewSignedInStoreRefreshes(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.seed("x", line("srv", 1, 2))
	reg, _, _ := newTestRegistry(remote)

	s := reg.Get(ctx, "browser-a", userX)
	assert.Equal(t, []models.CartItem{line("srv", 1, 2)}, s.Items())
}

func TestRegistry_SessionsDoNotShareSlots(t *testing.T) {
	ctx := context.Background()
	reg, storage, _ := newTestRegistry(newFakeRemote())

	require.NoError(t, reg.Get(ctx, "a", guest).AddItem(ctx, product("p", 1), 1))
	require.NoError(t, reg.Get(ctx, "b", guest).AddItem(ctx, product("q", 1), 1))

	assert.ElementsMatch(t, []string{"session:a:cartItems_guest", "session:b:cartItems_guest"}, storage.Keys())
}

func TestRegistry_FlushAllAndSweep(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	reg, _, scheds := newTestRegistry(remote)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return clock }

	require.NoError(t, reg.Get(ctx, "a", userX).AddItem(ctx, product("p", 1), 1))
	require.NoError(t, reg.Get(ctx, "b", userY).AddItem(ctx, product("q", 1), 1))
	require.Len(t, *scheds, 2)

	reg.FlushAll(ctx)
	assert.Len(t, remote.ops("create"), 2)
	for _, m := range *scheds {
		assert.False(t, m.Pending())
	}

	clock = clock.Add(time.Hour)
	reg.Get(ctx, "b", userY)
	assert.Equal(t, 1, reg.Sweep(ctx, 30*time.Minute))
	assert.Equal(t, 1, reg.Len())

	again := reg.Get(ctx, "a", userX)
	assert.Equal(t, []models.CartItem{line("p", 1, 1)}, again.Items(), "state reloads from durable storage")
}
