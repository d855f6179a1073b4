package services

import (
	"context"
	"time"

	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/rs/zerolog/log"
)

const pushTimeout = 10 * time.Second

type remoteState int

const (
	remoteUnknown remoteState = iota
	remoteAbsent
	remotePresent
)

func stateOf(rc RemoteCart) remoteState {
	if rc.Exists {
		return remotePresent
	}
	return remoteAbsent
}

func (s *CartStore) fetchRemote(ctx context.Context, identity models.Identity) (RemoteCart, error) {
	v, err, _ := s.fetches.Do(identity.Key(), func() (interface{}, error) {
		return s.remote.GetCart(ctx, identity)
	})
	if err != nil {
		return RemoteCart{}, err
	}
	rc := v.(RemoteCart)
	rc.Items = cloneItems(rc.Items)
	return rc, nil
}

// Refresh fetches the server cart of the current identity and adopts it when
// the local cart is still empty, has not been cleared, and the identity has
// not changed while the fetch was in flight. It reports whether items were
// adopted.
func (s *CartStore) Refresh(ctx context.Context) (bool, error) {
	s.mu.Lock()
	identity, epoch := s.identity, s.epoch
	s.mu.Unlock()

	if identity.IsGuest() {
		return false, nil
	}

	rc, err := s.fetchRemote(ctx, identity)
	if err != nil {
		log.Warn().Err(err).Str("identity", identity.Key()).Str("op", "fetch").Msg("remote cart sync failed")
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return false, nil
	}
	s.remoteState = stateOf(rc)

	if !rc.Exists || len(rc.Items) == 0 || len(s.items) > 0 || s.cleared {
		return false, nil
	}
	s.items = rc.Items
	s.saveCart(ctx)
	return true, nil
}

func (s *CartStore) schedulePushLocked() {
	if s.identity.IsGuest() {
		return
	}
	s.dirty = true
	epoch := s.epoch
	s.scheduler.Schedule(s.debounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		s.runPush(ctx, epoch)
	})
}

// Flush runs a pending push immediately instead of waiting out the debounce
// window.
func (s *CartStore) Flush(ctx context.Context) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	s.mu.Lock()
	pending := s.scheduler.Cancel() || s.dirty
	epoch := s.epoch
	s.mu.Unlock()

	if pending {
		s.pushLocked(ctx, epoch)
	}
}

func (s *CartStore) runPush(ctx context.Context, epoch uint64) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	s.pushLocked(ctx, epoch)
}

// pushLocked sends the current items, provided the identity has not changed
// since epoch. The caller holds syncMu.
func (s *CartStore) pushLocked(ctx context.Context, epoch uint64) {
	s.mu.Lock()
	if epoch != s.epoch || s.identity.IsGuest() {
		s.mu.Unlock()
		return
	}
	identity, items, state := s.identity, cloneItems(s.items), s.remoteState
	s.dirty = false
	s.mu.Unlock()

	s.finishPush(epoch, s.pushRemote(ctx, identity, items, state))
}

func (s *CartStore) finishPush(epoch uint64, state remoteState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch == s.epoch {
		s.remoteState = state
	}
}

// pushRemote writes items to the server cart of identity and returns what is
// now known about that cart. A server cart is only created for a non-empty
// cart; an existing one is replaced wholesale, even by an empty list. It must
// not take mu.
func (s *CartStore) pushRemote(ctx context.Context, identity models.Identity, items []models.CartItem, state remoteState) remoteState {
	logger := log.With().Str("identity", identity.Key()).Int("items", len(items)).Logger()

	if state == remoteUnknown {
		rc, err := s.fetchRemote(ctx, identity)
		if err != nil {
			logger.Warn().Err(err).Str("op", "fetch").Msg("remote cart sync failed")
			return remoteUnknown
		}
		state = stateOf(rc)
	}

	if state == remotePresent {
		if err := s.remote.UpdateCart(ctx, identity, items); err != nil {
			logger.Warn().Err(err).Str("op", "update").Msg("remote cart sync failed")
		} else {
			logger.Debug().Msg("remote cart updated")
		}
		return remotePresent
	}

	if len(items) == 0 {
		return state
	}
	if err := s.remote.CreateCart(ctx, identity, items); err != nil {
		logger.Warn().Err(err).Str("op", "create").Msg("remote cart sync failed")
		return remoteUnknown
	}
	logger.Debug().Msg("remote cart created")
	return remotePresent
}
