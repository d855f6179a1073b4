package services

import (
	"context"
	"fmt"

	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/Rakhulsr/go-bookstore/app/utils/calc"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ApplyPromotion applies promo if the current subtotal reaches its minimum
// order value, replacing any promotion already applied. It reports false and
// changes nothing otherwise.
func (s *CartStore) ApplyPromotion(ctx context.Context, promo models.Promotion) (bool, error) {
	if err := s.validate.Struct(&promo); err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidPromotion, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if calc.CalculateSubtotal(s.items) < promo.MinOrderValue {
		return false, nil
	}
	s.setPromotionLocked(ctx, &promo)
	return true, nil
}

func (s *CartStore) RemovePromotion(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPromotionLocked(ctx, nil)
}

func (s *CartStore) AppliedPromotion() *models.Promotion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePromotion(s.promotion)
}

func (s *CartStore) setPromotionLocked(ctx context.Context, promo *models.Promotion) {
	if promo == nil && s.promotion == nil {
		return
	}
	s.promotion = clonePromotion(promo)
	if err := s.slots.SavePromotion(ctx, s.promotion); err != nil {
		log.Warn().Err(err).Msg("setPromotion: writing promotion slot")
	}
}

func (s *CartStore) Addresses() []models.DeliveryAddress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.DeliveryAddress{}, s.addresses...)
}

// SetAddresses replaces the address book. Entries without an id get one.
func (s *CartStore) SetAddresses(ctx context.Context, addresses []models.DeliveryAddress) ([]models.DeliveryAddress, error) {
	list := make([]models.DeliveryAddress, 0, len(addresses))
	seen := make(map[string]struct{}, len(addresses))
	for _, addr := range addresses {
		if err := s.validate.Struct(&addr); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
		}
		if addr.ID == "" {
			addr.ID = uuid.New().String()
		}
		if _, dup := seen[addr.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidAddress, addr.ID)
		}
		seen[addr.ID] = struct{}{}
		list = append(list, addr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.addresses = list
	s.saveAddresses(ctx)
	return append([]models.DeliveryAddress{}, list...), nil
}

// AddAddress stores addr, replacing the entry with the same id if there is
// one.
func (s *CartStore) AddAddress(ctx context.Context, addr models.DeliveryAddress) (models.DeliveryAddress, error) {
	if err := s.validate.Struct(&addr); err != nil {
		return models.DeliveryAddress{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if addr.ID == "" {
		addr.ID = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i := range s.addresses {
		if s.addresses[i].ID == addr.ID {
			s.addresses[i] = addr
			replaced = true
			break
		}
	}
	if !replaced {
		s.addresses = append(s.addresses, addr)
	}
	s.saveAddresses(ctx)
	return addr, nil
}

// DeleteAddress removes the address and drops the selection if it pointed
// at it.
func (s *CartStore) DeleteAddress(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.addresses {
		if s.addresses[i].ID != id {
			continue
		}
		s.addresses = append(s.addresses[:i], s.addresses[i+1:]...)
		s.saveAddresses(ctx)
		if s.selected == id {
			s.selectLocked(ctx, "")
		}
		return nil
	}
	return ErrAddressNotFound
}

// SelectAddress records id as the selected address. An id that is not in the
// book is kept but resolves to no address.
func (s *CartStore) SelectAddress(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectLocked(ctx, id)
}

// SelectedAddress returns nil when nothing is selected or the selected id no
// longer exists.
func (s *CartStore) SelectedAddress() *models.DeliveryAddress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedAddressLocked()
}

func (s *CartStore) selectedAddressLocked() *models.DeliveryAddress {
	if s.selected == "" {
		return nil
	}
	for i := range s.addresses {
		if s.addresses[i].ID == s.selected {
			addr := s.addresses[i]
			return &addr
		}
	}
	return nil
}

func (s *CartStore) selectLocked(ctx context.Context, id string) {
	s.selected = id
	if err := s.slots.SaveSelectedAddress(ctx, s.identity.Key(), id); err != nil {
		log.Warn().Err(err).Msg("selectAddress: writing selected address")
	}
}

func (s *CartStore) saveAddresses(ctx context.Context) {
	if err := s.slots.SaveAddresses(ctx, s.identity.Key(), s.addresses); err != nil {
		log.Warn().Err(err).Msg("saveAddresses: writing address book")
	}
}

func (s *CartStore) loadAddressBook(ctx context.Context, key string) {
	addresses, err := s.slots.LoadAddresses(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("identity", key).Msg("loadAddressBook: reading address book")
	}
	selected, err := s.slots.LoadSelectedAddress(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("identity", key).Msg("loadAddressBook: reading selected address")
	}
	s.addresses = addresses
	s.selected = selected
}
