package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

const slotVersion = 1

const (
	cartSlotPrefix     = "cartItems_"
	addressSlotPrefix  = "deliveryAddresses_"
	selectedSlotPrefix = "selectedAddressId_"
	clearedSlotPrefix  = "isCartCleared_"
	promotionSlotKey   = "appliedPromotion"
	checkoutSlotPrefix = "checkoutData_"
	guestSlotSuffix    = "guest"
	userSlotPrefix     = "user_"
)

var errInvalidSlot = errors.New("invalid slot payload")

// envelope is the persisted shape of every slot. Anything that does not decode
// into the current version is treated as absent.
type envelope[T any] struct {
	Version int `json:"version"`
	Data    T   `json:"data"`
}

// SlotRepository reads and writes the typed slots of one browser session.
// Identity-scoped slots take the identity key, empty for guests.
type SlotRepository struct {
	storage  Storage
	validate *validator.Validate
}

func NewSlotRepository(storage Storage, validate *validator.Validate) *SlotRepository {
	return &SlotRepository{storage: storage, validate: validate}
}

func CartSlotKey(identityKey string) string {
	return cartSlotPrefix + slotSuffix(identityKey)
}

// slotSuffix keeps guest and user slots apart even for a user whose key is
// literally "guest".
func slotSuffix(identityKey string) string {
	if identityKey == "" {
		return guestSlotSuffix
	}
	return userSlotPrefix + identityKey
}

func load[T any](ctx context.Context, s Storage, key string, check func(T) error) (T, bool, error) {
	var zero T

	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}

	var env envelope[T]
	if err := json.Unmarshal([]byte(raw), &env); err != nil || env.Version != slotVersion {
		log.Warn().Str("slot", key).Msg("load: discarding unreadable slot")
		return zero, false, nil
	}
	if check != nil {
		if err := check(env.Data); err != nil {
			log.Warn().Str("slot", key).Err(err).Msg("load: discarding invalid slot")
			return zero, false, nil
		}
	}
	return env.Data, true, nil
}

func save[T any](ctx context.Context, s Storage, key string, data T) error {
	raw, err := json.Marshal(envelope[T]{Version: slotVersion, Data: data})
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(raw))
}

func (r *SlotRepository) checkItems(items []models.CartItem) error {
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		if err := r.validate.Struct(&items[i]); err != nil {
			return err
		}
		id := items[i].Product.ID
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate product %s", errInvalidSlot, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// LoadCart returns the cart snapshot of an identity. ok is false when the slot
// is absent or unreadable.
func (r *SlotRepository) LoadCart(ctx context.Context, identityKey string) ([]models.CartItem, bool, error) {
	return load(ctx, r.storage, CartSlotKey(identityKey), r.checkItems)
}

func (r *SlotRepository) SaveCart(ctx context.Context, identityKey string, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}
	return save(ctx, r.storage, CartSlotKey(identityKey), items)
}

func (r *SlotRepository) RemoveCart(ctx context.Context, identityKey string) error {
	return r.storage.Remove(ctx, CartSlotKey(identityKey))
}

func (r *SlotRepository) LoadAddresses(ctx context.Context, identityKey string) ([]models.DeliveryAddress, error) {
	addresses, _, err := load(ctx, r.storage, addressSlotPrefix+slotSuffix(identityKey), func(list []models.DeliveryAddress) error {
		seen := make(map[string]struct{}, len(list))
		for i := range list {
			if list[i].ID == "" {
				return fmt.Errorf("%w: address without id", errInvalidSlot)
			}
			if _, dup := seen[list[i].ID]; dup {
				return fmt.Errorf("%w: duplicate address %s", errInvalidSlot, list[i].ID)
			}
			seen[list[i].ID] = struct{}{}
			if err := r.validate.Struct(&list[i]); err != nil {
				return err
			}
		}
		return nil
	})
	return addresses, err
}

func (r *SlotRepository) SaveAddresses(ctx context.Context, identityKey string, addresses []models.DeliveryAddress) error {
	if addresses == nil {
		addresses = []models.DeliveryAddress{}
	}
	return save(ctx, r.storage, addressSlotPrefix+slotSuffix(identityKey), addresses)
}

func (r *SlotRepository) LoadSelectedAddress(ctx context.Context, identityKey string) (string, error) {
	id, _, err := load[string](ctx, r.storage, selectedSlotPrefix+slotSuffix(identityKey), nil)
	return id, err
}

func (r *SlotRepository) SaveSelectedAddress(ctx context.Context, identityKey, addressID string) error {
	if addressID == "" {
		return r.RemoveSelectedAddress(ctx, identityKey)
	}
	return save(ctx, r.storage, selectedSlotPrefix+slotSuffix(identityKey), addressID)
}

func (r *SlotRepository) RemoveSelectedAddress(ctx context.Context, identityKey string) error {
	return r.storage.Remove(ctx, selectedSlotPrefix+slotSuffix(identityKey))
}

func (r *SlotRepository) LoadCleared(ctx context.Context, identityKey string) (bool, error) {
	cleared, _, err := load[bool](ctx, r.storage, clearedSlotPrefix+slotSuffix(identityKey), nil)
	return cleared, err
}

func (r *SlotRepository) SaveCleared(ctx context.Context, identityKey string, cleared bool) error {
	key := clearedSlotPrefix + slotSuffix(identityKey)
	if !cleared {
		return r.storage.Remove(ctx, key)
	}
	return save(ctx, r.storage, key, true)
}

// LoadPromotion returns nil when no promotion is applied.
func (r *SlotRepository) LoadPromotion(ctx context.Context) (*models.Promotion, error) {
	promo, ok, err := load(ctx, r.storage, promotionSlotKey, func(p models.Promotion) error {
		return r.validate.Struct(&p)
	})
	if err != nil || !ok {
		return nil, err
	}
	return &promo, nil
}

func (r *SlotRepository) SavePromotion(ctx context.Context, promo *models.Promotion) error {
	if promo == nil {
		return r.RemovePromotion(ctx)
	}
	return save(ctx, r.storage, promotionSlotKey, *promo)
}

func (r *SlotRepository) RemovePromotion(ctx context.Context) error {
	return r.storage.Remove(ctx, promotionSlotKey)
}

// LoadCheckoutDraft returns the draft prepared by an identity, nil when there
// is none.
func (r *SlotRepository) LoadCheckoutDraft(ctx context.Context, identityKey string) (*models.CheckoutDraft, error) {
	draft, ok, err := load(ctx, r.storage, checkoutSlotPrefix+slotSuffix(identityKey), func(d models.CheckoutDraft) error {
		if err := r.validate.Struct(&d); err != nil {
			return err
		}
		return r.checkItems(d.Items)
	})
	if err != nil || !ok {
		return nil, err
	}
	return &draft, nil
}

func (r *SlotRepository) SaveCheckoutDraft(ctx context.Context, identityKey string, draft models.CheckoutDraft) error {
	return save(ctx, r.storage, checkoutSlotPrefix+slotSuffix(identityKey), draft)
}

func (r *SlotRepository) RemoveCheckoutDraft(ctx context.Context, identityKey string) error {
	return r.storage.Remove(ctx, checkoutSlotPrefix+slotSuffix(identityKey))
}
