package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/Rakhulsr/go-bookstore/app/repositories"
	"github.com/Rakhulsr/go-bookstore/app/utils/calc"
	"github.com/Rakhulsr/go-bookstore/app/utils/debounce"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const DefaultSyncDebounce = time.Second

type StoreOptions struct {
	Slots     *repositories.SlotRepository
	Remote    RemoteCartClient
	Scheduler debounce.Scheduler
	// Fetches coalesces concurrent remote cart reads per identity. It may be
	// shared between stores.
	Fetches  *singleflight.Group
	Validate *validator.Validate
	Debounce time.Duration
}

// CartStore is the cart of one browser session: the line items of the current
// identity plus the promotion and address book that go with them. Every
// command is applied under mu, in the order it arrives.
type CartStore struct {
	// syncMu serializes remote pushes and identity changes. It is always taken
	// before mu.
	syncMu sync.Mutex
	mu     sync.Mutex

	slots     *repositories.SlotRepository
	remote    RemoteCartClient
	scheduler debounce.Scheduler
	fetches   *singleflight.Group
	validate  *validator.Validate
	debounce  time.Duration

	identity  models.Identity
	items     []models.CartItem
	promotion *models.Promotion
	addresses []models.DeliveryAddress
	selected  string
	cleared   bool

	remoteState remoteState
	// dirty is set while local changes have not been handed to a push yet.
	dirty bool
	// epoch changes on every identity change; work captured under an older
	// epoch is discarded.
	epoch uint64
}

// CartSnapshot is a consistent read of the whole store.
type CartSnapshot struct {
	Identity        models.Identity          `json:"identity"`
	Items           []models.CartItem        `json:"items"`
	Promotion       *models.Promotion        `json:"appliedPromotion"`
	Summary         models.PriceSummary      `json:"summary"`
	Addresses       []models.DeliveryAddress `json:"deliveryAddresses"`
	SelectedAddress *models.DeliveryAddress  `json:"selectedAddress"`
	Cleared         bool                     `json:"isCartCleared"`
}

// NewCartStore loads the durable state of identity. It does not talk to the
// remote cart; call Refresh for that.
func NewCartStore(ctx context.Context, opts StoreOptions, identity models.Identity) *CartStore {
	if opts.Scheduler == nil {
		opts.Scheduler = debounce.NewTimerScheduler()
	}
	if opts.Fetches == nil {
		opts.Fetches = &singleflight.Group{}
	}
	if opts.Validate == nil {
		opts.Validate = validator.New()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultSyncDebounce
	}

	s := &CartStore{
		slots:     opts.Slots,
		remote:    opts.Remote,
		scheduler: opts.Scheduler,
		fetches:   opts.Fetches,
		validate:  opts.Validate,
		debounce:  opts.Debounce,
		identity:  identity,
	}

	s.items = s.loadCart(ctx, identity.Key())
	s.cleared = s.loadCleared(ctx, identity.Key())
	s.loadAddressBook(ctx, identity.Key())

	promo, err := s.slots.LoadPromotion(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("NewCartStore: loading applied promotion")
	}
	s.promotion = promo

	return s
}

func (s *CartStore) Identity() models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

func (s *CartStore) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

func (s *CartStore) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return calc.CountItems(s.items)
}

func (s *CartStore) Quote() models.PriceSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return calc.Quote(s.items, s.promotion)
}

func (s *CartStore) Snapshot() CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return CartSnapshot{
		Identity:        s.identity,
		Items:           append([]models.CartItem{}, s.items...),
		Promotion:       clonePromotion(s.promotion),
		Summary:         calc.Quote(s.items, s.promotion),
		Addresses:       append([]models.DeliveryAddress{}, s.addresses...),
		SelectedAddress: s.selectedAddressLocked(),
		Cleared:         s.cleared,
	}
}

// AddItem adds quantity of product, merging into an existing line of the
// same product. It also lifts the cleared flag.
func (s *CartStore) AddItem(ctx context.Context, product models.ProductRef, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if err := s.validate.Struct(&product); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexOf(s.items, product.ID); i >= 0 {
		s.items[i].Quantity += quantity
	} else {
		s.items = append(s.items, models.CartItem{Product: product, Quantity: quantity})
	}

	if s.cleared {
		s.cleared = false
		s.saveCleared(ctx)
	}
	s.commitLocked(ctx)
	return nil
}

func (s *CartStore) RemoveItem(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(ctx, productID)
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero or
// less removes it; an unknown product is ignored.
func (s *CartStore) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(ctx, productID)
		return
	}
	i := indexOf(s.items, productID)
	if i < 0 || s.items[i].Quantity == quantity {
		return
	}
	s.items[i].Quantity = quantity
	s.commitLocked(ctx)
}

// Clear empties the cart and drops the promotion. Until the next AddItem a
// late remote fetch will not repopulate it.
func (s *CartStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.setPromotionLocked(ctx, nil)
	s.cleared = true
	s.saveCleared(ctx)
	s.commitLocked(ctx)
}

func (s *CartStore) removeLocked(ctx context.Context, productID string) {
	i := indexOf(s.items, productID)
	if i < 0 {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.commitLocked(ctx)
}

// commitLocked persists the items and schedules a remote push.
func (s *CartStore) commitLocked(ctx context.Context) {
	s.saveCart(ctx)
	s.schedulePushLocked()
}

// SetIdentity reconciles the cart with an identity change reported by the
// auth collaborator. Nothing happens when the identity key is unchanged.
func (s *CartStore) SetIdentity(ctx context.Context, next models.Identity) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.identity
	if prev.Key() == next.Key() {
		s.identity = next
		return
	}

	// a timer that already fired is waiting on syncMu and will find the
	// epoch moved on, so dirty covers it as well
	pending := s.scheduler.Cancel()
	if (pending || s.dirty) && !prev.IsGuest() {
		s.pushRemote(ctx, prev, cloneItems(s.items), s.remoteState)
	}
	s.dirty = false
	s.saveCart(ctx)
	s.epoch++
	s.remoteState = remoteUnknown
	s.setPromotionLocked(ctx, nil)
	if err := s.slots.RemoveCheckoutDraft(ctx, prev.Key()); err != nil {
		log.Warn().Err(err).Msg("SetIdentity: removing checkout draft")
	}

	switch {
	case prev.IsGuest():
		s.loginLocked(ctx, next)
	case next.IsGuest():
		s.logoutLocked(ctx)
	default:
		s.switchLocked(ctx, next)
	}

	log.Info().Str("from", prev.Key()).Str("to", next.Key()).Int("items", len(s.items)).Msg("SetIdentity: cart reconciled")
}

// loginLocked merges the server cart of next with the guest cart. A cleared
// flag left from an earlier session of next is dropped; the server cart is
// the newer truth by then.
func (s *CartStore) loginLocked(ctx context.Context, next models.Identity) {
	guestItems := cloneItems(s.items)

	var serverItems []models.CartItem
	rc, fetched := s.fetchForReconcile(ctx, next)
	if fetched {
		serverItems = rc.Items
	}

	s.identity = next
	s.items = mergeItems(serverItems, guestItems)
	s.cleared = false
	s.saveCleared(ctx)
	s.loadAddressBook(ctx, next.Key())

	if err := s.slots.RemoveCart(ctx, ""); err != nil {
		log.Warn().Err(err).Msg("SetIdentity: erasing guest cart")
	}
	s.saveCart(ctx)
	// an empty push after a failed fetch would wipe the server cart
	if fetched || len(s.items) > 0 {
		s.schedulePushLocked()
	}
}

func (s *CartStore) logoutLocked(ctx context.Context) {
	s.identity = models.Identity{}
	s.items = nil
	s.cleared = false
	s.loadAddressBook(ctx, "")
	s.saveCart(ctx)
}

// switchLocked restores the local cart of next. An empty one adopts the
// server cart; a non-empty one is pushed. Like login, a stale cleared flag of
// next is dropped.
func (s *CartStore) switchLocked(ctx context.Context, next models.Identity) {
	s.identity = next
	s.items = s.loadCart(ctx, next.Key())
	s.cleared = false
	s.saveCleared(ctx)
	s.loadAddressBook(ctx, next.Key())

	rc, ok := s.fetchForReconcile(ctx, next)
	if ok && rc.Exists && len(s.items) == 0 {
		s.items = cloneItems(rc.Items)
		s.saveCart(ctx)
		return
	}
	if len(s.items) > 0 {
		s.schedulePushLocked()
	}
}

// fetchForReconcile reads the remote cart of identity and records whether it
// exists. ok is false when the fetch failed.
func (s *CartStore) fetchForReconcile(ctx context.Context, identity models.Identity) (RemoteCart, bool) {
	rc, err := s.fetchRemote(ctx, identity)
	if err != nil {
		log.Warn().Err(err).Str("identity", identity.Key()).Str("op", "fetch").Msg("remote cart sync failed")
		return RemoteCart{}, false
	}
	s.remoteState = stateOf(rc)
	return rc, true
}

// CompleteCheckout purges the cart once an order is confirmed and pushes the
// empty cart to the server right away.
func (s *CartStore) CompleteCheckout(ctx context.Context) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	s.mu.Lock()
	s.scheduler.Cancel()
	s.dirty = false
	s.items = nil
	s.setPromotionLocked(ctx, nil)
	s.cleared = true
	s.saveCleared(ctx)
	s.selected = ""

	key := s.identity.Key()
	if err := s.slots.RemoveCart(ctx, key); err != nil {
		log.Warn().Err(err).Msg("CompleteCheckout: removing cart slot")
	}
	if err := s.slots.RemoveSelectedAddress(ctx, key); err != nil {
		log.Warn().Err(err).Msg("CompleteCheckout: removing selected address")
	}
	if err := s.slots.RemoveCheckoutDraft(ctx, key); err != nil {
		log.Warn().Err(err).Msg("CompleteCheckout: removing checkout draft")
	}

	identity, state, epoch := s.identity, s.remoteState, s.epoch
	s.mu.Unlock()

	if identity.IsGuest() {
		return
	}
	s.finishPush(epoch, s.pushRemote(ctx, identity, nil, state))
}

// SaveCheckoutDraft stores draft for the current identity. It fails with
// ErrCheckoutOwnerChanged when draft was prepared for someone else.
func (s *CartStore) SaveCheckoutDraft(ctx context.Context, draft models.CheckoutDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.identity.Key()
	if draft.Owner != key {
		return ErrCheckoutOwnerChanged
	}
	return s.slots.SaveCheckoutDraft(ctx, key, draft)
}

// CheckoutDraft returns the draft of the current identity, nil when no
// checkout is in progress.
func (s *CartStore) CheckoutDraft(ctx context.Context) (*models.CheckoutDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.identity.Key()
	draft, err := s.slots.LoadCheckoutDraft(ctx, key)
	if err != nil || draft == nil {
		return nil, err
	}
	if draft.Owner != key {
		log.Warn().Str("identity", key).Str("owner", draft.Owner).Msg("CheckoutDraft: ignoring draft of another identity")
		return nil, nil
	}
	return draft, nil
}

func (s *CartStore) loadCart(ctx context.Context, key string) []models.CartItem {
	items, _, err := s.slots.LoadCart(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("identity", key).Msg("loadCart: reading cart slot")
	}
	return items
}

func (s *CartStore) loadCleared(ctx context.Context, key string) bool {
	cleared, err := s.slots.LoadCleared(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("identity", key).Msg("loadCleared: reading cleared flag")
	}
	return cleared
}

func (s *CartStore) saveCart(ctx context.Context) {
	if err := s.slots.SaveCart(ctx, s.identity.Key(), s.items); err != nil {
		log.Warn().Err(err).Str("identity", s.identity.Key()).Msg("saveCart: writing cart slot")
	}
}

func (s *CartStore) saveCleared(ctx context.Context) {
	if err := s.slots.SaveCleared(ctx, s.identity.Key(), s.cleared); err != nil {
		log.Warn().Err(err).Str("identity", s.identity.Key()).Msg("saveCleared: writing cleared flag")
	}
}

func indexOf(items []models.CartItem, productID string) int {
	for i := range items {
		if items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// mergeItems sums quantities per product, keeping the order in which products
// first appear in base and then extra.
func mergeItems(base, extra []models.CartItem) []models.CartItem {
	merged := make([]models.CartItem, 0, len(base)+len(extra))
	for _, list := range [][]models.CartItem{base, extra} {
		for _, item := range list {
			if i := indexOf(merged, item.Product.ID); i >= 0 {
				merged[i].Quantity += item.Quantity
				continue
			}
			merged = append(merged, item)
		}
	}
	return merged
}

func cloneItems(items []models.CartItem) []models.CartItem {
	if items == nil {
		return nil
	}
	return append([]models.CartItem(nil), items...)
}

func clonePromotion(p *models.Promotion) *models.Promotion {
	if p == nil {
		return nil
	}
	c := *p
	if p.MaxDiscount != nil {
		v := *p.MaxDiscount
		c.MaxDiscount = &v
	}
	return &c
}
