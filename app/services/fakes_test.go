package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/Rakhulsr/go-bookstore/app/models/other"
	"github.com/Rakhulsr/go-bookstore/app/repositories"
	"github.com/Rakhulsr/go-bookstore/app/utils/debounce"
	"github.com/go-playground/validator/v10"
)

type remoteCall struct {
	op       string
	identity string
	items    []models.CartItem
}

// fakeRemote is an in-memory stand-in for the /users/cart resource.
type fakeRemote struct {
	mu        sync.RWMutex
	carts     map[string][]models.CartItem
	calls     []remoteCall
	getErr    error
	createErr error
	updateErr error
	// gates blocks GetCart for an identity until the channel is closed;
	// started is signalled once the call is waiting.
	gates   map[string]chan struct{}
	started chan string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		carts:   make(map[string][]models.CartItem),
		gates:   make(map[string]chan struct{}),
		started: make(chan string, 8),
	}
}

func (f *fakeRemote) seed(key string, items ...models.CartItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[key] = append([]models.CartItem{}, items...)
}

func (f *fakeRemote) gate(key string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[key] = ch
	return ch
}

func (f *fakeRemote) GetCart(ctx context.Context, identity models.Identity) (RemoteCart, error) {
	f.mu.Lock()
	f.calls = append(f.calls, remoteCall{op: "get", identity: identity.Key()})
	gate := f.gates[identity.Key()]
	f.mu.Unlock()

	if gate != nil {
		f.started <- identity.Key()
		<-gate
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return RemoteCart{}, f.getErr
	}
	items, ok := f.carts[identity.Key()]
	if !ok {
		return RemoteCart{}, nil
	}
	return RemoteCart{Exists: true, Items: append([]models.CartItem{}, items...)}, nil
}

func (f *fakeRemote) CreateCart(ctx context.Context, identity models.Identity, items []models.CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, remoteCall{op: "create", identity: identity.Key(), items: append([]models.CartItem{}, items...)})
	if f.createErr != nil {
		return f.createErr
	}
	f.carts[identity.Key()] = append([]models.CartItem{}, items...)
	return nil
}

func (f *fakeRemote) UpdateCart(ctx context.Context, identity models.Identity, items []models.CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, remoteCall{op: "update", identity: identity.Key(), items: append([]models.CartItem{}, items...)})
	if f.updateErr != nil {
		return f.updateErr
	}
	f.carts[identity.Key()] = append([]models.CartItem{}, items...)
	return nil
}

// ops lists the calls of one kind, "" for all of them.
func (f *fakeRemote) ops(op string) []remoteCall {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []remoteCall
	for _, c := range f.calls {
		if op == "" || c.op == op {
			out = append(out, c)
		}
	}
	return out
}

type fakeCatalog struct {
	books map[string]other.Book
	err   error
}

func (f *fakeCatalog) GetBook(ctx context.Context, id string) (*other.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.books[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &b, nil
}

type fakeOrders struct {
	mu       sync.Mutex
	orders   []models.OrderPayload
	err      error
	url      string
	redirs   []models.OrderPayload
	redirErr error
}

func (f *fakeOrders) CreateOrder(ctx context.Context, order models.OrderPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeOrders) Redirect(ctx context.Context, order models.OrderPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.redirErr != nil {
		return "", f.redirErr
	}
	f.redirs = append(f.redirs, order)
	return f.url, nil
}

var errBoom = errors.New("boom")

type harness struct {
	storage *repositories.MemoryStorage
	slots   *repositories.SlotRepository
	remote  *fakeRemote
	sched   *debounce.ManualScheduler
}

func newHarness() *harness {
	storage := repositories.NewMemoryStorage()
	return &harness{
		storage: storage,
		slots:   repositories.NewSlotRepository(storage, validator.New()),
		remote:  newFakeRemote(),
		sched:   debounce.NewManualScheduler(),
	}
}

func (h *harness) store(t *testing.T, identity models.Identity) *CartStore {
	t.Helper()
	return NewCartStore(context.Background(), StoreOptions{
		Slots:     h.slots,
		Remote:    h.remote,
		Scheduler: h.sched,
		Validate:  validator.New(),
	}, identity)
}

func product(id string, price int64) models.ProductRef {
	return models.ProductRef{ID: id, Title: "Book " + id, Price: price, CoverImage: "/covers/" + id + ".jpg"}
}

func line(id string, price int64, qty int) models.CartItem {
	return models.CartItem{Product: product(id, price), Quantity: qty}
}

var (
	guest = models.Identity{}
	userX = models.Identity{ID: "x", Email: "x@example.com"}
	userY = models.Identity{ID: "y", Email: "y@example.com"}
)
