package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/Rakhulsr/go-bookstore/app/models/other"
)

// fakeBackend serves the storefront API the cart engine talks to: carts per
// user, a small catalog and the order endpoints.
type fakeBackend struct {
	mu     sync.Mutex
	carts  map[string][]models.CartItem
	books  map[string]other.Book
	orders []models.OrderPayload
}

func newFakeBackend(t *testing.T) (*fakeBackend, string) {
	b := &fakeBackend{
		carts: make(map[string][]models.CartItem),
		books: map[string]other.Book{
			"b1": {ID: "b1", Title: "Dế Mèn phiêu lưu ký", Price: 60_000, Stock: 5},
			"b2": {ID: "b2", Title: "Số đỏ", Price: 45_000, Stock: 10},
			"b3": {ID: "b3", Title: "Tuyển tập Nam Cao", Price: 250_000, Stock: 1},
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(srv.Close)
	return b, srv.URL
}

func (b *fakeBackend) cart(user string) []models.CartItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.carts[user]
}

func (b *fakeBackend) placed() []models.OrderPayload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.OrderPayload{}, b.orders...)
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	reply := func(status int, body any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}

	switch {
	case r.URL.Path == "/users/cart" && r.Method == http.MethodGet:
		items, ok := b.carts[r.URL.Query().Get("userId")]
		if !ok {
			reply(http.StatusNotFound, map[string]any{"success": false, "message": "cart not found"})
			return
		}
		reply(http.StatusOK, map[string]any{"success": true, "data": items})

	case r.URL.Path == "/users/cart":
		var req other.CartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			reply(http.StatusBadRequest, map[string]any{"success": false, "message": err.Error()})
			return
		}
		b.carts[req.UserID] = req.ProductsCart
		reply(http.StatusOK, map[string]any{"success": true, "data": req.ProductsCart})

	case strings.HasPrefix(r.URL.Path, "/books/"):
		book, ok := b.books[strings.TrimPrefix(r.URL.Path, "/books/")]
		if !ok {
			reply(http.StatusNotFound, map[string]any{"success": false})
			return
		}
		reply(http.StatusOK, map[string]any{"success": true, "data": book})

	case r.URL.Path == "/orders" || r.URL.Path == "/orders/vnpay":
		var order models.OrderPayload
		if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
			reply(http.StatusBadRequest, map[string]any{"success": false, "message": err.Error()})
			return
		}
		b.orders = append(b.orders, order)
		body := map[string]any{"success": true, "data": map[string]any{"orderCode": order.OrderCode}}
		if r.URL.Path == "/orders/vnpay" {
			body["paymentUrl"] = "https://sandbox.vnpayment.vn/pay?ref=" + order.OrderCode
		}
		reply(http.StatusCreated, body)

	default:
		http.NotFound(w, r)
	}
}
