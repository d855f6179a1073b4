package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/Rakhulsr/go-bookstore/app/models/other"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *APIClient {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAPIClient(srv.URL+"/", 2*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestHTTPCartClient_GetCart(t *testing.T) {
	var gotQuery string
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/cart", r.URL.Path)
		gotQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    []models.CartItem{line("a", 10_000, 2)},
		})
	})

	rc, err := NewHTTPCartClient(api).GetCart(context.Background(), userX)
	require.NoError(t, err)
	assert.True(t, rc.Exists)
	assert.Equal(t, []models.CartItem{line("a", 10_000, 2)}, rc.Items)
	assert.Equal(t, "email=x%40example.com&userId=x", gotQuery)
}

func TestHTTPCartClient_GetCartMissing(t *testing.T) {
	responses := map[string]http.HandlerFunc{
		"404": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "cart not found"})
		},
		"null data": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": nil})
		},
		"unsuccessful": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": false})
		},
	}
	for name, handler := range responses {
		t.Run(name, func(t *testing.T) {
			rc, err := NewHTTPCartClient(newTestAPI(t, handler)).GetCart(context.Background(), userX)
			require.NoError(t, err)
			assert.False(t, rc.Exists)
		})
	}
}

func TestHTTPCartClient_EmptyDataExists(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
	})

	rc, err := NewHTTPCartClient(api).GetCart(context.Background(), userX)
	require.NoError(t, err)
	assert.True(t, rc.Exists)
	assert.Empty(t, rc.Items)
}

func TestHTTPCartClient_CreateAndUpdate(t *testing.T) {
	var methods []string
	var bodies []other.CartRequest
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		var req other.CartRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		methods = append(methods, r.Method)
		bodies = append(bodies, req)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": req.ProductsCart})
	})
	client := NewHTTPCartClient(api)
	ctx := context.Background()

	require.NoError(t, client.CreateCart(ctx, userX, []models.CartItem{line("a", 1, 1)}))
	require.NoError(t, client.UpdateCart(ctx, userX, nil))

	assert.Equal(t, []string{http.MethodPost, http.MethodPut}, methods)
	assert.Equal(t, "x", bodies[0].UserID)
	assert.Equal(t, "x@example.com", bodies[0].Email)
	assert.Len(t, bodies[0].ProductsCart, 1)
	assert.NotNil(t, bodies[1].ProductsCart)
	assert.Empty(t, bodies[1].ProductsCart)
}

func TestHTTPCartClient_Errors(t *testing.T) {
	ctx := context.Background()

	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "productsCart is required"})
	})
	err := NewHTTPCartClient(api).UpdateCart(ctx, userX, nil)
	require.ErrorIs(t, err, ErrRemoteCart)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	api = newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err = NewHTTPCartClient(api).GetCart(ctx, userX)
	assert.ErrorIs(t, err, ErrRemoteCart)
}

func TestAPIClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	client := NewHTTPCartClient(api)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := client.GetCart(ctx, userX)
		require.Error(t, err)
		assert.False(t, IsUnavailable(err))
	}

	_, err := client.GetCart(ctx, userX)
	assert.True(t, IsUnavailable(err))
	assert.ErrorIs(t, err, ErrRemoteCart)
	assert.Equal(t, int32(5), hits.Load())
}

func TestAPIClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false})
	})
	client := NewHTTPCatalogClient(api)

	for i := 0; i < 8; i++ {
		_, err := client.GetBook(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrProductNotFound)
	}
}

func TestHTTPCatalogClient_GetBook(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/books/b%2F1", r.URL.EscapedPath())
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"_id": "b/1", "title": "Số đỏ", "price": 52_000, "stock": 7},
		})
	})

	book, err := NewHTTPCatalogClient(api).GetBook(context.Background(), "b/1")
	require.NoError(t, err)
	assert.Equal(t, "b/1", book.ID)
	assert.Equal(t, int64(52_000), book.Price)
	assert.Equal(t, 7, book.Stock)
}

func TestHTTPOrderClient(t *testing.T) {
	var paths []string
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		var order models.OrderPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&order))
		assert.Equal(t, "ORD-1", order.OrderCode)

		switch r.URL.Path {
		case "/orders":
			writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": map[string]any{"orderCode": "ORD-1"}})
		case "/orders/vnpay":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "paymentUrl": "https://pay.example/ORD-1"})
		}
	})
	client := NewHTTPOrderClient(api)
	ctx := context.Background()
	order := models.OrderPayload{OrderCode: "ORD-1", PaymentMethod: models.PaymentCOD}

	require.NoError(t, client.CreateOrder(ctx, order))
	url, err := client.Redirect(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/ORD-1", url)
	assert.Equal(t, []string{"/orders", "/orders/vnpay"}, paths)
}

func TestHTTPOrderClient_Rejected(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"success": false, "message": "out of stock"})
	})

	err := NewHTTPOrderClient(api).CreateOrder(context.Background(), models.OrderPayload{OrderCode: "ORD-2"})
	assert.ErrorIs(t, err, ErrOrderRejected)
	assert.Contains(t, err.Error(), "out of stock")
}
