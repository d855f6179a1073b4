package handlers

import (
	"net/http"

	"github.com/Rakhulsr/go-bookstore/app/helpers"
	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/Rakhulsr/go-bookstore/app/services"
	"github.com/Rakhulsr/go-bookstore/app/utils/format"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
)

type CartHandler struct {
	render  *render.Render
	cartSvc *services.CartService
}

func NewCartHandler(render *render.Render, cartSvc *services.CartService) *CartHandler {
	return &CartHandler{render: render, cartSvc: cartSvc}
}

type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartView is the cart as the storefront renders it: the snapshot plus the
// totals formatted for display.
type CartView struct {
	services.CartSnapshot
	Display map[string]string `json:"display"`
}

func newCartView(snap services.CartSnapshot) CartView {
	return CartView{
		CartSnapshot: snap,
		Display: map[string]string{
			"subtotal":    format.FormatVND(snap.Summary.Subtotal),
			"discount":    format.FormatVND(snap.Summary.Discount),
			"shippingFee": format.FormatVND(snap.Summary.ShippingFee),
			"tax":         format.FormatVND(snap.Summary.Tax),
			"total":       format.FormatVND(snap.Summary.Total),
		},
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store := helpers.GetCartStoreFromContext(r)
	respondOK(h.render, w, "", newCartView(store.Snapshot()))
}

func (h *CartHandler) AddItemToCart(w http.ResponseWriter, r *http.Request) {
	store := helpers.GetCartStoreFromContext(r)

	var req AddToCartRequest
	if err := helpers.DecodeJSONBody(w, r, &req); err != nil {
		respondError(h.render, w, r, err)
		return
	}

	if err := h.cartSvc.AddItemToCart(r.Context(), store, req.ProductID, req.Quantity); err != nil {
		respondError(h.render, w, r, err)
		return
	}
	respondOK(h.render, w, "Item added to cart.", newCartView(store.Snapshot()))
}

func (h *CartHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	store := helpers.GetCartStoreFromContext(r)
	productID := mux.Vars(r)["productID"]

	var req UpdateCartItemRequest
	if err := helpers.DecodeJSONBody(w, r, &req); err != nil {
		respondError(h.render, w, r, err)
		return
	}

	if err := h.cartSvc.UpdateCartItemQty(r.Context(), store, productID, req.Quantity); err != nil {
		respondError(h.render, w, r, err)
		return
	}
	respondOK(h.render, w, "Cart updated.", newCartView(store.Snapshot()))
}

func (h *CartHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	store := helpers.GetCartStoreFromContext(r)
	h.cartSvc.RemoveItemFromCart(r.Context(), store, mux.Vars(r)["productID"])
	respondOK(h.render, w, "Item removed from cart.", newCartView(store.Snapshot()))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store := helpers.GetCartStoreFromContext(r)
	store.Clear(r.Context())
	respondOK(h.render, w, "Cart cleared.", newCartView(store.Snapshot()))
}

// RefreshCart pulls the server cart, which only replaces a local cart that
// is still empty.
func (h *CartHandler) RefreshCart(w http.ResponseWriter, r *http.Request) {
	store := helpers.GetCartStoreFromContext(r)

	adopted, err := store.Refresh(r.Context())
	if err != nil {
		respondError(h.render, w, r, err)
		return
	}
	message := "Cart is up to date."
	if adopted {
		message = "Cart restored from your account."
	}
	respondOK(h.render, w, message, newCartView(store.Snapshot()))
}

func (h *CartHandler) ApplyPromotion(w http.ResponseWriter, r *http.Request) {
	store := helpers.GetCartStoreFromContext(r)

	var promo models.Promotion
	if err := helpers.DecodeJSONBody(w, r, &promo); err != nil {
		respondError(h.render, w, r, err)
		return
	}

	applied, err := store.ApplyPromotion(r.Context(), promo)
	if err != nil {
		respondError(h.render, w, r, err)
		return
	}
	if !applied {
		_ = h.render.JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"status":  "error",
			"message": "Order does not reach the minimum value for " + promo.Code + ": " + format.FormatVND(promo.MinOrderValue) + ".",
		})
		return
	}
	respondOK(h.render, w, "Promotion applied.", newCartView(store.Snapshot()))
}

func (h *CartHandler) RemovePromotion(w http.ResponseWriter, r *http.Request) {
	store := helpers.GetCartStoreFromContext(r)
	store.RemovePromotion(r.Context())
	respondOK(h.render, w, "Promotion removed.", newCartView(store.Snapshot()))
}
