package handlers

import (
	"net/http"

	"github.com/Rakhulsr/go-bookstore/app/helpers"
	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/Rakhulsr/go-bookstore/app/services"
	"github.com/unrolled/render"
)

type CheckoutHandler struct {
	render      *render.Render
	checkoutSvc *services.CheckoutService
}

func NewCheckoutHandler(render *render.Render, checkoutSvc *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{render: render, checkoutSvc: checkoutSvc}
}

type CheckoutRequest struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   models.PaymentMethod   `json:"paymentMethod"`
}

func (h *CheckoutHandler) PrepareCheckout(w http.ResponseWriter, r *http.Request) {
	store := helpers.GetCartStoreFromContext(r)

	var req CheckoutRequest
	if err := helpers.DecodeJSONBody(w, r, &req); err != nil {
		respondError(h.render, w, r, err)
		return
	}

	draft, err := h.checkoutSvc.Prepare(r.Context(), store, req.ShippingAddress, req.PaymentMethod)
	if err != nil {
		respondError(h.render, w, r, err)
		return
	}
	respondOK(h.render, w, "Checkout ready for confirmation.", draft)
}

// ConfirmCheckout places the order. For bank transfers the response carries
// the payment URL the browser has to follow.
func (h *CheckoutHandler) ConfirmCheckout(w http.ResponseWriter, r *http.Request) {
	store := helpers.GetCartStoreFromContext(r)

	result, err := h.checkoutSvc.Confirm(r.Context(), store)
	if err != nil {
		respondError(h.render, w, r, err)
		return
	}
	respondOK(h.render, w, "Order placed.", result)
}
