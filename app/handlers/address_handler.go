package handlers

import (
	"net/http"

	"github.com/Rakhulsr/go-bookstore/app/helpers"
	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
)

type AddressHandler struct {
	render *render.Render
}

func NewAddressHandler(render *render.Render) *AddressHandler {
	return &AddressHandler{render: render}
}

type AddressBook struct {
	Addresses []models.DeliveryAddress `json:"deliveryAddresses"`
	Selected  *models.DeliveryAddress  `json:"selectedAddress"`
}

func addressBook(r *http.Request) AddressBook {
	store := helpers.GetCartStoreFromContext(r)
	return AddressBook{Addresses: store.Addresses(), Selected: store.SelectedAddress()}
}

func (h *AddressHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	respondOK(h.render, w, "", addressBook(r))
}

func (h *AddressHandler) ReplaceAddresses(w http.ResponseWriter, r *http.Request) {
	store := helpers.GetCartStoreFromContext(r)

	var addresses []models.DeliveryAddress
	if err := helpers.DecodeJSONBody(w, r, &addresses); err != nil {
		respondError(h.render, w, r, err)
		return
	}
	if _, err := store.SetAddresses(r.Context(), addresses); err != nil {
		respondError(h.render, w, r, err)
		return
	}
	respondOK(h.render, w, "Address book saved.", addressBook(r))
}

func (h *AddressHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	store := helpers.GetCartStoreFromContext(r)

	var addr models.DeliveryAddress
	if err := helpers.DecodeJSONBody(w, r, &addr); err != nil {
		respondError(h.render, w, r, err)
		return
	}
	saved, err := store.AddAddress(r.Context(), addr)
	if err != nil {
		respondError(h.render, w, r, err)
		return
	}
	respondOK(h.render, w, "Address saved.", saved)
}

func (h *AddressHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	store := helpers.GetCartStoreFromContext(r)

	if err := store.DeleteAddress(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(h.render, w, r, err)
		return
	}
	respondOK(h.render, w, "Address deleted.", addressBook(r))
}

// SelectAddress accepts ids that are not in the book; they simply resolve
// to no selected address.
func (h *AddressHandler) SelectAddress(w http.ResponseWriter, r *http.Request) {
	store := helpers.GetCartStoreFromContext(r)
	store.SelectAddress(r.Context(), mux.Vars(r)["id"])
	respondOK(h.render, w, "Address selected.", addressBook(r))
}
