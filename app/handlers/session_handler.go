package handlers

import (
	"net/http"

	"github.com/Rakhulsr/go-bookstore/app/helpers"
	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/Rakhulsr/go-bookstore/app/utils/sessions"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"
	"github.com/unrolled/render"
)

// SessionHandler is the hook the auth collaborator calls after it signed a
// user in or out. The cart store of the browser is reconciled in the same
// request.
type SessionHandler struct {
	render     *render.Render
	sessions   sessions.SessionStore
	identities *sessions.IdentityVerifier
	validate   *validator.Validate
}

func NewSessionHandler(render *render.Render, store sessions.SessionStore, identities *sessions.IdentityVerifier, validate *validator.Validate) *SessionHandler {
	return &SessionHandler{render: render, sessions: store, identities: identities, validate: validate}
}

// SignInRequest carries the identity assertion signed by the auth
// collaborator.
type SignInRequest struct {
	Assertion string `json:"assertion" validate:"required"`
}

type SessionView struct {
	Identity   models.Identity `json:"identity"`
	IsGuest    bool            `json:"isGuest"`
	TotalItems int             `json:"totalItems"`
	CSRFToken  string          `json:"csrfToken,omitempty"`
}

func (h *SessionHandler) view(r *http.Request) SessionView {
	store := helpers.GetCartStoreFromContext(r)
	identity := store.Identity()
	return SessionView{
		Identity:   identity,
		IsGuest:    identity.IsGuest(),
		TotalItems: store.TotalItems(),
		CSRFToken:  csrf.Token(r),
	}
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	respondOK(h.render, w, "", h.view(r))
}

func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := helpers.DecodeJSONBody(w, r, &req); err != nil {
		respondError(h.render, w, r, err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(h.render, w, r, err)
		return
	}

	identity, err := h.identities.Verify(req.Assertion)
	if err != nil {
		respondError(h.render, w, r, err)
		return
	}
	if err := h.sessions.SetIdentity(w, r, identity); err != nil {
		respondError(h.render, w, r, err)
		return
	}
	helpers.GetCartStoreFromContext(r).SetIdentity(r.Context(), identity)
	respondOK(h.render, w, "Signed in.", h.view(r))
}

func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.ClearIdentity(w, r); err != nil {
		respondError(h.render, w, r, err)
		return
	}
	helpers.GetCartStoreFromContext(r).SetIdentity(r.Context(), models.Identity{})
	respondOK(h.render, w, "Signed out.", h.view(r))
}
