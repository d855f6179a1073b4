package routes

import (
	"net/http"

	"github.com/Rakhulsr/go-bookstore/app/handlers"
	"github.com/Rakhulsr/go-bookstore/app/middlewares"
	"github.com/Rakhulsr/go-bookstore/app/services"
	"github.com/Rakhulsr/go-bookstore/app/utils/sessions"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
)

type Dependencies struct {
	Render   *render.Render
	Sessions sessions.SessionStore
	Registry *services.CartRegistry
	Cart     *services.CartService
	Checkout *services.CheckoutService
	Validate *validator.Validate

	// Identities verifies the assertions presented when signing in.
	Identities *sessions.IdentityVerifier

	// CSRFKey enables CSRF protection on state changing requests when set.
	// The token travels in the X-CSRF-Token header.
	CSRFKey      []byte
	SecureCookie bool
}

func NewRouter(deps Dependencies) http.Handler {
	router := mux.NewRouter()
	router.Use(middlewares.RequestLoggerMiddleware)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_ = deps.Render.JSON(w, http.StatusOK, map[string]any{"status": "ok", "carts": deps.Registry.Len()})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	if len(deps.CSRFKey) > 0 {
		api.Use(csrf.Protect(deps.CSRFKey,
			csrf.Secure(deps.SecureCookie),
			csrf.Path("/"),
			csrf.RequestHeader("X-CSRF-Token"),
			csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				message := "forbidden"
				if reason := csrf.FailureReason(r); reason != nil {
					message = reason.Error()
				}
				_ = deps.Render.JSON(w, http.StatusForbidden, map[string]any{
					"status":  "error",
					"message": message,
				})
			})),
		))
	}
	api.Use(middlewares.CartSessionMiddleware(deps.Sessions, deps.Registry))

	cartHandler := handlers.NewCartHandler(deps.Render, deps.Cart)
	addressHandler := handlers.NewAddressHandler(deps.Render)
	checkoutHandler := handlers.NewCheckoutHandler(deps.Render, deps.Checkout)
	sessionHandler := handlers.NewSessionHandler(deps.Render, deps.Sessions, deps.Identities, deps.Validate)

	api.HandleFunc("/cart", cartHandler.GetCart).Methods(http.MethodGet)
	api.HandleFunc("/cart", cartHandler.ClearCart).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items", cartHandler.AddItemToCart).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{productID}", cartHandler.UpdateCartItem).Methods(http.MethodPut)
	api.HandleFunc("/cart/items/{productID}", cartHandler.RemoveCartItem).Methods(http.MethodDelete)
	api.HandleFunc("/cart/refresh", cartHandler.RefreshCart).Methods(http.MethodPost)
	api.HandleFunc("/cart/promotion", cartHandler.ApplyPromotion).Methods(http.MethodPost)
	api.HandleFunc("/cart/promotion", cartHandler.RemovePromotion).Methods(http.MethodDelete)

	api.HandleFunc("/addresses", addressHandler.ListAddresses).Methods(http.MethodGet)
	api.HandleFunc("/addresses", addressHandler.ReplaceAddresses).Methods(http.MethodPut)
	api.HandleFunc("/addresses", addressHandler.AddAddress).Methods(http.MethodPost)
	api.HandleFunc("/addresses/{id}", addressHandler.DeleteAddress).Methods(http.MethodDelete)
	api.HandleFunc("/addresses/{id}/select", addressHandler.SelectAddress).Methods(http.MethodPost)

	api.HandleFunc("/session", sessionHandler.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/session/identity", sessionHandler.SignIn).Methods(http.MethodPost)
	api.HandleFunc("/session/identity", sessionHandler.SignOut).Methods(http.MethodDelete)

	api.HandleFunc("/checkout", checkoutHandler.PrepareCheckout).Methods(http.MethodPost)
	api.HandleFunc("/checkout/confirm", checkoutHandler.ConfirmCheckout).Methods(http.MethodPost)

	return middlewares.MethodOverrideMiddleware(router)
}
