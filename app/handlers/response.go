package handlers

import (
	"errors"
	"net/http"

	"github.com/Rakhulsr/go-bookstore/app/helpers"
	"github.com/Rakhulsr/go-bookstore/app/services"
	"github.com/Rakhulsr/go-bookstore/app/utils/sessions"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/render"
)

func respondOK(rnd *render.Render, w http.ResponseWriter, message string, data any) {
	_ = rnd.JSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

// respondError writes err with the status it maps to. Field level validation
// failures are listed under "errors".
func respondError(rnd *render.Render, w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := map[string]any{
		"status":  "error",
		"message": err.Error(),
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		body["errors"] = helpers.FormatValidationErrors(verrs)
	}

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
		if status == http.StatusInternalServerError {
			body["message"] = "internal server error"
		}
	}
	event.Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("browser", helpers.GetBrowserIDFromContext(r)).
		Int("status", status).
		Msg("request failed")

	_ = rnd.JSON(w, status, body)
}

func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, helpers.ErrInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, sessions.ErrInvalidAssertion):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrCheckoutOwnerChanged):
		return http.StatusConflict
	case errors.As(err, &verrs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrAddressNotFound),
		errors.Is(err, services.ErrNoCheckoutDraft):
		return http.StatusNotFound
	case services.IsValidationError(err):
		return http.StatusBadRequest
	case services.IsUnavailable(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrRemoteCart),
		errors.Is(err, services.ErrOrderRejected),
		errors.Is(err, services.ErrPaymentRedirectMissing):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
