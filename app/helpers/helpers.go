package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Rakhulsr/go-bookstore/app/services"
	"github.com/go-playground/validator/v10"
)

type contextKey string

const (
	ContextKeyCartStore contextKey = "cartStore"
	ContextKeyBrowserID contextKey = "browserID"
)

const maxBodyBytes = 1 << 20

var ErrInvalidBody = errors.New("invalid request body")

func WithCartStore(ctx context.Context, browserID string, store *services.CartStore) context.Context {
	ctx = context.WithValue(ctx, ContextKeyBrowserID, browserID)
	return context.WithValue(ctx, ContextKeyCartStore, store)
}

// GetCartStoreFromContext returns nil when the request did not pass through
// the cart session middleware.
func GetCartStoreFromContext(r *http.Request) *services.CartStore {
	store, _ := r.Context().Value(ContextKeyCartStore).(*services.CartStore)
	return store
}

func GetBrowserIDFromContext(r *http.Request) string {
	id, _ := r.Context().Value(ContextKeyBrowserID).(string)
	return id
}

// DecodeJSONBody decodes a single JSON object into dst, rejecting unknown
// fields and oversized bodies.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: body must not be empty", ErrInvalidBody)
		}
		return fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: body must contain a single JSON object", ErrInvalidBody)
	}
	return nil
}

func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMessages := make(map[string]string)
	for _, err := range errs {
		field := lowerFirst(err.Field())
		switch err.Tag() {
		case "required":
			errorMessages[field] = fmt.Sprintf("%s is required.", err.Field())
		case "email":
			errorMessages[field] = fmt.Sprintf("%s must be a valid email address.", err.Field())
		case "numeric":
			errorMessages[field] = fmt.Sprintf("%s must be numeric.", err.Field())
		case "min":
			errorMessages[field] = fmt.Sprintf("%s must be at least %s.", err.Field(), err.Param())
		case "max":
			errorMessages[field] = fmt.Sprintf("%s must be at most %s.", err.Field(), err.Param())
		case "gt", "gte":
			errorMessages[field] = fmt.Sprintf("%s must be greater than %s.", err.Field(), orEqual(err.Tag(), err.Param()))
		case "oneof":
			errorMessages[field] = fmt.Sprintf("%s must be one of: %s.", err.Field(), strings.ReplaceAll(err.Param(), " ", ", "))
		default:
			errorMessages[field] = fmt.Sprintf("Validation %s failed on field %s.", err.Tag(), err.Field())
		}
	}
	return errorMessages
}

func orEqual(tag, param string) string {
	if tag == "gte" {
		return "or equal to " + param
	}
	return param
}

func lowerFirst(s string) string {
	if s == "" || strings.ToUpper(s) == s {
		return strings.ToLower(s)
	}
	return strings.ToLower(s[:1]) + s[1:]
}
