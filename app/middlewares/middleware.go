package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/Rakhulsr/go-bookstore/app/helpers"
	"github.com/Rakhulsr/go-bookstore/app/services"
	"github.com/Rakhulsr/go-bookstore/app/utils/sessions"
	"github.com/rs/zerolog/log"
)

// CartSessionMiddleware resolves the browser's cart store and reconciles it
// with the identity in the session before the handler runs.
func CartSessionMiddleware(store sessions.SessionStore, registry *services.CartRegistry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			browserID, err := store.GetBrowserID(w, r)
			if err != nil {
				log.Error().Err(err).Str("path", r.URL.Path).Msg("CartSessionMiddleware: saving session")
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}

			cart := registry.Get(r.Context(), browserID, store.GetIdentity(r))
			ctx := helpers.WithCartStore(r.Context(), browserID, cart)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func RequestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		event := log.Info()
		if rec.status >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Int("bytes", rec.bytes).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// MethodOverrideMiddleware lets clients that can only POST reach PUT and
// DELETE routes through the X-HTTP-Method-Override header.
func MethodOverrideMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch override := strings.ToUpper(r.Header.Get("X-HTTP-Method-Override")); override {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = override
			}
		}
		next.ServeHTTP(w, r)
	})
}
