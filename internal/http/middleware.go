package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/akaza50z/libabbitak/internal/auth"
	"github.com/akaza50z/libabbitak/internal/metrics"
)

type contextKey string

const cartSessionKey contextKey = "cart_session"

// CartSessionCookie identifies one anonymous browser cart.
const CartSessionCookie = "cart_session"

// CartSessionMiddleware gives every visitor a stable anonymous session id so
// their cart survives page reloads, mirroring the browser-local storage the
// storefront used before.
func CartSessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sid string
		if c, err := r.Cookie(CartSessionCookie); err == nil && c.Value != "" {
			sid = c.Value
		} else {
			sid = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     CartSessionCookie,
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int((90 * 24 * time.Hour).Seconds()),
			})
		}
		ctx := context.WithValue(r.Context(), cartSessionKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func cartSessionFromContext(ctx context.Context) string {
	if sid, ok := ctx.Value(cartSessionKey).(string); ok {
		return sid
	}
	return ""
}

// RequireAdmin rejects requests without a live back-office session.
func RequireAdmin(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(auth.CookieName)
			if err != nil || !sessions.Valid(c.Value) {
				respondError(w, http.StatusUnauthorized, "unauthorized", "غير مصرح")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MetricsMiddleware records request counts and latency per chi route.
func MetricsMiddleware(m *metrics.ServerMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			m.Requests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
			m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
		})
	}
}
