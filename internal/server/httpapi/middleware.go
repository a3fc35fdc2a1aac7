package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/auth"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// authenticate verifies the Bearer token and stores its claims in the
// request context. Missing, malformed, expired, or revoked tokens end the
// request with a 401.
func (a *API) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")

		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			RespondWithError(w, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}

		claims, err := a.users.Authenticate(r.Context(), strings.TrimPrefix(header, prefix))
		if err != nil {
			RespondWithError(w, http.StatusUnauthorized, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// claimsFromContext returns the authenticated token claims, or nil when the
// request did not pass through the authenticate middleware.
func claimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims
}

// requestLogger logs one line per request with status and timing.
func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		a.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
