package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/farewatch/farewatch/internal/api"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// SharedSecret guards the ingestion boundary with a constant-time check of
// the X-Ingest-Token header against the configured secret.
func SharedSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Ingest-Token")
			if token == "" {
				api.Error(w, http.StatusUnauthorized, "missing ingest token")
				return
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				api.Error(w, http.StatusUnauthorized, "invalid ingest token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser attributes the request to the caller named by the X-User-ID
// header and rejects requests without one. Identity verification lives at
// the edge proxy; this service only needs attribution.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			api.Error(w, http.StatusUnauthorized, "missing user identity")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID returns the attributed user from context.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}
