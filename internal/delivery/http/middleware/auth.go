package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "planmeet/internal/delivery/http/helpers"
	"planmeet/internal/domain"
)

type contextKey string

const userIDKey contextKey = "userID"

// SessionCookieName is the cookie set by login and accepted by RequireAuth.
const SessionCookieName = "session"

// SetUserID returns a context with the user ID set. Used by auth middleware.
func SetUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user ID from the context, if present.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// RequireAuth returns a wrapper that resolves the caller from a Bearer token
// or, failing that, the session cookie, and sets the user ID in the request
// context. If neither carries a valid token it responds with 401 and does not
// call next.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := tokenFromRequest(r)
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, errMsg)
				return
			}
			userID, err := verifier.Verify(token)
			if err != nil {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			r = r.WithContext(SetUserID(r.Context(), userID))
			next(w, r)
		}
	}
}

// tokenFromRequest extracts the raw token, Authorization header first, then
// the session cookie. The second return value is the 401 message to use when
// no token was found.
func tokenFromRequest(r *http.Request) (string, string) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			return "", "invalid authorization format"
		}
		token := strings.TrimSpace(auth[len(prefix):])
		if token == "" {
			return "", "missing token"
		}
		return token, ""
	}
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value, ""
	}
	return "", "missing credentials"
}
