package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/domain"
)

type contextKey string

const userIDKey contextKey = "userID"

// SetUserID returns a context carrying the authenticated staff user id.
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user ID from the context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the user ID in the request context.
// If the token is missing or invalid, it responds with a localized 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier, loc domain.MessageLocalizer, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, reason := bearerToken(r.Header.Get("Authorization"))
			if reason != "" {
				logger.DebugContext(r.Context(), "unauthenticated request", "path", r.URL.Path, "reason", reason)
				h.WriteKeyError(w, r, loc, http.StatusUnauthorized, h.ErrCodeUnauthorized, domain.KeyUnauthorized)
				return
			}
			userID, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "path", r.URL.Path, "err", err)
				h.WriteKeyError(w, r, loc, http.StatusUnauthorized, h.ErrCodeUnauthorized, domain.KeyUnauthorized)
				return
			}
			r = r.WithContext(SetUserID(r.Context(), userID))
			next(w, r)
		}
	}
}

func bearerToken(header string) (token, reason string) {
	if header == "" {
		return "", "missing authorization header"
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", "invalid authorization format"
	}
	token = strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", "missing token"
	}
	return token, ""
}
