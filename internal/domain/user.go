package domain

import "time"

// TokenIssuer issues tokens (e.g. JWT) for an authenticated staff user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
// The user ID is recorded as grantor or canceller of courtesies.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}
