package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventmanager/internal/domain"
)

// StatusFor maps a domain error kind to an HTTP status and envelope code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrSerialization):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, ErrCodeForbidden
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// WriteDomainError writes err as a localized envelope. The message is resolved from the
// error's key in the request's Accept-Language; internal errors are logged and never echoed.
func WriteDomainError(w http.ResponseWriter, r *http.Request, loc domain.MessageLocalizer, logger *slog.Logger, err error) {
	status, code := StatusFor(err)
	key := domain.MessageKey(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		key = domain.KeyInternal
	}
	if key == "" {
		key = keyForStatus(status)
	}
	WriteJSONErrorKey(w, status, code, key, Localize(r, loc, key))
}

// WriteKeyError writes a localized error for a fixed key, e.g. request validation failures.
func WriteKeyError(w http.ResponseWriter, r *http.Request, loc domain.MessageLocalizer, status int, code, key string) {
	WriteJSONErrorKey(w, status, code, key, Localize(r, loc, key))
}

// Localize resolves key in the locale requested by r.
func Localize(r *http.Request, loc domain.MessageLocalizer, key string) string {
	if loc == nil {
		return key
	}
	return loc.Localize(r.Header.Get("Accept-Language"), key)
}

func keyForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.KeyBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.KeyUnauthorized
	default:
		return domain.KeyInternal
	}
}
