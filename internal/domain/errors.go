package domain

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Every caller-facing failure wraps exactly one of these,
// so callers branch with errors.Is and never on message text.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrInvalidInput  = errors.New("invalid input")
	ErrForbidden     = errors.New("forbidden")
	ErrSerialization = errors.New("serialization failure")
)

// Message keys resolved by the MessageLocalizer for user-visible errors.
const (
	KeyEventNotFound          = "courtesy.event_not_found"
	KeyEventCancelled         = "courtesy.event_cancelled"
	KeyPersonNotFound         = "courtesy.person_not_found"
	KeyPersonRequired         = "courtesy.person_required"
	KeyPersonDataInvalid      = "courtesy.person_data_invalid"
	KeySpeakerNotFound        = "courtesy.speaker_not_found"
	KeySpeakerRequired        = "courtesy.speaker_required"
	KeyCourtesyNotFound       = "courtesy.not_found"
	KeyAlreadyGranted         = "courtesy.already_granted"
	KeyBlocksRequired         = "courtesy.blocks_required"
	KeyBlocksInvalid          = "courtesy.blocks_invalid"
	KeyInvalidType            = "courtesy.invalid_type"
	KeyInvalidScope           = "courtesy.invalid_scope"
	KeyNotActive              = "courtesy.not_active"
	KeyCancelReasonRequired   = "courtesy.cancel_reason_required"
	KeyNoSpeakers             = "courtesy.event_has_no_speakers"
	KeyConcurrentModification = "courtesy.concurrent_modification"
	KeyInvalidTransition      = "courtesy.invalid_transition"
	KeyEventIDRequired        = "courtesy.event_id_required"
	KeyInternal               = "error.internal"
	KeyUnauthorized           = "error.unauthorized"
	KeyBadRequest             = "error.bad_request"
)

// Error is a domain failure tagged with its kind and a localizable message key.
// Message is for logs; user-facing text comes from Key.
type Error struct {
	Kind    error
	Key     string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

// WithCause returns a copy of e wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.Cause = cause
	return &cp
}

// NotFound builds an ErrNotFound-kind error.
func NotFound(key, message string) *Error {
	return &Error{Kind: ErrNotFound, Key: key, Message: message}
}

// Conflict builds an ErrConflict-kind error.
func Conflict(key, message string) *Error {
	return &Error{Kind: ErrConflict, Key: key, Message: message}
}

// Invalid builds an ErrInvalidInput-kind error.
func Invalid(key, message string) *Error {
	return &Error{Kind: ErrInvalidInput, Key: key, Message: message}
}

// MessageKey returns the localizable key carried by err, or "" when err is not a domain Error.
func MessageKey(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Key
	}
	return ""
}

// IsRetryable reports whether err is a lost serializable race the caller may retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSerialization)
}
