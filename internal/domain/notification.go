package domain

import (
	"context"
	"time"
)

// CourtesyGrantedNotification is the payload enqueued after a courtesy commits.
type CourtesyGrantedNotification struct {
	CourtesyID    string        `json:"courtesy_id"`
	EventID       string        `json:"event_id"`
	EventName     string        `json:"event_name"`
	PersonID      string        `json:"person_id"`
	RecipientName string        `json:"recipient_name"`
	Email         string        `json:"email"`
	Type          CourtesyType  `json:"type"`
	Scope         CourtesyScope `json:"scope"`
	ValidUntil    *time.Time    `json:"valid_until,omitempty"`
	Locale        string        `json:"locale,omitempty"`
}

// NotificationDispatcher is a fire-and-forget outbound port.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, n *CourtesyGrantedNotification) error
}

// DispatchResult records the outcome of a best-effort dispatch. Callers may ignore it.
type DispatchResult struct {
	Enqueued bool
	Err      error
}

// MessageLocalizer resolves a message key for a locale. Unknown keys render as the key.
type MessageLocalizer interface {
	Localize(locale, key string, args ...any) string
}
