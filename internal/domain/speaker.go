package domain

import (
	"context"
	"strings"
	"time"
)

// Speaker represents a speaker at an event.
// swagger:model Speaker
type Speaker struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	PersonID  *string   `json:"person_id,omitempty"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizedEmail returns the trimmed, lower-cased email.
func (s *Speaker) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(s.Email))
}

// SpeakerRepository defines read access to speakers.
type SpeakerRepository interface {
	GetByID(ctx context.Context, id string) (*Speaker, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Speaker, error)
}
