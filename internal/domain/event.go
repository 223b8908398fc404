package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EventStatus is the publication lifecycle of an event.
type EventStatus string

const (
	EventStatusDraft      EventStatus = "DRAFT"
	EventStatusPublished  EventStatus = "PUBLISHED"
	EventStatusInProgress EventStatus = "IN_PROGRESS"
	EventStatusFinished   EventStatus = "FINISHED"
	EventStatusCancelled  EventStatus = "CANCELLED"
)

// Event represents a ticketed event.
// swagger:model Event
type Event struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Status    EventStatus     `json:"status"`
	IsActive  bool            `json:"is_active"`
	Price     decimal.Decimal `json:"price"`
	StartDate *time.Time      `json:"start_date,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsCancelled reports whether the event was called off.
func (e *Event) IsCancelled() bool {
	return e.Status == EventStatusCancelled
}

// EventRepository defines read access to events.
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*Event, error)
}
