package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Attendee is the identity used by registrations and block enrollments.
// swagger:model Attendee
type Attendee struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	DocumentType   string    `json:"document_type"`
	DocumentNumber string    `json:"document_number"`
	Phone          string    `json:"phone,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewAttendeeFromPerson mirrors the person's contact fields into a new Attendee.
// ID is typically set by the repository on create.
func NewAttendeeFromPerson(p *Person, createdAt time.Time) *Attendee {
	return &Attendee{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		DocumentType:   p.DocumentType,
		DocumentNumber: p.DocumentNumber,
		Phone:          p.Phone,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
}

// AttendeeRepository defines storage operations for attendees.
type AttendeeRepository interface {
	Create(ctx context.Context, a *Attendee) error
	GetByID(ctx context.Context, id string) (*Attendee, error)
	// FindByEmailOrDocument returns the first attendee matching either value.
	FindByEmailOrDocument(ctx context.Context, email, documentNumber string) (*Attendee, error)
}

// AttendeeMaterializer ensures a Person has a matching Attendee.
type AttendeeMaterializer interface {
	Materialize(ctx context.Context, tx Store, person *Person) (*Attendee, error)
}

// RegistrationStatus is the lifecycle of a full-event registration.
type RegistrationStatus string

const (
	RegistrationStatusPending   RegistrationStatus = "PENDING"
	RegistrationStatusConfirmed RegistrationStatus = "CONFIRMED"
	RegistrationStatusCancelled RegistrationStatus = "CANCELLED"
)

// OpenRegistrationStatuses are the statuses that count as holding access.
var OpenRegistrationStatuses = []RegistrationStatus{RegistrationStatusConfirmed, RegistrationStatusPending}

var registrationTransitions = map[RegistrationStatus][]RegistrationStatus{
	RegistrationStatusPending:   {RegistrationStatusConfirmed, RegistrationStatusCancelled},
	RegistrationStatusConfirmed: {RegistrationStatusCancelled},
}

// CanTransitionTo reports whether s may move to next.
func (s RegistrationStatus) CanTransitionTo(next RegistrationStatus) bool {
	for _, allowed := range registrationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Registration is a person's access to an entire event.
// swagger:model Registration
type Registration struct {
	ID            string             `json:"id"`
	AttendeeID    string             `json:"attendee_id"`
	EventID       string             `json:"event_id"`
	CourtesyID    *string            `json:"courtesy_id,omitempty"`
	TicketCode    string             `json:"ticket_code"`
	Status        RegistrationStatus `json:"status"`
	OriginalPrice decimal.Decimal    `json:"original_price"`
	FinalPrice    decimal.Decimal    `json:"final_price"`
	Discount      decimal.Decimal    `json:"discount"`
	Attended      bool               `json:"attended"`
	AttendedAt    *time.Time         `json:"attended_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// NewCourtesyRegistration returns a confirmed zero-price registration linked to a courtesy.
func NewCourtesyRegistration(attendeeID, eventID, courtesyID, ticketCode string, createdAt time.Time) *Registration {
	return &Registration{
		AttendeeID:    attendeeID,
		EventID:       eventID,
		CourtesyID:    &courtesyID,
		TicketCode:    ticketCode,
		Status:        RegistrationStatusConfirmed,
		OriginalPrice: decimal.Zero,
		FinalPrice:    decimal.Zero,
		Discount:      decimal.Zero,
		Attended:      false,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

// Cancel moves the registration to CANCELLED, failing closed on illegal transitions.
func (r *Registration) Cancel(now time.Time) error {
	if !r.Status.CanTransitionTo(RegistrationStatusCancelled) {
		return Conflict(KeyInvalidTransition, "registration cannot be cancelled from status "+string(r.Status))
	}
	r.Status = RegistrationStatusCancelled
	r.UpdatedAt = now
	return nil
}

// RegistrationRepository defines storage operations for event registrations.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	// FindByAttendeeAndEvent returns a registration in one of statuses, or ErrNotFound.
	FindByAttendeeAndEvent(ctx context.Context, attendeeID, eventID string, statuses []RegistrationStatus) (*Registration, error)
	GetByCourtesyID(ctx context.Context, courtesyID string) (*Registration, error)
	UpdateStatus(ctx context.Context, id string, status RegistrationStatus, updatedAt time.Time) error
}
