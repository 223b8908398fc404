package domain

import (
	"context"
	"time"
)

// CourtesyType is the reason category for a complimentary grant.
type CourtesyType string

const (
	CourtesyTypeSpeaker CourtesyType = "SPEAKER"
	CourtesyTypeVIP     CourtesyType = "VIP"
	CourtesyTypePress   CourtesyType = "PRESS"
	CourtesyTypeSponsor CourtesyType = "SPONSOR"
	CourtesyTypeStaff   CourtesyType = "STAFF"
	CourtesyTypeOther   CourtesyType = "OTHER"
)

// Valid reports whether t is a known type.
func (t CourtesyType) Valid() bool {
	switch t {
	case CourtesyTypeSpeaker, CourtesyTypeVIP, CourtesyTypePress,
		CourtesyTypeSponsor, CourtesyTypeStaff, CourtesyTypeOther:
		return true
	}
	return false
}

// CourtesyScope is the breadth of access a courtesy confers.
type CourtesyScope string

const (
	CourtesyScopeFullEvent       CourtesyScope = "FULL_EVENT"
	CourtesyScopeSpecificBlocks  CourtesyScope = "SPECIFIC_BLOCKS"
	CourtesyScopeAssignedSession CourtesyScope = "ASSIGNED_SESSIONS_ONLY"
)

// Valid reports whether s is a known scope.
func (s CourtesyScope) Valid() bool {
	switch s {
	case CourtesyScopeFullEvent, CourtesyScopeSpecificBlocks, CourtesyScopeAssignedSession:
		return true
	}
	return false
}

// LabelKey is the message key for the scope's display label.
func (s CourtesyScope) LabelKey() string {
	return "courtesy.scope." + string(s)
}

// CourtesyStatus is the lifecycle state of a courtesy.
type CourtesyStatus string

const (
	CourtesyStatusActive    CourtesyStatus = "ACTIVE"
	CourtesyStatusUsed      CourtesyStatus = "USED"
	CourtesyStatusCancelled CourtesyStatus = "CANCELLED"
	CourtesyStatusExpired   CourtesyStatus = "EXPIRED"
)

// HoldingCourtesyStatuses are the statuses that occupy the single slot per (event, person).
var HoldingCourtesyStatuses = []CourtesyStatus{CourtesyStatusActive, CourtesyStatusUsed}

// USED and EXPIRED are driven from outside this package; only the table lives here.
var courtesyTransitions = map[CourtesyStatus][]CourtesyStatus{
	CourtesyStatusActive: {CourtesyStatusUsed, CourtesyStatusCancelled, CourtesyStatusExpired},
}

// CanTransitionTo reports whether s may move to next. Terminal states accept nothing.
func (s CourtesyStatus) CanTransitionTo(next CourtesyStatus) bool {
	for _, allowed := range courtesyTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Courtesy is a complimentary access grant to an event.
// swagger:model Courtesy
type Courtesy struct {
	ID                 string         `json:"id"`
	EventID            string         `json:"event_id"`
	PersonID           string         `json:"person_id"`
	AttendeeID         *string        `json:"attendee_id,omitempty"`
	SpeakerID          *string        `json:"speaker_id,omitempty"`
	SpecificBlockIDs   []string       `json:"specific_block_ids"`
	Type               CourtesyType   `json:"type"`
	Scope              CourtesyScope  `json:"scope"`
	Status             CourtesyStatus `json:"status"`
	GrantedBy          string         `json:"granted_by"`
	GrantedAt          time.Time      `json:"granted_at"`
	ValidUntil         *time.Time     `json:"valid_until,omitempty"`
	Reason             *string        `json:"reason,omitempty"`
	Notes              *string        `json:"notes,omitempty"`
	CancelledBy        *string        `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time     `json:"cancelled_at,omitempty"`
	CancellationReason *string        `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`

	// Loaded relations, populated by the service and never persisted from here.
	Event            *Event             `json:"event,omitempty"`
	Person           *Person            `json:"person,omitempty"`
	Attendee         *Attendee          `json:"attendee,omitempty"`
	Registration     *Registration      `json:"registration,omitempty"`
	BlockEnrollments []*BlockEnrollment `json:"block_enrollments,omitempty"`
}

// Cancel applies the ACTIVE -> CANCELLED transition with its metadata.
// Any other starting status fails with a Conflict and leaves c untouched.
func (c *Courtesy) Cancel(by, reason string, now time.Time) error {
	if !c.Status.CanTransitionTo(CourtesyStatusCancelled) {
		return Conflict(KeyNotActive, "only active courtesies can be cancelled, status is "+string(c.Status))
	}
	c.Status = CourtesyStatusCancelled
	c.CancelledBy = &by
	c.CancelledAt = &now
	c.CancellationReason = &reason
	c.UpdatedAt = now
	return nil
}

// GrantRequest is the input of a single courtesy grant.
// Exactly one of PersonID and PersonData identifies the beneficiary.
// swagger:model GrantRequest
type GrantRequest struct {
	EventID          string         `json:"event_id"`
	PersonID         *string        `json:"person_id,omitempty"`
	PersonData       *RawPersonData `json:"person_data,omitempty"`
	Type             CourtesyType   `json:"type"`
	Scope            CourtesyScope  `json:"scope"`
	SpecificBlockIDs []string       `json:"specific_block_ids,omitempty"`
	SpeakerID        *string        `json:"speaker_id,omitempty"`
	Reason           *string        `json:"reason,omitempty"`
	Notes            *string        `json:"notes,omitempty"`
	ValidUntil       *time.Time     `json:"valid_until,omitempty"`
	// Locale selects the language of the granted notification; empty means default.
	Locale string `json:"locale,omitempty"`
}

// CancelRequest is the input of a courtesy cancellation.
// swagger:model CancelRequest
type CancelRequest struct {
	Reason string `json:"reason"`
}

// CourtesyStats is a read-only projection of an event's courtesies.
// swagger:model CourtesyStats
type CourtesyStats struct {
	EventID   string                 `json:"event_id"`
	Total     int                    `json:"total"`
	Active    int                    `json:"active"`
	Used      int                    `json:"used"`
	Cancelled int                    `json:"cancelled"`
	Expired   int                    `json:"expired"`
	ByStatus  map[CourtesyStatus]int `json:"by_status"`
	ByType    map[CourtesyType]int   `json:"by_type"`
	ByScope   map[CourtesyScope]int  `json:"by_scope"`
}

// CourtesyRepository defines storage operations for courtesies.
type CourtesyRepository interface {
	Create(ctx context.Context, c *Courtesy) error
	GetByID(ctx context.Context, id string) (*Courtesy, error)
	// FindByEventAndPerson returns a courtesy in one of statuses, or ErrNotFound.
	FindByEventAndPerson(ctx context.Context, eventID, personID string, statuses []CourtesyStatus) (*Courtesy, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Courtesy, error)
	ListByPersonID(ctx context.Context, personID string) ([]*Courtesy, error)
	// UpdateStatus persists status and cancellation metadata, only if the stored status is still from.
	UpdateStatus(ctx context.Context, c *Courtesy, from CourtesyStatus) error
}

// CourtesyService is the complimentary-access grant engine.
type CourtesyService interface {
	Grant(ctx context.Context, req GrantRequest, grantorID string) (*Courtesy, error)
	Cancel(ctx context.Context, courtesyID string, req CancelRequest, cancellerID string) (*Courtesy, error)
	FindByEvent(ctx context.Context, eventID string) ([]*Courtesy, error)
	FindByPerson(ctx context.Context, personID string) ([]*Courtesy, error)
	FindOne(ctx context.Context, id string) (*Courtesy, error)
	// GrantSpeakerCourtesies grants one courtesy per event speaker and returns those created.
	// A speaker already holding an ACTIVE or USED courtesy for the event is skipped; a
	// CANCELLED or EXPIRED one does not block a new grant. Each speaker runs in its own
	// transaction, and per-speaker failures are logged and left out of the result.
	// The whole call fails when the event cannot take grants.
	GrantSpeakerCourtesies(ctx context.Context, eventID string, scope CourtesyScope, grantorID string) ([]*Courtesy, error)
	GetEventStats(ctx context.Context, eventID string) (*CourtesyStats, error)
}
