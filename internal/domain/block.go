package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EvaluableBlock is a paid sub-offering of an event (e.g. a workshop) that can be
// enrolled in on its own.
// swagger:model EvaluableBlock
type EvaluableBlock struct {
	ID            string          `json:"id"`
	EventID       string          `json:"event_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	TotalSessions int             `json:"total_sessions"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// EvaluableBlockRepository defines read access to blocks.
type EvaluableBlockRepository interface {
	GetByID(ctx context.Context, id string) (*EvaluableBlock, error)
	ListByIDs(ctx context.Context, ids []string) ([]*EvaluableBlock, error)
}

// EnrollmentStatus is the lifecycle of a block enrollment.
type EnrollmentStatus string

const (
	EnrollmentStatusPending    EnrollmentStatus = "PENDING"
	EnrollmentStatusEnrolled   EnrollmentStatus = "ENROLLED"
	EnrollmentStatusInProgress EnrollmentStatus = "IN_PROGRESS"
	EnrollmentStatusCompleted  EnrollmentStatus = "COMPLETED"
	EnrollmentStatusCancelled  EnrollmentStatus = "CANCELLED"
)

// OpenEnrollmentStatuses are the statuses that count as holding access to a block.
var OpenEnrollmentStatuses = []EnrollmentStatus{
	EnrollmentStatusEnrolled,
	EnrollmentStatusPending,
	EnrollmentStatusInProgress,
}

var enrollmentTransitions = map[EnrollmentStatus][]EnrollmentStatus{
	EnrollmentStatusPending:    {EnrollmentStatusEnrolled, EnrollmentStatusCancelled},
	EnrollmentStatusEnrolled:   {EnrollmentStatusInProgress, EnrollmentStatusCompleted, EnrollmentStatusCancelled},
	EnrollmentStatusInProgress: {EnrollmentStatusCompleted, EnrollmentStatusCancelled},
	EnrollmentStatusCompleted:  {EnrollmentStatusCancelled},
}

// CanTransitionTo reports whether s may move to next.
func (s EnrollmentStatus) CanTransitionTo(next EnrollmentStatus) bool {
	for _, allowed := range enrollmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// BlockEnrollment is a person's enrollment in one block.
// swagger:model BlockEnrollment
type BlockEnrollment struct {
	ID                   string           `json:"id"`
	AttendeeID           string           `json:"attendee_id"`
	BlockID              string           `json:"block_id"`
	CourtesyID           *string          `json:"courtesy_id,omitempty"`
	Status               EnrollmentStatus `json:"status"`
	OriginalPrice        decimal.Decimal  `json:"original_price"`
	FinalPrice           decimal.Decimal  `json:"final_price"`
	Discount             decimal.Decimal  `json:"discount"`
	SessionsAttended     int              `json:"sessions_attended"`
	TotalSessions        int              `json:"total_sessions"`
	AttendancePercentage decimal.Decimal  `json:"attendance_percentage"`
	EnrolledAt           time.Time        `json:"enrolled_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// NewCourtesyEnrollment returns an ENROLLED zero-price enrollment linked to a courtesy.
func NewCourtesyEnrollment(attendeeID string, block *EvaluableBlock, courtesyID string, enrolledAt time.Time) *BlockEnrollment {
	return &BlockEnrollment{
		AttendeeID:           attendeeID,
		BlockID:              block.ID,
		CourtesyID:           &courtesyID,
		Status:               EnrollmentStatusEnrolled,
		OriginalPrice:        decimal.Zero,
		FinalPrice:           decimal.Zero,
		Discount:             decimal.Zero,
		SessionsAttended:     0,
		TotalSessions:        block.TotalSessions,
		AttendancePercentage: decimal.Zero,
		EnrolledAt:           enrolledAt,
		UpdatedAt:            enrolledAt,
	}
}

// Cancel moves the enrollment to CANCELLED, failing closed on illegal transitions.
func (e *BlockEnrollment) Cancel(now time.Time) error {
	if !e.Status.CanTransitionTo(EnrollmentStatusCancelled) {
		return Conflict(KeyInvalidTransition, "enrollment cannot be cancelled from status "+string(e.Status))
	}
	e.Status = EnrollmentStatusCancelled
	e.UpdatedAt = now
	return nil
}

// BlockEnrollmentRepository defines storage operations for block enrollments.
type BlockEnrollmentRepository interface {
	Create(ctx context.Context, e *BlockEnrollment) error
	// FindByAttendeeAndBlock returns an enrollment in one of statuses, or ErrNotFound.
	FindByAttendeeAndBlock(ctx context.Context, attendeeID, blockID string, statuses []EnrollmentStatus) (*BlockEnrollment, error)
	ListByAttendeeAndBlocks(ctx context.Context, attendeeID string, blockIDs []string) ([]*BlockEnrollment, error)
	UpdateStatus(ctx context.Context, id string, status EnrollmentStatus, updatedAt time.Time) error
}
