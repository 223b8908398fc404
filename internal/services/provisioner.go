package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"eventmanager/internal/domain"
)

const (
	ticketCodePrefix = "CT-"
	ticketCodeLength = 10
)

var ticketCodeAlphabet = []rune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")

func generateTicketCode() (string, error) {
	b := make([]rune, ticketCodeLength)
	max := big.NewInt(int64(len(ticketCodeAlphabet)))
	for i := 0; i < ticketCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = ticketCodeAlphabet[n.Int64()]
	}
	return ticketCodePrefix + string(b), nil
}

// accessProvisioner creates the zero-price access records a courtesy confers.
type accessProvisioner struct {
	logger     *slog.Logger
	now        func() time.Time
	ticketCode func() (string, error)
}

func newAccessProvisioner(logger *slog.Logger, now func() time.Time) *accessProvisioner {
	return &accessProvisioner{
		logger:     logger,
		now:        now,
		ticketCode: generateTicketCode,
	}
}

// Provision attaches whatever it creates to c. Existing open access is left alone.
func (p *accessProvisioner) Provision(ctx context.Context, tx domain.Store, c *domain.Courtesy, attendee *domain.Attendee, blocks []*domain.EvaluableBlock) error {
	switch c.Scope {
	case domain.CourtesyScopeFullEvent:
		return p.provisionRegistration(ctx, tx, c, attendee)
	case domain.CourtesyScopeSpecificBlocks:
		return p.provisionEnrollments(ctx, tx, c, attendee, blocks)
	default:
		// Access for assigned sessions comes from the speaker schedule.
		return nil
	}
}

func (p *accessProvisioner) provisionRegistration(ctx context.Context, tx domain.Store, c *domain.Courtesy, attendee *domain.Attendee) error {
	existing, err := tx.Registrations().FindByAttendeeAndEvent(ctx, attendee.ID, c.EventID, domain.OpenRegistrationStatuses)
	if err == nil {
		p.logger.InfoContext(ctx, "registration already exists, skipping",
			"courtesyID", c.ID, "eventID", c.EventID, "attendeeID", attendee.ID, "registrationID", existing.ID)
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("find registration: %w", err)
	}

	code, err := p.ticketCode()
	if err != nil {
		return fmt.Errorf("generate ticket code: %w", err)
	}
	reg := domain.NewCourtesyRegistration(attendee.ID, c.EventID, c.ID, code, p.now())
	if err := tx.Registrations().Create(ctx, reg); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	c.Registration = reg
	return nil
}

func (p *accessProvisioner) provisionEnrollments(ctx context.Context, tx domain.Store, c *domain.Courtesy, attendee *domain.Attendee, blocks []*domain.EvaluableBlock) error {
	for _, block := range blocks {
		existing, err := tx.Enrollments().FindByAttendeeAndBlock(ctx, attendee.ID, block.ID, domain.OpenEnrollmentStatuses)
		if err == nil {
			p.logger.InfoContext(ctx, "block enrollment already exists, skipping",
				"courtesyID", c.ID, "blockID", block.ID, "attendeeID", attendee.ID, "enrollmentID", existing.ID)
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("find block enrollment: %w", err)
		}

		e := domain.NewCourtesyEnrollment(attendee.ID, block, c.ID, p.now())
		if err := tx.Enrollments().Create(ctx, e); err != nil {
			return fmt.Errorf("create block enrollment: %w", err)
		}
		c.BlockEnrollments = append(c.BlockEnrollments, e)
	}
	return nil
}
