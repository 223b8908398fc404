package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventmanager/internal/domain"

	"github.com/lib/pq"
)

const courtesyColumns = `id, event_id, person_id, attendee_id, speaker_id, specific_block_ids, type, scope, status,
	granted_by, granted_at, valid_until, reason, notes, cancelled_by, cancelled_at, cancellation_reason,
	created_at, updated_at`

type courtesyRepository struct {
	DB DBTX
}

func NewCourtesyRepository(db DBTX) domain.CourtesyRepository {
	return &courtesyRepository{DB: db}
}

// Create inserts c and sets its ID. The partial unique index on (event_id, person_id)
// for ACTIVE and USED rows surfaces as an already-granted conflict.
func (r *courtesyRepository) Create(ctx context.Context, c *domain.Courtesy) error {
	query := `
		INSERT INTO courtesies (event_id, person_id, attendee_id, speaker_id, specific_block_ids, type, scope, status,
			granted_by, granted_at, valid_until, reason, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	blockIDs := c.SpecificBlockIDs
	if blockIDs == nil {
		blockIDs = []string{}
	}
	err := r.DB.QueryRowContext(ctx, query,
		c.EventID, c.PersonID, c.AttendeeID, c.SpeakerID, pq.Array(blockIDs), c.Type, c.Scope, c.Status,
		c.GrantedBy, c.GrantedAt, c.ValidUntil, c.Reason, c.Notes, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict(domain.KeyAlreadyGranted, "person already holds a courtesy for this event").WithCause(err)
		}
		return fmt.Errorf("insert courtesy: %w", err)
	}
	return nil
}

func (r *courtesyRepository) GetByID(ctx context.Context, id string) (*domain.Courtesy, error) {
	query := `SELECT ` + courtesyColumns + ` FROM courtesies WHERE id = $1`
	c, err := scanCourtesy(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *courtesyRepository) FindByEventAndPerson(ctx context.Context, eventID, personID string, statuses []domain.CourtesyStatus) (*domain.Courtesy, error) {
	query := `
		SELECT ` + courtesyColumns + `
		FROM courtesies
		WHERE event_id = $1 AND person_id = $2 AND status = ANY($3)
		LIMIT 1
	`
	s := make([]string, len(statuses))
	for i, st := range statuses {
		s[i] = string(st)
	}
	c, err := scanCourtesy(r.DB.QueryRowContext(ctx, query, eventID, personID, pq.Array(s)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *courtesyRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Courtesy, error) {
	query := `SELECT ` + courtesyColumns + ` FROM courtesies WHERE event_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, eventID)
}

func (r *courtesyRepository) ListByPersonID(ctx context.Context, personID string) ([]*domain.Courtesy, error) {
	query := `SELECT ` + courtesyColumns + ` FROM courtesies WHERE person_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, personID)
}

// UpdateStatus writes the status and cancellation fields of c. It matches only while
// the stored status is still from, so a concurrent transition yields a conflict.
func (r *courtesyRepository) UpdateStatus(ctx context.Context, c *domain.Courtesy, from domain.CourtesyStatus) error {
	query := `
		UPDATE courtesies
		SET status = $1, cancelled_by = $2, cancelled_at = $3, cancellation_reason = $4, updated_at = $5
		WHERE id = $6 AND status = $7
	`
	result, err := r.DB.ExecContext(ctx, query,
		c.Status, c.CancelledBy, c.CancelledAt, c.CancellationReason, c.UpdatedAt, c.ID, from,
	)
	if err != nil {
		return fmt.Errorf("update courtesy status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.Conflict(domain.KeyNotActive, "courtesy is no longer "+string(from))
	}
	return nil
}

func (r *courtesyRepository) list(ctx context.Context, query string, arg string) ([]*domain.Courtesy, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list courtesies: %w", err)
	}
	defer rows.Close()

	courtesies := []*domain.Courtesy{}
	for rows.Next() {
		c, err := scanCourtesy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan courtesy: %w", err)
		}
		courtesies = append(courtesies, c)
	}
	return courtesies, rows.Err()
}

func scanCourtesy(row rowScanner) (*domain.Courtesy, error) {
	c := &domain.Courtesy{}
	var (
		attendeeID, speakerID, reason, notes, cancelledBy, cancellationReason sql.NullString
		validUntil, cancelledAt                                               sql.NullTime
		blockIDs                                                              pq.StringArray
	)
	err := row.Scan(
		&c.ID, &c.EventID, &c.PersonID, &attendeeID, &speakerID, &blockIDs, &c.Type, &c.Scope, &c.Status,
		&c.GrantedBy, &c.GrantedAt, &validUntil, &reason, &notes, &cancelledBy, &cancelledAt, &cancellationReason,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.AttendeeID = stringPtr(attendeeID)
	c.SpeakerID = stringPtr(speakerID)
	c.SpecificBlockIDs = []string(blockIDs)
	if c.SpecificBlockIDs == nil {
		c.SpecificBlockIDs = []string{}
	}
	c.ValidUntil = timePtr(validUntil)
	c.Reason = stringPtr(reason)
	c.Notes = stringPtr(notes)
	c.CancelledBy = stringPtr(cancelledBy)
	c.CancelledAt = timePtr(cancelledAt)
	c.CancellationReason = stringPtr(cancellationReason)
	return c, nil
}
