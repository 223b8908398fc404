package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventmanager/internal/domain"

	"github.com/lib/pq"
)

const enrollmentColumns = `id, attendee_id, block_id, courtesy_id, status, original_price, final_price, discount, sessions_attended, total_sessions, attendance_percentage, enrolled_at, updated_at`

type blockEnrollmentRepository struct {
	DB DBTX
}

func NewBlockEnrollmentRepository(db DBTX) domain.BlockEnrollmentRepository {
	return &blockEnrollmentRepository{DB: db}
}

func (r *blockEnrollmentRepository) Create(ctx context.Context, e *domain.BlockEnrollment) error {
	query := `
		INSERT INTO block_enrollments (attendee_id, block_id, courtesy_id, status, original_price, final_price, discount,
			sessions_attended, total_sessions, attendance_percentage, enrolled_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.AttendeeID, e.BlockID, e.CourtesyID, e.Status, e.OriginalPrice, e.FinalPrice, e.Discount,
		e.SessionsAttended, e.TotalSessions, e.AttendancePercentage, e.EnrolledAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert block enrollment: %w", err)
	}
	return nil
}

func (r *blockEnrollmentRepository) FindByAttendeeAndBlock(ctx context.Context, attendeeID, blockID string, statuses []domain.EnrollmentStatus) (*domain.BlockEnrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM block_enrollments
		WHERE attendee_id = $1 AND block_id = $2 AND status = ANY($3)
		ORDER BY enrolled_at ASC
		LIMIT 1
	`
	e, err := scanEnrollment(r.DB.QueryRowContext(ctx, query, attendeeID, blockID, pq.Array(enrollmentStatusStrings(statuses))))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *blockEnrollmentRepository) ListByAttendeeAndBlocks(ctx context.Context, attendeeID string, blockIDs []string) ([]*domain.BlockEnrollment, error) {
	if len(blockIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + enrollmentColumns + `
		FROM block_enrollments
		WHERE attendee_id = $1 AND block_id = ANY($2)
		ORDER BY enrolled_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, attendeeID, pq.Array(blockIDs))
	if err != nil {
		return nil, fmt.Errorf("list block enrollments: %w", err)
	}
	defer rows.Close()

	var out []*domain.BlockEnrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan block enrollment: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *blockEnrollmentRepository) UpdateStatus(ctx context.Context, id string, status domain.EnrollmentStatus, updatedAt time.Time) error {
	query := `UPDATE block_enrollments SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.DB.ExecContext(ctx, query, status, updatedAt, id)
	if err != nil {
		return fmt.Errorf("update block enrollment status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanEnrollment(row rowScanner) (*domain.BlockEnrollment, error) {
	e := &domain.BlockEnrollment{}
	var courtesyID sql.NullString
	err := row.Scan(
		&e.ID, &e.AttendeeID, &e.BlockID, &courtesyID, &e.Status, &e.OriginalPrice, &e.FinalPrice, &e.Discount,
		&e.SessionsAttended, &e.TotalSessions, &e.AttendancePercentage, &e.EnrolledAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.CourtesyID = stringPtr(courtesyID)
	return e, nil
}

func enrollmentStatusStrings(statuses []domain.EnrollmentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
