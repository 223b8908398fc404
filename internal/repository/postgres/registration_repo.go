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

const registrationColumns = `id, attendee_id, event_id, courtesy_id, ticket_code, status, original_price, final_price, discount, attended, attended_at, created_at, updated_at`

type registrationRepository struct {
	DB DBTX
}

func NewRegistrationRepository(db DBTX) domain.RegistrationRepository {
	return &registrationRepository{DB: db}
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (attendee_id, event_id, courtesy_id, ticket_code, status, original_price, final_price, discount, attended, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		reg.AttendeeID, reg.EventID, reg.CourtesyID, reg.TicketCode, reg.Status,
		reg.OriginalPrice, reg.FinalPrice, reg.Discount, reg.Attended, reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (r *registrationRepository) FindByAttendeeAndEvent(ctx context.Context, attendeeID, eventID string, statuses []domain.RegistrationStatus) (*domain.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE attendee_id = $1 AND event_id = $2 AND status = ANY($3)
		ORDER BY created_at ASC
		LIMIT 1
	`
	return r.getOne(ctx, query, attendeeID, eventID, pq.Array(registrationStatusStrings(statuses)))
}

func (r *registrationRepository) GetByCourtesyID(ctx context.Context, courtesyID string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE courtesy_id = $1 LIMIT 1`
	return r.getOne(ctx, query, courtesyID)
}

func (r *registrationRepository) UpdateStatus(ctx context.Context, id string, status domain.RegistrationStatus, updatedAt time.Time) error {
	query := `UPDATE registrations SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.DB.ExecContext(ctx, query, status, updatedAt, id)
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
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

func (r *registrationRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var courtesyID sql.NullString
	var attendedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&reg.ID, &reg.AttendeeID, &reg.EventID, &courtesyID, &reg.TicketCode, &reg.Status,
		&reg.OriginalPrice, &reg.FinalPrice, &reg.Discount, &reg.Attended, &attendedAt,
		&reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	reg.CourtesyID = stringPtr(courtesyID)
	reg.AttendedAt = timePtr(attendedAt)
	return reg, nil
}

func registrationStatusStrings(statuses []domain.RegistrationStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
