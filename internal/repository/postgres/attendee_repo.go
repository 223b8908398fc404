package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventmanager/internal/domain"
)

const attendeeColumns = `id, first_name, last_name, email, document_type, document_number, phone, created_at, updated_at`

type attendeeRepository struct {
	DB DBTX
}

func NewAttendeeRepository(db DBTX) domain.AttendeeRepository {
	return &attendeeRepository{DB: db}
}

func (r *attendeeRepository) Create(ctx context.Context, a *domain.Attendee) error {
	query := `
		INSERT INTO attendees (first_name, last_name, email, document_type, document_number, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		a.FirstName, a.LastName, a.Email, a.DocumentType, a.DocumentNumber, a.Phone, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
}

func (r *attendeeRepository) GetByID(ctx context.Context, id string) (*domain.Attendee, error) {
	return r.getOne(ctx, `SELECT `+attendeeColumns+` FROM attendees WHERE id = $1`, id)
}

// FindByEmailOrDocument prefers an email match over a document match. An empty
// document number never matches.
func (r *attendeeRepository) FindByEmailOrDocument(ctx context.Context, email, documentNumber string) (*domain.Attendee, error) {
	query := `
		SELECT ` + attendeeColumns + `
		FROM attendees
		WHERE lower(email) = lower($1) OR ($2 <> '' AND document_number = $2)
		ORDER BY (lower(email) = lower($1)) DESC, created_at ASC
		LIMIT 1
	`
	return r.getOne(ctx, query, email, documentNumber)
}

func (r *attendeeRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Attendee, error) {
	a := &domain.Attendee{}
	var phone sql.NullString
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.DocumentType, &a.DocumentNumber, &phone, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	a.Phone = phone.String
	return a, nil
}
