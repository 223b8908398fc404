package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventmanager/internal/domain"
)

const speakerColumns = `id, event_id, person_id, first_name, last_name, email, created_at, updated_at`

type speakerRepository struct {
	DB DBTX
}

func NewSpeakerRepository(db DBTX) domain.SpeakerRepository {
	return &speakerRepository{DB: db}
}

func (r *speakerRepository) GetByID(ctx context.Context, id string) (*domain.Speaker, error) {
	query := `SELECT ` + speakerColumns + ` FROM speakers WHERE id = $1`
	s, err := scanSpeaker(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *speakerRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Speaker, error) {
	query := `SELECT ` + speakerColumns + ` FROM speakers WHERE event_id = $1 ORDER BY created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list speakers: %w", err)
	}
	defer rows.Close()

	var speakers []*domain.Speaker
	for rows.Next() {
		s, err := scanSpeaker(rows)
		if err != nil {
			return nil, fmt.Errorf("scan speaker: %w", err)
		}
		speakers = append(speakers, s)
	}
	return speakers, rows.Err()
}

func scanSpeaker(row rowScanner) (*domain.Speaker, error) {
	s := &domain.Speaker{}
	var personID, email sql.NullString
	if err := row.Scan(&s.ID, &s.EventID, &personID, &s.FirstName, &s.LastName, &email, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.PersonID = stringPtr(personID)
	s.Email = email.String
	return s, nil
}
