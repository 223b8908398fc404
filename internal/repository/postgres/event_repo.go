package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventmanager/internal/domain"
)

type eventRepository struct {
	DB DBTX
}

func NewEventRepository(db DBTX) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, name, status, is_active, price, start_date, created_at, updated_at
		FROM events
		WHERE id = $1
	`
	e := &domain.Event{}
	var startNull sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.Status, &e.IsActive, &e.Price, &startNull, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	e.StartDate = timePtr(startNull)
	return e, nil
}
