package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventmanager/internal/domain"
)

const personColumns = `id, first_name, last_name, email, document_type, document_number, phone, created_at, updated_at`

type personRepository struct {
	DB DBTX
}

func NewPersonRepository(db DBTX) domain.PersonRepository {
	return &personRepository{DB: db}
}

func (r *personRepository) Create(ctx context.Context, p *domain.Person) error {
	query := `
		INSERT INTO persons (first_name, last_name, email, document_type, document_number, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		p.FirstName, p.LastName, p.Email, p.DocumentType, p.DocumentNumber, p.Phone, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
}

func (r *personRepository) GetByID(ctx context.Context, id string) (*domain.Person, error) {
	return r.getOne(ctx, `SELECT `+personColumns+` FROM persons WHERE id = $1`, id)
}

func (r *personRepository) GetByEmail(ctx context.Context, email string) (*domain.Person, error) {
	return r.getOne(ctx, `SELECT `+personColumns+` FROM persons WHERE lower(email) = lower($1) LIMIT 1`, email)
}

func (r *personRepository) GetByDocumentNumber(ctx context.Context, documentNumber string) (*domain.Person, error) {
	return r.getOne(ctx, `SELECT `+personColumns+` FROM persons WHERE document_number = $1 LIMIT 1`, documentNumber)
}

func (r *personRepository) getOne(ctx context.Context, query string, arg string) (*domain.Person, error) {
	p := &domain.Person{}
	var phone sql.NullString
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.DocumentType, &p.DocumentNumber, &phone, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Phone = phone.String
	return p, nil
}
