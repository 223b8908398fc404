package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventmanager/internal/domain"
)

type identityResolver struct {
	now func() time.Time
}

// NewIdentityResolver returns a resolver that reads and writes persons through the
// store handed to each call.
func NewIdentityResolver(now func() time.Time) domain.IdentityResolver {
	if now == nil {
		now = time.Now
	}
	return &identityResolver{now: now}
}

func (r *identityResolver) FindByID(ctx context.Context, tx domain.Store, id string) (*domain.Person, error) {
	p, err := tx.Persons().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(domain.KeyPersonNotFound, "person "+id+" not found")
		}
		return nil, fmt.Errorf("get person: %w", err)
	}
	return p, nil
}

func (r *identityResolver) FindByEmail(ctx context.Context, tx domain.Store, email string) (*domain.Person, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	p, err := tx.Persons().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(domain.KeyPersonNotFound, "no person with email "+email)
		}
		return nil, fmt.Errorf("get person by email: %w", err)
	}
	return p, nil
}

// FindOrCreate matches on email first, then on document number, and creates a new
// person when neither matches.
func (r *identityResolver) FindOrCreate(ctx context.Context, tx domain.Store, data domain.RawPersonData) (*domain.Person, error) {
	data.Normalize()
	if errs := data.Validate(); len(errs) > 0 {
		return nil, domain.Invalid(domain.KeyPersonDataInvalid, strings.Join(errs, "; "))
	}

	p, err := tx.Persons().GetByEmail(ctx, data.Email)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get person by email: %w", err)
	}

	if data.DocumentNumber != "" {
		p, err = tx.Persons().GetByDocumentNumber(ctx, data.DocumentNumber)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get person by document: %w", err)
		}
	}

	return r.create(ctx, tx, data)
}

func (r *identityResolver) Create(ctx context.Context, tx domain.Store, data domain.RawPersonData) (*domain.Person, error) {
	data.Normalize()
	if errs := data.Validate(); len(errs) > 0 {
		return nil, domain.Invalid(domain.KeyPersonDataInvalid, strings.Join(errs, "; "))
	}
	return r.create(ctx, tx, data)
}

func (r *identityResolver) create(ctx context.Context, tx domain.Store, data domain.RawPersonData) (*domain.Person, error) {
	now := r.now()
	p := &domain.Person{
		FirstName:      data.FirstName,
		LastName:       data.LastName,
		Email:          data.Email,
		DocumentType:   data.DocumentType,
		DocumentNumber: data.DocumentNumber,
		Phone:          data.Phone,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.Persons().Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create person: %w", err)
	}
	return p, nil
}

type attendeeMaterializer struct {
	now func() time.Time
}

// NewAttendeeMaterializer returns a materializer that reuses an attendee matched by
// email or document number and otherwise creates one.
func NewAttendeeMaterializer(now func() time.Time) domain.AttendeeMaterializer {
	if now == nil {
		now = time.Now
	}
	return &attendeeMaterializer{now: now}
}

func (m *attendeeMaterializer) Materialize(ctx context.Context, tx domain.Store, person *domain.Person) (*domain.Attendee, error) {
	a, err := tx.Attendees().FindByEmailOrDocument(ctx, person.Email, person.DocumentNumber)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find attendee: %w", err)
	}

	a = domain.NewAttendeeFromPerson(person, m.now())
	if err := tx.Attendees().Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create attendee: %w", err)
	}
	return a, nil
}
