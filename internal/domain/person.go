package domain

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// Person is the canonical identity record of a human being across events.
// swagger:model Person
type Person struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	DocumentType   string    `json:"document_type"`
	DocumentNumber string    `json:"document_number"`
	Phone          string    `json:"phone,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FullName joins first and last name.
func (p *Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// RawPersonData is caller-supplied personal data used to find or create a Person.
// swagger:model RawPersonData
type RawPersonData struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	Phone          string `json:"phone,omitempty"`
}

// Normalize trims every field and lower-cases the email.
func (d *RawPersonData) Normalize() {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.DocumentType = strings.TrimSpace(d.DocumentType)
	d.DocumentNumber = strings.TrimSpace(d.DocumentNumber)
	d.Phone = strings.TrimSpace(d.Phone)
}

// Validate returns the list of missing required fields; nil means valid.
func (d *RawPersonData) Validate() []string {
	var errs []string
	if strings.TrimSpace(d.FirstName) == "" {
		errs = append(errs, "first_name is required")
	}
	if strings.TrimSpace(d.LastName) == "" {
		errs = append(errs, "last_name is required")
	}
	email := strings.TrimSpace(d.Email)
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "email is not a valid email address")
	}
	return errs
}

// PersonRepository defines storage operations for persons.
type PersonRepository interface {
	Create(ctx context.Context, p *Person) error
	GetByID(ctx context.Context, id string) (*Person, error)
	GetByEmail(ctx context.Context, email string) (*Person, error)
	GetByDocumentNumber(ctx context.Context, documentNumber string) (*Person, error)
}

// IdentityResolver returns canonical Person records, creating them when absent.
// Every call runs against the store it is given, so it joins the caller's transaction.
type IdentityResolver interface {
	FindByID(ctx context.Context, tx Store, id string) (*Person, error)
	FindByEmail(ctx context.Context, tx Store, email string) (*Person, error)
	FindOrCreate(ctx context.Context, tx Store, data RawPersonData) (*Person, error)
	Create(ctx context.Context, tx Store, data RawPersonData) (*Person, error)
}
