package domain

import "context"

// Isolation is the transaction isolation level requested from a UnitOfWork.
type Isolation int

const (
	IsolationReadCommitted Isolation = iota
	IsolationSerializable
)

// Store is the typed set of repositories bound to one connection or transaction.
type Store interface {
	Events() EventRepository
	Persons() PersonRepository
	Attendees() AttendeeRepository
	Speakers() SpeakerRepository
	Blocks() EvaluableBlockRepository
	Registrations() RegistrationRepository
	Enrollments() BlockEnrollmentRepository
	Courtesies() CourtesyRepository
}

// UnitOfWork runs fn inside one transaction. The Store handed to fn is bound to
// that transaction; fn returning an error rolls everything back, nil commits.
// The embedded Store reads outside any transaction.
type UnitOfWork interface {
	Store
	Do(ctx context.Context, isolation Isolation, fn func(ctx context.Context, tx Store) error) error
}
