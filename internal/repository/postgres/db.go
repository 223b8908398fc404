package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventmanager/internal/domain"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SQLSTATE codes the store reacts to.
const (
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

var tracer = otel.Tracer("eventmanager/internal/repository/postgres")

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run inside or
// outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// store binds every repository to one DBTX.
type store struct {
	events        domain.EventRepository
	persons       domain.PersonRepository
	attendees     domain.AttendeeRepository
	speakers      domain.SpeakerRepository
	blocks        domain.EvaluableBlockRepository
	registrations domain.RegistrationRepository
	enrollments   domain.BlockEnrollmentRepository
	courtesies    domain.CourtesyRepository
}

func newStore(db DBTX) *store {
	return &store{
		events:        NewEventRepository(db),
		persons:       NewPersonRepository(db),
		attendees:     NewAttendeeRepository(db),
		speakers:      NewSpeakerRepository(db),
		blocks:        NewEvaluableBlockRepository(db),
		registrations: NewRegistrationRepository(db),
		enrollments:   NewBlockEnrollmentRepository(db),
		courtesies:    NewCourtesyRepository(db),
	}
}

func (s *store) Events() domain.EventRepository                { return s.events }
func (s *store) Persons() domain.PersonRepository              { return s.persons }
func (s *store) Attendees() domain.AttendeeRepository          { return s.attendees }
func (s *store) Speakers() domain.SpeakerRepository            { return s.speakers }
func (s *store) Blocks() domain.EvaluableBlockRepository       { return s.blocks }
func (s *store) Registrations() domain.RegistrationRepository  { return s.registrations }
func (s *store) Enrollments() domain.BlockEnrollmentRepository { return s.enrollments }
func (s *store) Courtesies() domain.CourtesyRepository         { return s.courtesies }

type unitOfWork struct {
	*store
	DB *sql.DB
}

// NewUnitOfWork returns a domain.UnitOfWork backed by Postgres.
func NewUnitOfWork(db *sql.DB) domain.UnitOfWork {
	return &unitOfWork{
		store: newStore(db),
		DB:    db,
	}
}

func (u *unitOfWork) Do(ctx context.Context, isolation domain.Isolation, fn func(ctx context.Context, tx domain.Store) error) (err error) {
	ctx, span := tracer.Start(ctx, "postgres.UnitOfWork.Do",
		trace.WithAttributes(attribute.String("db.isolation", isolationName(isolation))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	sqlTx, err := u.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sqlIsolation(isolation)})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(ctx, newStore(sqlTx)); err != nil {
		return mapTxError(err)
	}
	if err := sqlTx.Commit(); err != nil {
		return mapTxError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

func sqlIsolation(isolation domain.Isolation) sql.IsolationLevel {
	if isolation == domain.IsolationSerializable {
		return sql.LevelSerializable
	}
	return sql.LevelReadCommitted
}

func isolationName(isolation domain.Isolation) string {
	if isolation == domain.IsolationSerializable {
		return "serializable"
	}
	return "read_committed"
}

// mapTxError turns a lost serializable race into a domain conflict. Domain errors
// raised by fn pass through untouched.
func mapTxError(err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	var perr *pq.Error
	if errors.As(err, &perr) && (perr.Code == pqSerializationFailure || perr.Code == pqDeadlockDetected) {
		return domain.Conflict(domain.KeyConcurrentModification, "concurrent transaction conflict").
			WithCause(fmt.Errorf("%w: %v", domain.ErrSerialization, err))
	}
	return err
}

func isUniqueViolation(err error) bool {
	var perr *pq.Error
	return errors.As(err, &perr) && perr.Code == pqUniqueViolation
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
