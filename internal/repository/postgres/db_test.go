package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventmanager/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_Do(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		fn      func(ctx context.Context, tx domain.Store) error
		check   func(t *testing.T, err error)
	}{
		{
			name: "commits on success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE registrations SET status`).
					WithArgs(domain.RegistrationStatusCancelled, now, "reg-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			fn: func(ctx context.Context, tx domain.Store) error {
				return tx.Registrations().UpdateStatus(ctx, "reg-1", domain.RegistrationStatusCancelled, now)
			},
			check: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
		{
			name: "rolls back when fn fails",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn: func(ctx context.Context, tx domain.Store) error {
				return domain.Invalid(domain.KeyBlocksInvalid, "bad block")
			},
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidInput)
				require.Equal(t, domain.KeyBlocksInvalid, domain.MessageKey(err))
			},
		},
		{
			name: "serialization failure becomes retryable conflict",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE block_enrollments SET status`).
					WillReturnError(&pq.Error{Code: pqSerializationFailure})
				mock.ExpectRollback()
			},
			fn: func(ctx context.Context, tx domain.Store) error {
				return tx.Enrollments().UpdateStatus(ctx, "enr-1", domain.EnrollmentStatusCancelled, now)
			},
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, domain.ErrConflict)
				require.True(t, domain.IsRetryable(err))
				require.Equal(t, domain.KeyConcurrentModification, domain.MessageKey(err))
			},
		},
		{
			name: "other errors pass through",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn: func(ctx context.Context, tx domain.Store) error {
				return errors.New("boom")
			},
			check: func(t *testing.T, err error) {
				require.EqualError(t, err, "boom")
				require.False(t, domain.IsRetryable(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			uow := NewUnitOfWork(db)
			err = uow.Do(ctx, domain.IsolationSerializable, tt.fn)
			tt.check(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
