package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"eventmanager/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestRegistrationRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO registrations`).
		WithArgs("att-1", "ev-1", "c-1", "CT-ABC123", domain.RegistrationStatusConfirmed,
			"0", "0", "0", false, now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("reg-1"))

	reg := domain.NewCourtesyRegistration("att-1", "ev-1", "c-1", "CT-ABC123", now)
	require.NoError(t, NewRegistrationRepository(db).Create(ctx, reg))
	require.Equal(t, "reg-1", reg.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepository_FindByAttendeeAndEvent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cols := []string{"id", "attendee_id", "event_id", "courtesy_id", "ticket_code", "status",
		"original_price", "final_price", "discount", "attended", "attended_at", "created_at", "updated_at"}

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr error
	}{
		{
			name: "open registration found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE attendee_id = \$1 AND event_id = \$2 AND status = ANY\(\$3\)`).
					WithArgs("att-1", "ev-1", `{"CONFIRMED","PENDING"}`).
					WillReturnRows(sqlmock.NewRows(cols).AddRow(
						"reg-9", "att-1", "ev-1", nil, "EV-XYZ", "CONFIRMED", "120.00", "120.00", "0", false, nil, now, now))
			},
			wantID: "reg-9",
		},
		{
			name: "none",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM registrations`).WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			reg, err := NewRegistrationRepository(db).FindByAttendeeAndEvent(ctx, "att-1", "ev-1", domain.OpenRegistrationStatuses)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, reg.ID)
			require.Nil(t, reg.CourtesyID)
			require.Equal(t, "120", reg.FinalPrice.String())
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegistrationRepository_UpdateStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE registrations`).WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewRegistrationRepository(db).UpdateStatus(context.Background(), "missing", domain.RegistrationStatusCancelled, time.Now())
	require.ErrorIs(t, err, domain.ErrNotFound)
}
