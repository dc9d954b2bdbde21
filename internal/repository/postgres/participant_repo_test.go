package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planmeet/internal/domain"
)

func TestParticipantRepository_Create(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO participants \(user_id, event_id, availability\)`).
		WithArgs(int64(2), int64(10), "[]").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	repo := NewParticipantRepository(db)
	p := domain.NewParticipant(10, 2, "[]")
	require.NoError(t, repo.Create(ctx, p))
	assert.Equal(t, int64(1), p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantRepository_ListByEventID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantLen int
		wantErr bool
	}{
		{
			name: "two rows",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, user_id, event_id, availability`).
					WithArgs(int64(10)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "event_id", "availability"}).
						AddRow(int64(1), int64(2), int64(10), `["2024-06-01T00:00:00.000Z"]`).
						AddRow(int64(2), int64(3), int64(10), "[]"))
			},
			wantLen: 2,
		},
		{
			name: "empty result is a non-nil slice",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, user_id, event_id, availability`).
					WithArgs(int64(10)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "event_id", "availability"}))
			},
			wantLen: 0,
		},
		{
			name: "query error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, user_id, event_id, availability`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewParticipantRepository(db)
			got, err := repo.ListByEventID(ctx, 10)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Len(t, got, tt.wantLen)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestParticipantRepository_UpdateAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("updates first matching row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE participants`).
			WithArgs(int64(2), int64(10), `["2024-06-01T00:00:00.000Z"]`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewParticipantRepository(db)
		err = repo.UpdateAvailability(ctx, 2, 10, `["2024-06-01T00:00:00.000Z"]`)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no matching row is a silent no-op", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE participants`).
			WithArgs(int64(99), int64(10), "[]").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewParticipantRepository(db)
		require.NoError(t, repo.UpdateAvailability(ctx, 99, 10, "[]"))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
