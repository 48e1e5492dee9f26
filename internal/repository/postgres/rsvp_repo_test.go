package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"eventflow/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

const (
	testEventID = "ev-uuid-1"
	testUserID  = "user-uuid-1"
)

func existsRows(exists bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"exists"}).AddRow(exists)
}

func TestRSVPRepository_Join(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
		wantID  string
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM rsvps WHERE event_id = \$1 AND user_id = \$2\)`).
					WithArgs(testEventID, testUserID).
					WillReturnRows(existsRows(false))
				mock.ExpectQuery(`SELECT capacity, rsvp_count FROM events WHERE id = \$1 FOR UPDATE`).
					WithArgs(testEventID).
					WillReturnRows(sqlmock.NewRows([]string{"capacity", "rsvp_count"}).AddRow(10, 4))
				mock.ExpectQuery(`INSERT INTO rsvps \(event_id, user_id, created_at\)`).
					WithArgs(testEventID, testUserID, sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("rsvp-uuid-1"))
				mock.ExpectExec(`UPDATE events SET rsvp_count = rsvp_count \+ 1 WHERE id = \$1`).
					WithArgs(testEventID).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			wantID: "rsvp-uuid-1",
		},
		{
			name: "already joined via pre-check",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(testEventID, testUserID).
					WillReturnRows(existsRows(true))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrAlreadyJoined,
		},
		{
			name: "event not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(testEventID, testUserID).
					WillReturnRows(existsRows(false))
				mock.ExpectQuery(`SELECT capacity, rsvp_count FROM events`).
					WithArgs(testEventID).
					WillReturnError(sql.ErrNoRows)
				mock.ExpectRollback()
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "event full",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(testEventID, testUserID).
					WillReturnRows(existsRows(false))
				mock.ExpectQuery(`SELECT capacity, rsvp_count FROM events`).
					WithArgs(testEventID).
					WillReturnRows(sqlmock.NewRows([]string{"capacity", "rsvp_count"}).AddRow(10, 10))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrEventFull,
		},
		{
			name: "unique violation on insert maps to already joined",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(testEventID, testUserID).
					WillReturnRows(existsRows(false))
				mock.ExpectQuery(`SELECT capacity, rsvp_count FROM events`).
					WithArgs(testEventID).
					WillReturnRows(sqlmock.NewRows([]string{"capacity", "rsvp_count"}).AddRow(10, 4))
				mock.ExpectQuery(`INSERT INTO rsvps`).
					WithArgs(testEventID, testUserID, sqlmock.AnyArg()).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "rsvps_event_user_key"})
				mock.ExpectRollback()
			},
			wantErr: domain.ErrAlreadyJoined,
		},
		{
			name: "serialization failure maps to tx conflict",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(testEventID, testUserID).
					WillReturnRows(existsRows(false))
				mock.ExpectQuery(`SELECT capacity, rsvp_count FROM events`).
					WithArgs(testEventID).
					WillReturnError(&pq.Error{Code: "40001"})
				mock.ExpectRollback()
			},
			wantErr: domain.ErrTxConflict,
		},
		{
			name: "deadlock on increment maps to tx conflict",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(testEventID, testUserID).
					WillReturnRows(existsRows(false))
				mock.ExpectQuery(`SELECT capacity, rsvp_count FROM events`).
					WithArgs(testEventID).
					WillReturnRows(sqlmock.NewRows([]string{"capacity", "rsvp_count"}).AddRow(10, 4))
				mock.ExpectQuery(`INSERT INTO rsvps`).
					WithArgs(testEventID, testUserID, sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("rsvp-uuid-1"))
				mock.ExpectExec(`UPDATE events SET rsvp_count = rsvp_count \+ 1`).
					WithArgs(testEventID).
					WillReturnError(&pq.Error{Code: "40P01"})
				mock.ExpectRollback()
			},
			wantErr: domain.ErrTxConflict,
		},
		{
			name: "increment failure rolls back",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(testEventID, testUserID).
					WillReturnRows(existsRows(false))
				mock.ExpectQuery(`SELECT capacity, rsvp_count FROM events`).
					WithArgs(testEventID).
					WillReturnRows(sqlmock.NewRows([]string{"capacity", "rsvp_count"}).AddRow(10, 4))
				mock.ExpectQuery(`INSERT INTO rsvps`).
					WithArgs(testEventID, testUserID, sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("rsvp-uuid-1"))
				mock.ExpectExec(`UPDATE events SET rsvp_count = rsvp_count \+ 1`).
					WithArgs(testEventID).
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewRSVPRepository(db)
			rsvp, err := repo.Join(ctx, testEventID, testUserID)
			if tt.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
				require.Nil(t, rsvp)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, rsvp.ID)
			require.Equal(t, testEventID, rsvp.EventID)
			require.Equal(t, testUserID, rsvp.UserID)
			require.False(t, rsvp.CreatedAt.IsZero())
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRSVPRepository_Leave(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM rsvps WHERE event_id = \$1 AND user_id = \$2`).
					WithArgs(testEventID, testUserID).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`UPDATE events SET rsvp_count = rsvp_count - 1 WHERE id = \$1 AND rsvp_count > 0`).
					WithArgs(testEventID).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "not joined",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM rsvps`).
					WithArgs(testEventID, testUserID).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrNotJoined,
		},
		{
			name: "counter already at zero still commits",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM rsvps`).
					WithArgs(testEventID, testUserID).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`UPDATE events SET rsvp_count = rsvp_count - 1`).
					WithArgs(testEventID).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectCommit()
			},
		},
		{
			name: "deadlock on delete maps to tx conflict",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM rsvps`).
					WithArgs(testEventID, testUserID).
					WillReturnError(&pq.Error{Code: "40P01"})
				mock.ExpectRollback()
			},
			wantErr: domain.ErrTxConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewRSVPRepository(db)
			err = repo.Leave(ctx, testEventID, testUserID)
			if tt.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRSVPRepository_Exists(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM rsvps WHERE event_id = \$1 AND user_id = \$2\)`).
		WithArgs(testEventID, testUserID).
		WillReturnRows(existsRows(true))

	repo := NewRSVPRepository(db)
	got, err := repo.Exists(ctx, testEventID, testUserID)
	require.NoError(t, err)
	require.True(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRSVPRepository_ListEventsByUserID(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	eventDate := time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantLen int
		wantErr bool
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{
					"id", "title", "description", "date_time", "location", "capacity", "rsvp_count",
					"image_url", "category", "created_by", "created_at", "updated_at",
				}).
					AddRow("ev-1", "Go Meetup", "Talks", eventDate, "Berlin", 50, 12, "https://img/1", "tech", "user-2", createdAt, createdAt).
					AddRow("ev-2", "Picnic", "Park", eventDate.Add(24*time.Hour), "Park", 20, 5, "https://img/2", nil, "user-3", createdAt, createdAt)
				mock.ExpectQuery(`SELECT e\.id, e\.title, e\.description, e\.date_time`).
					WithArgs(testUserID).
					WillReturnRows(rows)
			},
			wantLen: 2,
		},
		{
			name: "empty",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT e\.id, e\.title`).
					WithArgs(testUserID).
					WillReturnRows(sqlmock.NewRows([]string{
						"id", "title", "description", "date_time", "location", "capacity", "rsvp_count",
						"image_url", "category", "created_by", "created_at", "updated_at",
					}))
			},
			wantLen: 0,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT e\.id, e\.title`).
					WithArgs(testUserID).
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
			repo := NewRSVPRepository(db)
			events, err := repo.ListEventsByUserID(ctx, testUserID)
			if tt.wantErr {
				require.Error(t, err)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Len(t, events, tt.wantLen)
			if tt.wantLen > 0 {
				require.Equal(t, "Go Meetup", events[0].Title)
				require.NotNil(t, events[0].Category)
				require.Equal(t, "tech", *events[0].Category)
				require.Nil(t, events[1].Category)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
