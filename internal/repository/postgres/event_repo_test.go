package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"eventmanager/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eventCols = []string{
	"id", "name", "owner_id", "max_places", "occupied_places", "date",
	"cost", "duration_minutes", "location_id", "status", "created_at", "updated_at",
}

func eventRow(id string, status domain.EventStatus) *sqlmock.Rows {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(eventCols).
		AddRow(id, "Go Meetup", "user-1", 50, 10, now.Add(48*time.Hour), 25, 90, "loc-1", status, now, now)
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events \(name, owner_id, max_places, occupied_places, date, cost, duration_minutes, location_id, status, created_at, updated_at\)`).
					WithArgs("Go Meetup", "user-1", 50, 0, now.Add(48*time.Hour), 25, 90, "loc-1", domain.StatusWaitStart, now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-uuid-1"))
			},
			wantID: "ev-uuid-1",
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).WillReturnError(sql.ErrConnDone)
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

			repo := NewEventRepository(db)
			event := domain.NewEvent("Go Meetup", "user-1", "loc-1", 50, 25, 90, now.Add(48*time.Hour), now)
			err = repo.Create(ctx, event)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, event.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`FROM events\s+WHERE id = \$1`).
			WithArgs("ev-1").
			WillReturnRows(eventRow("ev-1", domain.StatusWaitStart))

		event, err := NewEventRepository(db).GetByID(ctx, "ev-1")
		require.NoError(t, err)
		assert.Equal(t, "ev-1", event.ID)
		assert.Equal(t, 50, event.MaxPlaces)
		assert.Equal(t, domain.StatusWaitStart, event.Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`FROM events\s+WHERE id = \$1`).
			WithArgs("ev-missing").
			WillReturnError(sql.ErrNoRows)

		_, err = NewEventRepository(db).GetByID(ctx, "ev-missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_GetByIDForUpdate(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery(`FROM events\s+WHERE id = \$1\s+FOR UPDATE`).
		WithArgs("ev-1").
		WillReturnRows(eventRow("ev-1", domain.StatusStarted))

	event, err := NewEventRepository(db).GetByIDForUpdate(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusStarted, event.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_ListActiveByLocationID(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery(`FROM events\s+WHERE location_id = \$1 AND status <> \$2`).
		WithArgs("loc-1", domain.StatusCancelled).
		WillReturnRows(eventRow("ev-1", domain.StatusWaitStart))

	events, err := NewEventRepository(db).ListActiveByLocationID(ctx, "loc-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ev-1", events[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_ListUnfinished(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery(`FROM events\s+WHERE status IN \(\$1, \$2\)`).
		WithArgs(domain.StatusWaitStart, domain.StatusStarted).
		WillReturnRows(eventRow("ev-1", domain.StatusWaitStart))

	events, err := NewEventRepository(db).ListUnfinished(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("no filters", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events WHERE TRUE`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`FROM events\s+WHERE TRUE\s+ORDER BY date\s+LIMIT \$1 OFFSET \$2`).
			WithArgs(20, 0).
			WillReturnRows(eventRow("ev-1", domain.StatusWaitStart))

		events, total, err := NewEventRepository(db).Search(ctx, domain.EventSearchFilter{}, domain.PaginationParams{Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, events, 1)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filters number their placeholders in order", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events WHERE TRUE AND location_id = \$1 AND status = \$2`).
			WithArgs("loc-1", domain.StatusWaitStart).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`WHERE TRUE AND location_id = \$1 AND status = \$2\s+ORDER BY date\s+LIMIT \$3 OFFSET \$4`).
			WithArgs("loc-1", domain.StatusWaitStart, 10, 10).
			WillReturnRows(sqlmock.NewRows(eventCols))

		filter := domain.EventSearchFilter{LocationID: "loc-1", Status: domain.StatusWaitStart}
		events, total, err := NewEventRepository(db).Search(ctx, filter, domain.PaginationParams{Page: 2, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.Empty(t, events)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectExec(`UPDATE events SET status = \$1, updated_at = NOW\(\) WHERE id = \$2`).
			WithArgs(domain.StatusStarted, "ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewEventRepository(db).UpdateStatus(ctx, "ev-1", domain.StatusStarted))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectExec(`UPDATE events SET status = \$1, updated_at = NOW\(\) WHERE id = \$2`).
			WithArgs(domain.StatusStarted, "ev-missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = NewEventRepository(db).UpdateStatus(ctx, "ev-missing", domain.StatusStarted)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_AddOccupiedPlaces(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectExec(`UPDATE events SET occupied_places = occupied_places \+ \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs(-1, "ev-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewEventRepository(db).AddOccupiedPlaces(ctx, "ev-1", -1))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectExec(`UPDATE events\s+SET name = \$1, max_places = \$2, date = \$3, cost = \$4, duration_minutes = \$5, location_id = \$6, status = \$7, updated_at = NOW\(\)\s+WHERE id = \$8`).
		WithArgs("Renamed", 60, sqlmock.AnyArg(), 30, 120, "loc-2", domain.StatusWaitStart, "ev-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	event := &domain.Event{
		ID: "ev-1", Name: "Renamed", MaxPlaces: 60, Date: time.Now(),
		Cost: 30, DurationMinutes: 120, LocationID: "loc-2", Status: domain.StatusWaitStart,
	}
	require.NoError(t, NewEventRepository(db).Update(ctx, event))
	require.NoError(t, mock.ExpectationsWereMet())
}
