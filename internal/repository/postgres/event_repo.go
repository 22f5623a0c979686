package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventmanager/internal/domain"
)

const eventColumns = "id, name, owner_id, max_places, occupied_places, date, cost, duration_minutes, location_id, status, created_at, updated_at"

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(row interface{ Scan(dest ...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(
		&e.ID, &e.Name, &e.OwnerID, &e.MaxPlaces, &e.OccupiedPlaces,
		&e.Date, &e.Cost, &e.DurationMinutes, &e.LocationID, &e.Status,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, owner_id, max_places, occupied_places, date, cost, duration_minutes, location_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return q(ctx, r.DB).QueryRowContext(ctx, query,
		e.Name, e.OwnerID, e.MaxPlaces, e.OccupiedPlaces, e.Date, e.Cost,
		e.DurationMinutes, e.LocationID, e.Status, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	return scanEvent(q(ctx, r.DB).QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate locks the event row for the remainder of the surrounding
// transaction. Register, cancel, status writes and scheduler ticks all take
// this lock, which makes per-event seat and status updates linearizable.
func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
		FOR UPDATE
	`
	return scanEvent(q(ctx, r.DB).QueryRowContext(ctx, query, id))
}

func (r *eventRepository) ListActiveByLocationID(ctx context.Context, locationID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE location_id = $1 AND status <> $2
		ORDER BY date
	`
	rows, err := q(ctx, r.DB).QueryContext(ctx, query, locationID, domain.StatusCancelled)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *eventRepository) ListUnfinished(ctx context.Context) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE status IN ($1, $2)
		ORDER BY date
	`
	rows, err := q(ctx, r.DB).QueryContext(ctx, query, domain.StatusWaitStart, domain.StatusStarted)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *eventRepository) Search(ctx context.Context, filter domain.EventSearchFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	n := 1
	add := func(clause string, arg any) {
		where = append(where, fmt.Sprintf(clause, n))
		args = append(args, arg)
		n++
	}
	if filter.Name != "" {
		add("name ILIKE '%%' || $%d || '%%'", filter.Name)
	}
	if filter.LocationID != "" {
		add("location_id = $%d", filter.LocationID)
	}
	if filter.OwnerID != "" {
		add("owner_id = $%d", filter.OwnerID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.DateFrom != nil {
		add("date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		add("date <= $%d", *filter.DateTo)
	}
	cond := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM events WHERE " + cond
	if err := q(ctx, r.DB).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT `+eventColumns+`
		FROM events
		WHERE %s
		ORDER BY date
		LIMIT $%d OFFSET $%d
	`, cond, n, n+1)
	args = append(args, params.PageSize, params.Offset())
	rows, err := q(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET name = $1, max_places = $2, date = $3, cost = $4, duration_minutes = $5, location_id = $6, status = $7, updated_at = NOW()
		WHERE id = $8
	`
	result, err := q(ctx, r.DB).ExecContext(ctx, query,
		e.Name, e.MaxPlaces, e.Date, e.Cost, e.DurationMinutes, e.LocationID, e.Status, e.ID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id string, status domain.EventStatus) error {
	query := `UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := q(ctx, r.DB).ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) AddOccupiedPlaces(ctx context.Context, id string, delta int) error {
	query := `UPDATE events SET occupied_places = occupied_places + $1, updated_at = NOW() WHERE id = $2`
	result, err := q(ctx, r.DB).ExecContext(ctx, query, delta, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func collectEvents(rows *sql.Rows) ([]*domain.Event, error) {
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		if err := rows.Scan(
			&e.ID, &e.Name, &e.OwnerID, &e.MaxPlaces, &e.OccupiedPlaces,
			&e.Date, &e.Cost, &e.DurationMinutes, &e.LocationID, &e.Status,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
