package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventmanager/internal/domain"
)

type locationRepository struct {
	DB *sql.DB
}

func NewLocationRepository(db *sql.DB) domain.LocationRepository {
	return &locationRepository{
		DB: db,
	}
}

func (r *locationRepository) Create(ctx context.Context, l *domain.Location) error {
	query := `
		INSERT INTO locations (name, address, capacity, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return q(ctx, r.DB).QueryRowContext(ctx, query,
		l.Name, l.Address, l.Capacity, l.Description, l.CreatedAt, l.UpdatedAt,
	).Scan(&l.ID)
}

func (r *locationRepository) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	query := `
		SELECT id, name, address, capacity, description, created_at, updated_at
		FROM locations
		WHERE id = $1
	`
	l := &domain.Location{}
	err := q(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(
		&l.ID, &l.Name, &l.Address, &l.Capacity, &l.Description, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// GetByIDForUpdate locks the location row for the remainder of the
// surrounding transaction. Event create/update paths take this lock before
// summing reserved seats so two concurrent mutations cannot both see room.
func (r *locationRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Location, error) {
	query := `
		SELECT id, name, address, capacity, description, created_at, updated_at
		FROM locations
		WHERE id = $1
		FOR UPDATE
	`
	l := &domain.Location{}
	err := q(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(
		&l.ID, &l.Name, &l.Address, &l.Capacity, &l.Description, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *locationRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Location, int, error) {
	var total int
	if err := q(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM locations`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, name, address, capacity, description, created_at, updated_at
		FROM locations
		ORDER BY name
		LIMIT $1 OFFSET $2
	`
	rows, err := q(ctx, r.DB).QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	locations := make([]*domain.Location, 0)
	for rows.Next() {
		l := &domain.Location{}
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.Capacity, &l.Description, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, 0, err
		}
		locations = append(locations, l)
	}
	return locations, total, rows.Err()
}

func (r *locationRepository) Update(ctx context.Context, l *domain.Location) error {
	query := `
		UPDATE locations
		SET name = $1, address = $2, capacity = $3, description = $4, updated_at = NOW()
		WHERE id = $5
	`
	result, err := q(ctx, r.DB).ExecContext(ctx, query, l.Name, l.Address, l.Capacity, l.Description, l.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *locationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM locations WHERE id = $1`
	result, err := q(ctx, r.DB).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
