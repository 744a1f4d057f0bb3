package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/weatherbook/webapp/types"
)

// CityRepository handles persistence for tracked cities.
type CityRepository struct {
	db *sql.DB
}

func NewCityRepository(db *sql.DB) *CityRepository {
	return &CityRepository{db: db}
}

func (r *CityRepository) ListByUser(ctx context.Context, userID int) ([]types.City, error) {
	const query = `
		SELECT id, city_name, temperature, icon, description, fetched_at, user_id
		FROM cities
		WHERE user_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cities := make([]types.City, 0)
	for rows.Next() {
		var city types.City
		if err := rows.Scan(
			&city.ID,
			&city.Name,
			&city.Temperature,
			&city.Icon,
			&city.Description,
			&city.FetchedAt,
			&city.UserID,
		); err != nil {
			return nil, err
		}
		cities = append(cities, city)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *CityRepository) Get(ctx context.Context, id int) (types.City, error) {
	const query = `
		SELECT id, city_name, temperature, icon, description, fetched_at, user_id
		FROM cities
		WHERE id = $1`
	var city types.City
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&city.ID,
		&city.Name,
		&city.Temperature,
		&city.Icon,
		&city.Description,
		&city.FetchedAt,
		&city.UserID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.City{}, ErrNotFound
		}
		return types.City{}, err
	}
	return city, nil
}

// Create inserts a tracked city. The cities_user_id_city_name_key unique
// constraint is the single arbiter for duplicates, so two concurrent adds
// of the same city produce exactly one row.
func (r *CityRepository) Create(ctx context.Context, city types.City) (types.City, error) {
	const query = `
		INSERT INTO cities (city_name, temperature, icon, description, fetched_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		city.Name,
		city.Temperature,
		city.Icon,
		city.Description,
		city.FetchedAt,
		city.UserID,
	).Scan(&city.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return types.City{}, ErrDuplicateCity
		}
		return types.City{}, err
	}
	return city, nil
}

// UpdateSnapshot overwrites the weather reading in place; identity and
// ownership of the row are preserved.
func (r *CityRepository) UpdateSnapshot(ctx context.Context, id int, temperature, icon, description string, fetchedAt time.Time) error {
	const query = `
		UPDATE cities
		SET temperature = $1,
			icon = $2,
			description = $3,
			fetched_at = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, temperature, icon, description, fetchedAt, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CityRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM cities WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
