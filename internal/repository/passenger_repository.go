package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/skyhigh/airline-checkin/internal/model"
)

// PassengerRepo provides methods to work with passengers in the database.
type PassengerRepo struct {
	db *sql.DB
}

// NewPassengerRepo constructs a PassengerRepo with the given DB handle.
func NewPassengerRepo(db *sql.DB) *PassengerRepo {
	return &PassengerRepo{db: db}
}

// GetByID retrieves a passenger by its id.
func (r *PassengerRepo) GetByID(ctx context.Context, id string) (*model.Passenger, error) {
	const q = `SELECT id, first_name, last_name, email, created_at, updated_at
	           FROM passengers WHERE id = ?`
	var p model.Passenger
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPassengerNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a passenger record.
func (r *PassengerRepo) Create(ctx context.Context, p *model.Passenger) error {
	const q = `INSERT INTO passengers (id, first_name, last_name, email) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, p.ID, p.FirstName, p.LastName, p.Email)
	return err
}
