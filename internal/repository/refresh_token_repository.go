package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/skyhigh/airline-checkin/internal/model"
)

// ErrRefreshTokenNotFound is returned when a refresh token lookup yields
// no rows.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepo provides methods to work with refresh tokens in the
// database. Only hashes are stored; raw tokens never touch disk.
type RefreshTokenRepo struct {
	db *sql.DB
}

// NewRefreshTokenRepo constructs a RefreshTokenRepo with the given DB handle.
func NewRefreshTokenRepo(db *sql.DB) *RefreshTokenRepo {
	return &RefreshTokenRepo{db: db}
}

// Create inserts a refresh token record.
func (r *RefreshTokenRepo) Create(ctx context.Context, t *model.RefreshToken) error {
	const q = `INSERT INTO refresh_tokens (id, passenger_id, token_hash, expires_at, revoked)
	           VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, t.ID, t.PassengerID, t.TokenHash, t.ExpiresAt, t.Revoked)
	return err
}

// GetByHash retrieves a refresh token by the hash of its raw value.
func (r *RefreshTokenRepo) GetByHash(ctx context.Context, hash string) (*model.RefreshToken, error) {
	const q = `SELECT id, passenger_id, token_hash, expires_at, revoked, created_at
	           FROM refresh_tokens WHERE token_hash = ?`
	var t model.RefreshToken
	err := r.db.QueryRowContext(ctx, q, hash).
		Scan(&t.ID, &t.PassengerID, &t.TokenHash, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Revoke marks a refresh token as unusable. Rotation revokes the old
// token in the same request that issues its replacement.
func (r *RefreshTokenRepo) Revoke(ctx context.Context, id string) error {
	const q = `UPDATE refresh_tokens SET revoked = 1 WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
