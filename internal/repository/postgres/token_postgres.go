package postgres

import (
	"context"
	"database/sql"
	"time"

	"blogapi/internal/model"
	"blogapi/internal/repository"
)

// TokenPostgres is a PostgreSQL implementation of repository.TokenRepository.
type TokenPostgres struct {
	db *sql.DB
}

func NewTokenPostgres(db *sql.DB) *TokenPostgres {
	return &TokenPostgres{db: db}
}

var _ repository.TokenRepository = (*TokenPostgres)(nil)

const tokenColumns = `id, user_id, name, token, last_used_at, expires_at, created_at`

func scanToken(s rowScanner) (*model.PersonalAccessToken, error) {
	var t model.PersonalAccessToken
	if err := s.Scan(&t.ID, &t.UserID, &t.Name, &t.Token, &t.LastUsedAt, &t.ExpiresAt, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create stores a token whose Token field already holds the hashed secret.
func (r *TokenPostgres) Create(ctx context.Context, t *model.PersonalAccessToken) (*model.PersonalAccessToken, error) {
	const q = `
		INSERT INTO personal_access_tokens (user_id, name, token, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + tokenColumns
	return scanToken(r.db.QueryRowContext(ctx, q, t.UserID, t.Name, t.Token, t.ExpiresAt))
}

func (r *TokenPostgres) FindByID(ctx context.Context, id int64) (*model.PersonalAccessToken, error) {
	const q = `SELECT ` + tokenColumns + ` FROM personal_access_tokens WHERE id = $1`
	return scanToken(r.db.QueryRowContext(ctx, q, id))
}

// Touch records the last time the token authenticated a request.
func (r *TokenPostgres) Touch(ctx context.Context, id int64, at time.Time) error {
	const q = `UPDATE personal_access_tokens SET last_used_at = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, at)
	return err
}

// DeleteByUser revokes every token the user holds.
func (r *TokenPostgres) DeleteByUser(ctx context.Context, userID int64) error {
	const q = `DELETE FROM personal_access_tokens WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, q, userID)
	return err
}
