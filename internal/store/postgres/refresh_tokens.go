package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gatehouse-io/gatehouse/internal/models"
	"github.com/gatehouse-io/gatehouse/internal/store"
)

// RefreshTokenRepository implements store.RefreshTokenStore over a DBTX.
type RefreshTokenRepository struct {
	db DBTX
}

// NewRefreshTokenRepository binds a repository to the given DBTX.
func NewRefreshTokenRepository(db DBTX) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create inserts a refresh-token row expiring at now+validity. The primary
// key constraint on refresh_token_id is the uniqueness guard.
func (r *RefreshTokenRepository) Create(ctx context.Context, id, userID string, validity time.Duration) error {
	query := `
		INSERT INTO refresh_tokens (refresh_token_id, user_id, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, id, userID, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Find returns the row for the given identifier or store.ErrNotFound.
// Expiry is deliberately not filtered here; callers check it.
func (r *RefreshTokenRepository) Find(ctx context.Context, id string) (*models.RefreshToken, error) {
	query := `
		SELECT refresh_token_id, user_id, expires_at
		FROM refresh_tokens
		WHERE refresh_token_id = $1
	`
	token := &models.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&token.ID, &token.UserID, &token.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return token, nil
}

// Delete removes a row; absent rows are not an error.
func (r *RefreshTokenRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM refresh_tokens
		WHERE refresh_token_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteAllForUser removes every row belonging to the user.
func (r *RefreshTokenRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	query := `
		DELETE FROM refresh_tokens
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
