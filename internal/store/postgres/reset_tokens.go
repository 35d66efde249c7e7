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

// ResetTokenRepository implements store.ResetTokenStore over a DBTX. Same
// row lifecycle as refresh tokens: insert on request, delete on use,
// expiry checked at lookup time.
type ResetTokenRepository struct {
	db DBTX
}

// NewResetTokenRepository binds a repository to the given DBTX.
func NewResetTokenRepository(db DBTX) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

func (r *ResetTokenRepository) Create(ctx context.Context, id, userID string, validity time.Duration) error {
	query := `
		INSERT INTO reset_tokens (reset_token_id, user_id, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, id, userID, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *ResetTokenRepository) Find(ctx context.Context, id string) (*models.ResetToken, error) {
	query := `
		SELECT reset_token_id, user_id, expires_at
		FROM reset_tokens
		WHERE reset_token_id = $1
	`
	token := &models.ResetToken{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&token.ID, &token.UserID, &token.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return token, nil
}

func (r *ResetTokenRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM reset_tokens
		WHERE reset_token_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *ResetTokenRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	query := `
		DELETE FROM reset_tokens
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
