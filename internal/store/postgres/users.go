package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gatehouse-io/gatehouse/internal/models"
	"github.com/gatehouse-io/gatehouse/internal/store"
)

// UserRepository implements store.UserStore over a DBTX.
type UserRepository struct {
	db DBTX
}

// NewUserRepository binds a repository to the given DBTX.
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	u.user_id, u.user_name, u.user_email, u.user_password, u.user_role_id, r.role_name
`

// FindByEmail returns the user joined with their role name, or
// store.ErrNotFound.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		JOIN roles r ON r.role_id = u.user_role_id
		WHERE u.user_email = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// FindByID returns the user joined with their role name, or store.ErrNotFound.
func (r *UserRepository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		JOIN roles r ON r.role_id = u.user_role_id
		WHERE u.user_id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

// UpdatePassword replaces the stored hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := `
		UPDATE users
		SET user_password = $2
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID, passwordHash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.RoleID, &user.RoleName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
