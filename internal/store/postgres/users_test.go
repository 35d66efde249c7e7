package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-io/gatehouse/internal/store"
)

func newUserRepoWithMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewUserRepository(db), mock, db
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"user_id", "user_name", "user_email", "user_password", "user_role_id", "role_name",
	})
}

func TestUserFindByEmail(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	q := `(?s)SELECT.*FROM\s+users\s+u\s+JOIN\s+roles\s+r\s+ON\s+r\.role_id\s*=\s*u\.user_role_id\s+WHERE\s+u\.user_email\s*=\s*\$1`
	mock.ExpectQuery(q).
		WithArgs("user@test.com").
		WillReturnRows(userRows().AddRow("u-1", "carol", "user@test.com", "$argon2id$...", 2, "User"))

	user, err := repo.FindByEmail(context.Background(), "user@test.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "carol", user.Name)
	assert.Equal(t, "User", user.RoleName)
	assert.Equal(t, 2, user.RoleID)
}

func TestUserFindByEmailNotFound(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WithArgs("nobody@test.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "nobody@test.com")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestUserFindByID(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	q := `(?s)SELECT.*FROM\s+users\s+u\s+JOIN\s+roles\s+r\s+ON\s+r\.role_id\s*=\s*u\.user_role_id\s+WHERE\s+u\.user_id\s*=\s*\$1`
	mock.ExpectQuery(q).
		WithArgs("u-1").
		WillReturnRows(userRows().AddRow("u-1", "carol", "user@test.com", "hash", 1, "Admin"))

	user, err := repo.FindByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Admin", user.RoleName)
}

func TestUserUpdatePassword(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+users\s+SET\s+user_password\s*=\s*\$2\s+WHERE\s+user_id\s*=\s*\$1\s*$`
	mock.ExpectExec(q).WithArgs("u-1", "new-hash").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdatePassword(context.Background(), "u-1", "new-hash"))
	require.NoError(t, mock.ExpectationsWereMet())
}
