package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-io/gatehouse/internal/apperr"
)

func TestRequestResetUnknownEmailIsSilent(t *testing.T) {
	env := newTestEnv(t, Config{})

	require.NoError(t, env.service.RequestReset(context.Background(), "nobody@test.com"))
	assert.Empty(t, env.mailer.emails)
	assert.Equal(t, 0, env.reset.count())
}

func TestRequestResetCreatesRowAndSendsMail(t *testing.T) {
	env := newTestEnv(t, Config{ResetTTL: time.Hour})
	env.seedUser(t, "carol", "user@test.com", "12345678", "User")
	ctx := context.Background()

	require.NoError(t, env.service.RequestReset(ctx, "user@test.com"))

	require.Len(t, env.mailer.tokens, 1)
	assert.Equal(t, []string{"user@test.com"}, env.mailer.emails)

	row, err := env.reset.Find(ctx, env.mailer.tokens[0])
	require.NoError(t, err)
	assert.Equal(t, "user-carol", row.UserID)
}

func TestConfirmResetRotatesPasswordAndRevokesSessions(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.seedUser(t, "carol", "user@test.com", "12345678", "User")
	ctx := context.Background()

	_, err := env.service.Login(ctx, "user@test.com", "12345678")
	require.NoError(t, err)
	require.NoError(t, env.service.RequestReset(ctx, "user@test.com"))

	resetToken := env.mailer.tokens[0]
	require.NoError(t, env.service.ConfirmReset(ctx, resetToken, "new-password-1"))

	// Old password rejected, new one accepted.
	_, err = env.service.Login(ctx, "user@test.com", "12345678")
	assert.True(t, errors.Is(err, apperr.ErrInvalidCredentials))
	_, err = env.service.Login(ctx, "user@test.com", "new-password-1")
	assert.NoError(t, err)

	// Token consumed, refresh rows from before the reset revoked.
	assert.Equal(t, 0, env.reset.count())
	err = env.service.ConfirmReset(ctx, resetToken, "again")
	assert.True(t, errors.Is(err, apperr.ErrResetTokenNotFound))
}

func TestConfirmResetExpiredToken(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.seedUser(t, "carol", "user@test.com", "12345678", "User")
	ctx := context.Background()

	require.NoError(t, env.reset.Create(ctx, "expired-token", "user-carol", -time.Minute))

	err := env.service.ConfirmReset(ctx, "expired-token", "whatever-new")
	assert.True(t, errors.Is(err, apperr.ErrResetTokenInvalid))
	assert.Equal(t, 0, env.reset.count())
}

func TestConfirmResetUnknownToken(t *testing.T) {
	env := newTestEnv(t, Config{})

	err := env.service.ConfirmReset(context.Background(), "never-issued", "whatever-new")
	assert.True(t, errors.Is(err, apperr.ErrResetTokenNotFound))
}
