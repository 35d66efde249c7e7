package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gatehouse-io/gatehouse/internal/apperr"
	"github.com/gatehouse-io/gatehouse/internal/store"
)

// RequestReset starts the forgot-password flow. Unknown emails succeed
// silently so the endpoint cannot be used to probe for accounts.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	resetID := uuid.NewString()
	if err := s.resetTokens.Create(ctx, resetID, user.ID, s.config.ResetTTL); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetID); err != nil {
		// The row stays; the user can request again and a fresh mail goes out.
		s.log.Error(ctx, "reset mail delivery failed", "user_id", user.ID)
		return err
	}

	s.log.Info(ctx, "password reset requested", "user_id", user.ID)
	return nil
}

// ConfirmReset consumes a reset token: updates the password, deletes the
// row, and revokes every refresh token the user holds.
func (s *Service) ConfirmReset(ctx context.Context, resetTokenID, newPassword string) error {
	row, err := s.resetTokens.Find(ctx, resetTokenID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.ErrResetTokenNotFound
		}
		return err
	}
	if time.Now().After(row.ExpiresAt) {
		_ = s.resetTokens.Delete(ctx, resetTokenID)
		return apperr.ErrResetTokenInvalid
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, row.UserID, hash); err != nil {
		return err
	}

	if err := s.resetTokens.Delete(ctx, resetTokenID); err != nil {
		return err
	}
	if err := s.refreshTokens.DeleteAllForUser(ctx, row.UserID); err != nil {
		return err
	}

	s.log.Info(ctx, "password reset confirmed", "user_id", row.UserID)
	return nil
}
