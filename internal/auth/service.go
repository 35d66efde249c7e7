// Package auth implements the session lifecycle: login, refresh-token
// rotation, and revocation. It orchestrates the durable store, the session
// cache mirror, the role-claim cipher, and the token issuer.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gatehouse-io/gatehouse/internal/apperr"
	"github.com/gatehouse-io/gatehouse/internal/cache"
	"github.com/gatehouse-io/gatehouse/internal/logging"
	"github.com/gatehouse-io/gatehouse/internal/mail"
	"github.com/gatehouse-io/gatehouse/internal/models"
	"github.com/gatehouse-io/gatehouse/internal/password"
	"github.com/gatehouse-io/gatehouse/internal/rolecipher"
	"github.com/gatehouse-io/gatehouse/internal/store"
	"github.com/gatehouse-io/gatehouse/internal/token"
)

// Config holds the session lifetimes.
type Config struct {
	// RefreshTTL is the refresh-token lifetime. Default 30 days.
	RefreshTTL time.Duration
	// ResetTTL is the reset-token lifetime. Default 1 hour.
	ResetTTL time.Duration
}

// Service is the session lifecycle manager. All fields are injected and
// immutable after construction; the service itself is stateless per request.
type Service struct {
	config        Config
	users         store.UserStore
	refreshTokens store.RefreshTokenStore
	resetTokens   store.ResetTokenStore
	sessions      *cache.SessionStore
	cipher        *rolecipher.Cipher
	tokens        *token.Manager
	hasher        *password.Hasher
	mailer        mail.Sender
	log           logging.Logger
}

// NewService wires the session lifecycle manager, defaulting zero config
// fields.
func NewService(
	cfg Config,
	users store.UserStore,
	refreshTokens store.RefreshTokenStore,
	resetTokens store.ResetTokenStore,
	sessions *cache.SessionStore,
	cipher *rolecipher.Cipher,
	tokens *token.Manager,
	hasher *password.Hasher,
	mailer mail.Sender,
	log logging.Logger,
) *Service {
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &Service{
		config:        cfg,
		users:         users,
		refreshTokens: refreshTokens,
		resetTokens:   resetTokens,
		sessions:      sessions,
		cipher:        cipher,
		tokens:        tokens,
		hasher:        hasher,
		mailer:        mailer,
		log:           log,
	}
}

// LoginResult carries the issued pair plus the authenticated user,
// projected without the password hash.
type LoginResult struct {
	Token        string
	RefreshToken string
	User         models.User
}

// RefreshResult carries the rotated pair.
type RefreshResult struct {
	Token        string
	RefreshToken string
}

// Login verifies credentials and issues a bearer token plus a fresh
// refresh-token identifier. Unknown email and wrong password collapse into
// the same typed error so nothing leaks about which check failed.
//
// A successful login never invalidates earlier sessions: every call issues
// a brand-new identifier and the old ones stay valid in both stores until
// rotated or revoked.
func (s *Service) Login(ctx context.Context, email, pass string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(pass, user.PasswordHash)
	if err != nil || !ok {
		return nil, apperr.ErrInvalidCredentials
	}

	bearer, refreshID, err := s.issuePair(ctx, user.ID, user.Name, user.RoleName)
	if err != nil {
		return nil, err
	}

	projection := *user
	projection.PasswordHash = ""

	s.log.Info(ctx, "login", "user_id", user.ID)

	return &LoginResult{Token: bearer, RefreshToken: refreshID, User: projection}, nil
}

// Refresh rotates a refresh-token identifier following the dual-store
// cross-check pattern:
//
//   - cache miss                → RefreshTokenNotFound (no session)
//   - cache hit + durable miss  → RefreshTokenInvalid (divergence or replay
//     of a just-consumed identifier whose
//     mirror lingered)
//   - both present              → rotate: delete old row and mirror, issue
//     a fresh pair
//
// Identifiers are one-time-use: the deletions make an immediate replay of
// the same identifier fail with RefreshTokenNotFound.
func (s *Service) Refresh(ctx context.Context, refreshTokenID string) (*RefreshResult, error) {
	sess, err := s.sessions.Get(ctx, refreshTokenID)
	if err != nil {
		if errors.Is(err, cache.ErrSessionMiss) {
			return nil, apperr.ErrRefreshTokenNotFound
		}
		return nil, err
	}

	row, err := s.refreshTokens.Find(ctx, refreshTokenID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log.Warn(ctx, "refresh cross-check failed: cached session without durable row",
				"user_id", sess.UserID)
			return nil, apperr.ErrRefreshTokenInvalid
		}
		return nil, err
	}
	if time.Now().After(row.ExpiresAt) {
		// Expiry is enforced only here; there is no background sweep, so an
		// expired row is reaped when it surfaces.
		if err := s.refreshTokens.Delete(ctx, refreshTokenID); err != nil {
			return nil, err
		}
		return nil, apperr.ErrRefreshTokenInvalid
	}

	if err := s.refreshTokens.Delete(ctx, refreshTokenID); err != nil {
		return nil, err
	}
	if err := s.sessions.Delete(ctx, refreshTokenID); err != nil {
		return nil, err
	}

	bearer, newID, err := s.issuePair(ctx, sess.UserID, sess.UserName, sess.RoleName)
	if err != nil {
		return nil, err
	}

	return &RefreshResult{Token: bearer, RefreshToken: newID}, nil
}

// Logout revokes every durable refresh-token row for the given user. Cache
// mirrors are intentionally left in place: a still-cached identifier keeps
// its bearer usable until its next refresh attempt, where the durable
// cross-check fails with RefreshTokenInvalid.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.refreshTokens.DeleteAllForUser(ctx, userID); err != nil {
		return err
	}
	s.log.Info(ctx, "logout", "user_id", userID)
	return nil
}

// LogoutSelf revokes the caller's own sessions; no elevated role required.
func (s *Service) LogoutSelf(ctx context.Context, identity models.Identity) error {
	return s.Logout(ctx, identity.UserID)
}

// issuePair builds the bearer token and persists the dual representation
// of a new refresh token: durable row first, then cache mirror with the
// same expiry horizon. The two writes are independent; a crash in between
// leaves an orphaned row that fails cleanly at its next lookup.
func (s *Service) issuePair(ctx context.Context, userID, userName, roleName string) (bearer, refreshID string, err error) {
	encrypted, err := s.cipher.EncryptClaim(rolecipher.Claim{UserRole: roleName})
	if err != nil {
		return "", "", err
	}

	bearer, err = s.tokens.Issue(userID, userName, encrypted)
	if err != nil {
		return "", "", err
	}

	refreshID = uuid.NewString()
	if err := s.refreshTokens.Create(ctx, refreshID, userID, s.config.RefreshTTL); err != nil {
		return "", "", err
	}

	mirror := models.CachedSession{UserID: userID, UserName: userName, RoleName: roleName}
	if err := s.sessions.Save(ctx, refreshID, mirror, s.config.RefreshTTL); err != nil {
		return "", "", err
	}

	return bearer, refreshID, nil
}
