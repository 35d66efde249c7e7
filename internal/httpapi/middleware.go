package httpapi

import (
	"net/http"
	"strings"

	"github.com/gatehouse-io/gatehouse/internal/apperr"
	"github.com/gatehouse-io/gatehouse/internal/logging"
	"github.com/gatehouse-io/gatehouse/internal/models"
	"github.com/gatehouse-io/gatehouse/internal/rate"
	"github.com/gatehouse-io/gatehouse/internal/rolecipher"
	"github.com/gatehouse-io/gatehouse/internal/token"
)

// Authenticate verifies the bearer token, decrypts the role claim and
// attaches the resulting identity to the request context. Requests
// without a token get TokenMissing; any verification failure collapses
// into InvalidToken.
func Authenticate(tokens *token.Manager, cipher *rolecipher.Cipher, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				writeError(r.Context(), w, log, err)
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				writeError(r.Context(), w, log, apperr.Wrap(apperr.ErrInvalidToken, err))
				return
			}
			claim, err := cipher.DecryptClaim(claims.Subject)
			if err != nil {
				writeError(r.Context(), w, log, err)
				return
			}
			id := models.Identity{
				UserID:   claims.UserID,
				UserName: claims.UserName,
				Role:     claim.UserRole,
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperr.ErrTokenMissing
	}
	scheme, raw, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || raw == "" {
		return "", apperr.ErrTokenMissing
	}
	return raw, nil
}

// RateLimit rejects requests whose client address exceeds the limiter's
// ceiling inside the active window.
func RateLimit(limiter *rate.Limiter, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := limiter.Allow(r.Context(), clientAddr(r)); err != nil {
				writeError(r.Context(), w, log, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
