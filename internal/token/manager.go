// Package token issues and verifies the short-lived bearer tokens. The
// subject claim carries the encrypted role-claim blob produced by
// rolecipher; user_id and user_name travel as plaintext claims.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config controls bearer token issuance. Validated once in NewManager and
// treated as immutable afterwards.
type Config struct {
	// Secret signs tokens with HS256.
	Secret []byte
	// AccessTTL is the bearer token lifetime. Default 15 minutes.
	AccessTTL time.Duration
	// Issuer is optional; when set it is stamped and enforced.
	Issuer string
}

// Claims is the bearer token claim set. Subject (inherited from
// RegisteredClaims) holds the encrypted role claim.
type Claims struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	jwt.RegisteredClaims
}

// Manager signs and parses bearer tokens.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token: signing secret is required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	return &Manager{config: cfg}, nil
}

// AccessTTL reports the configured bearer lifetime.
func (m *Manager) AccessTTL() time.Duration {
	return m.config.AccessTTL
}

// Issue signs a bearer token for the given user with the encrypted role
// claim as subject.
func (m *Manager) Issue(userID, userName, encryptedRole string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		UserName: userName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   encryptedRole,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.Secret)
}

// Parse verifies signature and expiry and returns the claim set. Callers
// map any returned error to the typed InvalidToken error at the boundary.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}
