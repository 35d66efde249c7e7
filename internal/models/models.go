// Package models holds the data shapes shared between the durable store,
// the session cache, and the authentication service.
package models

import "time"

// User is owned by the durable store. RoleName is denormalized at lookup
// time by joining the roles table; it never lives in the users row itself.
type User struct {
	ID           string `json:"user_id"`
	Name         string `json:"user_name"`
	Email        string `json:"user_email"`
	PasswordHash string `json:"-"`
	RoleID       int    `json:"user_role_id"`
	RoleName     string `json:"role_name,omitempty"`
}

// Role is a small, rarely mutated reference row.
type Role struct {
	ID   int    `json:"role_id"`
	Name string `json:"role_name"`
}

// RefreshToken is the durable record of one issued session. One row per
// issue; a user may hold several concurrent rows. Expiry is enforced at
// lookup time only — there is no background sweep.
type RefreshToken struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

// ResetToken follows the same durable lifecycle as RefreshToken and backs
// the forgot-password flow.
type ResetToken struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

// CachedSession is the volatile mirror of a refresh token, stored in the
// cache under the session namespace with the token's remaining TTL.
type CachedSession struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	RoleName string `json:"role_name"`
}

// Identity is the caller reconstructed by the authentication middleware
// from a verified bearer token. It never touches a store.
type Identity struct {
	UserID   string
	UserName string
	Role     string
}
