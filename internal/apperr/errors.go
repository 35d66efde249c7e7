// Package apperr defines the typed application errors shared by every
// gatehouse component. Each error carries an HTTP status and a stable
// message identifier; lower layers return these values (or wrap
// infrastructure failures into them) and a single boundary translator in
// the HTTP layer turns them into responses.
package apperr

import "fmt"

// Error is a typed application error. Instances declared in this package
// are sentinels: compare with errors.Is.
type Error struct {
	// Status is the HTTP status the boundary translator responds with.
	Status int
	// Code is the stable message identifier exposed to clients.
	Code string
}

func (e *Error) Error() string {
	return e.Code
}

// Wrap attaches an underlying cause to a sentinel while keeping errors.Is
// working against the sentinel. The cause is for logs only and is never
// rendered to clients.
func Wrap(sentinel *Error, cause error) error {
	if cause == nil {
		return sentinel
	}
	return &wrapped{sentinel: sentinel, cause: cause}
}

type wrapped struct {
	sentinel *Error
	cause    error
}

func (w *wrapped) Error() string {
	return fmt.Sprintf("%s: %v", w.sentinel.Code, w.cause)
}

func (w *wrapped) Unwrap() error { return w.sentinel }

var (
	// ErrBadRequest covers request bodies that cannot be decoded or are
	// missing required fields.
	ErrBadRequest = &Error{Status: 400, Code: "BadRequest"}
	// ErrInvalidCredentials covers both unknown email and password mismatch,
	// deliberately indistinguishable to the caller.
	ErrInvalidCredentials = &Error{Status: 400, Code: "IncorrectEmailOrPassword"}
	// ErrTokenMissing is returned when no bearer token accompanies a protected request.
	ErrTokenMissing = &Error{Status: 401, Code: "TokenMissing"}
	// ErrInvalidToken covers signature, expiry, and role-claim decrypt failures.
	ErrInvalidToken = &Error{Status: 401, Code: "InvalidToken"}
	// ErrAccessDeniedNotLogged is returned when a role-gated route sees no identity.
	ErrAccessDeniedNotLogged = &Error{Status: 401, Code: "AccessDeniedNotLogged"}
	// ErrAccessDeniedNoPermission is returned when the caller's role is outside the route's allow-list.
	ErrAccessDeniedNoPermission = &Error{Status: 403, Code: "AccessDeniedHasNoPermission"}
	// ErrRefreshTokenNotFound means no session mirror exists for the identifier.
	ErrRefreshTokenNotFound = &Error{Status: 404, Code: "RefreshTokenNotFound"}
	// ErrRefreshTokenInvalid signals a cache/store divergence: the mirror
	// exists but the durable row does not.
	ErrRefreshTokenInvalid = &Error{Status: 400, Code: "RefreshTokenInvalid"}
	// ErrTooManyRequests is returned when a client address exceeds the rate ceiling.
	ErrTooManyRequests = &Error{Status: 429, Code: "TooManyRequests"}
	// ErrTooManyRequestsTryAgain replaces any rate-limiter infrastructure
	// failure; the limiter fails closed without leaking cache internals.
	ErrTooManyRequestsTryAgain = &Error{Status: 429, Code: "TooManyRequestsTryAgainLater"}
	// ErrResetTokenNotFound means no reset row exists for the identifier.
	ErrResetTokenNotFound = &Error{Status: 404, Code: "ResetTokenNotFound"}
	// ErrResetTokenInvalid means the reset row exists but is expired.
	ErrResetTokenInvalid = &Error{Status: 400, Code: "ResetTokenInvalid"}
)
