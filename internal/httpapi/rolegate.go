package httpapi

import (
	"net/http"

	"github.com/gatehouse-io/gatehouse/internal/apperr"
	"github.com/gatehouse-io/gatehouse/internal/logging"
)

// Groups maps a permission-group name to the role names it admits.
type Groups map[string][]string

// DefaultGroups is the built-in allow-list table.
var DefaultGroups = Groups{
	"admin-only": {"Admin"},
	"any-role":   {"Admin", "User"},
}

// RequireGroup gates a route on membership in the named permission group.
// It must run after Authenticate; a request with no identity gets
// AccessDeniedNotLogged, a role outside the group gets
// AccessDeniedHasNoPermission.
func RequireGroup(groups Groups, name string, log logging.Logger) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(groups[name]))
	for _, role := range groups[name] {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeError(r.Context(), w, log, apperr.ErrAccessDeniedNotLogged)
				return
			}
			if _, ok := allowed[id.Role]; !ok {
				log.Warn(r.Context(), "role outside permission group", "group", name, "role", id.Role, "user_id", id.UserID)
				writeError(r.Context(), w, log, apperr.ErrAccessDeniedNoPermission)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
