package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gatehouse-io/gatehouse/internal/logging"
	"github.com/gatehouse-io/gatehouse/internal/rate"
	"github.com/gatehouse-io/gatehouse/internal/rolecipher"
	"github.com/gatehouse-io/gatehouse/internal/token"
)

// RouterDeps collects everything the router needs. Limiter may be nil when
// rate limiting is disabled (tests mostly run without it).
type RouterDeps struct {
	Handlers *Handlers
	Tokens   *token.Manager
	Cipher   *rolecipher.Cipher
	Limiter  *rate.Limiter
	Groups   Groups
	Log      logging.Logger
}

// NewRouter assembles the HTTP surface. Every route is rate limited per
// client address; session-management routes additionally require a verified
// bearer token and membership in a permission group.
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Log
	if log == nil {
		log = logging.Nop{}
	}
	groups := deps.Groups
	if groups == nil {
		groups = DefaultGroups
	}

	limited := func(next http.Handler) http.Handler { return next }
	if deps.Limiter != nil {
		limited = RateLimit(deps.Limiter, log)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	// The limiter fronts every route, including authenticated ones, so it
	// counts a request before any token is inspected.
	r.Use(limited)

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Post("/login", deps.Handlers.Login)
			r.Post("/refresh", deps.Handlers.Refresh)
			r.Post("/password/forgot", deps.Handlers.ForgotPassword)
			r.Post("/password/reset", deps.Handlers.ResetPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(deps.Tokens, deps.Cipher, log))
			r.With(RequireGroup(groups, "admin-only", log)).Post("/logout", deps.Handlers.Logout)
			r.With(RequireGroup(groups, "any-role", log)).Post("/logout/me", deps.Handlers.LogoutSelf)
		})
	})

	return r
}
