package httpapi

import (
	"context"
	"net"
	"net/http"

	"github.com/gatehouse-io/gatehouse/internal/models"
)

type identityContextKey struct{}

// WithIdentity attaches the verified caller to ctx.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext returns the caller attached by the authentication
// middleware, if any.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(models.Identity)
	return id, ok
}

// clientAddr extracts the client network address used as the rate-limit
// key. The port is stripped so reconnects count against the same bucket.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
