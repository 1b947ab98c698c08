package httpx

import (
	"context"
	"net/http"
)

// ownerIDKey is an unexported context key type for the authenticated owner id.
type ownerIDKey struct{}

// SetOwnerIDInContext returns a context carrying the owner id.
func SetOwnerIDInContext(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey{}, ownerID)
}

// OwnerIDFromContext returns the owner id placed in the context by the
// identity middleware, or "" when no identity is present.
func OwnerIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ownerIDKey{}).(string); ok {
		return v
	}
	return ""
}

// ownerID is a shorthand for handlers.
func ownerID(r *http.Request) string {
	return OwnerIDFromContext(r.Context())
}
