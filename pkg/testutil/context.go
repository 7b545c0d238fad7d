package testutil

import (
	"context"
	"net/http"

	"quoteguard/internal/platform/middleware"
	id "quoteguard/pkg/domain"
)

// WithOwner adds an authenticated owner id to the request context, simulating
// what the auth middleware does after validating a bearer token.
func WithOwner(req *http.Request, ownerID id.OwnerID) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyOwnerID, ownerID)
	return req.WithContext(ctx)
}
