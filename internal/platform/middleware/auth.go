package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "quoteguard/pkg/domain"
	"quoteguard/pkg/requestcontext"
)

// OwnerClaims represents the claims we expect from the token validator.
type OwnerClaims struct {
	OwnerID id.OwnerID
}

// TokenValidator defines the interface for validating bearer tokens. The
// concrete implementation lives in internal/jwttoken; account management and
// token issuance belong to an external auth system.
type TokenValidator interface {
	ValidateToken(tokenString string) (*OwnerClaims, error)
}

type contextKeyOwnerID struct{}

// ContextKeyOwnerID is exported for use in handlers and test helpers.
var ContextKeyOwnerID = contextKeyOwnerID{}

// GetOwnerID retrieves the authenticated owner id from the context. Zero means
// unauthenticated.
func GetOwnerID(ctx context.Context) id.OwnerID {
	ownerID, ok := ctx.Value(ContextKeyOwnerID).(id.OwnerID)
	if !ok {
		return 0
	}
	return ownerID
}

// writeJSONError writes a JSON error response with the given status code.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated owner id in the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing bearer token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyOwnerID, claims.OwnerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
