package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenVerifier validates bearer tokens for protected routes.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims represents the claims we expect from the token verifier.
type TokenClaims struct {
	UserID string
	Role   string
	JTI    string
}

type contextKeyUserID struct{}
type contextKeyUserRole struct{}

// ContextKeyUserID is exported for use in handlers.
var (
	ContextKeyUserID   = contextKeyUserID{}
	ContextKeyUserRole = contextKeyUserRole{}
)

// GetUserID retrieves the authenticated user ID from the context.
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok {
		return ""
	}
	return userID
}

// GetUserRole retrieves the authenticated user's role from the context.
func GetUserRole(ctx context.Context) string {
	role, ok := ctx.Value(ContextKeyUserRole).(string)
	if !ok {
		return ""
	}
	return role
}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated identity in the request context.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = context.WithValue(ctx, ContextKeyUserID, claims.UserID)
			ctx = context.WithValue(ctx, ContextKeyUserRole, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
