package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

type contextKey string

const (
	identityContextKey contextKey = "identity"
)

// WithIdentity returns a copy of ctx carrying the caller identity.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext returns the identity stored by Require, if any.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(models.Identity)
	return identity, ok
}

// Authenticator verifies bearer tokens on protected routes.
type Authenticator struct {
	jwtSecret string
	logger    *zap.Logger
}

func NewAuthenticator(jwtSecret string, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		jwtSecret: jwtSecret,
		logger:    logger.Named("auth"),
	}
}

// Require wraps next so that it only runs for callers holding a valid token
// with the given role. A missing or invalid token is rejected with 401, a
// valid token with another role with 403.
func (a *Authenticator) Require(role models.Role, next runtime.HandlerFunc) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
		tokenString, err := extractTokenFromHeader(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		identity, err := validateToken(tokenString, a.jwtSecret)
		if err != nil {
			a.logger.Debug("rejected token", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		if identity.Role != role {
			writeError(w, http.StatusForbidden, "access denied")
			return
		}

		next(w, r.WithContext(WithIdentity(r.Context(), identity)), pathParams)
	}
}

func extractTokenFromHeader(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("authorization header required")
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("invalid authorization format: missing Bearer prefix")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" {
		return "", fmt.Errorf("invalid authorization format: empty token")
	}

	return tokenString, nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
