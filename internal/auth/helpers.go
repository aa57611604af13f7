package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type contextKey struct{}

var actorKey contextKey

// ExtractAPIKey extracts the API key from the Authorization header.
// Expects "Bearer <api_key>" format.
func ExtractAPIKey(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing Authorization header")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid Authorization header format, expected 'Bearer <api_key>'")
	}

	return parts[1], nil
}

// WithActor returns a context carrying the authenticated actor.
func WithActor(ctx context.Context, actor *ActorInfo) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the authenticated actor, or nil when the request
// was not authenticated.
func ActorFromContext(ctx context.Context) *ActorInfo {
	actor, _ := ctx.Value(actorKey).(*ActorInfo)
	return actor
}
