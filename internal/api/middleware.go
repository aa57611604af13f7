package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/curiohq/curio/server/internal/api/respond"
	"github.com/curiohq/curio/server/internal/auth"
	"github.com/curiohq/curio/server/internal/services"
)

// AuthMiddleware authenticates every request with a bearer API key and makes
// the actor available on the request context. When a user service is wired,
// the owning user row is mirrored on first contact.
func AuthMiddleware(authorizer auth.Authorizer, users *services.UserService) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey, err := auth.ExtractAPIKey(r)
			if err != nil {
				respond.WriteUnauthorized(w, err.Error())
				return
			}

			operation := "write"
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				operation = "read"
			}
			actor, err := authorizer.Authorize(r.Context(), apiKey, operation, r.URL.Path)
			if err != nil {
				respond.WriteUnauthorized(w, "invalid API key")
				return
			}

			if users != nil {
				if _, err := users.EnsureUser(r.Context(), actor.UserID); err != nil {
					respond.WriteServiceError(w, err)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
		})
	}
}

// actorID returns the authenticated user id for a request that passed
// AuthMiddleware.
func actorID(r *http.Request) string {
	if actor := auth.ActorFromContext(r.Context()); actor != nil {
		return actor.UserID
	}
	return ""
}
