/**
 * @description
 * This file contains custom middleware for the HTTP router: bearer-token
 * authentication and the admin gate. The authenticated user record is loaded
 * from storage on every request and stored in the request context, so
 * authorization decisions never rely on client-supplied claims.
 */
package api

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/abbasmsh1/Banker/internal/app"
	"github.com/abbasmsh1/Banker/internal/domain"
)

// userContextKey is a custom type for the context key to avoid collisions.
type userContextKey string

const authenticatedUserKey userContextKey = "authenticatedUser"

// AuthMiddleware validates the bearer credential and loads the user record
// into the request context.
func AuthMiddleware(service *app.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				writeError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			user, err := service.Authenticate(r.Context(), tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Could not validate credentials")
				return
			}

			ctx := context.WithValue(r.Context(), authenticatedUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly rejects requests whose authenticated user does not carry the
// admin flag. The flag comes from the freshly loaded user record, never from
// the token payload.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		if !user.IsAdmin {
			log.Printf("level=warn component=api outcome=forbidden user_id=%s path=%s", user.ID, r.URL.Path)
			writeError(w, http.StatusForbidden, "Admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext retrieves the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(authenticatedUserKey).(*domain.User)
	return user, ok && user != nil
}
