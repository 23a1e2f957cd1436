package middleware

import (
	"context"
	"net/http"
	"strings"

	"safesphere/models"
	"safesphere/utils/errors"
)

const PrefixBearer = "Bearer "

type contextKey string

const userContextKey contextKey = "user"

// SessionResolver maps a bearer token to the user it was issued for
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (models.User, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, PrefixBearer) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, PrefixBearer))
	return token, token != ""
}

// AuthMiddleware rejects requests without a live session and stores the
// resolved user in the request context.
func AuthMiddleware(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := BearerToken(r)
			if !ok {
				WriteError(w, errors.ErrUnauthorized)
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}
