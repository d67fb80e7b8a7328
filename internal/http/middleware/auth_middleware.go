package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/rolo-app/rolo/internal/domain"
	"github.com/rolo-app/rolo/internal/http/response"
	"github.com/rolo-app/rolo/internal/service"
)

type contextKey string

const (
	userContextKey    contextKey = "user"
	sessionContextKey contextKey = "session_token"
)

// SessionCookieName is the sole credential artifact exchanged with clients.
const SessionCookieName = "session"

// SessionAuth resolves the session cookie to a user; requests with a
// missing, unknown or expired token get a 401 envelope.
func SessionAuth(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing session", nil)
				return
			}
			user, err := auth.ResolveSession(cookie.Value)
			if err != nil {
				if errors.Is(err, service.ErrNotFound) {
					response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired session", nil)
					return
				}
				response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "session lookup failed", nil)
				return
			}
			ctx := context.WithValue(r.Context(), userContextKey, user)
			ctx = context.WithValue(ctx, sessionContextKey, cookie.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userContextKey).(*domain.User)
	return u, ok
}

func SessionTokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(sessionContextKey).(string)
	return t, ok
}
