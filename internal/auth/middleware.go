package auth

import (
	"context"
	"net/http"
	"strings"

	"fintrack/internal/httputil"
	"fintrack/internal/user"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	// CurrentUserContextKey holds the resolved *user.User for the request.
	CurrentUserContextKey ContextKey = "current_user"
)

// Middleware authenticates requests and gates routes on account status.
type Middleware struct {
	tokens TokenService
	users  UserStore
}

func NewMiddleware(tokens TokenService, users UserStore) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// RequireAuth validates the access token and resolves the account behind
// it. Any verification state passes; status gates stack on top.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string

		// Priority 1: Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			} else {
				httputil.RespondErrorWithCode(w, "invalid authorization header format", httputil.CodeInvalidAuthHeader, http.StatusUnauthorized)
				return
			}
		}

		// Priority 2: Cookie (fallback)
		if token == "" {
			cookieToken, err := GetAccessTokenFromCookie(r)
			if err != nil {
				httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
				return
			}
			token = cookieToken
		}

		userID, err := m.tokens.VerifyAccessToken(token)
		if err != nil {
			httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		current, err := m.users.GetByID(r.Context(), userID)
		if err != nil {
			// The token may outlive its account; treat both cases alike.
			httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), CurrentUserContextKey, current)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireActive rejects soft-deleted accounts.
func (m *Middleware) RequireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current, ok := GetUserFromContext(r.Context())
		if !ok {
			httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}
		if !current.IsActive {
			httputil.RespondErrorWithCode(w, "user is not active", httputil.CodeNotActive, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireVerified rejects accounts that have not confirmed their email.
func (m *Middleware) RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current, ok := GetUserFromContext(r.Context())
		if !ok {
			httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}
		if !current.IsVerified {
			httputil.RespondErrorWithCode(w, "verify email first", httputil.CodeNotVerified, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSuperuser gates administrative routes.
func (m *Middleware) RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current, ok := GetUserFromContext(r.Context())
		if !ok {
			httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}
		if !current.IsSuperuser {
			httputil.RespondErrorWithCode(w, "not enough privileges", httputil.CodeForbidden, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext extracts the authenticated user from the request context.
func GetUserFromContext(ctx context.Context) (*user.User, bool) {
	current, ok := ctx.Value(CurrentUserContextKey).(*user.User)
	return current, ok
}
