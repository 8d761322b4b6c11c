package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"print-shop-mis/models"
	"print-shop-mis/service"
	"print-shop-mis/utils"
)

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// AuthOptions configures Auth.
type AuthOptions struct {
	Auth       Authenticator
	CookieName string
	// Public paths are served without a session.
	Public []string
}

// TokenFrom returns the bearer token of a request, falling back to the session cookie.
func TokenFrom(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil {
			return c.Value
		}
	}
	return ""
}

// Auth requires a valid session on every path except the public ones.
func Auth(opts AuthOptions) Middleware {
	public := make(map[string]bool, len(opts.Public))
	for _, p := range opts.Public {
		public[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			user, err := opts.Auth.Authenticate(r.Context(), TokenFrom(r, opts.CookieName))
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					utils.WriteError(w, http.StatusUnauthorized, "Authentication required", nil)
					return
				}
				zap.S().Errorf("❌ Auth: %v", err)
				utils.WriteError(w, http.StatusInternalServerError, "Failed to authenticate", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireRole lets only users with role through.
func RequireRole(role string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := UserFrom(r.Context())
			if u == nil {
				utils.WriteError(w, http.StatusUnauthorized, "Authentication required", nil)
				return
			}
			if u.Role != role {
				zap.S().Warnf("⚠️ User id=%d (%s) denied %s %s", u.ID, u.Role, r.Method, r.URL.Path)
				utils.WriteError(w, http.StatusForbidden, "This action requires the "+role+" role", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
