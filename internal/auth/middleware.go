package auth

import (
	"context"
	"net/http"

	"ms-restaurant/internal/utils"
)

type contextKey string

const (
	adminLoginKey contextKey = "admin_login"
	clientKey     contextKey = "client"
)

// OptionalAdmin stores the session login in the context when the cookie is valid.
func (s *Service) OptionalAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if login, ok := s.SessionLogin(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), adminLoginKey, login))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests without a valid admin session with 401.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		login, ok := s.SessionLogin(r)
		if !ok {
			utils.Fail(w, http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), adminLoginKey, login)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission answers 403 unless the session login holds perm.
func (s *Service) RequirePermission(perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			login, ok := s.SessionLogin(r)
			if !ok {
				utils.Fail(w, http.StatusForbidden)
				return
			}
			allowed, err := s.HasPermission(r.Context(), login, perm)
			if err != nil {
				utils.WriteError(w, err)
				return
			}
			if !allowed {
				utils.Fail(w, http.StatusForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), adminLoginKey, login)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireClient rejects requests without a valid client bearer token with 401.
func (s *Service) RequireClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.ClientFromRequest(r)
		if !ok {
			utils.Fail(w, http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), clientKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminLogin returns the admin login stored by the middleware, or "".
func AdminLogin(ctx context.Context) string {
	if login, ok := ctx.Value(adminLoginKey).(string); ok {
		return login
	}
	return ""
}

func IsAdmin(ctx context.Context) bool {
	return AdminLogin(ctx) != ""
}

// Client returns the client claims stored by RequireClient.
func Client(ctx context.Context) *ClientClaims {
	if claims, ok := ctx.Value(clientKey).(*ClientClaims); ok {
		return claims
	}
	return nil
}

// WithAdmin and WithClient build contexts for handler tests.
func WithAdmin(ctx context.Context, login string) context.Context {
	return context.WithValue(ctx, adminLoginKey, login)
}

func WithClient(ctx context.Context, claims *ClientClaims) context.Context {
	return context.WithValue(ctx, clientKey, claims)
}
