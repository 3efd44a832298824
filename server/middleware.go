package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/easylaw/auth-service/guard"
	"github.com/easylaw/auth-service/internal/apperrors"
	"github.com/easylaw/auth-service/token"
	"github.com/easylaw/auth-service/users"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// claimsFrom returns the principal claims the auth middleware stored on the
// request context. The boolean is false on routes outside requireAuth.
func claimsFrom(ctx context.Context) (token.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(token.Claims)
	return claims, ok
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panic")
				s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorDetail{
					Code:    string(apperrors.KindInternal),
					Message: "Internal server error",
				}})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requireAuth extracts the bearer token, resolves the principal through the
// guard and stores the claims on the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			s.writeError(w, r, apperrors.Authentication("Not authenticated"))
			return
		}
		claims, err := s.guard.ResolvePrincipal(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin gates on the role claim. Destructive admin operations are
// re-checked against the store inside the service.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r.Context())
		if !ok {
			s.writeError(w, r, apperrors.Authentication("Not authenticated"))
			return
		}
		if err := guard.RequireRole(claims, users.RoleAdmin); err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
