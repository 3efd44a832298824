// Package server is the HTTP boundary: a chi router over the auth service.
// Handlers translate between the wire contract and service calls; no
// business rules live here.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/easylaw/auth-service/auth"
	"github.com/easylaw/auth-service/guard"
)

type Server struct {
	service *auth.Service
	guard   *guard.Guard
	logger  zerolog.Logger
}

func New(service *auth.Service, g *guard.Guard, logger zerolog.Logger) (*Server, error) {
	if service == nil {
		return nil, errors.New("[server.New] auth service is required")
	}
	if g == nil {
		return nil, errors.New("[server.New] guard is required")
	}
	return &Server{service: service, guard: g, logger: logger}, nil
}

// Router builds the route tree. Bearer-protected routes sit behind the
// authentication middleware; admin routes additionally require the admin
// role claim.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Get("/health", s.healthHandler)
		r.Post("/register", s.registerHandler)
		r.Post("/login", s.loginHandler)
		r.Post("/refresh", s.refreshHandler)
		r.Get("/admin/init", s.adminInitHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.meHandler)
			r.Post("/change-password", s.changePasswordHandler)
			r.Post("/logout", s.logoutHandler)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Post("/admin/deactivate-user", s.deactivateUserHandler)
				r.Post("/admin/activate-user", s.activateUserHandler)
				r.Get("/admin/users", s.listUsersHandler)
			})
		})
	})

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
