package server

import (
	"net/http"
	"strconv"

	"github.com/easylaw/auth-service/internal/apperrors"
	"github.com/easylaw/auth-service/users"
)

func (s *Server) deactivateUserHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req adminActionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.service.DeactivateUser(r.Context(), claims.Subject, req.UserID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "User deactivated successfully"})
}

func (s *Server) activateUserHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req adminActionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.service.ActivateUser(r.Context(), claims.Subject, req.UserID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "User activated successfully"})
}

func (s *Server) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 50)
	if limit > 100 {
		limit = 100
	}

	var status *users.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := users.Status(raw)
		if !st.IsValid() {
			s.writeError(w, r, apperrors.Validation("Invalid status filter"))
			return
		}
		status = &st
	}

	list, total, err := s.service.ListUsers(r.Context(), claims.Subject, offset, limit, status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	views := make([]userView, 0, len(list))
	for _, user := range list {
		views = append(views, viewOf(user))
	}
	s.writeJSON(w, http.StatusOK, listUsersResponse{Users: views, Total: total})
}

// adminInitHandler is the first-boot bootstrap: it guarantees the configured
// admin account exists and reminds the operator to rotate the documented
// default password. Safe to call repeatedly.
func (s *Server) adminInitHandler(w http.ResponseWriter, r *http.Request) {
	admin, err := s.service.EnsureAdminBootstrap(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Warn().Str("email", admin.Email).
		Msg("admin bootstrap ensured; rotate the default password if it is still in use")
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Admin account ready",
		"email":   admin.Email,
		"warning": "Change the default password immediately",
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
