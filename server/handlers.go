package server

import (
	"net/http"
)

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	grant, err := s.service.Register(r.Context(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, tokenResponseOf(grant))
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	grant, err := s.service.Login(r.Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenResponseOf(grant))
}

func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	grant, err := s.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenResponseOf(grant))
}

func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	// A valid token whose subject has vanished answers 404, not 401: the
	// credentials were fine, the principal is gone.
	user, err := s.service.GetUser(r.Context(), claims.Subject)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, viewOf(user))
}

func (s *Server) changePasswordHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	err := s.service.ChangePassword(r.Context(), claims.Subject, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "Password updated successfully"})
}

// logoutHandler exists for client symmetry: tokens are stateless, so logout
// is a client-side discard. The endpoint confirms the intent and nothing
// else.
func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "Successfully logged out"})
}
