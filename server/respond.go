package server

import (
	"encoding/json"
	"net/http"

	"github.com/easylaw/auth-service/internal/apperrors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("encode response")
	}
}

// writeError renders taxonomy errors with their status and stable code.
// Anything else is an internal fault: logged with its cause, answered with a
// generic 500 so internals never leak to callers.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		appErr = apperrors.Internal("Internal server error")
	} else if appErr.Kind == apperrors.KindInternal {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("internal error")
	}

	status := appErr.StatusCode()
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	s.writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    appErr.Code(),
		Message: appErr.Message,
	}})
}

// decodeJSON reads a request body into dst. Malformed JSON is the caller's
// fault, so it maps to the validation kind.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	return nil
}
