package server

import (
	"time"

	"github.com/easylaw/auth-service/auth"
	"github.com/easylaw/auth-service/credential"
	"github.com/easylaw/auth-service/internal/apperrors"
	"github.com/easylaw/auth-service/users"
)

// maxPasswordInputLength bounds raw request input; the credential policy is
// enforced separately by the service.
const maxPasswordInputLength = 100

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r registerRequest) validate() error {
	return checkPasswordInput(r.Password, r.ConfirmPassword)
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// validate enforces the shape bound before the store is consulted. Every
// stored credential satisfies the registration policy, so an under-length
// password can never match and is refused without a lookup.
func (r loginRequest) validate() error {
	if len(r.Password) < credential.MinPasswordLength {
		return apperrors.Validation("Password must be at least 8 characters")
	}
	return checkPasswordInput(r.Password, "")
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r changePasswordRequest) validate() error {
	return checkPasswordInput(r.NewPassword, r.ConfirmPassword)
}

type adminActionRequest struct {
	UserID string `json:"user_id"`
}

func checkPasswordInput(password, confirm string) error {
	if len(password) > maxPasswordInputLength || len(confirm) > maxPasswordInputLength {
		return apperrors.Validation("Password must be at most 100 characters")
	}
	return nil
}

// userView is the wire shape of a principal. The credential hash never
// appears here.
type userView struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func viewOf(user *users.User) userView {
	return userView{
		ID:        user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
		LastLogin: user.LastLogin,
	}
}

type tokenResponse struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	User         userView `json:"user"`
}

func tokenResponseOf(grant *auth.Grant) tokenResponse {
	return tokenResponse{
		AccessToken:  grant.AccessToken,
		TokenType:    "bearer",
		ExpiresIn:    grant.ExpiresIn,
		RefreshToken: grant.RefreshToken,
		User:         viewOf(grant.User),
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type listUsersResponse struct {
	Users []userView `json:"users"`
	Total int        `json:"total"`
}
