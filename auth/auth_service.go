// Package auth implements the credential and session authority: registration,
// login, token refresh, password changes and the admin account lifecycle.
// Every failure a caller may see is an *apperrors.Error; store and codec
// internals never leak across this boundary.
package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/easylaw/auth-service/credential"
	"github.com/easylaw/auth-service/internal/apperrors"
	"github.com/easylaw/auth-service/token"
	"github.com/easylaw/auth-service/users"
)

// DefaultBootstrapPassword is the documented first-boot admin password. It
// must be rotated immediately after bootstrap; callers surface a warning.
const DefaultBootstrapPassword = "admin123"

// rememberMeAccessTTL extends the access token lifetime for "remember me"
// logins.
const rememberMeAccessTTL = 30 * 24 * time.Hour

// Grant is the result of a successful register, login or refresh: the issued
// tokens plus the principal they were issued for. RefreshToken is empty when
// the operation does not mint one (refresh is not rotated).
type Grant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds until the access token expires
	User         *users.User
}

// Service wires the credential codec, the token authority and the user store
// into the account lifecycle operations.
type Service struct {
	store             users.Store
	authority         *token.Authority
	adminEmail        string
	bootstrapPassword string
	nowTime           func() time.Time // injectable for testing
}

// ServiceOption modifies a Service during construction.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithBootstrapPassword overrides the default first-boot admin password.
func WithBootstrapPassword(password string) ServiceOption {
	return func(s *Service) {
		s.bootstrapPassword = password
	}
}

// NewService initializes the auth service with its required dependencies.
func NewService(store users.Store, authority *token.Authority, adminEmail string, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("[NewService] users store is required")
	}
	if authority == nil {
		return nil, errors.New("[NewService] token authority is required")
	}
	if adminEmail == "" {
		return nil, errors.New("[NewService] admin email is required")
	}

	service := &Service{
		store:             store,
		authority:         authority,
		adminEmail:        adminEmail,
		bootstrapPassword: DefaultBootstrapPassword,
		nowTime:           time.Now,
	}
	for _, opt := range options {
		opt(service)
	}
	return service, nil
}

// Register creates a new active account with the user role and signs it in.
func (s *Service) Register(ctx context.Context, email, password, confirmPassword string) (*Grant, error) {
	email = strings.TrimSpace(email)
	if !validEmail(email) {
		return nil, apperrors.Validation("Invalid email address")
	}
	if password != confirmPassword {
		return nil, apperrors.Validation("Passwords do not match")
	}
	if err := credential.MeetsPolicy(password); err != nil {
		return nil, err
	}

	hash, err := credential.Hash(password)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Register]")
	}

	user, err := s.store.Create(ctx, email, hash, users.RoleUser, users.StatusActive)
	if err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("User with this email already exists")
		}
		return nil, errors.Wrap(err, "[Service.Register]")
	}

	return s.issueGrant(user, 0)
}

// Login authenticates an email/password pair. Unknown email and wrong
// password are indistinguishable to the caller; deactivation is only
// revealed after the credential check passes.
func (s *Service) Login(ctx context.Context, email, password string, rememberMe bool) (*Grant, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, apperrors.Authentication("Invalid email or password")
		}
		return nil, errors.Wrap(err, "[Service.Login]")
	}
	if !credential.Verify(password, user.PasswordHash) {
		return nil, apperrors.Authentication("Invalid email or password")
	}
	if !user.IsActive() {
		return nil, apperrors.Authentication("Account is deactivated")
	}

	if err := s.store.RecordLogin(ctx, user.ID); err != nil {
		return nil, errors.Wrap(err, "[Service.Login] record login")
	}
	user.LoginCount++
	now := s.nowTime().UTC()
	user.LastLogin = &now

	var ttl time.Duration
	if rememberMe {
		ttl = rememberMeAccessTTL
	}
	return s.issueGrant(user, ttl)
}

// Refresh exchanges a valid refresh token for a new access token. Every
// failure mode collapses into the same authentication error so the response
// reveals nothing about why the token was refused. The refresh token itself
// is not rotated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Grant, error) {
	invalid := apperrors.Authentication("Invalid refresh token")

	claims, err := s.authority.Verify(refreshToken)
	if err != nil {
		return nil, invalid
	}
	if claims.Type != token.TypeRefresh {
		return nil, invalid
	}

	user, err := s.store.GetByID(ctx, claims.Subject)
	if err != nil || !user.IsActive() {
		return nil, invalid
	}

	access, err := s.authority.IssueAccess(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Refresh]")
	}
	return &Grant{
		AccessToken: access,
		ExpiresIn:   int64(s.authority.AccessTTL().Seconds()),
		User:        user,
	}, nil
}

// GetUser fetches a principal by identifier.
func (s *Service) GetUser(ctx context.Context, id string) (*users.User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, errors.Wrap(err, "[Service.GetUser]")
	}
	return user, nil
}

// ChangePassword verifies the current credential before replacing it. The new
// password passes the same policy as registration.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return apperrors.Validation("Passwords do not match")
	}
	if err := credential.MeetsPolicy(newPassword); err != nil {
		return err
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !credential.Verify(currentPassword, user.PasswordHash) {
		return apperrors.Authentication("Current password is incorrect")
	}

	hash, err := credential.Hash(newPassword)
	if err != nil {
		return errors.Wrap(err, "[Service.ChangePassword]")
	}
	if err := s.store.SetPasswordHash(ctx, userID, hash); err != nil {
		return apperrors.Wrap(err, apperrors.KindValidation, "Failed to update password")
	}
	return nil
}

// DeactivateUser suspends a target account. The caller is re-validated
// against the store as an active admin; token claims alone are not trusted
// for destructive administration.
func (s *Service) DeactivateUser(ctx context.Context, callerID, targetID string) error {
	if _, err := s.ValidateAdminAccess(ctx, callerID); err != nil {
		return err
	}
	if callerID == targetID {
		return apperrors.Validation("Cannot deactivate your own account")
	}

	if err := s.store.SetStatus(ctx, targetID, users.StatusInactive); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return apperrors.NotFound("User not found")
		}
		return errors.Wrap(err, "[Service.DeactivateUser]")
	}
	return nil
}

// ActivateUser restores a suspended account.
func (s *Service) ActivateUser(ctx context.Context, callerID, targetID string) error {
	if _, err := s.ValidateAdminAccess(ctx, callerID); err != nil {
		return err
	}

	if err := s.store.SetStatus(ctx, targetID, users.StatusActive); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return apperrors.NotFound("User not found")
		}
		return errors.Wrap(err, "[Service.ActivateUser]")
	}
	return nil
}

// ListUsers returns a page of accounts plus the unpaged total, admin only.
func (s *Service) ListUsers(ctx context.Context, callerID string, offset, limit int, status *users.Status) ([]*users.User, int, error) {
	if _, err := s.ValidateAdminAccess(ctx, callerID); err != nil {
		return nil, 0, err
	}

	list, err := s.store.List(ctx, offset, limit, status)
	if err != nil {
		return nil, 0, errors.Wrap(err, "[Service.ListUsers]")
	}
	total, err := s.store.Count(ctx, status)
	if err != nil {
		return nil, 0, errors.Wrap(err, "[Service.ListUsers] count")
	}
	return list, total, nil
}

// ValidateAdminAccess confirms the caller is an existing, active admin.
func (s *Service) ValidateAdminAccess(ctx context.Context, callerID string) (*users.User, error) {
	user, err := s.store.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, apperrors.Authorization("Admin access required")
		}
		return nil, errors.Wrap(err, "[Service.ValidateAdminAccess]")
	}
	if !user.IsActive() || !user.IsAdmin() {
		return nil, apperrors.Authorization("Admin access required")
	}
	return user, nil
}

// EnsureAdminBootstrap idempotently guarantees the configured admin account
// exists. An already-existing account is returned untouched, its credential
// hash intact.
func (s *Service) EnsureAdminBootstrap(ctx context.Context) (*users.User, error) {
	hash, err := credential.Hash(s.bootstrapPassword)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.EnsureAdminBootstrap]")
	}
	user, err := s.store.EnsureAdmin(ctx, s.adminEmail, hash)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.EnsureAdminBootstrap]")
	}
	return user, nil
}

func (s *Service) issueGrant(user *users.User, ttlOverride time.Duration) (*Grant, error) {
	var override []time.Duration
	ttl := s.authority.AccessTTL()
	if ttlOverride > 0 {
		override = append(override, ttlOverride)
		ttl = ttlOverride
	}

	access, err := s.authority.IssueAccess(user.ID, user.Email, string(user.Role), override...)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.issueGrant] access")
	}
	refresh, err := s.authority.IssueRefresh(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, errors.Wrap(err, "[Service.issueGrant] refresh")
	}

	return &Grant{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(ttl.Seconds()),
		User:         user,
	}, nil
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	// Reject display-name forms like `Alice <a@b.c>`; only the bare address
	// counts.
	return err == nil && addr.Address == email
}
