// Package guard makes access decisions from bearer tokens. It is pure
// computation over the token authority: no store access happens here, so a
// request carrying a valid token never pays a database round trip just to be
// identified.
package guard

import (
	"errors"

	"github.com/easylaw/auth-service/internal/apperrors"
	"github.com/easylaw/auth-service/token"
	"github.com/easylaw/auth-service/users"
)

type Guard struct {
	authority *token.Authority
}

func New(authority *token.Authority) *Guard {
	return &Guard{authority: authority}
}

// ResolvePrincipal verifies a bearer token and returns the claims it carries.
// Only access tokens identify a principal; a refresh token presented as a
// bearer credential is refused.
func (g *Guard) ResolvePrincipal(raw string) (token.Claims, error) {
	claims, err := g.authority.Verify(raw)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			return token.Claims{}, apperrors.Authentication("Token has expired")
		}
		return token.Claims{}, apperrors.Authentication("Could not validate credentials")
	}
	if claims.Type != token.TypeAccess {
		return token.Claims{}, apperrors.Authentication("Could not validate credentials")
	}
	return claims, nil
}

// RequireRole checks the role claim frozen at issue time against the allowed
// set. Destructive admin operations additionally re-validate the caller
// against the store in the auth service.
func RequireRole(claims token.Claims, roles ...users.Role) error {
	for _, role := range roles {
		if claims.Role == string(role) {
			return nil
		}
	}
	return apperrors.Authorization("Access denied")
}
