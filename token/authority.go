// Package token issues and verifies the signed, time-bounded session tokens
// that stand in for server-side sessions. Tokens are self-contained and
// stateless: verification is pure computation, no store lookup. The trade-off
// is that an issued token cannot be revoked before expiry short of rotating
// the signing secret.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type discriminators. A refresh token presented where an access token
// is expected (or vice versa) must be rejected by the caller.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// RefreshTokenTTL is the fixed lifetime of refresh tokens.
const RefreshTokenTTL = 30 * 24 * time.Hour

var (
	// ErrTokenExpired is returned by Verify when the token's expiry has passed.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid is returned by Verify for every other failure: bad
	// signature, wrong secret, malformed payload, missing required claims.
	// These are deliberately indistinguishable.
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the fixed, validated payload of a session token. Tokens missing
// any required field fail verification rather than decoding to zero values.
type Claims struct {
	Subject   string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Type      Type
}

// jwtClaims is the wire shape of Claims.
type jwtClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	Type  string `json:"type,omitempty"`
}

// Authority issues and verifies session tokens. It owns the signing secret
// (via its Signer) for the process lifetime.
type Authority struct {
	signer    Signer
	accessTTL time.Duration
	nowFunc   func() time.Time
}

// Option configures an Authority.
type Option func(*Authority)

// WithNowFunc overrides the clock (for tests).
func WithNowFunc(now func() time.Time) Option {
	return func(a *Authority) {
		a.nowFunc = now
	}
}

// NewAuthority creates an Authority with the given signer and default access
// token lifetime.
func NewAuthority(signer Signer, accessTTL time.Duration, options ...Option) *Authority {
	a := &Authority{
		signer:    signer,
		accessTTL: accessTTL,
		nowFunc:   time.Now,
	}
	for _, opt := range options {
		opt(a)
	}
	if a.accessTTL <= 0 {
		a.accessTTL = 24 * time.Hour
	}
	return a
}

// AccessTTL returns the default access token lifetime.
func (a *Authority) AccessTTL() time.Duration {
	return a.accessTTL
}

// IssueAccess creates a signed access token for the principal. An optional
// override lifetime replaces the default (used for extended "remember me"
// sessions).
func (a *Authority) IssueAccess(subject, email, role string, overrideTTL ...time.Duration) (string, error) {
	ttl := a.accessTTL
	if len(overrideTTL) > 0 && overrideTTL[0] > 0 {
		ttl = overrideTTL[0]
	}
	return a.issue(subject, email, role, ttl, TypeAccess)
}

// IssueRefresh creates a signed refresh token with the fixed 30-day lifetime.
func (a *Authority) IssueRefresh(subject, email, role string) (string, error) {
	return a.issue(subject, email, role, RefreshTokenTTL, TypeRefresh)
}

func (a *Authority) issue(subject, email, role string, ttl time.Duration, typ Type) (string, error) {
	now := a.nowFunc()
	return a.signer.Sign(jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Role:  role,
		Type:  string(typ),
	})
}

// Verify parses and validates a token, returning its claims. Expired tokens
// fail with ErrTokenExpired; every other failure — bad signature, wrong
// secret, missing required fields — collapses to ErrTokenInvalid.
func (a *Authority) Verify(raw string) (Claims, error) {
	var wire jwtClaims
	parsed, err := jwt.ParseWithClaims(raw, &wire, a.signer.GetVerificationKey,
		jwt.WithTimeFunc(a.nowFunc))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}
	return claimsFromWire(wire)
}

// DecodeUnsafe returns a token's claims WITHOUT verifying the signature.
// Debugging only: it must never gate access to anything. Returns zero Claims
// on any decode failure.
func (a *Authority) DecodeUnsafe(raw string) Claims {
	var wire jwtClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &wire); err != nil {
		return Claims{}
	}
	claims, err := claimsFromWire(wire)
	if err != nil {
		return Claims{}
	}
	return claims
}

// claimsFromWire validates required fields. A token with no subject, no type
// or no expiry is invalid, not a token with empty strings.
func claimsFromWire(wire jwtClaims) (Claims, error) {
	if wire.Subject == "" || wire.Type == "" || wire.ExpiresAt == nil {
		return Claims{}, ErrTokenInvalid
	}
	typ := Type(wire.Type)
	if typ != TypeAccess && typ != TypeRefresh {
		return Claims{}, ErrTokenInvalid
	}

	claims := Claims{
		Subject:   wire.Subject,
		Email:     wire.Email,
		Role:      wire.Role,
		ExpiresAt: wire.ExpiresAt.Time,
		Type:      typ,
	}
	if wire.IssuedAt != nil {
		claims.IssuedAt = wire.IssuedAt.Time
	}
	return claims, nil
}
