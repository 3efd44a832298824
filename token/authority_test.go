package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easylaw/auth-service/token"
)

const testSecret = "test-signing-secret"

func newTestAuthority(t *testing.T, now func() time.Time) *token.Authority {
	t.Helper()
	signer, err := token.NewHMACSigner(testSecret, "HS256")
	require.NoError(t, err)

	opts := []token.Option{}
	if now != nil {
		opts = append(opts, token.WithNowFunc(now))
	}
	return token.NewAuthority(signer, 15*time.Minute, opts...)
}

func TestNewHMACSignerRejectsUnknownAlgorithm(t *testing.T) {
	_, err := token.NewHMACSigner(testSecret, "RS256")
	require.Error(t, err)

	_, err = token.NewHMACSigner(testSecret, "none")
	require.Error(t, err)

	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		_, err := token.NewHMACSigner(testSecret, alg)
		assert.NoError(t, err, alg)
	}
}

func TestIssueAccessRoundTrip(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	authority := newTestAuthority(t, func() time.Time { return issuedAt })

	raw, err := authority.IssueAccess("user-1", "alice@example.com", "user")
	require.NoError(t, err)

	claims, err := authority.Verify(raw)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, token.TypeAccess, claims.Type)
	assert.Equal(t, issuedAt.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, issuedAt.Add(15*time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestIssueAccessOverrideLifetime(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	authority := newTestAuthority(t, func() time.Time { return issuedAt })

	raw, err := authority.IssueAccess("user-1", "alice@example.com", "user", 30*24*time.Hour)
	require.NoError(t, err)

	claims, err := authority.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(30*24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestIssueRefreshThirtyDays(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	authority := newTestAuthority(t, func() time.Time { return issuedAt })

	raw, err := authority.IssueRefresh("user-1", "alice@example.com", "user")
	require.NoError(t, err)

	claims, err := authority.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, token.TypeRefresh, claims.Type)
	assert.Equal(t, issuedAt.Add(token.RefreshTokenTTL).Unix(), claims.ExpiresAt.Unix())
}

func TestVerifyExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	authority := newTestAuthority(t, func() time.Time { return now })

	raw, err := authority.IssueAccess("user-1", "alice@example.com", "user")
	require.NoError(t, err)

	// Same secret, clock moved past expiry.
	now = now.Add(16 * time.Minute)
	_, err = authority.Verify(raw)
	assert.ErrorIs(t, err, token.ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	authority := newTestAuthority(t, nil)

	otherSigner, err := token.NewHMACSigner("a-different-secret", "HS256")
	require.NoError(t, err)
	other := token.NewAuthority(otherSigner, 15*time.Minute)

	raw, err := other.IssueAccess("user-1", "alice@example.com", "user")
	require.NoError(t, err)

	_, err = authority.Verify(raw)
	assert.ErrorIs(t, err, token.ErrTokenInvalid)
}

func TestVerifyGarbage(t *testing.T) {
	authority := newTestAuthority(t, nil)

	for _, raw := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.e30."} {
		_, err := authority.Verify(raw)
		assert.ErrorIs(t, err, token.ErrTokenInvalid, raw)
	}
}

func TestVerifyMissingRequiredClaims(t *testing.T) {
	authority := newTestAuthority(t, nil)

	// Signed with the right secret but carrying no subject claim.
	raw, err := authority.IssueAccess("", "alice@example.com", "user")
	require.NoError(t, err)

	_, err = authority.Verify(raw)
	assert.ErrorIs(t, err, token.ErrTokenInvalid)
}

func TestDecodeUnsafe(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	authority := newTestAuthority(t, func() time.Time { return now })

	raw, err := authority.IssueAccess("user-1", "alice@example.com", "admin")
	require.NoError(t, err)

	// Decodes even after expiry and with no signature check.
	now = now.Add(24 * time.Hour)
	claims := authority.DecodeUnsafe(raw)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)

	assert.Zero(t, authority.DecodeUnsafe("not-a-token"))
}
