// Package credential owns password hashing, verification and the password
// strength policy. It holds no state; all functions are safe for concurrent
// use.
package credential

import (
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/easylaw/auth-service/internal/apperrors"
)

// MaxPasswordBytes is bcrypt's fixed input bound. Longer passwords are
// truncated to this many bytes before hashing AND before verification —
// the truncation must match on both paths or borderline-length passwords
// stop verifying against their own hashes.
const MaxPasswordBytes = 72

// MinPasswordLength is the policy minimum.
const MinPasswordLength = 8

// truncate applies the bcrypt byte bound.
func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}

// Hash produces a salted bcrypt hash of the password.
func Hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword(truncate(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "[credential.Hash] bcrypt.GenerateFromPassword")
	}
	return string(h), nil
}

// Verify reports whether password matches hash. A malformed or foreign hash
// is a mismatch, never an error; the bcrypt comparison itself is
// constant-time with respect to the password.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(password)) == nil
}

// MeetsPolicy checks the strength policy: at least MinPasswordLength
// characters with one uppercase letter, one lowercase letter and one digit.
// Returns nil on success or a ValidationError naming the requirement.
// There is no policy maximum; anything past MaxPasswordBytes is silently
// truncated by Hash/Verify.
func MeetsPolicy(password string) error {
	if len(password) < MinPasswordLength {
		return apperrors.Validation("Password must be at least 8 characters with uppercase, lowercase, and number")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return apperrors.Validation("Password must be at least 8 characters with uppercase, lowercase, and number")
	}
	return nil
}
