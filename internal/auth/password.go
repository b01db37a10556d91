package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrBadCredentials = errors.New("invalid email or password")

// PasswordVerifier signs admins in with a bcrypt hash configured per email.
type PasswordVerifier struct {
	hashes map[string]string
}

func NewPasswordVerifier(hashes map[string]string) *PasswordVerifier {
	normalized := make(map[string]string, len(hashes))
	for email, hash := range hashes {
		if email = normalizeEmail(email); email != "" && hash != "" {
			normalized[email] = hash
		}
	}
	return &PasswordVerifier{hashes: normalized}
}

func (v *PasswordVerifier) Enabled() bool {
	return v != nil && len(v.hashes) > 0
}

func (v *PasswordVerifier) Verify(email, password string) (*Identity, error) {
	if !v.Enabled() {
		return nil, ErrProviderDisabled
	}
	hash, ok := v.hashes[normalizeEmail(email)]
	if !ok {
		// unknown emails pay the same bcrypt cost
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return &Identity{Email: normalizeEmail(email), Verified: true}, nil
}

const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z.ZKqFVgN4IpZMWdBGtN5pLi"

func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
