package utilities

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is used when no cost factor is configured.
const DefaultHashCost = bcrypt.DefaultCost

// HashPassword hashes plaintext with bcrypt at the given cost factor.
// Costs outside bcrypt's range fall back to DefaultHashCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether password matches digest. A malformed digest
// is an error, never a match.
func VerifyPassword(password, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	switch err {
	case nil:
		return true, nil
	case bcrypt.ErrMismatchedHashAndPassword:
		return false, nil
	default:
		return false, err
	}
}
