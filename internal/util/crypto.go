package util

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes password with bcrypt at the given cost. Costs outside
// bcrypt's accepted range fall back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(password, stored string) bool {
	if password == "" || stored == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
