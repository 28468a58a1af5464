package handlers

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// passwordProblem describes the first rule raw breaks, or returns "" when raw is acceptable.
func passwordProblem(raw string) string {
	if len([]rune(raw)) < minPasswordLength {
		return "Password must be at least 6 characters long"
	}
	if !strings.ContainsFunc(raw, unicode.IsUpper) {
		return "Password must include at least one uppercase letter"
	}
	if !strings.ContainsFunc(raw, unicode.IsLower) {
		return "Password must include at least one lowercase letter"
	}
	if !strings.ContainsFunc(raw, unicode.IsDigit) {
		return "Password must include at least one number"
	}
	return ""
}

func hashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(hash string, raw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw))
}
