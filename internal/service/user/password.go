package user

import (
	"strings"

	"storefront/internal/domain"
)

const (
	passwordMin      = 8
	passwordSpecials = "!@#$%^&*(),.?\":{}|<>"
)

var (
	errPasswordMismatch = domain.Invalid("Passwords do not match.")
	errWeakPassword     = domain.Invalid("Password must be at least 8 characters and include 1 uppercase, 1 lowercase, 1 number, and 1 special character.")
)

func validatePassword(p string) error {
	if len(p) < passwordMin {
		return errWeakPassword
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return errWeakPassword
	}
	return nil
}

func checkNewPassword(password, confirm string) error {
	if password != confirm {
		return errPasswordMismatch
	}
	return validatePassword(password)
}
