package credentials

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"nutrivision-go/internal/apperr"
)

const (
	maxUsernameLen  = 30
	minPasswordLen  = 8
	passwordSymbols = `!@#$%^&*(),.?":{}|<>`
)

var (
	emailPattern = regexp.MustCompile(`^[\w\.-]+@[\w\.-]+\.\w+$`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
	lowerPattern = regexp.MustCompile(`[a-z]`)
	digitPattern = regexp.MustCompile(`\d`)
)

func validateSignup(email, username, password string) error {
	if email == "" || username == "" || password == "" {
		return apperr.Invalid("signup", "email, username, and password cannot be empty")
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return apperr.Invalid("username", "username too long (max 30 characters)")
	}
	if !emailPattern.MatchString(email) {
		return apperr.Invalid("email", "please enter a valid email address")
	}
	return ValidatePassword(password)
}

// ValidatePassword applies the strength rules in a fixed order and reports
// the first one that fails.
func ValidatePassword(password string) error {
	switch {
	case len(password) < minPasswordLen:
		return apperr.Invalid("password", "password must be at least 8 characters long")
	case !upperPattern.MatchString(password):
		return apperr.Invalid("password", "password must contain at least one uppercase letter")
	case !lowerPattern.MatchString(password):
		return apperr.Invalid("password", "password must contain at least one lowercase letter")
	case !digitPattern.MatchString(password):
		return apperr.Invalid("password", "password must contain at least one digit")
	case !strings.ContainsAny(password, passwordSymbols):
		return apperr.Invalid("password", "password must contain at least one special character")
	}
	return nil
}
