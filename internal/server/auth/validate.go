package auth

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/cohorttools/cohort-api/internal/common"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// NormalizeEmail returns the canonical form of an email address used for
// lookups and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateSignup checks a signup payload against the registration rules and
// returns one ordered entry per failing field. It is pure: no store access,
// no mutation. An empty result means the payload is accepted.
func ValidateSignup(username, email, password string) common.ValidationErrors {
	var errs common.ValidationErrors

	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 50 {
		errs = append(errs, common.FieldError{
			Field:   "username",
			Message: "Username must be between 3 and 50 characters",
		})
	} else if !usernameRe.MatchString(username) {
		errs = append(errs, common.FieldError{
			Field:   "username",
			Message: "Username may only contain letters, numbers and underscores",
		})
	}

	if !emailRe.MatchString(NormalizeEmail(email)) {
		errs = append(errs, common.FieldError{
			Field:   "email",
			Message: "A valid email address is required",
		})
	}

	if !passwordAcceptable(password) {
		errs = append(errs, common.FieldError{
			Field:   "password",
			Message: "Password must be at least 8 characters and contain a lowercase letter, an uppercase letter and a number",
		})
	}

	return errs
}

// passwordAcceptable applies the combined password rule: minimum length plus
// at least one lowercase letter, one uppercase letter and one digit.
func passwordAcceptable(password string) bool {
	if len(password) < 8 {
		return false
	}
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}
