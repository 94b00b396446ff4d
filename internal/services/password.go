package services

import (
	"errors"
	"strings"
	"unicode"
)

const minPasswordLength = 8

const passwordSpecialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// ErrWeakPassword wraps the individual rule violations returned by ValidatePassword.
var ErrWeakPassword = errors.New("password does not meet requirements")

type PasswordError struct {
	Problems []string
}

func (e *PasswordError) Error() string {
	return ErrWeakPassword.Error() + ": " + strings.Join(e.Problems, " ")
}

func (e *PasswordError) Unwrap() error { return ErrWeakPassword }

// ValidatePassword checks length, upper, lower, digit and special character rules.
func ValidatePassword(password string) error {
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSpecialChars, r):
			hasSpecial = true
		}
	}

	var problems []string
	if len([]rune(password)) < minPasswordLength {
		problems = append(problems, "Password must be at least 8 characters long.")
	}
	if !hasUpper {
		problems = append(problems, "Password must contain at least one uppercase letter.")
	}
	if !hasLower {
		problems = append(problems, "Password must contain at least one lowercase letter.")
	}
	if !hasDigit {
		problems = append(problems, "Password must contain at least one digit.")
	}
	if !hasSpecial {
		problems = append(problems, "Password must contain at least one special character.")
	}

	if len(problems) > 0 {
		return &PasswordError{Problems: problems}
	}
	return nil
}
