package domain

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidUsername = errors.New("username must be 3-50 characters of letters, digits, '.', '_' or '-'")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidRole     = errors.New("invalid role")
)

var (
	usernameRegex = regexp.MustCompile(`^[a-z0-9._-]{3,50}$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Role grants access to account administration.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// ParseRole parses a role name. Empty means staff.
func ParseRole(value string) (Role, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return RoleStaff, nil
	}
	r := Role(value)
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// NormalizeUsername trims and lowercases a username and checks its shape.
// Usernames are compared in this form.
func NormalizeUsername(value string) (string, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if !usernameRegex.MatchString(value) {
		return "", ErrInvalidUsername
	}
	return value, nil
}

// NormalizeEmail trims and lowercases an optional email address.
func NormalizeEmail(value string) (string, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "", nil
	}
	if !emailRegex.MatchString(value) {
		return "", ErrInvalidEmail
	}
	return value, nil
}
