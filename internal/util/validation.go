package util

import (
	"net/mail"
	"regexp"
	"strings"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9._]{3,20}$`)

// NormalizeUsername lowercases and trims a handle. Handles are stored lowercase.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidUsername reports whether a normalized handle is 3-20 characters of a-z, 0-9, '.' or '_'.
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// IsValidEmail checks the address parses as a bare RFC 5322 address.
func IsValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// CharLen counts characters rather than bytes, for content length limits.
func CharLen(s string) int {
	return len([]rune(s))
}
