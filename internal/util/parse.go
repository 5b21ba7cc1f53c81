package util

import (
	"math"
	"strconv"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 20

	// MaxPage keeps Offset within an int32 for any limit up to MaxPageLimit
	MaxPage = math.MaxInt32 / MaxPageLimit
)

// ParseInt parses a string to an integer, returning defaultValue if parsing fails
func ParseInt(s string, defaultValue int) int {
	if val, err := strconv.Atoi(s); err == nil {
		return val
	}
	return defaultValue
}

// NormalizePage clamps page/limit query values: page stays within [1, MaxPage],
// limit falls back to DefaultPageLimit and never exceeds MaxPageLimit.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

// Offset returns the row offset for a normalized page/limit pair.
func Offset(page, limit int) int {
	return (page - 1) * limit
}
