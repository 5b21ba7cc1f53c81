package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"
)

const (
	codeDigits       = 6
	VerifyCodeTTL    = time.Hour
	ResetPasswordTTL = 30 * time.Minute
)

var codeSpace = big.NewInt(1_000_000)

// generateCode returns a uniformly random zero-padded 6 digit code
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}

// codesMatch compares in constant time
func codesMatch(expected, given string) bool {
	return subtle.ConstantTimeCompare([]byte(expected), []byte(given)) == 1
}
