package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLinkWithUsername(t *testing.T) {
	tests := []struct {
		link, username, expected string
	}{
		{"https://app.test/verify", "alice", "https://app.test/verify?username=alice"},
		{"https://app.test/verify?ref=mail", "bob", "https://app.test/verify?ref=mail&username=bob"},
		{"https://app.test/verify", "", "https://app.test/verify"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, linkWithUsername(tt.link, tt.username))
	}
}

func TestFormatExpiry(t *testing.T) {
	assert.Equal(t, "1 hour", formatExpiry(time.Hour))
	assert.Equal(t, "2 hours", formatExpiry(2*time.Hour))
	assert.Equal(t, "30 minutes", formatExpiry(30*time.Minute))
}

func TestVerificationMessageEscapesInput(t *testing.T) {
	msg := verificationMessage(CodeMessage{
		To:        "a@test.dev",
		Username:  "<script>",
		Code:      "123456",
		Link:      "https://app.test/verify",
		ExpiresIn: time.Hour,
	})

	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.Text, "123456")
	assert.Contains(t, msg.Text, "1 hour")
}
