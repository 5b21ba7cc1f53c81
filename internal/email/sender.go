package email

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"time"

	"github.com/verity/backend/internal/logger"
	"go.uber.org/zap"
)

// Sender delivers one-time codes. A returned error means the message was not sent.
type Sender interface {
	SendVerificationCode(ctx context.Context, msg CodeMessage) error
	SendPasswordResetCode(ctx context.Context, msg CodeMessage) error
}

// CodeMessage carries a one-time code and the client page that accepts it
type CodeMessage struct {
	To        string
	Username  string
	Code      string
	Link      string // client-supplied verify/reset page
	ExpiresIn time.Duration
}

// LogSender writes codes to the log instead of sending mail. Used in development
// when no SES sender is configured.
type LogSender struct{}

var _ Sender = LogSender{}

func (LogSender) SendVerificationCode(ctx context.Context, msg CodeMessage) error {
	logger.Log.Info("Verification code (email disabled)",
		zap.String("to", msg.To),
		logger.WithUsername(msg.Username),
		zap.String("code", msg.Code),
		zap.String("link", linkWithUsername(msg.Link, msg.Username)),
	)
	return nil
}

func (LogSender) SendPasswordResetCode(ctx context.Context, msg CodeMessage) error {
	logger.Log.Info("Password reset code (email disabled)",
		zap.String("to", msg.To),
		logger.WithUsername(msg.Username),
		zap.String("code", msg.Code),
		zap.String("link", msg.Link),
	)
	return nil
}

type renderedMessage struct {
	Subject string
	HTML    string
	Text    string
}

func verificationMessage(msg CodeMessage) renderedMessage {
	link := linkWithUsername(msg.Link, msg.Username)
	return renderedMessage{
		Subject: "Verify your Verity account",
		HTML: fmt.Sprintf(`<!DOCTYPE html>
<html><body style="font-family: sans-serif; line-height: 1.6;">
<h1>Welcome, %s</h1>
<p>Your verification code is:</p>
<p style="font-size: 28px; letter-spacing: 6px;"><strong>%s</strong></p>
<p>The code expires in %s. Enter it at <a href="%s">%s</a>.</p>
<p>If you did not create an account, you can ignore this email.</p>
</body></html>`,
			html.EscapeString(msg.Username), html.EscapeString(msg.Code), formatExpiry(msg.ExpiresIn),
			html.EscapeString(link), html.EscapeString(link)),
		Text: fmt.Sprintf("Welcome, %s\n\nYour verification code is %s.\nIt expires in %s. Enter it at %s\n\nIf you did not create an account, you can ignore this email.\n",
			msg.Username, msg.Code, formatExpiry(msg.ExpiresIn), link),
	}
}

func passwordResetMessage(msg CodeMessage) renderedMessage {
	return renderedMessage{
		Subject: "Reset your Verity password",
		HTML: fmt.Sprintf(`<!DOCTYPE html>
<html><body style="font-family: sans-serif; line-height: 1.6;">
<h1>Reset your password</h1>
<p>Hi %s, your password reset code is:</p>
<p style="font-size: 28px; letter-spacing: 6px;"><strong>%s</strong></p>
<p>The code expires in %s. Enter it at <a href="%s">%s</a>.</p>
<p>If you did not request a reset, you can ignore this email.</p>
</body></html>`,
			html.EscapeString(msg.Username), html.EscapeString(msg.Code), formatExpiry(msg.ExpiresIn),
			html.EscapeString(msg.Link), html.EscapeString(msg.Link)),
		Text: fmt.Sprintf("Hi %s,\n\nYour password reset code is %s.\nIt expires in %s. Enter it at %s\n\nIf you did not request a reset, you can ignore this email.\n",
			msg.Username, msg.Code, formatExpiry(msg.ExpiresIn), msg.Link),
	}
}

// linkWithUsername appends ?username= so the verify page can prefill the form.
func linkWithUsername(link, username string) string {
	u, err := url.Parse(link)
	if err != nil || username == "" {
		return link
	}
	q := u.Query()
	q.Set("username", username)
	u.RawQuery = q.Encode()
	return u.String()
}

func formatExpiry(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	}
	return fmt.Sprintf("%d minutes", int(d/time.Minute))
}
