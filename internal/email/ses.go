package email

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/verity/backend/internal/telemetry"
)

// EmailService handles sending emails via AWS SES
type EmailService struct {
	client    *ses.Client
	fromEmail string
	fromName  string
}

var _ Sender = (*EmailService)(nil)

// NewEmailService creates a new email service using AWS SES
func NewEmailService(region, fromEmail, fromName string) (*EmailService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &EmailService{
		client:    ses.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
	}, nil
}

// SendVerificationCode emails the signup verification code
func (e *EmailService) SendVerificationCode(ctx context.Context, msg CodeMessage) error {
	if err := e.send(ctx, msg.To, verificationMessage(msg)); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// SendPasswordResetCode emails the password reset code
func (e *EmailService) SendPasswordResetCode(ctx context.Context, msg CodeMessage) error {
	if err := e.send(ctx, msg.To, passwordResetMessage(msg)); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

func (e *EmailService) send(ctx context.Context, to string, content renderedMessage) (err error) {
	ctx, span := telemetry.Events().TraceExternalAPI(ctx, "ses", "send_email")
	defer func() { telemetry.EndSpan(span, err) }()

	from := e.fromEmail
	if e.fromName != "" {
		from = fmt.Sprintf("%s <%s>", e.fromName, e.fromEmail)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(content.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(content.HTML),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(content.Text),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	_, err = e.client.SendEmail(ctx, input)
	return err
}
