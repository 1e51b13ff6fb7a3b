package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService sends transactional email via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service. When fromEmail is empty a
// disabled service is returned and all sends become no-ops.
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SMTP_FROM not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendPasswordResetEmail sends a password reset email with a reset link
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetToken string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): password reset to %s", toEmail)
		return nil
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.appBaseURL, resetToken)
	if s.debug {
		log.Printf("[DEBUG] Reset link generated: %s", resetLink)
	}

	subject := "Reset Your CommunityHub Password"
	htmlBody := fmt.Sprintf(`
<p>Hi %s,</p>
<p>We received a request to reset the password for your CommunityHub account.</p>
<p><a href="%s">Reset your password</a></p>
<p>Or copy and paste this link into your browser:<br>%s</p>
<p><strong>This link will expire in 1 hour.</strong></p>
<p>If you didn't request a password reset, you can safely ignore this email.</p>
`, toName, resetLink, resetLink)

	textBody := fmt.Sprintf(`Hi %s,

We received a request to reset the password for your CommunityHub account.

Reset your password: %s

This link will expire in 1 hour.

If you didn't request a password reset, you can safely ignore this email.
`, toName, resetLink)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendWelcomeEmail sends a welcome email to newly registered members
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Welcome to CommunityHub!"
	htmlBody := fmt.Sprintf(`
<p>Hi %s,</p>
<p>Thank you for joining CommunityHub. Your member account is ready.</p>
<ul>
	<li>Add your family members to the directory</li>
	<li>Browse and register for upcoming events</li>
	<li>Support the community with a donation</li>
</ul>
<p><a href="%s/login">Sign in</a> to get started.</p>
`, toName, s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

Thank you for joining CommunityHub. Your member account is ready.

- Add your family members to the directory
- Browse and register for upcoming events
- Support the community with a donation

Sign in to get started: %s/login
`, toName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendRegistrationConfirmation confirms an event registration
func (s *EmailService) SendRegistrationConfirmation(ctx context.Context, toEmail, toName, eventTitle string, finalAmount float64) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): registration confirmation to %s", toEmail)
		return nil
	}

	subject := fmt.Sprintf("You're registered: %s", eventTitle)
	htmlBody := fmt.Sprintf(`
<p>Hi %s,</p>
<p>Your registration for <strong>%s</strong> is confirmed.</p>
<p>Amount due: $%.2f</p>
<p>See you there!</p>
`, toName, eventTitle, finalAmount)

	textBody := fmt.Sprintf(`Hi %s,

Your registration for %s is confirmed.

Amount due: $%.2f

See you there!
`, toName, eventTitle, finalAmount)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message ID: %s", *result.MessageId)
	}

	log.Printf("Email sent: to=%s, subject=%s", toEmail, subject)
	return nil
}
