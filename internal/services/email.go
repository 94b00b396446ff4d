package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
	"gopkg.in/gomail.v2"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/config"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/logging"
)

const (
	VerificationTokenExpiry = 24 * time.Hour
	verificationKeyPrefix   = "email_verify:"
)

var ErrInvalidVerificationToken = errors.New("invalid or expired verification token")

type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type EmailProvider interface {
	Send(ctx context.Context, email *Email) error
}

type emailVerifier interface {
	MarkEmailVerified(ctx context.Context, userID uuid.UUID) error
}

// EmailService sends account mail. Verification tokens live in Redis and
// expire on their own after VerificationTokenExpiry.
type EmailService struct {
	provider EmailProvider
	redis    RedisClient
	users    emailVerifier
	baseURL  string
}

func NewEmailService(cfg *config.EmailConfig, redis RedisClient, users emailVerifier) *EmailService {
	from := fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)

	var provider EmailProvider
	switch cfg.Provider {
	case "resend":
		provider = NewResendProvider(cfg.ResendAPIKey, from)
	case "smtp":
		provider = NewSMTPProvider(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, from)
	default:
		provider = NewConsoleProvider()
	}

	return &EmailService{
		provider: provider,
		redis:    redis,
		users:    users,
		baseURL:  cfg.BaseURL,
	}
}

// GenerateToken creates a random token and its SHA-256 hash.
func GenerateToken() (token string, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generating random bytes: %w", err)
	}
	token = hex.EncodeToString(b)
	return token, HashToken(token), nil
}

func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func (s *EmailService) SendVerificationEmail(ctx context.Context, userID uuid.UUID, email string) error {
	token, tokenHash, err := GenerateToken()
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, verificationKeyPrefix+tokenHash, userID.String(), VerificationTokenExpiry); err != nil {
		return fmt.Errorf("storing verification token: %w", err)
	}

	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", s.baseURL, url.QueryEscape(token))

	return s.provider.Send(ctx, &Email{
		To:      email,
		Subject: "Verify your HoriZoniX email",
		HTML: fmt.Sprintf(`<p>Welcome to HoriZoniX!</p>
<p><a href="%s">Verify your email address</a></p>
<p>This link expires in 24 hours.</p>`, verifyURL),
		Text: fmt.Sprintf("Click to verify your email: %s\n\nThis link expires in 24 hours.", verifyURL),
	})
}

// VerifyEmail consumes a token and marks its user verified.
func (s *EmailService) VerifyEmail(ctx context.Context, token string) error {
	key := verificationKeyPrefix + HashToken(token)

	userIDStr, err := s.redis.Get(ctx, key)
	if err != nil {
		return ErrInvalidVerificationToken
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return ErrInvalidVerificationToken
	}

	if err := s.users.MarkEmailVerified(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidVerificationToken
		}
		return err
	}

	if err := s.redis.Del(ctx, key); err != nil {
		logging.Warn("Failed to delete verification token", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID.String(),
		})
	}
	return nil
}

type ResendProvider struct {
	client *resend.Client
	from   string
}

func NewResendProvider(apiKey, from string) *ResendProvider {
	return &ResendProvider{client: resend.NewClient(apiKey), from: from}
}

func (p *ResendProvider) Send(ctx context.Context, email *Email) error {
	_, err := p.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    p.from,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	})
	if err != nil {
		return fmt.Errorf("sending email via Resend: %w", err)
	}

	logging.Info("Email sent via Resend", map[string]interface{}{"to": email.To, "subject": email.Subject})
	return nil
}

// SMTPProvider delivers through any SMTP relay, including Mailpit in local dev.
type SMTPProvider struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPProvider(host string, port int, username, password, from string) *SMTPProvider {
	return &SMTPProvider{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (p *SMTPProvider) message(email *Email) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", p.from)
	m.SetHeader("To", email.To)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/plain", email.Text)
	if email.HTML != "" {
		m.AddAlternative("text/html", email.HTML)
	}
	return m
}

func (p *SMTPProvider) Send(ctx context.Context, email *Email) error {
	if err := p.dialer.DialAndSend(p.message(email)); err != nil {
		return fmt.Errorf("sending email via SMTP: %w", err)
	}

	logging.Info("Email sent via SMTP", map[string]interface{}{"to": email.To, "subject": email.Subject})
	return nil
}

// ConsoleProvider logs emails instead of sending them.
type ConsoleProvider struct{}

func NewConsoleProvider() *ConsoleProvider {
	return &ConsoleProvider{}
}

func (p *ConsoleProvider) Send(ctx context.Context, email *Email) error {
	logging.Info("Email (console provider)", map[string]interface{}{
		"to":      email.To,
		"subject": email.Subject,
		"body":    email.Text,
	})
	return nil
}
