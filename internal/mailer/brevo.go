package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const brevoAPIURL = "https://api.brevo.com/v3/smtp/email"

// Mailer sends transactional email through Brevo. With no API key configured
// it logs the mail instead of sending, so local development works offline.
type Mailer struct {
	apiKey     string
	senderMail string
	appURL     string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(apiKey, senderMail, appURL string, logger *slog.Logger) *Mailer {
	return &Mailer{
		apiKey:     apiKey,
		senderMail: senderMail,
		appURL:     appURL,
		logger:     logger,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoEmail struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

// SendVerificationEmail mails the account-confirmation link.
func (m *Mailer) SendVerificationEmail(ctx context.Context, email, name, token string) error {
	link := fmt.Sprintf("%s/api/auth/verify-email?token=%s", m.appURL, token)
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p>Welcome to BookHub! Please confirm your email address by clicking the link below:</p><p><a href="%s">Verify my email</a></p><p>If you did not sign up, you can ignore this message.</p>`,
		name, link)
	return m.send(ctx, email, name, "Confirm your BookHub account", html)
}

// SendPasswordResetEmail mails the password-reset link.
func (m *Mailer) SendPasswordResetEmail(ctx context.Context, email, name, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.appURL, token)
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p>We received a request to reset your BookHub password. Click the link below to choose a new one:</p><p><a href="%s">Reset my password</a></p><p>This link expires in one hour. If you did not request a reset, you can ignore this message.</p>`,
		name, link)
	return m.send(ctx, email, name, "Reset your BookHub password", html)
}

func (m *Mailer) send(ctx context.Context, toEmail, toName, subject, html string) error {
	if m.apiKey == "" {
		m.logger.Info("email_send_skipped", "to", toEmail, "subject", subject)
		return nil
	}

	payload := brevoEmail{
		Sender:      brevoAddress{Email: m.senderMail, Name: "BookHub"},
		To:          []brevoAddress{{Email: toEmail, Name: toName}},
		Subject:     subject,
		HTMLContent: html,
	}

	bodyJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPIURL, bytes.NewReader(bodyJSON))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("brevo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("brevo HTTP %d: %s", resp.StatusCode, string(body))
	}

	m.logger.Info("email_sent", "to", toEmail, "subject", subject)
	return nil
}
