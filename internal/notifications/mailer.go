package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sellora/sellora-backend/pkg/config"
)

// Mailer sends a plain-text email. Implementations are best-effort: the
// consumer logs and swallows failures so email can never block a
// notification row.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NoopMailer satisfies Mailer while email delivery is not configured.
type NoopMailer struct{}

// Send discards the message.
func (NoopMailer) Send(context.Context, string, string, string) error {
	return nil
}

const sendgridSendURL = "https://api.sendgrid.com/v3/mail/send"

// SendGridMailer delivers mail through the SendGrid v3 REST API.
type SendGridMailer struct {
	apiKey string
	from   string
	client *http.Client
}

// NewMailer returns a SendGrid mailer when an API key is configured and a
// noop mailer otherwise.
func NewMailer(cfg config.MailerConfig) Mailer {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return NoopMailer{}
	}
	return &SendGridMailer{
		apiKey: cfg.APIKey,
		from:   cfg.DefaultFrom,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type sendgridAddress struct {
	Email string `json:"email"`
}

type sendgridRequest struct {
	Personalizations []struct {
		To []sendgridAddress `json:"to"`
	} `json:"personalizations"`
	From    sendgridAddress `json:"from"`
	Subject string          `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

// Send posts a single-recipient plain-text message.
func (m *SendGridMailer) Send(ctx context.Context, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("recipient address required")
	}

	payload := sendgridRequest{
		From:    sendgridAddress{Email: m.from},
		Subject: subject,
	}
	payload.Personalizations = []struct {
		To []sendgridAddress `json:"to"`
	}{{To: []sendgridAddress{{Email: to}}}}
	payload.Content = []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{{Type: "text/plain", Value: body}}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendgridSendURL, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("building mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}
	return nil
}
