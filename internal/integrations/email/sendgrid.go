package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridSendEndpoint = "/v3/mail/send"

// SendGridConfig holds configuration for SendGrid
type SendGridConfig struct {
	APIKey string
	From   From
	Host   string // empty = https://api.sendgrid.com
}

// SendGridSender sends emails via the SendGrid v3 API
type SendGridSender struct {
	client *sendgrid.Client
	from   From
	logger Logger
}

// NewSendGridSender returns nil when no API key is configured
func NewSendGridSender(cfg SendGridConfig, logger Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}

	var client *sendgrid.Client
	if cfg.Host == "" {
		client = sendgrid.NewSendClient(cfg.APIKey)
	} else {
		req := sendgrid.GetRequest(cfg.APIKey, sendGridSendEndpoint, cfg.Host)
		req.Method = "POST"
		client = &sendgrid.Client{Request: req}
	}

	return &SendGridSender{
		client: client,
		from:   cfg.From,
		logger: logger,
	}
}

// Send sends an email via SendGrid
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if s == nil || s.client == nil {
		return ErrNotConfigured
	}

	from := mail.NewEmail(s.from.Name, s.from.Email)
	to := mail.NewEmail(msg.ToName, msg.To)

	html := msg.HTML
	if html == "" {
		html = msg.Text
	}
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, html)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error("sendgrid send to %s failed: %v", msg.To, err)
		return fmt.Errorf("%w: sendgrid: %v", ErrSendFailed, err)
	}
	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid returned status %d for %s: %s", response.StatusCode, msg.To, response.Body)
		return fmt.Errorf("%w: sendgrid returned status %d", ErrSendFailed, response.StatusCode)
	}

	s.logger.Info("email %q sent to %s via sendgrid, status=%d", msg.Subject, msg.To, response.StatusCode)
	return nil
}

var _ Sender = (*SendGridSender)(nil)
