package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"ecommerce-api/internal/logx"
)

// Message is a plain-text e-mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// SendGrid delivers mail through the SendGrid v3 API.
type SendGrid struct {
	client *sendgrid.Client
	from   string
	logger logx.Logger
}

// NewSendGrid constructs a SendGrid mailer.
func NewSendGrid(apiKey, from string, logger logx.Logger) *SendGrid {
	return &SendGrid{client: sendgrid.NewSendClient(apiKey), from: from, logger: logger}
}

// Send sends m using SendGrid.
func (s *SendGrid) Send(ctx context.Context, m Message) error {
	if m.To == "" {
		return fmt.Errorf("to address is empty")
	}
	message := mail.NewSingleEmail(
		mail.NewEmail("Shop", s.from),
		m.Subject,
		mail.NewEmail("", m.To),
		m.Body,
		fmt.Sprintf("<pre>%s</pre>", m.Body),
	)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", resp.StatusCode, resp.Body)
	}

	s.logger.Debug("mail sent",
		logx.Int("status", resp.StatusCode),
		logx.String("subject", m.Subject),
	)
	return nil
}

// Log writes messages to the logger instead of sending them. Used when no API key is configured.
type Log struct {
	logger logx.Logger
}

// NewLog constructs a Log mailer.
func NewLog(logger logx.Logger) *Log { return &Log{logger: logger} }

// Send logs m.
func (l *Log) Send(_ context.Context, m Message) error {
	l.logger.Info("mail (not sent)",
		logx.String("to", m.To),
		logx.String("subject", m.Subject),
		logx.String("body", m.Body),
	)
	return nil
}
