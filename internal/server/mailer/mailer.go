// Package mailer sends the transactional email of the account flows.
package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/dmitrijs2005/assetvault/internal/logging"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// emailSender is the part of the Resend client used here.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendMailer delivers mail through the Resend API.
type ResendMailer struct {
	emails emailSender
	from   string
	logger logging.Logger
}

func NewResendMailer(apiKey, from string, logger logging.Logger) *ResendMailer {
	client := resend.NewClient(apiKey)
	return &ResendMailer{emails: client.Emails, from: from, logger: logger.With("module", "mailer")}
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, html string) error {
	resp, err := m.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	m.logger.Info(ctx, "email sent", "to", to, "id", resp.Id)
	return nil
}

// LogMailer writes messages to the log instead of delivering them. It is
// used when no Resend API key is configured.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("module", "mailer")}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, html string) error {
	m.logger.Info(ctx, "email not delivered, no api key configured", "to", to, "subject", subject, "body", html)
	return nil
}

// New picks ResendMailer when apiKey is set and LogMailer otherwise.
func New(apiKey, from string, logger logging.Logger) Mailer {
	if apiKey == "" {
		return NewLogMailer(logger)
	}
	return NewResendMailer(apiKey, from, logger)
}
