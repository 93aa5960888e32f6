package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/smtp"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"energyplus/onboarding-portal/internal/config"
)

// Attachment is a file attached to an outgoing message.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is one outgoing email.
type Message struct {
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Mailer delivers messages over one transport.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg    config.EmailConfig
	logger *zap.Logger
}

// NewSMTPMailer returns nil when the relay is not fully configured;
// callers treat that as "email not configured".
func NewSMTPMailer(cfg config.EmailConfig, logger *zap.Logger) *SMTPMailer {
	if cfg.SMTP.Host == "" || cfg.FromAddress == "" {
		logger.Warn("SMTP provider selected but not fully configured")
		return nil
	}
	return &SMTPMailer{cfg: cfg, logger: logger}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	m.logger.Info("Sending email",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject))

	raw := buildMIMEMessage(m.cfg.FromName, m.cfg.FromAddress, msg)

	auth := smtp.PlainAuth("", m.cfg.SMTP.Username, m.cfg.SMTP.Password, m.cfg.SMTP.Host)
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTP.Host, m.cfg.SMTP.Port)
	if err := smtp.SendMail(addr, auth, m.cfg.FromAddress, msg.To, raw); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// sesAPI is the slice of the SES v2 client the mailer uses.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESMailer delivers mail through Amazon SES v2 raw send.
type SESMailer struct {
	client sesAPI
	cfg    config.EmailConfig
	logger *zap.Logger
}

func NewSESMailer(client sesAPI, cfg config.EmailConfig, logger *zap.Logger) *SESMailer {
	return &SESMailer{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (m *SESMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	m.logger.Info("Sending email via SES",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject))

	raw := buildMIMEMessage(m.cfg.FromName, m.cfg.FromAddress, msg)

	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.cfg.FromAddress),
		Destination: &sestypes.Destination{
			ToAddresses: msg.To,
		},
		Content: &sestypes.EmailContent{
			Raw: &sestypes.RawMessage{Data: raw},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	return nil
}

// buildMIMEMessage renders a message as a multipart MIME document with
// base64 encoded attachments.
func buildMIMEMessage(fromName, fromAddress string, msg Message) []byte {
	var buf bytes.Buffer
	boundary := "----=_Part_0_1234567890"

	buf.WriteString(fmt.Sprintf("From: %s <%s>\r\n", fromName, fromAddress))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", msg.To[0]))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if len(msg.Attachments) == 0 {
		buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
		buf.WriteString("\r\n")
		buf.WriteString(msg.Body)
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n", boundary))
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.Body)
	buf.WriteString("\r\n")

	for _, att := range msg.Attachments {
		buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		buf.WriteString(fmt.Sprintf("Content-Type: %s; name=%q\r\n", att.ContentType, att.Name))
		buf.WriteString("Content-Transfer-Encoding: base64\r\n")
		buf.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n", att.Name))
		buf.WriteString("\r\n")
		buf.WriteString(base64.StdEncoding.EncodeToString(att.Data))
		buf.WriteString("\r\n")
	}

	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return buf.Bytes()
}
