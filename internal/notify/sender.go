package notify

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"energyplus/onboarding-portal/internal/onboarding"
)

// Result is the outcome of a notification attempt. Delivery problems are
// reported here rather than as errors: a failed email never aborts the
// flow that triggered it.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Sender notifies the team and the client when an onboarding completes.
type Sender interface {
	IsConfigured() bool
	Send(ctx context.Context, rec *onboarding.Record, pdf []byte) Result
}

// EmailSender sends the completed intake report to the team address, and
// to the client when they left an email.
type EmailSender struct {
	mailer    Mailer
	teamEmail string
	logger    *zap.Logger
}

func NewEmailSender(mailer Mailer, teamEmail string, logger *zap.Logger) *EmailSender {
	return &EmailSender{
		mailer:    mailer,
		teamEmail: teamEmail,
		logger:    logger,
	}
}

func (s *EmailSender) IsConfigured() bool {
	return s.mailer != nil && s.teamEmail != ""
}

var fileNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ReportFileName builds the attachment name from the company name.
func ReportFileName(companyName string) string {
	if companyName == "" {
		companyName = "Client"
	}
	return fileNameSanitizer.ReplaceAllString(companyName, "-") + "-Onboarding.pdf"
}

func (s *EmailSender) Send(ctx context.Context, rec *onboarding.Record, pdf []byte) Result {
	if !s.IsConfigured() {
		return Result{Success: false, Message: "email not configured"}
	}

	info := rec.OfferAndEconomics
	companyName, _ := info["companyName"].(string)
	clientName, _ := info["clientName"].(string)
	clientEmail, _ := info["clientEmail"].(string)
	if companyName == "" {
		companyName = "Client"
	}
	if clientName == "" {
		clientName = "Client"
	}

	fileName := ReportFileName(companyName)
	attachment := Attachment{
		Name:        fileName,
		ContentType: "application/pdf",
		Data:        pdf,
	}
	submitted := time.Now().Format("January 2, 2006 3:04 PM")

	displayEmail := clientEmail
	if displayEmail == "" {
		displayEmail = "Not provided"
	}

	teamMsg := Message{
		To:      []string{s.teamEmail},
		Subject: fmt.Sprintf("New onboarding submission: %s", companyName),
		Body: fmt.Sprintf(
			"A new onboarding has been completed.\n\nCompany: %s\nContact: %s\nEmail: %s\nSubmitted: %s\n\nThe full intake report is attached.\n",
			companyName, clientName, displayEmail, submitted),
		Attachments: []Attachment{attachment},
	}
	if err := s.mailer.Send(ctx, teamMsg); err != nil {
		s.logger.Warn("Failed to send team email", zap.Error(err))
		return Result{Success: false, Message: err.Error()}
	}

	if strings.TrimSpace(clientEmail) != "" {
		clientMsg := Message{
			To:      []string{clientEmail},
			Subject: fmt.Sprintf("Welcome to Energy+, %s", companyName),
			Body: fmt.Sprintf(
				"Hi %s,\n\nThanks for completing your onboarding on %s. Our team is reviewing your answers and will be in touch shortly.\n\nA copy of your intake report is attached for your records.\n\nThe Energy+ Team\n",
				clientName, time.Now().Format("January 2, 2006")),
			Attachments: []Attachment{attachment},
		}
		if err := s.mailer.Send(ctx, clientMsg); err != nil {
			s.logger.Warn("Failed to send client email", zap.Error(err))
			return Result{Success: false, Message: err.Error()}
		}
	}

	return Result{Success: true, Message: "emails sent successfully"}
}

// Noop is the sender used when no email provider is configured.
type Noop struct{}

func (Noop) IsConfigured() bool { return false }

func (Noop) Send(context.Context, *onboarding.Record, []byte) Result {
	return Result{Success: false, Message: "email not configured"}
}
