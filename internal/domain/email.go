package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// CourtesyGrantedEmailData holds data for the courtesy granted email.
type CourtesyGrantedEmailData struct {
	Email         string
	RecipientName string
	EventName     string
	Scope         CourtesyScope
	ScopeLabel    string
	ValidUntil    *time.Time
	Language      string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendCourtesyGranted(ctx context.Context, data *CourtesyGrantedEmailData) error
}
