package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventmanager/internal/domain"
)

const courtesyGrantedTemplate = "courtesy_granted"

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendCourtesyGranted renders the "courtesy_granted" template in data.Language and sends it
// to the beneficiary.
func (s *emailService) SendCourtesyGranted(ctx context.Context, data *domain.CourtesyGrantedEmailData) error {
	if data == nil {
		return fmt.Errorf("courtesy granted email data is nil")
	}
	if data.Email == "" {
		return fmt.Errorf("courtesy granted email has no recipient")
	}
	name := courtesyGrantedTemplate
	if data.Language != "" {
		name += "." + data.Language
	}
	subject, htmlBody, textBody, err := s.renderer.Render(name, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", name, err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send courtesy granted email: %w", err)
	}
	s.logger.InfoContext(ctx, "courtesy granted email sent", "to", data.Email, "event", data.EventName)
	return nil
}
