package services

import (
	"context"
	"fmt"

	"eventmanager/internal/domain"
)

// CourtesyNotificationHandler turns a dequeued notification into a courtesy granted email.
type CourtesyNotificationHandler struct {
	emails    domain.EmailService
	localizer domain.MessageLocalizer
}

// NewCourtesyNotificationHandler wires the worker side of the notification channel.
func NewCourtesyNotificationHandler(emails domain.EmailService, localizer domain.MessageLocalizer) *CourtesyNotificationHandler {
	return &CourtesyNotificationHandler{emails: emails, localizer: localizer}
}

// Handle sends the email for n. Returned errors make the job eligible for retry.
func (h *CourtesyNotificationHandler) Handle(ctx context.Context, n *domain.CourtesyGrantedNotification) error {
	if n == nil {
		return fmt.Errorf("notification is nil")
	}
	data := &domain.CourtesyGrantedEmailData{
		Email:         n.Email,
		RecipientName: n.RecipientName,
		EventName:     n.EventName,
		Scope:         n.Scope,
		ScopeLabel:    h.localizer.Localize(n.Locale, n.Scope.LabelKey()),
		ValidUntil:    n.ValidUntil,
		Language:      n.Locale,
	}
	if err := h.emails.SendCourtesyGranted(ctx, data); err != nil {
		return fmt.Errorf("courtesy %s: %w", n.CourtesyID, err)
	}
	return nil
}
