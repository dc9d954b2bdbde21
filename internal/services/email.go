package services

import (
	"context"
	"fmt"
	"log"

	"planmeet/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendInvite sends the event invite email using the "invite" template and the given data.
func (s *emailService) SendInvite(ctx context.Context, to string, data *domain.InviteEmailData) error {
	if data == nil {
		return fmt.Errorf("invite email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("invite", data)
	if err != nil {
		return fmt.Errorf("failed to render invite template: %w", err)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send invite email: %w", err)
	}
	log.Printf("[EMAIL] Invite sent to %s", to)
	return nil
}
