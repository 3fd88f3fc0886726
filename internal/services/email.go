package services

import (
	"context"
	"fmt"

	"eventticketing/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendPurchaseConfirmation sends the ticket purchase confirmation email
// using the "purchase_confirmation" template.
func (s *emailService) SendPurchaseConfirmation(ctx context.Context, data *domain.PurchaseConfirmationEmailData) error {
	if data == nil {
		return fmt.Errorf("purchase confirmation data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("purchase_confirmation", data)
	if err != nil {
		return fmt.Errorf("failed to render purchase_confirmation template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send purchase confirmation email: %w", err)
	}
	return nil
}
