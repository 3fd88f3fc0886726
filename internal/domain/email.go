package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// PurchaseConfirmationEmailData holds data for the ticket purchase
// confirmation email.
type PurchaseConfirmationEmailData struct {
	Email      string
	FullName   string
	EventName  string
	EventDate  string
	Location   string
	Quantity   int
	TotalPrice float64
	TicketID   string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendPurchaseConfirmation(ctx context.Context, data *PurchaseConfirmationEmailData) error
}
