package domain

import (
	"context"
	"time"
)

// EventInvitation records an invite-code email sent for an event.
// swagger:model EventInvitation
type EventInvitation struct {
	ID      int64     `json:"id"`
	EventID int64     `json:"eventId"`
	Email   string    `json:"email"`
	SentAt  time.Time `json:"sentAt"`
}

// EventInvitationRepository defines the interface for invitation storage.
type EventInvitationRepository interface {
	Create(ctx context.Context, inv *EventInvitation) error
	ListByEventID(ctx context.Context, eventID int64) ([]*EventInvitation, error)
}

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// InviteEmailData holds data for the event invite email.
type InviteEmailData struct {
	EventTitle  string
	PlannerName string
	InviteCode  string
	JoinURL     string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendInvite(ctx context.Context, to string, data *InviteEmailData) error
}
