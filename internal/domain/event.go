package domain

import "context"

// Event represents a scheduling event owned by a planner. DateRange is
// the serialized candidate window (see ParseDateRange); InviteCode is a
// unique token any authenticated user can redeem to join.
// swagger:model Event
type Event struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	PlannerID   int64   `json:"plannerId"`
	DateRange   string  `json:"dateRange"`
	InviteCode  string  `json:"inviteCode"`
}

// NewEvent returns a new Event with the given fields. ID and InviteCode
// are set by the repository on create.
func NewEvent(title string, description *string, dateRange string, plannerID int64) *Event {
	return &Event{
		Title:       title,
		Description: description,
		DateRange:   dateRange,
		PlannerID:   plannerID,
	}
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	// Create stores the event and assigns its ID. When InviteCode is
	// empty a fresh globally unique code is generated.
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	GetByInviteCode(ctx context.Context, code string) (*Event, error)
	// ListByUserID returns every event the user planned or joined as a
	// participant, in insertion order, without duplicates.
	ListByUserID(ctx context.Context, userID int64) ([]*Event, error)
}

// InvitationSummary reports the outcome of sending invite emails.
type InvitationSummary struct {
	Sent   int      `json:"sent"`
	Failed []string `json:"failed"`
}

// EventService defines the business logic for planning and looking up events.
type EventService interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	GetByInviteCode(ctx context.Context, code string) (*Event, error)
	ListForUser(ctx context.Context, userID int64) ([]*Event, error)
	// SendInvitations emails the event's invite code to the given
	// addresses. Only the planner may send; returns ErrForbidden otherwise.
	SendInvitations(ctx context.Context, eventID, callerID int64, emails []string) (*InvitationSummary, error)
	ListInvitations(ctx context.Context, eventID, callerID int64) ([]*EventInvitation, error)
}
