package domain

import "context"

// Participant is a (user, event) association carrying the user's
// submitted availability as the codec's string form.
// swagger:model Participant
type Participant struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"userId"`
	EventID      int64  `json:"eventId"`
	Availability string `json:"availability"`
}

// NewParticipant returns a new Participant. ID is set by the repository on create.
func NewParticipant(eventID, userID int64, availability string) *Participant {
	return &Participant{
		EventID:      eventID,
		UserID:       userID,
		Availability: availability,
	}
}

// ParticipantRepository defines the interface for participant storage.
//
// The store does not enforce uniqueness of (user_id, event_id):
// joining twice appends a second row, and UpdateAvailability only
// touches the first match. See DESIGN.md before changing this.
type ParticipantRepository interface {
	Create(ctx context.Context, participant *Participant) error
	ListByEventID(ctx context.Context, eventID int64) ([]*Participant, error)
	// UpdateAvailability replaces the availability of the user's
	// participant row for the event. A missing row is a silent no-op.
	UpdateAvailability(ctx context.Context, userID, eventID int64, availability string) error
}

// ParticipantService defines the business logic for joining events and
// submitting availability.
type ParticipantService interface {
	// Join adds the caller as a participant of the event. Returns
	// ErrNotFound when the event does not exist.
	Join(ctx context.Context, eventID, userID int64, availability string) (*Participant, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*Participant, error)
	UpdateAvailability(ctx context.Context, eventID, userID int64, availability string) error
	// BuildCalendar renders every participant's available days as an
	// iCalendar document. Caller must be the planner or a participant.
	BuildCalendar(ctx context.Context, eventID, callerID int64) ([]byte, error)
}

// CalendarExporter renders participants' availability as an iCalendar document.
type CalendarExporter interface {
	Export(event *Event, participants []*Participant, usernames map[int64]string) ([]byte, error)
}
