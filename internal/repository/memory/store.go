// Package memory provides a volatile, in-process implementation of the
// repository interfaces. It is intended for development and tests: data
// lives in maps guarded by a single mutex and is lost on restart.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"planmeet/internal/domain"
)

const inviteCodeAttempts = 5

// Store owns all volatile state: entity maps, insertion-ordered id
// slices, and the per-entity id counters. Counters are fields, not
// package globals, so two Stores never share state.
type Store struct {
	mu sync.Mutex

	nextUserID        int64
	nextEventID       int64
	nextParticipantID int64
	nextInvitationID  int64

	users        map[int64]*domain.User
	events       map[int64]*domain.Event
	eventOrder   []int64
	participants []*domain.Participant
	invitations  []*domain.EventInvitation
}

// NewStore returns an empty Store. All counters start at 1.
func NewStore() *Store {
	return &Store{
		nextUserID:        1,
		nextEventID:       1,
		nextParticipantID: 1,
		nextInvitationID:  1,
		users:             make(map[int64]*domain.User),
		events:            make(map[int64]*domain.Event),
	}
}

// Users returns the store's UserRepository view.
func (s *Store) Users() domain.UserRepository { return &userStore{s} }

// Events returns the store's EventRepository view.
func (s *Store) Events() domain.EventRepository { return &eventStore{s} }

// Participants returns the store's ParticipantRepository view.
func (s *Store) Participants() domain.ParticipantRepository { return &participantStore{s} }

// Invitations returns the store's EventInvitationRepository view.
func (s *Store) Invitations() domain.EventInvitationRepository { return &invitationStore{s} }

type userStore struct{ s *Store }

func (r *userStore) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return domain.ErrConflict
		}
	}
	u.ID = r.s.nextUserID
	r.s.nextUserID++
	stored := *u
	r.s.users[u.ID] = &stored
	return nil
}

func (r *userStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *userStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

type eventStore struct{ s *Store }

func (r *eventStore) Create(_ context.Context, e *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e.InviteCode == "" {
		code, err := r.uniqueCodeLocked()
		if err != nil {
			return err
		}
		e.InviteCode = code
	} else if r.codeTakenLocked(e.InviteCode) {
		return domain.ErrConflict
	}
	e.ID = r.s.nextEventID
	r.s.nextEventID++
	stored := *e
	r.s.events[e.ID] = &stored
	r.s.eventOrder = append(r.s.eventOrder, e.ID)
	return nil
}

func (r *eventStore) uniqueCodeLocked() (string, error) {
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := domain.GenerateInviteCode()
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		if !r.codeTakenLocked(code) {
			return code, nil
		}
	}
	return "", fmt.Errorf("invite code space exhausted after %d attempts", inviteCodeAttempts)
}

func (r *eventStore) codeTakenLocked(code string) bool {
	for _, e := range r.s.events {
		if e.InviteCode == code {
			return true
		}
	}
	return false
}

func (r *eventStore) GetByID(_ context.Context, id int64) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *e
	return &out, nil
}

func (r *eventStore) GetByInviteCode(_ context.Context, code string) (*domain.Event, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.events {
		if e.InviteCode == code {
			out := *e
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *eventStore) ListByUserID(_ context.Context, userID int64) ([]*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Event, 0)
	for _, id := range r.s.eventOrder {
		e := r.s.events[id]
		if e.PlannerID == userID || r.isParticipantLocked(userID, id) {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *eventStore) isParticipantLocked(userID, eventID int64) bool {
	for _, p := range r.s.participants {
		if p.UserID == userID && p.EventID == eventID {
			return true
		}
	}
	return false
}

type participantStore struct{ s *Store }

func (r *participantStore) Create(_ context.Context, p *domain.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// No (user, event) uniqueness check, matching the relational schema.
	p.ID = r.s.nextParticipantID
	r.s.nextParticipantID++
	stored := *p
	r.s.participants = append(r.s.participants, &stored)
	return nil
}

func (r *participantStore) ListByEventID(_ context.Context, eventID int64) ([]*domain.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Participant, 0)
	for _, p := range r.s.participants {
		if p.EventID == eventID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *participantStore) UpdateAvailability(_ context.Context, userID, eventID int64, availability string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.participants {
		if p.UserID == userID && p.EventID == eventID {
			p.Availability = availability
			return nil
		}
	}
	// Silent no-op when the caller never joined.
	return nil
}

type invitationStore struct{ s *Store }

func (r *invitationStore) Create(_ context.Context, inv *domain.EventInvitation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv.ID = r.s.nextInvitationID
	r.s.nextInvitationID++
	if inv.SentAt.IsZero() {
		inv.SentAt = time.Now()
	}
	stored := *inv
	r.s.invitations = append(r.s.invitations, &stored)
	return nil
}

func (r *invitationStore) ListByEventID(_ context.Context, eventID int64) ([]*domain.EventInvitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.EventInvitation, 0)
	// Newest first, matching the relational backend's ORDER BY sent_at DESC.
	for i := len(r.s.invitations) - 1; i >= 0; i-- {
		if inv := r.s.invitations[i]; inv.EventID == eventID {
			copied := *inv
			out = append(out, &copied)
		}
	}
	return out, nil
}
