package services

import (
	"context"
	"errors"
	"fmt"

	"planmeet/internal/domain"
)

type participantService struct {
	eventRepo       domain.EventRepository
	participantRepo domain.ParticipantRepository
	userRepo        domain.UserRepository
	exporter        domain.CalendarExporter
}

// NewParticipantService creates a ParticipantService with the given repositories and exporter.
func NewParticipantService(
	eventRepo domain.EventRepository,
	participantRepo domain.ParticipantRepository,
	userRepo domain.UserRepository,
	exporter domain.CalendarExporter,
) domain.ParticipantService {
	return &participantService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		exporter:        exporter,
	}
}

func (s *participantService) Join(ctx context.Context, eventID, userID int64, availability string) (*domain.Participant, error) {
	// Ensure the event exists.
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !domain.ValidAvailability(availability) {
		return nil, fmt.Errorf("%w: availability must be a JSON array of date strings", domain.ErrInvalidInput)
	}

	// No already-joined check: repeated joins append rows.
	p := domain.NewParticipant(eventID, userID, availability)
	if err := s.participantRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create participant: %w", err)
	}
	return p, nil
}

func (s *participantService) ListByEvent(ctx context.Context, eventID int64) ([]*domain.Participant, error) {
	participants, err := s.participantRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	if participants == nil {
		participants = []*domain.Participant{}
	}
	return participants, nil
}

func (s *participantService) UpdateAvailability(ctx context.Context, eventID, userID int64, availability string) error {
	if !domain.ValidAvailability(availability) {
		return fmt.Errorf("%w: availability must be a JSON array of date strings", domain.ErrInvalidInput)
	}
	// Succeeds even when the caller never joined: the store update is a
	// silent no-op in that case.
	if err := s.participantRepo.UpdateAvailability(ctx, userID, eventID, availability); err != nil {
		return fmt.Errorf("update availability: %w", err)
	}
	return nil
}

func (s *participantService) BuildCalendar(ctx context.Context, eventID, callerID int64) ([]byte, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	participants, err := s.participantRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	// Allow the planner or any participant.
	if event.PlannerID != callerID {
		allowed := false
		for _, p := range participants {
			if p.UserID == callerID {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, domain.ErrForbidden
		}
	}

	usernames := make(map[int64]string)
	for _, p := range participants {
		if _, ok := usernames[p.UserID]; ok {
			continue
		}
		u, err := s.userRepo.GetByID(ctx, p.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// A dangling participant row must not break the feed.
				continue
			}
			return nil, fmt.Errorf("get participant user: %w", err)
		}
		usernames[p.UserID] = u.Username
	}

	out, err := s.exporter.Export(event, participants, usernames)
	if err != nil {
		return nil, fmt.Errorf("export calendar: %w", err)
	}
	return out, nil
}
