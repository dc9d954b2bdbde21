package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"planmeet/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	invitationRepo domain.EventInvitationRepository
	emailService   domain.EmailService
	baseURL        string
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	invitationRepo domain.EventInvitationRepository,
	emailService domain.EmailService,
	baseURL string,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		invitationRepo: invitationRepo,
		emailService:   emailService,
		baseURL:        baseURL,
		contextTimeout: timeout,
	}
}

func (s *eventService) Create(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.PlannerID == 0 {
		return fmt.Errorf("%w: event planner is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(event.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if _, err := domain.ParseDateRange(event.DateRange); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetByInviteCode(ctx context.Context, code string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event by invite code: %w", err)
	}
	return event, nil
}

func (s *eventService) ListForUser(ctx context.Context, userID int64) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) SendInvitations(ctx context.Context, eventID, callerID int64, emails []string) (*domain.InvitationSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.PlannerID != callerID {
		return nil, domain.ErrForbidden
	}

	planner, err := s.userRepo.GetByID(ctx, event.PlannerID)
	if err != nil {
		return nil, fmt.Errorf("get planner: %w", err)
	}

	summary := &domain.InvitationSummary{Failed: []string{}}
	for _, to := range emails {
		to = strings.TrimSpace(strings.ToLower(to))
		if !emailRegexp.MatchString(to) {
			summary.Failed = append(summary.Failed, to)
			continue
		}
		data := &domain.InviteEmailData{
			EventTitle:  event.Title,
			PlannerName: planner.Username,
			InviteCode:  event.InviteCode,
			JoinURL:     s.baseURL + "/join",
		}
		if err := s.emailService.SendInvite(ctx, to, data); err != nil {
			summary.Failed = append(summary.Failed, to)
			continue
		}
		inv := &domain.EventInvitation{EventID: event.ID, Email: to, SentAt: time.Now()}
		if err := s.invitationRepo.Create(ctx, inv); err != nil {
			return nil, fmt.Errorf("record invitation: %w", err)
		}
		summary.Sent++
	}
	return summary, nil
}

func (s *eventService) ListInvitations(ctx context.Context, eventID, callerID int64) ([]*domain.EventInvitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.PlannerID != callerID {
		return nil, domain.ErrForbidden
	}

	invs, err := s.invitationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	if invs == nil {
		invs = []*domain.EventInvitation{}
	}
	return invs, nil
}
