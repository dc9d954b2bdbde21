package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"planmeet/internal/domain"
)

// A fresh code is drawn on each unique-violation retry; 36^6 codes keep
// collisions rare enough that this bound is never hit in practice.
const inviteCodeAttempts = 5

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, planner_id, date_range, invite_code)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	generated := e.InviteCode == ""
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		if generated {
			code, err := domain.GenerateInviteCode()
			if err != nil {
				return fmt.Errorf("generate invite code: %w", err)
			}
			e.InviteCode = code
		}
		var desc sql.NullString
		if e.Description != nil {
			desc = sql.NullString{String: *e.Description, Valid: true}
		}
		err := r.DB.QueryRowContext(ctx, query, e.Title, desc, e.PlannerID, e.DateRange, e.InviteCode).Scan(&e.ID)
		if err == nil {
			return nil
		}
		// The unique index on invite_code catches the rare collision;
		// retry with a new code only if we generated it ourselves.
		if generated && isUniqueViolation(err) {
			continue
		}
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return fmt.Errorf("invite code space exhausted after %d attempts", inviteCodeAttempts)
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `
		SELECT id, title, description, planner_id, date_range, invite_code
		FROM events
		WHERE id = $1
	`
	return r.scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) GetByInviteCode(ctx context.Context, code string) (*domain.Event, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	query := `
		SELECT id, title, description, planner_id, date_range, invite_code
		FROM events
		WHERE invite_code = $1
	`
	return r.scanEvent(r.DB.QueryRowContext(ctx, query, code))
}

func (r *eventRepository) ListByUserID(ctx context.Context, userID int64) ([]*domain.Event, error) {
	query := `
		SELECT id, title, description, planner_id, date_range, invite_code
		FROM events
		WHERE planner_id = $1
		   OR EXISTS (
			SELECT 1 FROM participants p
			WHERE p.user_id = $1 AND p.event_id = events.id
		   )
		ORDER BY id
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		var desc sql.NullString
		if err := rows.Scan(&e.ID, &e.Title, &desc, &e.PlannerID, &e.DateRange, &e.InviteCode); err != nil {
			return nil, err
		}
		if desc.Valid {
			e.Description = &desc.String
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) scanEvent(row *sql.Row) (*domain.Event, error) {
	e := &domain.Event{}
	var desc sql.NullString
	err := row.Scan(&e.ID, &e.Title, &desc, &e.PlannerID, &e.DateRange, &e.InviteCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if desc.Valid {
		e.Description = &desc.String
	}
	return e, nil
}
