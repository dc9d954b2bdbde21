package postgres

import (
	"context"
	"database/sql"

	"planmeet/internal/domain"
)

type participantRepository struct {
	DB *sql.DB
}

func NewParticipantRepository(db *sql.DB) domain.ParticipantRepository {
	return &participantRepository{DB: db}
}

func (r *participantRepository) Create(ctx context.Context, p *domain.Participant) error {
	query := `
		INSERT INTO participants (user_id, event_id, availability)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, p.UserID, p.EventID, p.Availability).Scan(&p.ID)
}

func (r *participantRepository) ListByEventID(ctx context.Context, eventID int64) ([]*domain.Participant, error) {
	query := `
		SELECT id, user_id, event_id, availability
		FROM participants
		WHERE event_id = $1
		ORDER BY id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	participants := make([]*domain.Participant, 0)
	for rows.Next() {
		p := &domain.Participant{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.EventID, &p.Availability); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *participantRepository) UpdateAvailability(ctx context.Context, userID, eventID int64, availability string) error {
	// Updates only the oldest row when duplicates exist; zero rows
	// affected is not an error (spec-mandated silent no-op).
	query := `
		UPDATE participants
		SET availability = $3
		WHERE id = (
			SELECT id FROM participants
			WHERE user_id = $1 AND event_id = $2
			ORDER BY id
			LIMIT 1
		)
	`
	_, err := r.DB.ExecContext(ctx, query, userID, eventID, availability)
	return err
}
