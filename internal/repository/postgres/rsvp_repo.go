package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"eventflow/internal/domain"
)

// Postgres error codes inspected by the repositories.
const (
	pqUniqueViolation      = pq.ErrorCode("23505")
	pqCheckViolation       = pq.ErrorCode("23514")
	pqSerializationFailure = pq.ErrorCode("40001")
	pqDeadlockDetected     = pq.ErrorCode("40P01")
)

type rsvpRepository struct {
	DB *sql.DB
}

func NewRSVPRepository(db *sql.DB) domain.RSVPRepository {
	return &rsvpRepository{
		DB: db,
	}
}

// Join admits the user to the event as one transaction. The event row is
// locked with FOR UPDATE so concurrent joins for the last seat serialize on
// the aggregate; the rsvps unique constraint remains the final authority on
// membership (the earlier lookup only avoids a pointless insert attempt).
func (r *rsvpRepository) Join(ctx context.Context, eventID, userID string) (*domain.RSVP, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin join: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM rsvps WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&exists)
	if err != nil {
		return nil, translateTxErr(err, "check membership")
	}
	if exists {
		return nil, domain.ErrAlreadyJoined
	}

	var capacity, count int
	err = tx.QueryRowContext(ctx,
		`SELECT capacity, rsvp_count FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&capacity, &count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, translateTxErr(err, "lock event")
	}
	if count >= capacity {
		return nil, domain.ErrEventFull
	}

	rsvp := &domain.RSVP{
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO rsvps (event_id, user_id, created_at) VALUES ($1, $2, $3) RETURNING id`,
		rsvp.EventID, rsvp.UserID, rsvp.CreatedAt,
	).Scan(&rsvp.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			// A concurrent insert won the pair; same outcome as the pre-check.
			return nil, domain.ErrAlreadyJoined
		}
		return nil, translateTxErr(err, "insert rsvp")
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE events SET rsvp_count = rsvp_count + 1 WHERE id = $1`,
		eventID,
	); err != nil {
		return nil, translateTxErr(err, "increment rsvp_count")
	}

	if err := tx.Commit(); err != nil {
		return nil, translateTxErr(err, "commit join")
	}
	return rsvp, nil
}

// Leave removes the membership and decrements the counter with a floor guard,
// as one transaction.
func (r *rsvpRepository) Leave(ctx context.Context, eventID, userID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin leave: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM rsvps WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	)
	if err != nil {
		return translateTxErr(err, "delete rsvp")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotJoined
	}

	// The aggregate may have been concurrently modified; the guard keeps the
	// counter from going negative.
	if _, err := tx.ExecContext(ctx,
		`UPDATE events SET rsvp_count = rsvp_count - 1 WHERE id = $1 AND rsvp_count > 0`,
		eventID,
	); err != nil {
		return translateTxErr(err, "decrement rsvp_count")
	}

	if err := tx.Commit(); err != nil {
		return translateTxErr(err, "commit leave")
	}
	return nil
}

func (r *rsvpRepository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM rsvps WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *rsvpRepository) ListEventsByUserID(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := `
		SELECT e.id, e.title, e.description, e.date_time, e.location, e.capacity, e.rsvp_count,
		       e.image_url, e.category, e.created_by, e.created_at, e.updated_at
		FROM rsvps r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		ORDER BY e.date_time ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// translateTxErr maps retryable storage-layer conflicts to ErrTxConflict and
// wraps everything else with the failed step.
func translateTxErr(err error, step string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqSerializationFailure, pqDeadlockDetected:
			return domain.ErrTxConflict
		}
	}
	return fmt.Errorf("%s: %w", step, err)
}
