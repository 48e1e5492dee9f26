package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"eventflow/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `id, title, description, date_time, location, capacity, rsvp_count, image_url, category, created_by, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var catNull sql.NullString
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.DateTime, &e.Location, &e.Capacity, &e.RSVPCount,
		&e.ImageURL, &catNull, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if catNull.Valid {
		e.Category = &catNull.String
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date_time, location, capacity, image_url, category, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.DateTime, e.Location, e.Capacity, e.ImageURL, e.Category, e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT e.id, e.title, e.description, e.date_time, e.location, e.capacity, e.rsvp_count,
		       e.image_url, e.category, e.created_by, e.created_at, e.updated_at,
		       u.id, u.name, u.email
		FROM events e
		JOIN users u ON u.id = e.created_by
		WHERE e.id = $1
	`
	e := &domain.Event{}
	var catNull sql.NullString
	creator := &domain.UserSummary{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Title, &e.Description, &e.DateTime, &e.Location, &e.Capacity, &e.RSVPCount,
		&e.ImageURL, &catNull, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
		&creator.ID, &creator.Name, &creator.Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if catNull.Valid {
		e.Category = &catNull.String
	}
	e.Creator = creator
	return e, nil
}

// List returns upcoming events matching the filter, soonest first, along with
// the total match count for pagination.
func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	whereClauses := []string{"date_time >= NOW()"}
	args := []interface{}{}
	n := 1
	if filter.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("title ILIKE $%d", n))
		args = append(args, "%"+filter.Search+"%")
		n++
	}
	if filter.Category != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("category = $%d", n))
		args = append(args, filter.Category)
		n++
	}
	if filter.From != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("date_time >= $%d", n))
		args = append(args, *filter.From)
		n++
	}
	if filter.To != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("date_time <= $%d", n))
		args = append(args, *filter.To)
		n++
	}
	where := strings.Join(whereClauses, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM events WHERE %s`, where)
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE %s
		ORDER BY date_time ASC
		LIMIT $%d OFFSET $%d
	`, eventColumns, where, n, n+1)
	args = append(args, params.PageSize, params.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE created_by = $1
		ORDER BY date_time ASC
	`, eventColumns)
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
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

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, date_time = $3, location = $4, capacity = $5,
		    image_url = $6, category = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.Title, e.Description, e.DateTime, e.Location, e.Capacity, e.ImageURL, e.Category, e.UpdatedAt, e.ID,
	)
	if err != nil {
		// The events_rsvp_count_within_capacity constraint fires when a
		// concurrent join filled seats past the new capacity after the
		// caller read the event; the constraint is authoritative, the
		// caller's earlier check only an optimization.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqCheckViolation {
			return fmt.Errorf("%w: capacity cannot be lower than current rsvp count", domain.ErrInvalidInput)
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the event row; rsvps referencing it are purged by the
// ON DELETE CASCADE constraint within the same statement.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
