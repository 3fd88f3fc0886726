package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventticketing/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// eventDest returns scan destinations for the standard event column order:
// id, name, description, starting_date, ending_date, location, location_url,
// price, tickets_available, tickets_sold, ticket_selling_date, organizer_id,
// poster, category, created_at, updated_at.
func eventDest(e *domain.Event) []any {
	return []any{
		&e.ID, &e.Name, &e.Description, &e.StartingDate, &e.EndingDate, &e.Location, &e.LocationURL,
		&e.Price, &e.TicketsAvailable, &e.TicketsSold, &e.TicketSellingDate, &e.OrganizerID,
		&e.Poster, &e.Category, &e.CreatedAt, &e.UpdatedAt,
	}
}

func scanEventRow(row *sql.Row, e *domain.Event) error {
	return row.Scan(eventDest(e)...)
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, description, starting_date, ending_date, location, location_url,
			price, tickets_available, tickets_sold, ticket_selling_date, organizer_id, poster, category,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Name, e.Description, e.StartingDate, e.EndingDate, e.Location, e.LocationURL,
		e.Price, e.TicketsAvailable, e.TicketSellingDate, e.OrganizerID, e.Poster, e.Category,
		e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	e := &domain.Event{}
	if err := scanEventRow(r.DB.QueryRowContext(ctx, query, id), e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events ORDER BY starting_date ASC`, eventColumns)
	return r.queryEvents(ctx, query)
}

func (r *eventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE organizer_id = $1 ORDER BY created_at DESC`, eventColumns)
	return r.queryEvents(ctx, query, organizerID)
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		if err := rows.Scan(eventDest(e)...); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Update writes every organizer-editable field. tickets_sold is deliberately
// not in the SET list; only the ticket repository's reserve/release touches it.
func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET name = $1, description = $2, starting_date = $3, ending_date = $4, location = $5,
			location_url = $6, price = $7, tickets_available = $8, ticket_selling_date = $9,
			poster = $10, category = $11, updated_at = NOW()
		WHERE id = $12
		RETURNING updated_at
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Name, e.Description, e.StartingDate, e.EndingDate, e.Location,
		e.LocationURL, e.Price, e.TicketsAvailable, e.TicketSellingDate,
		e.Poster, e.Category, e.ID,
	).Scan(&e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

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

// isUniqueViolation reports whether err is a Postgres unique_violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
