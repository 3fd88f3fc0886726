package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventticketing/internal/domain"
)

type ticketRepository struct {
	DB *sql.DB
}

func NewTicketRepository(db *sql.DB) domain.TicketRepository {
	return &ticketRepository{
		DB: db,
	}
}

const eventColumns = `id, name, description, starting_date, ending_date, location, location_url,
		price, tickets_available, tickets_sold, ticket_selling_date, organizer_id, poster, category,
		created_at, updated_at`

// CreateWithReservation reserves inventory and inserts the ledger row in one
// transaction. The guard clause inside the UPDATE is the serialization
// point: of two purchases racing for the last tickets, at most one matches.
func (r *ticketRepository) CreateWithReservation(ctx context.Context, t *domain.Ticket) (*domain.Event, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin purchase tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	reserveQuery := fmt.Sprintf(`
		UPDATE events
		SET tickets_sold = tickets_sold + $1, updated_at = NOW()
		WHERE id = $2 AND tickets_sold + $1 <= tickets_available
		RETURNING %s
	`, eventColumns)
	event := &domain.Event{}
	err = scanEventRow(tx.QueryRowContext(ctx, reserveQuery, t.Quantity, t.EventID), event)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reserve tickets: %w", err)
		}
		// Guard rejected: either the event is gone or a concurrent purchase
		// took the remaining capacity. Read the counter to tell them apart.
		var remaining int
		err = tx.QueryRowContext(ctx,
			`SELECT tickets_available - tickets_sold FROM events WHERE id = $1`,
			t.EventID,
		).Scan(&remaining)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("read remaining tickets: %w", err)
		}
		return nil, &domain.InsufficientInventoryError{Remaining: remaining}
	}

	insertQuery := `
		INSERT INTO tickets (event_id, user_id, quantity, total_price, scanned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW(), NOW())
		RETURNING id, scanned, created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, insertQuery, t.EventID, t.UserID, t.Quantity, t.TotalPrice).
		Scan(&t.ID, &t.Scanned, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert ticket: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit purchase tx: %w", err)
	}
	return event, nil
}

// DeleteWithRelease deletes the ledger row and releases its quantity back to
// the event, in one transaction. A decrement that would go negative means
// the ledger and counter already disagree; the transaction is rolled back
// and the corruption surfaced.
func (r *ticketRepository) DeleteWithRelease(ctx context.Context, ticketID, eventID string, quantity int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin return tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, ticketID)
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domain.ErrTicketNotFound
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE events
		SET tickets_sold = tickets_sold - $1, updated_at = NOW()
		WHERE id = $2 AND tickets_sold - $1 >= 0
	`, quantity, eventID)
	if err != nil {
		return fmt.Errorf("release tickets: %w", err)
	}
	rows, _ = res.RowsAffected()
	if rows == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, eventID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check event: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInventoryCorrupt
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit return tx: %w", err)
	}
	return nil
}

// Redeem flips scanned from false to true as a single conditional update.
// Concurrent scans of the same ticket serialize on the WHERE clause: one
// matches, the rest resolve to ErrTicketAlreadyScanned.
func (r *ticketRepository) Redeem(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	query := `
		UPDATE tickets
		SET scanned = TRUE, updated_at = NOW()
		WHERE id = $1 AND scanned = FALSE
		RETURNING id, event_id, user_id, quantity, total_price, scanned, created_at, updated_at
	`
	t := &domain.Ticket{}
	err := r.DB.QueryRowContext(ctx, query, ticketID).Scan(
		&t.ID, &t.EventID, &t.UserID, &t.Quantity, &t.TotalPrice, &t.Scanned, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var exists bool
	err = r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE id = $1)`, ticketID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrTicketNotFound
	}
	// The ticket exists but the conditional update matched nothing, so it
	// is already scanned (the flag never transitions back to false).
	return nil, domain.ErrTicketAlreadyScanned
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `
		SELECT id, event_id, user_id, quantity, total_price, scanned, created_at, updated_at
		FROM tickets
		WHERE id = $1
	`
	t := &domain.Ticket{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.EventID, &t.UserID, &t.Quantity, &t.TotalPrice, &t.Scanned, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *ticketRepository) GetDetailByID(ctx context.Context, id string) (*domain.TicketDetail, error) {
	query := `
		SELECT t.id, e.id, e.name, e.starting_date, e.location,
			t.quantity, t.total_price, t.scanned, u.full_name, u.avatar
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		JOIN users u ON u.id = t.user_id
		WHERE t.id = $1
	`
	d := &domain.TicketDetail{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.EventID, &d.EventName, &d.EventDate, &d.Location,
		&d.Quantity, &d.TotalPrice, &d.Scanned, &d.UserName, &d.UserAvatar,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	return d, nil
}

// ListByEventID returns all ticket transactions for an event with purchaser
// display fields. A missing user record must not drop the transaction, so
// the join is LEFT and the display fields fall back to placeholders.
func (r *ticketRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.TicketTransaction, error) {
	query := `
		SELECT t.id, t.event_id, t.quantity, t.total_price, t.scanned,
			COALESCE(u.full_name, 'Unknown User'),
			COALESCE(u.avatar, 'default-avatar.jpg'),
			COALESCE(u.phone_no, 'no phone number')
		FROM tickets t
		LEFT JOIN users u ON u.id = t.user_id
		WHERE t.event_id = $1
		ORDER BY t.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]*domain.TicketTransaction, 0)
	for rows.Next() {
		tr := &domain.TicketTransaction{}
		if err := rows.Scan(&tr.ID, &tr.EventID, &tr.Quantity, &tr.TotalPrice, &tr.Scanned,
			&tr.FullName, &tr.UserAvatar, &tr.PhoneNo); err != nil {
			return nil, err
		}
		transactions = append(transactions, tr)
	}
	return transactions, rows.Err()
}

func (r *ticketRepository) ListByUserIDWithEvent(ctx context.Context, userID string) ([]*domain.TicketWithEvent, error) {
	query := `
		SELECT t.id, t.event_id, t.user_id, t.quantity, t.total_price, t.scanned, t.created_at, t.updated_at,
			e.id, e.name, e.description, e.starting_date, e.ending_date, e.location, e.location_url,
			e.price, e.tickets_available, e.tickets_sold, e.ticket_selling_date, e.organizer_id,
			e.poster, e.category, e.created_at, e.updated_at,
			o.full_name, o.avatar
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		JOIN organizers o ON o.id = e.organizer_id
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.TicketWithEvent, 0)
	for rows.Next() {
		t := &domain.Ticket{}
		e := &domain.Event{}
		var org domain.OrganizerSummary
		dest := []any{
			&t.ID, &t.EventID, &t.UserID, &t.Quantity, &t.TotalPrice, &t.Scanned, &t.CreatedAt, &t.UpdatedAt,
		}
		dest = append(dest, eventDest(e)...)
		dest = append(dest, &org.FullName, &org.Avatar)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		result = append(result, &domain.TicketWithEvent{Ticket: t, Event: e, Organizer: org})
	}
	return result, rows.Err()
}

func (r *ticketRepository) ListAllWithDetails(ctx context.Context) ([]*domain.TicketDetail, error) {
	query := `
		SELECT t.id, e.id, e.name, e.starting_date, e.location,
			t.quantity, t.total_price, t.scanned,
			COALESCE(u.full_name, 'Unknown User'),
			COALESCE(u.avatar, 'default-avatar.jpg')
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		LEFT JOIN users u ON u.id = t.user_id
		ORDER BY t.created_at DESC
	`
	return r.queryDetails(ctx, query)
}

func (r *ticketRepository) ListScannedByUserID(ctx context.Context, userID string) ([]*domain.TicketDetail, error) {
	query := `
		SELECT t.id, e.id, e.name, e.starting_date, e.location,
			t.quantity, t.total_price, t.scanned,
			COALESCE(u.full_name, 'Unknown User'),
			COALESCE(u.avatar, 'default-avatar.jpg')
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		LEFT JOIN users u ON u.id = t.user_id
		WHERE t.user_id = $1 AND t.scanned = TRUE
		ORDER BY t.created_at DESC
	`
	return r.queryDetails(ctx, query, userID)
}

func (r *ticketRepository) queryDetails(ctx context.Context, query string, args ...any) ([]*domain.TicketDetail, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]*domain.TicketDetail, 0)
	for rows.Next() {
		d := &domain.TicketDetail{}
		if err := rows.Scan(&d.ID, &d.EventID, &d.EventName, &d.EventDate, &d.Location,
			&d.Quantity, &d.TotalPrice, &d.Scanned, &d.UserName, &d.UserAvatar); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
