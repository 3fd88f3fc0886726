package domain

import (
	"context"
	"time"
)

// Ticket is a ledger entry for one purchase transaction. TotalPrice is a
// snapshot of event price x quantity at purchase time and never changes.
// Scanned is a one-way flag: once true it can never be set back to false.
// swagger:model Ticket
type Ticket struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	Quantity   int       `json:"quantity"`
	TotalPrice float64   `json:"total_price"`
	Scanned    bool      `json:"scanned"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewTicket returns a new Ticket. ID and timestamps are set by the
// repository on create.
func NewTicket(eventID, userID string, quantity int, totalPrice float64) *Ticket {
	return &Ticket{
		EventID:    eventID,
		UserID:     userID,
		Quantity:   quantity,
		TotalPrice: totalPrice,
	}
}

// TicketTransaction is a ticket row joined with purchaser display fields for
// per-event reporting. Purchaser fields fall back to placeholder values when
// the user record is missing.
type TicketTransaction struct {
	ID         string  `json:"id"`
	EventID    string  `json:"event_id"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
	Scanned    bool    `json:"scanned"`
	FullName   string  `json:"full_name"`
	UserAvatar string  `json:"user_avatar"`
	PhoneNo    string  `json:"phone_no"`
}

// EventTicketReport aggregates all ticket transactions for one event.
type EventTicketReport struct {
	EventID          string              `json:"event_id"`
	EventName        string              `json:"event_name"`
	EventDate        time.Time           `json:"event_date"`
	Location         string              `json:"location"`
	TotalRevenue     float64             `json:"total_revenue"`
	TotalTicketsSold int                 `json:"total_tickets_sold"`
	RemainingTickets int                 `json:"remaining_tickets"`
	Transactions     []*TicketTransaction `json:"transactions"`
}

// OrganizerSummary is the organizer display subset embedded in ticket history.
type OrganizerSummary struct {
	FullName string `json:"full_name"`
	Avatar   string `json:"avatar"`
}

// TicketWithEvent is a ticket joined with its event and the event's
// organizer, as returned by the per-user ticket history.
type TicketWithEvent struct {
	Ticket    *Ticket          `json:"ticket"`
	Event     *Event           `json:"event_details"`
	Organizer OrganizerSummary `json:"organizer_details"`
}

// TicketDetail is a single ticket joined with purchaser and event display
// fields.
type TicketDetail struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	EventName  string    `json:"event_name"`
	EventDate  time.Time `json:"event_date"`
	Location   string    `json:"location"`
	Quantity   int       `json:"quantity"`
	TotalPrice float64   `json:"total_price"`
	Scanned    bool      `json:"scanned"`
	UserName   string    `json:"user_name"`
	UserAvatar string    `json:"user_avatar"`
}

// TicketRepository defines the interface for ticket storage. The write
// operations carry the system's consistency contract:
//
//   - CreateWithReservation reserves inventory and inserts the ledger row in
//     one transaction. The reservation is a guarded atomic increment
//     (tickets_sold + quantity <= tickets_available evaluated inside the
//     UPDATE), so two concurrent purchases racing for the last tickets can
//     never both succeed.
//   - DeleteWithRelease is the inverse transaction: ledger delete plus a
//     guarded decrement that refuses to drive tickets_sold below zero.
//   - Redeem flips scanned from false to true as a single conditional
//     update, so two concurrent scans of the same ticket can never both
//     succeed.
type TicketRepository interface {
	// CreateWithReservation fills in the ticket's ID and timestamps and
	// returns the post-reservation event snapshot. Returns ErrNotFound if
	// the event does not exist and *InsufficientInventoryError when the
	// guard rejects the increment.
	CreateWithReservation(ctx context.Context, ticket *Ticket) (*Event, error)
	// DeleteWithRelease removes the ticket and releases its quantity back
	// to the event. Returns ErrTicketNotFound, ErrNotFound (event gone), or
	// ErrInventoryCorrupt (decrement would go negative; rolled back).
	DeleteWithRelease(ctx context.Context, ticketID, eventID string, quantity int) error
	// Redeem marks the ticket scanned. Returns ErrTicketNotFound or
	// ErrTicketAlreadyScanned; on success returns the updated ticket.
	Redeem(ctx context.Context, ticketID string) (*Ticket, error)

	GetByID(ctx context.Context, id string) (*Ticket, error)
	GetDetailByID(ctx context.Context, id string) (*TicketDetail, error)
	ListByEventID(ctx context.Context, eventID string) ([]*TicketTransaction, error)
	ListByUserIDWithEvent(ctx context.Context, userID string) ([]*TicketWithEvent, error)
	ListAllWithDetails(ctx context.Context) ([]*TicketDetail, error)
	ListScannedByUserID(ctx context.Context, userID string) ([]*TicketDetail, error)
}

// TokenDecoder extracts the redemption token embedded in a scannable image.
// Implementations must bound decode cost regardless of input size.
type TokenDecoder interface {
	Decode(ctx context.Context, imagePath string) (token string, err error)
}

// AllTicketsReport is the global ticket listing with totals.
type AllTicketsReport struct {
	Tickets      []*TicketDetail `json:"tickets"`
	TotalTickets int             `json:"total_tickets"`
	TotalRevenue float64         `json:"total_revenue"`
}

// ScannedTicketsReport lists a user's scanned tickets with the total quantity.
type ScannedTicketsReport struct {
	ScannedTickets      []*TicketDetail `json:"scanned_tickets"`
	TotalScannedTickets int             `json:"total_scanned_tickets"`
}

// TicketService defines ticket issuance, return, redemption, and reporting.
type TicketService interface {
	PurchaseTicket(ctx context.Context, eventID, userID string, quantity int) (*Ticket, *Event, error)
	ReturnTicket(ctx context.Context, ticketID string) error
	ScanTicket(ctx context.Context, imagePath string) (*Ticket, error)
	GetTicket(ctx context.Context, ticketID string) (*TicketDetail, error)
	GetMyTickets(ctx context.Context, userID string) ([]*TicketWithEvent, error)
	GetTicketsByEvent(ctx context.Context, eventID string) (*EventTicketReport, error)
	GetAllTickets(ctx context.Context) (*AllTicketsReport, error)
	GetScannedTickets(ctx context.Context, userID string) (*ScannedTicketsReport, error)
}
