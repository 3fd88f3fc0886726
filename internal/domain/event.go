package domain

import (
	"context"
	"time"
)

// Event represents a ticketed event published by an organizer.
// swagger:model Event
type Event struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	StartingDate      time.Time `json:"starting_date"`
	EndingDate        time.Time `json:"ending_date"`
	Location          string    `json:"location"`
	LocationURL       string    `json:"location_url"`
	Price             float64   `json:"price"`
	TicketsAvailable  int       `json:"tickets_available"`
	TicketsSold       int       `json:"tickets_sold"`
	TicketSellingDate time.Time `json:"ticket_selling_date"`
	OrganizerID       string    `json:"organizer_id"`
	Poster            string    `json:"poster"`
	Category          string    `json:"category"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// RemainingTickets returns the unsold capacity, floored at zero for display.
// The storage layer guarantees tickets_sold never exceeds tickets_available,
// but reporting must not surface a negative number even if the data is bad.
func (e *Event) RemainingTickets() int {
	remaining := e.TicketsAvailable - e.TicketsSold
	if remaining < 0 {
		return 0
	}
	return remaining
}

// EventRepository defines the interface for event storage. tickets_sold is
// never written through this interface; only the ticket repository's
// transactional reserve/release may touch it.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error
}

// EventUpdate holds the optional fields accepted by UpdateEvent. Nil fields
// are left unchanged.
type EventUpdate struct {
	Name             *string
	Description      *string
	StartingDate     *time.Time
	EndingDate       *time.Time
	Location         *string
	LocationURL      *string
	Price            *float64
	TicketsAvailable *int
	Poster           *string
	Category         *string
}

// EventService defines event CRUD operations available to organizers.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEventByID(ctx context.Context, eventID string) (*Event, error)
	ListEvents(ctx context.Context) ([]*Event, error)
	ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, organizerID string, update EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, organizerID string) error
}
