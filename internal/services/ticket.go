package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"eventticketing/internal/domain"
)

type ticketService struct {
	ticketRepo     domain.TicketRepository
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	decoder        domain.TokenDecoder
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewTicketService(ticketRepo domain.TicketRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	decoder domain.TokenDecoder,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.TicketService {
	return &ticketService{
		ticketRepo:     ticketRepo,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		decoder:        decoder,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// dateOnly truncates t to midnight in its own location. Purchase and return
// windows compare calendar days, not instants.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (s *ticketService) PurchaseTicket(ctx context.Context, eventID, userID string, quantity int) (*domain.Ticket, *domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if quantity < 1 {
		return nil, nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidInput)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}

	// Date-only comparison: a purchase on the event's calendar day is
	// already too late.
	if !dateOnly(time.Now()).Before(dateOnly(event.StartingDate)) {
		return nil, nil, domain.ErrEventNotPurchasable
	}

	// Early capacity check for a precise message. The transactional guard
	// below remains the real serialization point; this read can go stale
	// under concurrency and the guard will catch it.
	if remaining := event.TicketsAvailable - event.TicketsSold; remaining < quantity {
		return nil, nil, &domain.InsufficientInventoryError{Remaining: remaining}
	}

	ticket := domain.NewTicket(eventID, userID, quantity, event.Price*float64(quantity))
	updatedEvent, err := s.ticketRepo.CreateWithReservation(ctx, ticket)
	if err != nil {
		var insufficient *domain.InsufficientInventoryError
		if errors.Is(err, domain.ErrNotFound) || errors.As(err, &insufficient) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("create ticket: %w", err)
	}

	s.sendPurchaseConfirmation(ctx, ticket, updatedEvent)

	return ticket, updatedEvent, nil
}

// sendPurchaseConfirmation emails the purchaser. Failure is logged, never
// propagated: the purchase already committed.
func (s *ticketService) sendPurchaseConfirmation(ctx context.Context, ticket *domain.Ticket, event *domain.Event) {
	if s.emailService == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, ticket.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "purchase confirmation skipped", "ticket_id", ticket.ID, "err", err)
		return
	}
	data := &domain.PurchaseConfirmationEmailData{
		Email:      user.Email,
		FullName:   user.FullName,
		EventName:  event.Name,
		EventDate:  event.StartingDate.Format("Monday, 2 January 2006"),
		Location:   event.Location,
		Quantity:   ticket.Quantity,
		TotalPrice: ticket.TotalPrice,
		TicketID:   ticket.ID,
	}
	if err := s.emailService.SendPurchaseConfirmation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "purchase confirmation failed", "ticket_id", ticket.ID, "err", err)
	}
}

func (s *ticketService) ReturnTicket(ctx context.Context, ticketID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			return domain.ErrTicketNotFound
		}
		return fmt.Errorf("get ticket: %w", err)
	}

	event, err := s.eventRepo.GetByID(ctx, ticket.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}

	// Returns close at the start of the event's calendar day.
	if !dateOnly(time.Now()).Before(dateOnly(event.StartingDate)) {
		return domain.ErrReturnWindowClosed
	}

	if err := s.ticketRepo.DeleteWithRelease(ctx, ticket.ID, ticket.EventID, ticket.Quantity); err != nil {
		switch {
		case errors.Is(err, domain.ErrTicketNotFound),
			errors.Is(err, domain.ErrNotFound),
			errors.Is(err, domain.ErrInventoryCorrupt):
			return err
		}
		return fmt.Errorf("return ticket: %w", err)
	}
	return nil
}

// ScanTicket decodes the QR token from the uploaded image and redeems the
// ticket it names. The image is a transient artifact: it is removed on every
// exit path, success or failure.
func (s *ticketService) ScanTicket(ctx context.Context, imagePath string) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	defer func() {
		if err := os.Remove(imagePath); err != nil && !os.IsNotExist(err) {
			s.logger.WarnContext(ctx, "failed to remove scan image", "path", imagePath, "err", err)
		}
	}()

	token, err := s.decoder.Decode(ctx, imagePath)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotDetected) {
			return nil, domain.ErrTokenNotDetected
		}
		return nil, fmt.Errorf("decode scan image: %w", err)
	}

	ticketID := strings.TrimSpace(token)
	if ticketID == "" {
		return nil, domain.ErrTokenNotDetected
	}

	ticket, err := s.ticketRepo.Redeem(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) || errors.Is(err, domain.ErrTicketAlreadyScanned) {
			return nil, err
		}
		return nil, fmt.Errorf("redeem ticket: %w", err)
	}
	return ticket, nil
}

func (s *ticketService) GetTicket(ctx context.Context, ticketID string) (*domain.TicketDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	detail, err := s.ticketRepo.GetDetailByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("get ticket detail: %w", err)
	}
	return detail, nil
}

func (s *ticketService) GetMyTickets(ctx context.Context, userID string) ([]*domain.TicketWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tickets, err := s.ticketRepo.ListByUserIDWithEvent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	if tickets == nil {
		tickets = []*domain.TicketWithEvent{}
	}
	return tickets, nil
}

func (s *ticketService) GetTicketsByEvent(ctx context.Context, eventID string) (*domain.EventTicketReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	transactions, err := s.ticketRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event tickets: %w", err)
	}
	if transactions == nil {
		transactions = []*domain.TicketTransaction{}
	}

	var totalRevenue float64
	for _, tr := range transactions {
		totalRevenue += tr.TotalPrice
	}

	return &domain.EventTicketReport{
		EventID:          event.ID,
		EventName:        event.Name,
		EventDate:        event.StartingDate,
		Location:         event.Location,
		TotalRevenue:     totalRevenue,
		TotalTicketsSold: event.TicketsSold,
		RemainingTickets: event.RemainingTickets(),
		Transactions:     transactions,
	}, nil
}

func (s *ticketService) GetAllTickets(ctx context.Context) (*domain.AllTicketsReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tickets, err := s.ticketRepo.ListAllWithDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all tickets: %w", err)
	}
	if tickets == nil {
		tickets = []*domain.TicketDetail{}
	}

	report := &domain.AllTicketsReport{Tickets: tickets}
	for _, t := range tickets {
		report.TotalTickets += t.Quantity
		report.TotalRevenue += t.TotalPrice
	}
	return report, nil
}

func (s *ticketService) GetScannedTickets(ctx context.Context, userID string) (*domain.ScannedTicketsReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tickets, err := s.ticketRepo.ListScannedByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list scanned tickets: %w", err)
	}
	if tickets == nil {
		tickets = []*domain.TicketDetail{}
	}

	report := &domain.ScannedTicketsReport{ScannedTickets: tickets}
	for _, t := range tickets {
		report.TotalScannedTickets += t.Quantity
	}
	return report, nil
}
