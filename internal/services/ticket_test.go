package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"eventticketing/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID   map[string]*domain.Event
	nextID int
	err    error // if set, every method returns this error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.byID[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.Event, 0, len(f.byID))
	for _, e := range f.byID {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEventRepo) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.Event, 0)
	for _, e := range f.byID {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeTicketRepo is an in-memory TicketRepository that mirrors the guarded
// inventory semantics of the real one.
type fakeTicketRepo struct {
	events  *fakeEventRepo
	byID    map[string]*domain.Ticket
	nextID  int
	err     error
	details map[string]*domain.TicketDetail
}

func newFakeTicketRepo(events *fakeEventRepo) *fakeTicketRepo {
	return &fakeTicketRepo{
		events:  events,
		byID:    make(map[string]*domain.Ticket),
		nextID:  1,
		details: make(map[string]*domain.TicketDetail),
	}
}

func (f *fakeTicketRepo) CreateWithReservation(ctx context.Context, t *domain.Ticket) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.events.byID[t.EventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if e.TicketsSold+t.Quantity > e.TicketsAvailable {
		return nil, &domain.InsufficientInventoryError{Remaining: e.TicketsAvailable - e.TicketsSold}
	}
	e.TicketsSold += t.Quantity
	t.ID = fmt.Sprintf("tk-%d", f.nextID)
	f.nextID++
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	f.byID[t.ID] = t
	copied := *e
	return &copied, nil
}

func (f *fakeTicketRepo) DeleteWithRelease(ctx context.Context, ticketID, eventID string, quantity int) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[ticketID]; !ok {
		return domain.ErrTicketNotFound
	}
	e, ok := f.events.byID[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	if e.TicketsSold-quantity < 0 {
		return domain.ErrInventoryCorrupt
	}
	e.TicketsSold -= quantity
	delete(f.byID, ticketID)
	return nil
}

func (f *fakeTicketRepo) Redeem(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.byID[ticketID]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	if t.Scanned {
		return nil, domain.ErrTicketAlreadyScanned
	}
	t.Scanned = true
	return t, nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if f.err != nil {
		return nil, f.err
	}
	if t, ok := f.byID[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTicketNotFound
}

func (f *fakeTicketRepo) GetDetailByID(ctx context.Context, id string) (*domain.TicketDetail, error) {
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	return nil, domain.ErrTicketNotFound
}

func (f *fakeTicketRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.TicketTransaction, error) {
	out := make([]*domain.TicketTransaction, 0)
	for _, t := range f.byID {
		if t.EventID == eventID {
			out = append(out, &domain.TicketTransaction{
				ID: t.ID, EventID: t.EventID, Quantity: t.Quantity,
				TotalPrice: t.TotalPrice, Scanned: t.Scanned,
			})
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) ListByUserIDWithEvent(ctx context.Context, userID string) ([]*domain.TicketWithEvent, error) {
	out := make([]*domain.TicketWithEvent, 0)
	for _, t := range f.byID {
		if t.UserID == userID {
			out = append(out, &domain.TicketWithEvent{Ticket: t, Event: f.events.byID[t.EventID]})
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) ListAllWithDetails(ctx context.Context) ([]*domain.TicketDetail, error) {
	out := make([]*domain.TicketDetail, 0, len(f.details))
	for _, d := range f.details {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeTicketRepo) ListScannedByUserID(ctx context.Context, userID string) ([]*domain.TicketDetail, error) {
	out := make([]*domain.TicketDetail, 0)
	for _, d := range f.details {
		if d.Scanned {
			out = append(out, d)
		}
	}
	return out, nil
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = fmt.Sprintf("user-%d", len(f.byID)+1)
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

// fakeDecoder returns a fixed token or error.
type fakeDecoder struct {
	token string
	err   error
}

func (f *fakeDecoder) Decode(ctx context.Context, imagePath string) (string, error) {
	return f.token, f.err
}

// recordingEmailService captures the confirmations it is asked to send.
type recordingEmailService struct {
	sent []*domain.PurchaseConfirmationEmailData
	err  error
}

func (r *recordingEmailService) SendPurchaseConfirmation(ctx context.Context, data *domain.PurchaseConfirmationEmailData) error {
	r.sent = append(r.sent, data)
	return r.err
}

func futureEvent(events *fakeEventRepo, available, sold int, price float64) *domain.Event {
	e := &domain.Event{
		Name:             "Go Conf",
		StartingDate:     time.Now().AddDate(0, 0, 7),
		EndingDate:       time.Now().AddDate(0, 0, 8),
		Location:         "Berlin",
		Price:            price,
		TicketsAvailable: available,
		TicketsSold:      sold,
		OrganizerID:      "org-1",
	}
	_ = events.Create(context.Background(), e)
	return e
}

func newTicketServiceForTest(events *fakeEventRepo, tickets *fakeTicketRepo, users *fakeUserRepo, decoder domain.TokenDecoder, emails domain.EmailService) domain.TicketService {
	return NewTicketService(tickets, events, users, decoder, emails, testLogger(), 2*time.Second)
}

func TestTicketService_PurchaseTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("purchases and reserves inventory", func(t *testing.T) {
		events := newFakeEventRepo()
		tickets := newFakeTicketRepo(events)
		users := newFakeUserRepo()
		u := &domain.User{FullName: "Ada", Email: "ada@example.com"}
		require.NoError(t, users.Create(ctx, u))
		e := futureEvent(events, 100, 0, 25.0)
		emails := &recordingEmailService{}

		svc := newTicketServiceForTest(events, tickets, users, &fakeDecoder{}, emails)
		ticket, updated, err := svc.PurchaseTicket(ctx, e.ID, u.ID, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, ticket.Quantity)
		assert.Equal(t, 100.0, ticket.TotalPrice)
		assert.False(t, ticket.Scanned)
		assert.Equal(t, 4, updated.TicketsSold)
		require.Len(t, emails.sent, 1)
		assert.Equal(t, "ada@example.com", emails.sent[0].Email)
		assert.Equal(t, "Go Conf", emails.sent[0].EventName)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		events := newFakeEventRepo()
		tickets := newFakeTicketRepo(events)
		e := futureEvent(events, 10, 0, 25.0)

		svc := newTicketServiceForTest(events, tickets, newFakeUserRepo(), &fakeDecoder{}, nil)
		_, _, err := svc.PurchaseTicket(ctx, e.ID, "user-1", 0)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown event", func(t *testing.T) {
		events := newFakeEventRepo()
		tickets := newFakeTicketRepo(events)

		svc := newTicketServiceForTest(events, tickets, newFakeUserRepo(), &fakeDecoder{}, nil)
		_, _, err := svc.PurchaseTicket(ctx, "missing", "user-1", 1)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("reports exact remaining capacity when sold out", func(t *testing.T) {
		events := newFakeEventRepo()
		tickets := newFakeTicketRepo(events)
		e := futureEvent(events, 10, 7, 25.0)

		svc := newTicketServiceForTest(events, tickets, newFakeUserRepo(), &fakeDecoder{}, nil)
		_, _, err := svc.PurchaseTicket(ctx, e.ID, "user-1", 5)
		var insufficient *domain.InsufficientInventoryError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 3, insufficient.Remaining)
		assert.Equal(t, "Only 3 tickets are available", err.Error())
	})

	t.Run("rejects purchase on the event day", func(t *testing.T) {
		events := newFakeEventRepo()
		tickets := newFakeTicketRepo(events)
		e := futureEvent(events, 10, 0, 25.0)
		e.StartingDate = time.Now()
		events.byID[e.ID] = e

		svc := newTicketServiceForTest(events, tickets, newFakeUserRepo(), &fakeDecoder{}, nil)
		_, _, err := svc.PurchaseTicket(ctx, e.ID, "user-1", 1)
		require.ErrorIs(t, err, domain.ErrEventNotPurchasable)
	})

	t.Run("email failure does not fail the purchase", func(t *testing.T) {
		events := newFakeEventRepo()
		tickets := newFakeTicketRepo(events)
		users := newFakeUserRepo()
		u := &domain.User{FullName: "Ada", Email: "ada@example.com"}
		require.NoError(t, users.Create(ctx, u))
		e := futureEvent(events, 10, 0, 25.0)
		emails := &recordingEmailService{err: fmt.Errorf("smtp down")}

		svc := newTicketServiceForTest(events, tickets, users, &fakeDecoder{}, emails)
		_, _, err := svc.PurchaseTicket(ctx, e.ID, u.ID, 1)
		require.NoError(t, err)
	})
}

func TestTicketService_ReturnTicket(t *testing.T) {
	ctx := context.Background()

	purchase := func(t *testing.T, events *fakeEventRepo, tickets *fakeTicketRepo, eventID string, qty int) *domain.Ticket {
		t.Helper()
		svc := newTicketServiceForTest(events, tickets, newFakeUserRepo(), &fakeDecoder{}, nil)
		ticket, _, err := svc.PurchaseTicket(ctx, eventID, "user-1", qty)
		require.NoError(t, err)
		return ticket
	}

	t.Run("returns and releases inventory", func(t *testing.T) {
		events := newFakeEventRepo()
		tickets := newFakeTicketRepo(events)
		e := futureEvent(events, 10, 0, 25.0)
		ticket := purchase(t, events, tickets, e.ID, 3)

		svc := newTicketServiceForTest(events, tickets, newFakeUserRepo(), &fakeDecoder{}, nil)
		require.NoError(t, svc.ReturnTicket(ctx, ticket.ID))
		assert.Equal(t, 0, events.byID[e.ID].TicketsSold)
	})

	t.Run("unknown ticket", func(t *testing.T) {
		events := newFakeEventRepo()
		tickets := newFakeTicketRepo(events)

		svc := newTicketServiceForTest(events, tickets, newFakeUserRepo(), &fakeDecoder{}, nil)
		require.ErrorIs(t, svc.ReturnTicket(ctx, "missing"), domain.ErrTicketNotFound)
	})

	t.Run("window closes on the event day", func(t *testing.T) {
		events := newFakeEventRepo()
		tickets := newFakeTicketRepo(events)
		e := futureEvent(events, 10, 0, 25.0)
		ticket := purchase(t, events, tickets, e.ID, 1)
		events.byID[e.ID].StartingDate = time.Now()

		svc := newTicketServiceForTest(events, tickets, newFakeUserRepo(), &fakeDecoder{}, nil)
		err := svc.ReturnTicket(ctx, ticket.ID)
		require.ErrorIs(t, err, domain.ErrReturnWindowClosed)
		// The ticket must survive a rejected return.
		_, err = tickets.GetByID(ctx, ticket.ID)
		require.NoError(t, err)
	})
}

func TestTicketService_ScanTicket(t *testing.T) {
	ctx := context.Background()

	scanImage := func(t *testing.T) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "scan.png")
		require.NoError(t, os.WriteFile(path, []byte("img"), 0o600))
		return path
	}

	t.Run("redeems the decoded ticket and removes the image", func(t *testing.T) {
		events := newFakeEventRepo()
		tickets := newFakeTicketRepo(events)
		e := futureEvent(events, 10, 0, 25.0)
		svc := newTicketServiceForTest(events, tickets, newFakeUserRepo(), &fakeDecoder{}, nil)
		ticket, _, err := svc.PurchaseTicket(ctx, e.ID, "user-1", 1)
		require.NoError(t, err)

		path := scanImage(t)
		scanSvc := newTicketServiceForTest(events, tickets, newFakeUserRepo(), &fakeDecoder{token: ticket.ID + "\n"}, nil)
		got, err := scanSvc.ScanTicket(ctx, path)
		require.NoError(t, err)
		assert.True(t, got.Scanned)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("second scan fails", func(t *testing.T) {
		events := newFakeEventRepo()
		tickets := newFakeTicketRepo(events)
		e := futureEvent(events, 10, 0, 25.0)
		svc := newTicketServiceForTest(events, tickets, newFakeUserRepo(), &fakeDecoder{}, nil)
		ticket, _, err := svc.PurchaseTicket(ctx, e.ID, "user-1", 1)
		require.NoError(t, err)

		scanSvc := newTicketServiceForTest(events, tickets, newFakeUserRepo(), &fakeDecoder{token: ticket.ID}, nil)
		_, err = scanSvc.ScanTicket(ctx, scanImage(t))
		require.NoError(t, err)
		_, err = scanSvc.ScanTicket(ctx, scanImage(t))
		require.ErrorIs(t, err, domain.ErrTicketAlreadyScanned)
	})

	t.Run("undetectable code removes the image and reports it", func(t *testing.T) {
		events := newFakeEventRepo()
		tickets := newFakeTicketRepo(events)

		path := scanImage(t)
		svc := newTicketServiceForTest(events, tickets, newFakeUserRepo(), &fakeDecoder{err: domain.ErrTokenNotDetected}, nil)
		_, err := svc.ScanTicket(ctx, path)
		require.ErrorIs(t, err, domain.ErrTokenNotDetected)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("blank decoded token is treated as undetected", func(t *testing.T) {
		events := newFakeEventRepo()
		tickets := newFakeTicketRepo(events)

		svc := newTicketServiceForTest(events, tickets, newFakeUserRepo(), &fakeDecoder{token: "   "}, nil)
		_, err := svc.ScanTicket(ctx, scanImage(t))
		require.ErrorIs(t, err, domain.ErrTokenNotDetected)
	})
}

func TestTicketService_GetTicketsByEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates revenue and floors remaining at zero", func(t *testing.T) {
		events := newFakeEventRepo()
		tickets := newFakeTicketRepo(events)
		e := futureEvent(events, 5, 0, 20.0)
		svc := newTicketServiceForTest(events, tickets, newFakeUserRepo(), &fakeDecoder{}, nil)
		_, _, err := svc.PurchaseTicket(ctx, e.ID, "user-1", 3)
		require.NoError(t, err)
		_, _, err = svc.PurchaseTicket(ctx, e.ID, "user-2", 2)
		require.NoError(t, err)

		report, err := svc.GetTicketsByEvent(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, 100.0, report.TotalRevenue)
		assert.Equal(t, 5, report.TotalTicketsSold)
		assert.Equal(t, 0, report.RemainingTickets)
		assert.Len(t, report.Transactions, 2)
	})

	t.Run("unknown event", func(t *testing.T) {
		events := newFakeEventRepo()
		tickets := newFakeTicketRepo(events)

		svc := newTicketServiceForTest(events, tickets, newFakeUserRepo(), &fakeDecoder{}, nil)
		_, err := svc.GetTicketsByEvent(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestTicketService_GetAllTickets(t *testing.T) {
	ctx := context.Background()

	t.Run("sums quantity and revenue", func(t *testing.T) {
		events := newFakeEventRepo()
		tickets := newFakeTicketRepo(events)
		tickets.details["tk-1"] = &domain.TicketDetail{ID: "tk-1", Quantity: 2, TotalPrice: 40.0}
		tickets.details["tk-2"] = &domain.TicketDetail{ID: "tk-2", Quantity: 3, TotalPrice: 60.0, Scanned: true}

		svc := newTicketServiceForTest(events, tickets, newFakeUserRepo(), &fakeDecoder{}, nil)
		report, err := svc.GetAllTickets(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, report.TotalTickets)
		assert.Equal(t, 100.0, report.TotalRevenue)
		assert.Len(t, report.Tickets, 2)
	})
}

func TestTicketService_GetScannedTickets(t *testing.T) {
	ctx := context.Background()

	t.Run("sums scanned quantity", func(t *testing.T) {
		events := newFakeEventRepo()
		tickets := newFakeTicketRepo(events)
		tickets.details["tk-1"] = &domain.TicketDetail{ID: "tk-1", Quantity: 2, Scanned: true}
		tickets.details["tk-2"] = &domain.TicketDetail{ID: "tk-2", Quantity: 3}

		svc := newTicketServiceForTest(events, tickets, newFakeUserRepo(), &fakeDecoder{}, nil)
		report, err := svc.GetScannedTickets(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 2, report.TotalScannedTickets)
		assert.Len(t, report.ScannedTickets, 1)
	})
}
