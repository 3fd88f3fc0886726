package services

import (
	"context"
	"testing"
	"time"

	"eventticketing/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent(organizerID string) *domain.Event {
	now := time.Now()
	return &domain.Event{
		Name:             "Go Conf",
		StartingDate:     now.AddDate(0, 1, 0),
		EndingDate:       now.AddDate(0, 1, 1),
		Location:         "Berlin",
		Price:            50.0,
		TicketsAvailable: 100,
		OrganizerID:      organizerID,
	}
}

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(e *domain.Event)
		wantErr error
	}{
		{name: "valid"},
		{
			name:    "missing organizer",
			mutate:  func(e *domain.Event) { e.OrganizerID = "" },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "negative price",
			mutate:  func(e *domain.Event) { e.Price = -1 },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "ending before starting",
			mutate:  func(e *domain.Event) { e.EndingDate = e.StartingDate.AddDate(0, 0, -2) },
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeEventRepo()
			svc := NewEventService(repo, 2*time.Second)

			e := validEvent("org-1")
			e.TicketsSold = 99 // must be reset by the service
			if tt.mutate != nil {
				tt.mutate(e)
			}
			err := svc.CreateEvent(ctx, e)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, e.ID)
			assert.Zero(t, e.TicketsSold)
		})
	}
}

func TestEventService_UpdateEvent(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fakeEventRepo, domain.EventService, *domain.Event) {
		t.Helper()
		repo := newFakeEventRepo()
		svc := NewEventService(repo, 2*time.Second)
		e := validEvent("org-1")
		require.NoError(t, svc.CreateEvent(ctx, e))
		return repo, svc, e
	}

	strPtr := func(s string) *string { return &s }
	intPtr := func(i int) *int { return &i }

	t.Run("applies only the provided fields", func(t *testing.T) {
		_, svc, e := setup(t)
		got, err := svc.UpdateEvent(ctx, e.ID, "org-1", domain.EventUpdate{Name: strPtr("Renamed")})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		assert.Equal(t, "Berlin", got.Location)
	})

	t.Run("rejects foreign organizer", func(t *testing.T) {
		_, svc, e := setup(t)
		_, err := svc.UpdateEvent(ctx, e.ID, "org-2", domain.EventUpdate{Name: strPtr("Hijack")})
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("capacity cannot drop below tickets sold", func(t *testing.T) {
		repo, svc, e := setup(t)
		repo.byID[e.ID].TicketsSold = 40
		_, err := svc.UpdateEvent(ctx, e.ID, "org-1", domain.EventUpdate{TicketsAvailable: intPtr(30)})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown event", func(t *testing.T) {
		_, svc, _ := setup(t)
		_, err := svc.UpdateEvent(ctx, "missing", "org-1", domain.EventUpdate{})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventService_DeleteEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := NewEventService(repo, 2*time.Second)
		e := validEvent("org-1")
		require.NoError(t, svc.CreateEvent(ctx, e))
		require.NoError(t, svc.DeleteEvent(ctx, e.ID, "org-1"))
		_, err := repo.GetByID(ctx, e.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("foreign organizer is rejected", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := NewEventService(repo, 2*time.Second)
		e := validEvent("org-1")
		require.NoError(t, svc.CreateEvent(ctx, e))
		require.ErrorIs(t, svc.DeleteEvent(ctx, e.ID, "org-2"), domain.ErrForbidden)
	})
}

func TestEventService_ListEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("empty list is an empty slice", func(t *testing.T) {
		svc := NewEventService(newFakeEventRepo(), 2*time.Second)
		events, err := svc.ListEvents(ctx)
		require.NoError(t, err)
		require.NotNil(t, events)
		assert.Empty(t, events)
	})
}
