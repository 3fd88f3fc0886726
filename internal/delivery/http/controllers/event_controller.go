package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"eventticketing/internal/delivery/http/helpers"
	"eventticketing/internal/delivery/http/middleware"
	"eventticketing/internal/domain"
)

// EventController handles organizer-facing event CRUD and public event reads.
type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *EventController) writeEventError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "you do not own this event")
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "Event not found")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "server error")
	}
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	StartingDate      time.Time `json:"starting_date"`
	EndingDate        time.Time `json:"ending_date"`
	Location          string    `json:"location"`
	LocationURL       string    `json:"location_url"`
	Price             float64   `json:"price"`
	TicketsAvailable  int       `json:"tickets_available"`
	TicketSellingDate time.Time `json:"ticket_selling_date"`
	Poster            string    `json:"poster"`
	Category          string    `json:"category"`
}

// Validate implements Validator. Returns error messages for required and range rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Name == "" {
		errs = append(errs, "name is required")
	}
	if c.StartingDate.IsZero() {
		errs = append(errs, "starting_date is required")
	}
	if c.EndingDate.IsZero() {
		errs = append(errs, "ending_date is required")
	}
	if c.Location == "" {
		errs = append(errs, "location is required")
	}
	if c.Price < 0 {
		errs = append(errs, "price must not be negative")
	}
	if c.TicketsAvailable < 1 {
		errs = append(errs, "tickets_available must be at least 1")
	}
	return errs
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create a new event owned by the authenticated organizer. tickets_sold starts at zero and is only ever changed by purchases and returns.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	organizerID, _, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event := &domain.Event{
		Name:              req.Name,
		Description:       req.Description,
		StartingDate:      req.StartingDate,
		EndingDate:        req.EndingDate,
		Location:          req.Location,
		LocationURL:       req.LocationURL,
		Price:             req.Price,
		TicketsAvailable:  req.TicketsAvailable,
		TicketSellingDate: req.TicketSellingDate,
		OrganizerID:       organizerID,
		Poster:            req.Poster,
		Category:          req.Category,
	}
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEvents godoc
// @Summary List all events
// @Tags events
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains the event list"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListEvents(r.Context())
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get one event by ID
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.GetEventByID(r.Context(), r.PathValue("id"))
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// MyEvents godoc
// @Summary List the authenticated organizer's events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the event list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/mine [get]
func (c *EventController) MyEvents(w http.ResponseWriter, r *http.Request) {
	organizerID, _, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListEventsByOrganizer(r.Context(), organizerID)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// UpdateEventRequest is the request body for PATCH /events/{id}. All fields
// are optional; absent fields are left unchanged. tickets_sold is not
// updatable through this endpoint.
type UpdateEventRequest struct {
	Name             *string    `json:"name"`
	Description      *string    `json:"description"`
	StartingDate     *time.Time `json:"starting_date"`
	EndingDate       *time.Time `json:"ending_date"`
	Location         *string    `json:"location"`
	LocationURL      *string    `json:"location_url"`
	Price            *float64   `json:"price"`
	TicketsAvailable *int       `json:"tickets_available"`
	Poster           *string    `json:"poster"`
	Category         *string    `json:"category"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Name != nil && *u.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	if u.Price != nil && *u.Price < 0 {
		errs = append(errs, "price must not be negative")
	}
	if u.TicketsAvailable != nil && *u.TicketsAvailable < 1 {
		errs = append(errs, "tickets_available must be at least 1")
	}
	return errs
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Partially update an event owned by the authenticated organizer. tickets_available cannot be reduced below the number of tickets already sold.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param event body UpdateEventRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	organizerID, _, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	update := domain.EventUpdate{
		Name:             req.Name,
		Description:      req.Description,
		StartingDate:     req.StartingDate,
		EndingDate:       req.EndingDate,
		Location:         req.Location,
		LocationURL:      req.LocationURL,
		Price:            req.Price,
		TicketsAvailable: req.TicketsAvailable,
		Poster:           req.Poster,
		Category:         req.Category,
	}
	event, err := c.Service.UpdateEvent(r.Context(), r.PathValue("id"), organizerID, update)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Delete an event owned by the authenticated organizer. Outstanding tickets are removed with it.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	organizerID, _, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), r.PathValue("id"), organizerID); err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "Event deleted successfully"})
}
