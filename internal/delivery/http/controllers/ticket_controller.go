package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventticketing/internal/delivery/http/helpers"
	"eventticketing/internal/delivery/http/middleware"
	"eventticketing/internal/domain"
)

// TicketController handles ticket purchase, return, redemption, and reporting.
type TicketController struct {
	Logger    *slog.Logger
	Service   domain.TicketService
	UploadDir string
}

func NewTicketController(logger *slog.Logger, svc domain.TicketService, uploadDir string) *TicketController {
	return &TicketController{
		Logger:    logger,
		Service:   svc,
		UploadDir: uploadDir,
	}
}

// writeTicketError maps domain errors to HTTP responses. Everything not in
// the taxonomy is logged and surfaced as an opaque 500.
func (c *TicketController) writeTicketError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficient *domain.InsufficientInventoryError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "Event not found")
	case errors.Is(err, domain.ErrTicketNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "Ticket not found")
	case errors.As(err, &insufficient):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, insufficient.Error())
	case errors.Is(err, domain.ErrEventNotPurchasable):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "Tickets cannot be purchased for past events")
	case errors.Is(err, domain.ErrReturnWindowClosed):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "Tickets cannot be returned on or after the event date")
	case errors.Is(err, domain.ErrTicketAlreadyScanned):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "Ticket already scanned")
	case errors.Is(err, domain.ErrTokenNotDetected):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "QR Code not detected")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "server error")
	}
}

// PurchaseTicketRequest is the request body for POST /tickets/purchase.
type PurchaseTicketRequest struct {
	EventID  string `json:"event_id"`
	Quantity int    `json:"quantity"`
}

// Validate implements Validator.
func (p PurchaseTicketRequest) Validate() []string {
	var errs []string
	if p.EventID == "" {
		errs = append(errs, "event_id is required")
	}
	if p.Quantity < 1 {
		errs = append(errs, "quantity must be at least 1")
	}
	return errs
}

// PurchaseTicketResponse is the data payload for a successful purchase.
type PurchaseTicketResponse struct {
	Message      string         `json:"message"`
	Ticket       *domain.Ticket `json:"ticket"`
	EventDetails *domain.Event  `json:"event_details"`
}

// PurchaseTicket godoc
// @Summary Purchase tickets for an event
// @Description Atomically reserves inventory and creates a ticket ledger entry. The event must start after today and have enough remaining capacity.
// @Tags tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PurchaseTicketRequest true "Event and quantity"
// @Success 200 {object} helpers.APIResponse "data contains message, ticket and event_details"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (sold out or past event)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets/purchase [post]
func (c *TicketController) PurchaseTicket(w http.ResponseWriter, r *http.Request) {
	var req PurchaseTicketRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, _, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	ticket, event, err := c.Service.PurchaseTicket(r.Context(), req.EventID, userID, req.Quantity)
	if err != nil {
		c.writeTicketError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, PurchaseTicketResponse{
		Message:      "Ticket purchased successfully",
		Ticket:       ticket,
		EventDetails: event,
	})
}

// ReturnTicketRequest is the request body for POST /tickets/return.
type ReturnTicketRequest struct {
	TicketID string `json:"ticket_id"`
}

// Validate implements Validator.
func (rr ReturnTicketRequest) Validate() []string {
	if rr.TicketID == "" {
		return []string{"ticket_id is required"}
	}
	return nil
}

// ReturnTicketResponse is the data payload for a successful return.
type ReturnTicketResponse struct {
	Message string `json:"message"`
}

// ReturnTicket godoc
// @Summary Return a ticket
// @Description Deletes the ticket and releases its quantity back to the event's inventory. Returns close at the start of the event's calendar day.
// @Tags tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ReturnTicketRequest true "Ticket to return"
// @Success 200 {object} helpers.APIResponse "data contains message"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (return window closed)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets/return [post]
func (c *TicketController) ReturnTicket(w http.ResponseWriter, r *http.Request) {
	var req ReturnTicketRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.ReturnTicket(r.Context(), req.TicketID); err != nil {
		c.writeTicketError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ReturnTicketResponse{Message: "Ticket returned successfully"})
}

// ScanTicketResponse is the data payload for a successful scan.
type ScanTicketResponse struct {
	Message string         `json:"message"`
	Ticket  *domain.Ticket `json:"ticket"`
}

// ScanTicket godoc
// @Summary Redeem a ticket from a QR code image
// @Description Accepts a multipart image upload (field "ticket"), decodes the QR code, and marks the ticket scanned. A ticket can be scanned exactly once. The uploaded image is deleted after processing.
// @Tags tickets
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param ticket formData file true "Photo of the ticket QR code"
// @Success 200 {object} helpers.APIResponse "data contains message and ticket"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (no readable QR code)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already scanned)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets/scan [post]
func (c *TicketController) ScanTicket(w http.ResponseWriter, r *http.Request) {
	path, err := helpers.SaveUploadedFile(r, "ticket", c.UploadDir)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "No file uploaded")
		return
	}
	ticket, err := c.Service.ScanTicket(r.Context(), path)
	if err != nil {
		c.writeTicketError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ScanTicketResponse{
		Message: "Ticket scanned successfully",
		Ticket:  ticket,
	})
}

// TicketsByEventRequest is the request body for POST /tickets/by-event.
type TicketsByEventRequest struct {
	EventID string `json:"event_id"`
}

// Validate implements Validator.
func (t TicketsByEventRequest) Validate() []string {
	if t.EventID == "" {
		return []string{"event_id is required"}
	}
	return nil
}

// TicketsByEvent godoc
// @Summary Ticket sales report for one event
// @Description Returns all ticket transactions for the event with purchaser details, total revenue, tickets sold, and remaining capacity.
// @Tags tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body TicketsByEventRequest true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event ticket report"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets/by-event [post]
func (c *TicketController) TicketsByEvent(w http.ResponseWriter, r *http.Request) {
	var req TicketsByEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	report, err := c.Service.GetTicketsByEvent(r.Context(), req.EventID)
	if err != nil {
		c.writeTicketError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}

// MyTicketsResponse is the data payload for POST /tickets/mine.
type MyTicketsResponse struct {
	Tickets []*domain.TicketWithEvent `json:"tickets"`
}

// MyTickets godoc
// @Summary List the authenticated user's tickets
// @Description Returns the user's tickets joined with event and organizer details. Identity comes from the bearer token.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains tickets"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets/mine [post]
func (c *TicketController) MyTickets(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	tickets, err := c.Service.GetMyTickets(r.Context(), userID)
	if err != nil {
		c.writeTicketError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, MyTicketsResponse{Tickets: tickets})
}

// AllTickets godoc
// @Summary List all tickets with totals
// @Description Returns every ticket with purchaser and event details plus global ticket and revenue totals.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains tickets, total_tickets and total_revenue"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets/all [post]
func (c *TicketController) AllTickets(w http.ResponseWriter, r *http.Request) {
	report, err := c.Service.GetAllTickets(r.Context())
	if err != nil {
		c.writeTicketError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}

// ScannedTicketsRequest is the request body for POST /tickets/scanned.
type ScannedTicketsRequest struct {
	UserID string `json:"user_id"`
}

// Validate implements Validator.
func (s ScannedTicketsRequest) Validate() []string {
	if s.UserID == "" {
		return []string{"user_id is required"}
	}
	return nil
}

// ScannedTickets godoc
// @Summary List a user's scanned tickets
// @Description Returns the user's scanned tickets and the total scanned quantity.
// @Tags tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ScannedTicketsRequest true "User ID"
// @Success 200 {object} helpers.APIResponse "data contains scanned_tickets and total_scanned_tickets"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets/scanned [post]
func (c *TicketController) ScannedTickets(w http.ResponseWriter, r *http.Request) {
	var req ScannedTicketsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	report, err := c.Service.GetScannedTickets(r.Context(), req.UserID)
	if err != nil {
		c.writeTicketError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}

// GetTicketRequest is the request body for POST /tickets/get.
type GetTicketRequest struct {
	TicketID string `json:"ticket_id"`
}

// Validate implements Validator.
func (g GetTicketRequest) Validate() []string {
	if g.TicketID == "" {
		return []string{"ticket_id is required"}
	}
	return nil
}

// GetTicket godoc
// @Summary Get a single ticket with details
// @Description Returns one ticket joined with purchaser and event display fields.
// @Tags tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GetTicketRequest true "Ticket ID"
// @Success 200 {object} helpers.APIResponse "data contains the ticket detail"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets/get [post]
func (c *TicketController) GetTicket(w http.ResponseWriter, r *http.Request) {
	var req GetTicketRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	detail, err := c.Service.GetTicket(r.Context(), req.TicketID)
	if err != nil {
		c.writeTicketError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, detail)
}
