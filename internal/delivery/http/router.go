package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventticketing/internal/delivery/http/controllers"
	"eventticketing/internal/delivery/http/middleware"
	"eventticketing/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	ticketController *controllers.TicketController,
) *http.ServeMux {
	mux := http.NewServeMux()

	user := middleware.RequireUser(verifier)
	organizer := middleware.RequireOrganizer(verifier)

	// Auth
	mux.HandleFunc("POST /auth/users/signup", authController.SignUpUser)
	mux.HandleFunc("POST /auth/users/login", authController.LoginUser)
	mux.HandleFunc("POST /auth/organizers/signup", authController.SignUpOrganizer)
	mux.HandleFunc("POST /auth/organizers/login", authController.LoginOrganizer)

	// Events
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/mine", organizer(eventController.MyEvents))
	mux.HandleFunc("GET /events/{id}", eventController.GetEvent)
	mux.HandleFunc("POST /events", organizer(eventController.CreateEvent))
	mux.HandleFunc("PATCH /events/{id}", organizer(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{id}", organizer(eventController.DeleteEvent))

	// Tickets
	mux.HandleFunc("POST /tickets/purchase", user(ticketController.PurchaseTicket))
	mux.HandleFunc("POST /tickets/return", user(ticketController.ReturnTicket))
	mux.HandleFunc("POST /tickets/scan", organizer(ticketController.ScanTicket))
	mux.HandleFunc("POST /tickets/by-event", organizer(ticketController.TicketsByEvent))
	mux.HandleFunc("POST /tickets/mine", user(ticketController.MyTickets))
	mux.HandleFunc("POST /tickets/all", organizer(ticketController.AllTickets))
	mux.HandleFunc("POST /tickets/scanned", organizer(ticketController.ScannedTickets))
	mux.HandleFunc("POST /tickets/get", user(ticketController.GetTicket))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
