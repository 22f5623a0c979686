package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventmanager/internal/delivery/http/controllers"
	"eventmanager/internal/delivery/http/middleware"
	"eventmanager/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	registrationController *controllers.RegistrationController,
	locationController *controllers.LocationController,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Events
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("GET /events", eventController.SearchEvents)
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEvent)
	mux.HandleFunc("PATCH /events/{eventID}", auth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(eventController.DeleteEvent))
	mux.HandleFunc("POST /events/{eventID}/cancel", auth(eventController.CancelEvent))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/registrations", auth(registrationController.Register))
	mux.HandleFunc("DELETE /events/{eventID}/registrations", auth(registrationController.CancelRegistration))
	mux.HandleFunc("GET /events/{eventID}/registrations", auth(registrationController.ListRegistrations))
	mux.HandleFunc("GET /events/{eventID}/registrations/me", auth(registrationController.IsRegistered))

	// Locations
	mux.HandleFunc("POST /locations", auth(locationController.CreateLocation))
	mux.HandleFunc("GET /locations", locationController.ListLocations)
	mux.HandleFunc("GET /locations/{locationID}", locationController.GetLocation)
	mux.HandleFunc("PATCH /locations/{locationID}", auth(locationController.UpdateLocation))
	mux.HandleFunc("DELETE /locations/{locationID}", auth(locationController.DeleteLocation))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
