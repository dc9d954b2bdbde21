package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"planmeet/internal/delivery/http/controllers"
	"planmeet/internal/delivery/http/middleware"
	"planmeet/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Every /api/events route requires authentication; auth runs before any
// request parsing so unauthenticated calls always get a 401.
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	registry *prometheus.Registry,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	participantController *controllers.ParticipantController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)
	metrics := middleware.NewMetrics(registry)

	handle := func(pattern string, handler http.HandlerFunc) {
		mux.HandleFunc(pattern, metrics.Wrap(pattern, handler))
	}

	// Auth
	handle("POST /api/auth/signup", authController.SignUp)
	handle("POST /api/auth/login", authController.Login)
	handle("POST /api/auth/logout", authController.Logout)

	// Events
	handle("POST /api/events", auth(eventController.Create))
	handle("GET /api/events", auth(eventController.ListMine))
	handle("GET /api/events/{id}", auth(eventController.GetByID))

	// GET /api/events/invite/{code} shares its shape with the per-event
	// GET subresources below; ServeMux rejects the pair as ambiguous
	// (both match /api/events/invite/participants), so one pattern fans
	// out on the second segment.
	handle("GET /api/events/{id}/{sub}", auth(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "invite" {
			r.SetPathValue("code", r.PathValue("sub"))
			eventController.GetByInviteCode(w, r)
			return
		}
		switch r.PathValue("sub") {
		case "participants":
			participantController.List(w, r)
		case "calendar.ics":
			participantController.Calendar(w, r)
		case "invitations":
			eventController.ListInvitations(w, r)
		default:
			http.NotFound(w, r)
		}
	}))

	// Participants and availability
	handle("POST /api/events/{id}/participants", auth(participantController.Join))
	handle("PUT /api/events/{id}/availability", auth(participantController.UpdateAvailability))

	// Invitations
	handle("POST /api/events/{id}/invitations", auth(eventController.SendInvitations))

	// Ops surface
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
