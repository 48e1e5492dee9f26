package http

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventflow/internal/delivery/http/controllers"
	"eventflow/internal/delivery/http/helpers"
	"eventflow/internal/delivery/http/middleware"
	"eventflow/internal/domain"
)

// Controllers groups the controllers mounted by NewRouter.
type Controllers struct {
	Auth  *controllers.AuthController
	Event *controllers.EventController
	RSVP  *controllers.RSVPController
	User  *controllers.UserController
	AI    *controllers.AIController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(verifier)
	optionalAuth := middleware.OptionalAuth(verifier)
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth
	mux.HandleFunc("POST /api/auth/register", loginLimiter.Wrap(c.Auth.Register))
	mux.HandleFunc("POST /api/auth/login", loginLimiter.Wrap(c.Auth.Login))
	mux.HandleFunc("GET /api/auth/me", requireAuth(c.Auth.Me))

	// Events
	mux.HandleFunc("GET /api/events", c.Event.List)
	mux.HandleFunc("POST /api/events", requireAuth(c.Event.Create))
	mux.HandleFunc("GET /api/events/{eventID}", optionalAuth(c.Event.GetByID))
	mux.HandleFunc("PUT /api/events/{eventID}", requireAuth(c.Event.Update))
	mux.HandleFunc("DELETE /api/events/{eventID}", requireAuth(c.Event.Delete))

	// RSVPs
	mux.HandleFunc("POST /api/events/{eventID}/rsvp", requireAuth(c.RSVP.Join))
	mux.HandleFunc("DELETE /api/events/{eventID}/rsvp", requireAuth(c.RSVP.Leave))

	// Users
	mux.HandleFunc("GET /api/users/me/events", requireAuth(c.User.GetMyEvents))
	mux.HandleFunc("PUT /api/users/me", requireAuth(c.User.UpdateMe))

	// AI
	mux.HandleFunc("POST /api/ai/enhance-description", requireAuth(c.AI.EnhanceDescription))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
