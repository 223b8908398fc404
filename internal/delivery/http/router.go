package http

import (
	"log/slog"
	"net/http"

	"eventmanager/internal/delivery/http/controllers"
	"eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/delivery/http/middleware"
	"eventmanager/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig carries what NewRouter needs beyond the controllers.
type RouterConfig struct {
	Verifier       domain.TokenVerifier
	Localizer      domain.MessageLocalizer
	Logger         *slog.Logger
	AllowedOrigins []string
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(courtesyController *controllers.CourtesyController, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(cfg.Verifier, cfg.Localizer, cfg.Logger)

	// Courtesies
	mux.HandleFunc("POST /events/{eventID}/courtesies", auth(courtesyController.Grant))
	mux.HandleFunc("POST /events/{eventID}/courtesies/speakers", auth(courtesyController.GrantSpeakerCourtesies))
	mux.HandleFunc("GET /events/{eventID}/courtesies", auth(courtesyController.ListByEvent))
	mux.HandleFunc("GET /events/{eventID}/courtesies/stats", auth(courtesyController.Stats))
	mux.HandleFunc("GET /persons/{personID}/courtesies", auth(courtesyController.ListByPerson))
	mux.HandleFunc("GET /courtesies/{courtesyID}", auth(courtesyController.Get))
	mux.HandleFunc("POST /courtesies/{courtesyID}/cancel", auth(courtesyController.Cancel))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return middleware.LoggingMiddleware(cfg.Logger, middleware.CORS(cfg.AllowedOrigins, mux))
}
