package http

import (
	"net/http"

	"github.com/go-api-registration/internal/config"
	"github.com/go-api-registration/internal/transport/http/handler"
	appmiddleware "github.com/go-api-registration/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	limit := func(next http.Handler) http.Handler { return next }
	if deps.Limiter != nil {
		limit = appmiddleware.RateLimit(deps.Limiter, log)
	}

	healthH := handler.NewHealthHandler()
	regH := handler.NewRegistrationHandler(deps.Registration, log)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.With(limit).Post("/users/searcher", regH.Register)
		r.With(limit).Post("/confirm-email/resend", regH.Resend)
		r.Get("/confirm-email/{token}", regH.Confirm)
	})

	return r
}
