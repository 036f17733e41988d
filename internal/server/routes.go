package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/vooagent/voo/internal/handler"
	"github.com/vooagent/voo/internal/middleware"
)

const apiPrefix = "/api/v1"

func (s *Server) routes(source handler.Inspectable) http.Handler {
	healthH := handler.NewHealthHandler(s.cfg.Version, source)
	inspectH := handler.NewInspectorHandler(source)

	if s.cfg.Token == "" {
		log.Warn().Msg("inspector token not set - transcript is readable by anyone who can reach the address")
	}

	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(chiMiddleware.RealIP)

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(s.cfg.RateLimitPerMinute))
		if s.cfg.Token != "" {
			r.Use(middleware.Auth(s.cfg.Token))
		}

		r.Route(apiPrefix, func(r chi.Router) {
			r.Get("/transcript", inspectH.Transcript)
			r.Get("/tools", inspectH.Tools)
		})
	})

	return r
}
