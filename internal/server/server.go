// Package server runs the optional inspector HTTP server next to the chat.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vooagent/voo/internal/handler"
)

const DefaultRateLimitPerMinute = 120

// Config configures the inspector
type Config struct {
	Addr               string
	Token              string // empty disables auth
	Version            string
	RateLimitPerMinute int
}

type Server struct {
	cfg  Config
	http *http.Server
}

func New(cfg Config, source handler.Inspectable) (*Server, error) {
	if cfg.Addr == "" {
		return nil, errors.New("inspector address is empty")
	}
	if source == nil {
		return nil, errors.New("inspector needs an agent")
	}
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = DefaultRateLimitPerMinute
	}

	s := &Server{cfg: cfg}
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.routes(source),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run listens until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	log.Info().
		Str("addr", ln.Addr().String()).
		Bool("auth_enabled", s.cfg.Token != "").
		Msg("inspector listening")

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("inspector shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
