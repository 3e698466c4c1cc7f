package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/thisarray/xoxo/internal/app"
	"github.com/thisarray/xoxo/internal/logging"
)

// Option configures the HTTP server.
type Option func(*handlers)

// WithLogger sets the logger used for access logs and handler errors.
func WithLogger(l zerolog.Logger) Option {
	return func(h *handlers) { h.log = l }
}

// WithHeartbeat sets how often idle event streams and sockets are pinged.
func WithHeartbeat(d time.Duration) Option {
	return func(h *handlers) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}

// WithDefaults sets the values pre-filled in the new game form.
func WithDefaults(st app.Settings) Option {
	return func(h *handlers) { h.defaults = st }
}

// NewServer wires routes and returns an http.Handler.
func NewServer(s *app.Service, opts ...Option) http.Handler {
	h := &handlers{
		svc:       s,
		tpl:       loadTemplates(),
		log:       zerolog.Nop(),
		heartbeat: 15 * time.Second,
		defaults:  app.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/", h.index)
	r.Get("/healthz", h.health)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Post("/join", h.join)
		r.Post("/play", h.play)
		r.Get("/hint", h.hint)
		r.Get("/board.txt", h.boardText)
		r.Get("/events", h.events)
		r.Get("/ws", h.socket)
	})
	return r
}
