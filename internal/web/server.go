// Package web serves search sessions over HTTP and WebSocket.
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"coverwall/internal/logger"
)

const requestTimeout = 30 * time.Second

type Server struct {
	sessions *SessionManager
	logger   *logger.Logger
	validate *validator.Validate
}

func NewServer(sessions *SessionManager, log *logger.Logger) *Server {
	return &Server{
		sessions: sessions,
		logger:   log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(s.loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/ws", s.handleWebSocket)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/search", s.handleSearch)
			r.Post("/select", s.handleSelect)
			r.Post("/cancel", s.handleCancel)
		})
	})

	return r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		zl := s.logger.Zerolog()
		zl.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}
