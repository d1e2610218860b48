package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lazypower/bananimon/internal/avatar"
	"github.com/lazypower/bananimon/internal/game"
	"github.com/lazypower/bananimon/internal/logger"
)

// Server is the bananimon HTTP API server.
type Server struct {
	engine   *game.Engine
	avatars  *avatar.Generator
	sessions *Sessions
	log      *logger.Logger
	validate *validator.Validate
	router   chi.Router
	version  string
	started  time.Time
}

// New creates a new Server. avatars may be nil, in which case avatar
// generation answers 503.
func New(eng *game.Engine, avatars *avatar.Generator, sessions *Sessions, log *logger.Logger, version string) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		engine:   eng,
		avatars:  avatars,
		sessions: sessions,
		log:      log,
		validate: validator.New(),
		version:  version,
		started:  time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(observe(s.log))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/stages", s.handleStages)
		r.Post("/user/create", s.handleCreateUser)

		r.Group(func(r chi.Router) {
			r.Use(s.sessions.Require)

			r.Post("/user/email", s.handleLinkEmail)
			r.Post("/generate-bananimon", s.handleGenerate)
			r.Post("/bananimon/create", s.handleCreateBananimon)
			r.Get("/bananimon/{id}/activities", s.handleActivities)
			r.Get("/home", s.handleHome)
			r.Post("/care/{action}", s.handleCare)
			r.Post("/rest-schedule", s.handleRestSchedule)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "no such endpoint")
		})
	})

	r.Get("/*", spaHandler())

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.engine.DB.PingContext(r.Context()); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.engine.DB.Path,
		"avatars": s.avatars != nil,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
