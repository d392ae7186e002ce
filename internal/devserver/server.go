package devserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jwebster45206/text-adventure-client/pkg/protocol"
	"github.com/jwebster45206/text-adventure-client/pkg/state"
)

const maxRequestBytes = 64 << 10

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Screens   int       `json:"screens"`
}

type Server struct {
	world  *World
	logger *slog.Logger
}

func NewServer(world *World, logger *slog.Logger) *Server {
	return &Server{world: world, logger: logger}
}

// Routes mounts the API on a chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Get("/screen/{id}", s.getScreen)
	r.Post("/command", s.postCommand)
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   "text-adventure-devserver",
		Screens:   s.world.ScreenCount(),
	})
}

func (s *Server) getScreen(w http.ResponseWriter, r *http.Request) {
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid screen id")
		return
	}

	screen, ok := s.world.Screen(id)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, "screen not found")
		return
	}
	s.writeJSON(w, r, http.StatusOK, screen)
}

func (s *Server) postCommand(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req protocol.CommandRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	gs, err := state.Decode(req.State)
	if err != nil {
		s.logger.Warn("Rejected state token", "error", err, "request_id", middleware.GetReqID(r.Context()))
		s.writeError(w, r, http.StatusBadRequest, "invalid state token")
		return
	}

	outcome, err := s.world.Handle(req.ContextScreenID, req.Command, gs)
	if errors.Is(err, ErrUnknownScreen) {
		s.writeError(w, r, http.StatusBadRequest, "unknown context screen")
		return
	}
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	s.logger.Debug("Command handled",
		"screen_id", req.ContextScreenID,
		"command", req.Command,
		"outcome", outcome.Kind().String(),
		"request_id", middleware.GetReqID(r.Context()))
	s.writeJSON(w, r, http.StatusOK, outcome)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Error encoding response",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, r, status, protocol.ErrorResponse{Error: msg})
}

// requestLogger logs one line per request with its status and duration.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
