package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/blackmichael/forum-feeds/internal/config"
	"github.com/blackmichael/forum-feeds/internal/domain"
)

// Server is the HTTP server that exposes the started-threads query.
type Server struct {
	cfg        *config.Config
	service    *domain.OriginService
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer creates a new HTTP server around the given origin service.
func NewServer(cfg *config.Config, service *domain.OriginService, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		service: service,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/users/{user}/started-threads", s.handleStartedThreads)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      withLogging(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for HTTP requests. It blocks until the server is
// shut down or an error occurs.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// originMatchResponse mirrors domain.OriginMatch on the wire. post_id is
// serialized even though it is never set, so consumers see an explicit null.
type originMatchResponse struct {
	ThreadID string  `json:"thread_id"`
	PostID   *string `json:"post_id"`
	Source   string  `json:"source"`
}

func (s *Server) handleStartedThreads(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user")

	matches, err := s.service.FindOriginThreads(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidUserID) {
			writeError(w, http.StatusBadRequest, "InvalidRequest", "user id must not be empty")
			return
		}
		s.logger.Error("failed to resolve started threads",
			"user_id", userID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to resolve started threads")
		return
	}

	resp := make([]originMatchResponse, len(matches))
	for i, m := range matches {
		resp[i] = originMatchResponse{
			ThreadID: m.ThreadID,
			PostID:   m.PostID,
			Source:   m.Source,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"matches": resp})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, map[string]string{
		"error":   errType,
		"message": message,
	})
}

func withLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
