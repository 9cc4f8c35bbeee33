// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the agent pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pdiddy/agent-memory/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// New builds the HTTP server with the query, health and stats routes.
func New(addr string, answerer Answerer, journal Journal, logger *slog.Logger) *http.Server {
	h := NewHandlers(answerer, journal)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/query", h.HandleQuery)
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET /api/stats", h.HandleStats)

	return &http.Server{
		Addr:              addr,
		Handler:           withLogger(mux, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func Run(ctx context.Context, srv *http.Server) error {
	logger := logging.From(ctx)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// withLogger carries logger in each request context and logs completed
// requests at debug level.
func withLogger(next http.Handler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rl := logger.With("method", r.Method, "path", r.URL.Path)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(logging.With(r.Context(), rl)))

		rl.Debug("request served", "status", rec.status, "duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
