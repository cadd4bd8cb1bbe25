// Package api serves the support assistant over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driving"
)

// ErrMissingAssistant is returned when the assistant is not provided.
var ErrMissingAssistant = errors.New("api: assistant is required")

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	Assistant driving.Assistant // required
	Retriever driving.Retriever // optional; /v1/retrieve returns 503 without it
}

// Handler serves the HTTP endpoints.
type Handler struct {
	ports    Ports
	log      *zap.Logger
	validate *validator.Validate
}

// NewRouter builds the chi router with the middleware stack and routes.
func NewRouter(ports Ports, log *zap.Logger) (http.Handler, error) {
	if ports.Assistant == nil {
		return nil, ErrMissingAssistant
	}
	if log == nil {
		log = zap.NewNop()
	}

	h := &Handler{
		ports:    ports,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(chimiddleware.Timeout(5 * time.Minute))

	r.Get("/health", h.Health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/chat", h.Chat)
		r.Get("/threads/{id}", h.GetThread)
		r.Delete("/threads/{id}", h.DeleteThread)
		r.Post("/retrieve", h.Retrieve)
	})

	return r, nil
}

// Run serves handler on addr until ctx is cancelled.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
