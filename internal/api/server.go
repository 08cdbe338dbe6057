// Package api exposes the reconciliation engine over HTTP for the web
// frontend.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/statementworks/recon/internal/engine"
	"github.com/statementworks/recon/internal/service"
)

// Server serves the reconciliation REST API.
type Server struct {
	engine *engine.Engine
	store  service.Storage
	http   *http.Server
}

// NewServer creates a server listening on addr.
func NewServer(addr string, eng *engine.Engine, store service.Storage) *Server {
	s := &Server{
		engine: eng,
		store:  store,
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           recovery(requestLogger(cors(s.routes()))),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/statements/latest", s.handleLatestStatement)
	mux.HandleFunc("GET /api/statements", s.handleListStatements)
	mux.HandleFunc("POST /api/statements/import", s.handleImport)
	mux.HandleFunc("GET /api/statements/{id}/filters", s.handleQuickFilters)
	mux.HandleFunc("POST /api/statements/{id}/complete", s.handleCompleteStatement)

	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("POST /api/transactions/bulk", s.handleBulkUpdate)
	mux.HandleFunc("POST /api/transactions/{id}/confirm-match", s.handleConfirmMatch)
	mux.HandleFunc("POST /api/transactions/{id}/reject-match", s.handleRejectMatch)
	mux.HandleFunc("POST /api/transactions/{id}/apply-suggestion", s.handleApplySuggestion)
	mux.HandleFunc("POST /api/transactions/{id}/close-suggestion", s.handleCloseSuggestion)
	mux.HandleFunc("POST /api/transactions/{id}/edit-match", s.handleEditMatch)
	mux.HandleFunc("POST /api/transactions/{id}/reset", s.handleResetTransaction)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/customers", s.handleListCustomers)
	mux.HandleFunc("POST /api/customers", s.handleCreateCustomer)

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}

// Handler returns the fully wrapped HTTP handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("shutting down API server")
	return s.http.Shutdown(shutdownCtx)
}
