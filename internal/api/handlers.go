package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/statementworks/recon/internal/common"
	"github.com/statementworks/recon/internal/importer"
	"github.com/statementworks/recon/internal/model"
	"github.com/statementworks/recon/internal/reconcile"
)

// maxImportSize caps uploaded statement files at 16 MiB.
const maxImportSize = 16 << 20

// writeEngineError maps domain errors to HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrStatementIncomplete):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, reconcile.ErrUnknownField),
		errors.Is(err, common.ErrUnsupportedFormat),
		errors.Is(err, common.ErrNoTransactions):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) handleLatestStatement(w http.ResponseWriter, r *http.Request) {
	bank := r.URL.Query().Get("bank")
	currency := r.URL.Query().Get("currency")
	if bank == "" || currency == "" {
		writeError(w, http.StatusBadRequest, "bank and currency are required")
		return
	}

	ctx := r.Context()
	stmt, err := s.store.GetLatestStatement(ctx, bank, currency)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	txns, err := s.store.GetStatementTransactions(ctx, stmt.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	stats, err := s.store.GetStatementStats(ctx, stmt.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"statement":    stmt,
		"transactions": txns,
		"stats":        stats,
	})
}

func (s *Server) handleListStatements(w http.ResponseWriter, r *http.Request) {
	stmts, err := s.store.ListStatements(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"statements": stmts,
		"count":      len(stmts),
	})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer func() { _ = file.Close() }()

	bank := r.FormValue("bank")
	currency := r.FormValue("currency")

	ctx := r.Context()
	parsed, err := importer.Parse(ctx, file, header.Filename, bank, currency)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if parsed.Statement.Bank == "" || parsed.Statement.Currency == "" {
		writeError(w, http.StatusBadRequest, "bank and currency are required")
		return
	}

	result, err := s.engine.ImportStatement(ctx, parsed.Statement, parsed.Transactions)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"statement":         result.Statement,
		"transactions":      result.Transactions,
		"imported":          result.Imported,
		"duplicates":        result.Duplicates,
		"auto_matched":      result.AutoMatched,
		"suggested_matches": result.Suggested,
	})
}

func (s *Server) handleQuickFilters(w http.ResponseWriter, r *http.Request) {
	groups, err := s.engine.QuickFilters(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"filters": groups})
}

func (s *Server) handleCompleteStatement(w http.ResponseWriter, r *http.Request) {
	learned, err := s.engine.CompleteStatement(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"learned_patterns": learned})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Field == "" {
		writeError(w, http.StatusBadRequest, "field is required")
		return
	}

	txn, bulk, err := s.engine.UpdateField(r.Context(), r.PathValue("id"),
		reconcile.Field(req.Field), req.Value)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	resp := map[string]any{"transaction": txn}
	if bulk != nil {
		resp["bulk_opportunity"] = map[string]any{
			"field":         bulk.Field,
			"value":         bulk.Value,
			"key":           bulk.Key,
			"ids":           bulk.IDs,
			"count":         len(bulk.IDs),
			"source_id":     bulk.Source.ID,
			"currency_pair": bulk.SourceCurrencyPair,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs          []string `json:"ids"`
		Field        string   `json:"field"`
		Value        string   `json:"value"`
		SourceID     string   `json:"source_id"`
		CurrencyPair string   `json:"currency_pair"`
		Learn        bool     `json:"learn"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 || req.Field == "" {
		writeError(w, http.StatusBadRequest, "ids and field are required")
		return
	}
	if req.Learn && req.SourceID == "" {
		writeError(w, http.StatusBadRequest, "source_id is required when learn is set")
		return
	}

	action := &reconcile.BulkAction{
		Field:              reconcile.Field(req.Field),
		Value:              req.Value,
		IDs:                req.IDs,
		Source:             model.Transaction{ID: req.SourceID},
		SourceCurrencyPair: req.CurrencyPair,
	}

	result, err := s.engine.BulkApply(r.Context(), action, req.Learn)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	resp := map[string]any{
		"transactions": result.Updated,
		"updated":      len(result.Updated),
	}
	if result.LearnedPattern != nil {
		resp["learned_pattern"] = result.LearnedPattern
	}
	writeJSON(w, http.StatusOK, resp)
}

// transactionAction adapts the engine's single-transaction operations to a
// common handler shape.
func (s *Server) transactionAction(op func(r *http.Request) (*model.Transaction, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txn, err := op(r)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"transaction": txn})
	}
}

func (s *Server) handleConfirmMatch(w http.ResponseWriter, r *http.Request) {
	s.transactionAction(func(r *http.Request) (*model.Transaction, error) {
		return s.engine.ConfirmMatch(r.Context(), r.PathValue("id"))
	})(w, r)
}

func (s *Server) handleRejectMatch(w http.ResponseWriter, r *http.Request) {
	s.transactionAction(func(r *http.Request) (*model.Transaction, error) {
		return s.engine.RejectMatch(r.Context(), r.PathValue("id"))
	})(w, r)
}

func (s *Server) handleApplySuggestion(w http.ResponseWriter, r *http.Request) {
	s.transactionAction(func(r *http.Request) (*model.Transaction, error) {
		return s.engine.ApplySuggestion(r.Context(), r.PathValue("id"))
	})(w, r)
}

func (s *Server) handleCloseSuggestion(w http.ResponseWriter, r *http.Request) {
	s.transactionAction(func(r *http.Request) (*model.Transaction, error) {
		return s.engine.CloseSuggestion(r.Context(), r.PathValue("id"))
	})(w, r)
}

func (s *Server) handleEditMatch(w http.ResponseWriter, r *http.Request) {
	s.transactionAction(func(r *http.Request) (*model.Transaction, error) {
		return s.engine.EditMatch(r.Context(), r.PathValue("id"))
	})(w, r)
}

func (s *Server) handleResetTransaction(w http.ResponseWriter, r *http.Request) {
	s.transactionAction(func(r *http.Request) (*model.Transaction, error) {
		return s.engine.ResetTransaction(r.Context(), r.PathValue("id"))
	})(w, r)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.store.GetCategories(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		ParentID string `json:"parent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	cat, err := s.store.CreateCategory(r.Context(), req.Name, req.ParentID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.store.GetCustomers(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	cust, err := s.store.CreateCustomer(r.Context(), req.Name)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cust)
}
