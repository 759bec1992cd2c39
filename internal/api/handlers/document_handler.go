package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/obinna-dev/drivesage/internal/core/analyzer"
	"github.com/obinna-dev/drivesage/internal/services"
)

type DocumentHandler struct {
	documents *services.DocumentService
	analyzer  *analyzer.Analyzer
}

func NewDocumentHandler(documents *services.DocumentService, an *analyzer.Analyzer) *DocumentHandler {
	return &DocumentHandler{documents: documents, analyzer: an}
}

// GetDocuments returns the cached document list for the user.
func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := ctx.Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var (
		docs interface{}
		err  error
	)
	if q := r.URL.Query().Get("search"); q != "" {
		docs, err = h.documents.Search(ctx, userID, q)
	} else {
		docs, err = h.documents.List(ctx, userID)
	}
	if err != nil {
		http.Error(w, "failed to list documents", 500)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{"documents": docs})
}

// SyncDocuments refreshes the cached Drive metadata from the provider.
func (h *DocumentHandler) SyncDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := ctx.Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	docs, err := h.documents.Sync(ctx, userID, "")
	if err != nil {
		http.Error(w, "drive sync failed", 502)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{"documents": docs, "count": len(docs)})
}

// AnalyzeDocument re-analyzes a single document on demand.
func (h *DocumentHandler) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := ctx.Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	docID := chi.URLParam(r, "document_id")
	doc, err := h.documents.Get(ctx, userID, docID)
	if err != nil {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}

	summary, err := h.analyzer.Analyze(ctx, userID, doc)
	if err != nil {
		http.Error(w, "analysis failed", 502)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"document_id":   doc.ID,
		"summary":       summary,
		"last_analyzed": doc.LastAnalyzed,
	})
}

// AnalyzeAll runs the throttled batch re-analysis over the user's stale
// documents and returns the batch report.
func (h *DocumentHandler) AnalyzeAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := ctx.Value("user_id").(string)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	report, err := h.documents.RunBatchAnalysis(ctx, userID)
	if err != nil {
		http.Error(w, "batch analysis aborted", 502)
		return
	}

	json.NewEncoder(w).Encode(report)
}
