// Package httpapi exposes the query pipeline over a JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/leyrag-labs/leyrag/internal/core/domain"
	"github.com/leyrag-labs/leyrag/internal/core/ports/driven"
	"github.com/leyrag-labs/leyrag/internal/core/ports/driving"
	"github.com/leyrag-labs/leyrag/internal/core/services"
	"github.com/leyrag-labs/leyrag/internal/logger"
)

// Default configuration values.
const (
	DefaultAddr         = "127.0.0.1:8080"
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 120 * time.Second

	// maxRequestBytes bounds the accepted request body size.
	maxRequestBytes = 1 << 20
)

// Config holds configuration for the HTTP API server.
type Config struct {
	// Addr is the listen address (default: 127.0.0.1:8080).
	Addr string

	// ReadTimeout bounds request reading (default: 15s).
	ReadTimeout time.Duration

	// WriteTimeout bounds response writing. Generation can be slow, so
	// the default is generous (default: 120s).
	WriteTimeout time.Duration
}

// Server serves the chat and document endpoints.
type Server struct {
	query    driving.QueryService
	sessions *services.SessionStore
	index    driven.VectorIndex
	server   *http.Server
}

// NewServer creates an HTTP API server around the query service.
func NewServer(
	query driving.QueryService,
	sessions *services.SessionStore,
	index driven.VectorIndex,
	cfg Config,
) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	s := &Server{
		query:    query,
		sessions: sessions,
		index:    index,
	}
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/chat", s.handleChat)
	mux.HandleFunc("GET /api/v1/documents", s.handleListDocuments)
	mux.HandleFunc("GET /api/v1/documents/{id}", s.handleGetDocument)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// ListenAndServe runs the server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

// chatRequest is the /api/v1/chat request body.
type chatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Query     string `json:"query"`
	LawID     string `json:"law_id,omitempty"`
	TopK      int    `json:"top_k,omitempty"`
}

// chatResponse is the /api/v1/chat response body.
type chatResponse struct {
	SessionID      string        `json:"session_id"`
	Answer         string        `json:"answer"`
	Documents      []documentRef `json:"documents"`
	Confidence     float64       `json:"confidence"`
	ResponseTimeMs float64       `json:"response_time_ms"`
	CacheUsed      bool          `json:"cache_used"`
	Failure        string        `json:"failure,omitempty"`
}

type documentRef struct {
	ID     string `json:"id"`
	Titulo string `json:"titulo"`
	URL    string `json:"url,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session := s.sessions.GetOrCreate(req.SessionID)
	s.sessions.AddMessage(session, domain.RoleUser, req.Query)

	var result domain.QueryResult
	if req.LawID != "" {
		result = s.query.QueryLaw(r.Context(), req.Query, req.LawID)
	} else {
		result = s.query.Query(r.Context(), req.Query, req.TopK)
	}

	s.sessions.AddMessage(session, domain.RoleAssistant, result.Answer)
	if len(result.Documents) > 0 {
		s.sessions.SetLastLaw(session, result.Documents[0].ID)
	}

	refs := make([]documentRef, len(result.Documents))
	for i, doc := range result.Documents {
		refs[i] = documentRef{ID: doc.ID, Titulo: doc.Titulo, URL: doc.URL}
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:      session.SessionID,
		Answer:         result.Answer,
		Documents:      refs,
		Confidence:     result.Confidence,
		ResponseTimeMs: result.ResponseTimeMs,
		CacheUsed:      result.CacheUsed,
		Failure:        failureLabel(result.Failure),
	})
}

// documentsResponse is the /api/v1/documents response body.
type documentsResponse struct {
	Count     int           `json:"count"`
	Documents []documentRef `json:"documents"`
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	ids, err := s.index.ListIDs(r.Context())
	if err != nil {
		logger.Error("List documents failed: %v", err)
		writeError(w, http.StatusInternalServerError, "could not list documents")
		return
	}

	refs := make([]documentRef, 0, len(ids))
	for _, id := range ids {
		doc, err := s.index.GetByID(r.Context(), id)
		if err != nil {
			logger.Warn("Document %s listed but not loadable: %v", id, err)
			refs = append(refs, documentRef{ID: id})
			continue
		}
		refs = append(refs, documentRef{ID: doc.ID, Titulo: doc.Titulo, URL: doc.URL})
	}

	writeJSON(w, http.StatusOK, documentsResponse{Count: len(refs), Documents: refs})
}

// documentDetail is the /api/v1/documents/{id} response body.
type documentDetail struct {
	ID       string         `json:"id"`
	Titulo   string         `json:"titulo"`
	URL      string         `json:"url,omitempty"`
	Summary  string         `json:"summary,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, err := s.index.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("document %s not found", id))
			return
		}
		logger.Error("Get document %s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "could not load document")
		return
	}

	writeJSON(w, http.StatusOK, documentDetail{
		ID:       doc.ID,
		Titulo:   doc.Titulo,
		URL:      doc.URL,
		Summary:  doc.Summary,
		Metadata: doc.Metadata,
	})
}

// healthResponse is the /health response body.
type healthResponse struct {
	Status         string `json:"status"`
	Documents      int    `json:"documents"`
	ActiveSessions int    `json:"active_sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.index.Count(r.Context())
	if err != nil {
		logger.Warn("Health count failed: %v", err)
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:         "ok",
		Documents:      count,
		ActiveSessions: s.sessions.Count(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Encode response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// failureLabel maps a failure kind to its wire label. Successful
// results produce an empty label so the field is omitted.
func failureLabel(kind domain.FailureKind) string {
	return string(kind)
}
