package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leyrag-labs/leyrag/internal/adapters/driven/vector/memory"
	"github.com/leyrag-labs/leyrag/internal/core/domain"
	"github.com/leyrag-labs/leyrag/internal/core/services"
)

// stubQueryService implements driving.QueryService with canned results.
type stubQueryService struct {
	result    domain.QueryResult
	lawResult domain.QueryResult
	lastQuery string
	lastTopK  int
	lastLawID string
}

func (s *stubQueryService) Query(_ context.Context, query string, topK int) domain.QueryResult {
	s.lastQuery = query
	s.lastTopK = topK
	return s.result
}

func (s *stubQueryService) QueryLaw(_ context.Context, query, lawID string) domain.QueryResult {
	s.lastQuery = query
	s.lastLawID = lawID
	return s.lawResult
}

func testServer(t *testing.T, query *stubQueryService) (*Server, *memory.Index, *services.SessionStore) {
	t.Helper()
	index := memory.NewIndex()
	sessions := services.NewSessionStore(30 * time.Minute)
	server := NewServer(query, sessions, index, Config{})
	return server, index, sessions
}

func postChat(t *testing.T, handler http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_Chat_Success(t *testing.T) {
	query := &stubQueryService{result: domain.QueryResult{
		Answer:         "La ley establece un régimen de asignaciones [ley_24714:L1].",
		Documents:      []domain.LawDocument{{ID: "ley_24714", Titulo: "Ley 24714", URL: "https://example.org"}},
		Confidence:     1.0,
		ResponseTimeMs: 42,
	}}
	server, _, _ := testServer(t, query)

	rec := postChat(t, server.Handler(), map[string]any{"query": "¿Qué dice la ley?", "top_k": 3})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Regexp(t, `^session_[0-9a-f]{12}$`, resp.SessionID)
	assert.Contains(t, resp.Answer, "asignaciones")
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, "ley_24714", resp.Documents[0].ID)
	assert.Equal(t, 1.0, resp.Confidence)
	assert.Empty(t, resp.Failure)

	assert.Equal(t, "¿Qué dice la ley?", query.lastQuery)
	assert.Equal(t, 3, query.lastTopK)
}

func TestServer_Chat_ReportsFractionalLatency(t *testing.T) {
	query := &stubQueryService{result: domain.QueryResult{
		Answer:         "respuesta",
		Confidence:     1.0,
		ResponseTimeMs: 12.75,
	}}
	server, _, _ := testServer(t, query)

	rec := postChat(t, server.Handler(), map[string]any{"query": "hola"})

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 12.75, resp.ResponseTimeMs)
}

func TestServer_Chat_SessionContinuity(t *testing.T) {
	query := &stubQueryService{result: domain.QueryResult{Answer: "respuesta", Confidence: 1.0}}
	server, _, sessions := testServer(t, query)
	handler := server.Handler()

	rec := postChat(t, handler, map[string]any{"query": "primera"})
	var first chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	rec = postChat(t, handler, map[string]any{"query": "segunda", "session_id": first.SessionID})
	var second chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, 1, sessions.Count())

	// Both turns of both exchanges are in one history.
	session := sessions.GetOrCreate(first.SessionID)
	assert.Len(t, session.History, 4)
}

func TestServer_Chat_UnknownSessionGetsFreshID(t *testing.T) {
	query := &stubQueryService{result: domain.QueryResult{Answer: "respuesta"}}
	server, _, _ := testServer(t, query)

	rec := postChat(t, server.Handler(), map[string]any{"query": "hola", "session_id": "session_000000000000"})

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEqual(t, "session_000000000000", resp.SessionID)
}

func TestServer_Chat_TracksLastLaw(t *testing.T) {
	query := &stubQueryService{result: domain.QueryResult{
		Answer:    "respuesta",
		Documents: []domain.LawDocument{{ID: "ley_24714"}, {ID: "ley_19587"}},
	}}
	server, _, sessions := testServer(t, query)

	rec := postChat(t, server.Handler(), map[string]any{"query": "hola"})
	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	session := sessions.GetOrCreate(resp.SessionID)
	assert.Equal(t, "ley_24714", session.LastLawID)
}

func TestServer_Chat_LawScopedQuery(t *testing.T) {
	query := &stubQueryService{lawResult: domain.QueryResult{Answer: "sobre esa ley"}}
	server, _, _ := testServer(t, query)

	rec := postChat(t, server.Handler(), map[string]any{"query": "hola", "law_id": "ley_24714"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ley_24714", query.lastLawID)
}

func TestServer_Chat_DegradedResultStillOK(t *testing.T) {
	query := &stubQueryService{result: domain.QueryResult{
		Answer:  domain.MsgNoResults,
		Failure: domain.FailureNoResults,
	}}
	server, _, _ := testServer(t, query)

	rec := postChat(t, server.Handler(), map[string]any{"query": "algo rarísimo"})

	// Degraded answers are normal responses, not HTTP errors.
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.MsgNoResults, resp.Answer)
	assert.Equal(t, "no_results", resp.Failure)
}

func TestServer_Chat_InvalidJSON(t *testing.T) {
	server, _, _ := testServer(t, &stubQueryService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ListDocuments(t *testing.T) {
	server, index, _ := testServer(t, &stubQueryService{})
	ctx := context.Background()
	require.NoError(t, index.Save(ctx, domain.LawDocument{ID: "ley_24714", Titulo: "Ley 24714"}, []float32{1}))
	require.NoError(t, index.Save(ctx, domain.LawDocument{ID: "ley_19587", Titulo: "Ley 19587"}, []float32{1}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", http.NoBody)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp documentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "ley_19587", resp.Documents[0].ID)
	assert.Equal(t, "ley_24714", resp.Documents[1].ID)
}

func TestServer_GetDocument(t *testing.T) {
	server, index, _ := testServer(t, &stubQueryService{})
	doc := domain.LawDocument{
		ID:       "ley_24714",
		Titulo:   "Ley 24714",
		URL:      "https://example.org",
		Summary:  "Régimen de asignaciones familiares",
		Metadata: map[string]any{"categoria": "laboral"},
	}
	require.NoError(t, index.Save(context.Background(), doc, []float32{1}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/ley_24714", http.NoBody)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp documentDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Ley 24714", resp.Titulo)
	assert.Equal(t, "Régimen de asignaciones familiares", resp.Summary)
	assert.Equal(t, "laboral", resp.Metadata["categoria"])
}

func TestServer_GetDocument_NotFound(t *testing.T) {
	server, _, _ := testServer(t, &stubQueryService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/ley_999", http.NoBody)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Health(t *testing.T) {
	server, index, sessions := testServer(t, &stubQueryService{})
	require.NoError(t, index.Save(context.Background(), domain.LawDocument{ID: "ley_1"}, []float32{1}))
	sessions.GetOrCreate("")

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Documents)
	assert.Equal(t, 1, resp.ActiveSessions)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	server, _, _ := testServer(t, &stubQueryService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat", http.NoBody)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
