// Package chroma provides a vector index adapter backed by a Chroma
// server over its REST API.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/leyrag-labs/leyrag/internal/core/domain"
	"github.com/leyrag-labs/leyrag/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:8000"
	DefaultCollection = "leyes"
	DefaultTimeout    = 30 * time.Second
)

// Config holds configuration for the Chroma vector index.
type Config struct {
	// BaseURL is the Chroma server URL (default: http://localhost:8000).
	BaseURL string

	// Collection is the collection name (default: leyes).
	Collection string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Index stores law documents and their embeddings in a Chroma
// collection. Document fields travel as scalar metadata; the free-form
// metadata map is JSON-encoded into a single field.
type Index struct {
	client       *http.Client
	baseURL      string
	collection   string
	collectionID string
}

type collectionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type addRequest struct {
	IDs        []string         `json:"ids"`
	Embeddings [][]float32      `json:"embeddings"`
	Metadatas  []map[string]any `json:"metadatas"`
	Documents  []string         `json:"documents"`
}

type queryRequest struct {
	QueryEmbeddings [][]float32 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
	Include         []string    `json:"include"`
}

type queryResponse struct {
	IDs       [][]string         `json:"ids"`
	Metadatas [][]map[string]any `json:"metadatas"`
}

type getRequest struct {
	IDs     []string `json:"ids,omitempty"`
	Include []string `json:"include,omitempty"`
}

type getResponse struct {
	IDs       []string         `json:"ids"`
	Metadatas []map[string]any `json:"metadatas"`
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

// NewIndex connects to the Chroma server, creating the collection when
// it does not yet exist.
func NewIndex(ctx context.Context, cfg Config) (*Index, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	idx := &Index{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		collection: cfg.Collection,
	}

	var coll collectionResponse
	err := idx.call(ctx, http.MethodPost, "/api/v1/collections", map[string]any{
		"name":          cfg.Collection,
		"get_or_create": true,
		"metadata":      map[string]any{"hnsw:space": "cosine"},
	}, &coll)
	if err != nil {
		return nil, fmt.Errorf("chroma: create collection %s: %w", cfg.Collection, err)
	}
	idx.collectionID = coll.ID
	return idx, nil
}

// Save stores or updates a document with its embedding.
func (idx *Index) Save(ctx context.Context, doc domain.LawDocument, embedding []float32) error {
	meta, err := encodeMetadata(doc)
	if err != nil {
		return fmt.Errorf("chroma: encode %s: %w", doc.ID, err)
	}

	req := addRequest{
		IDs:        []string{doc.ID},
		Embeddings: [][]float32{embedding},
		Metadatas:  []map[string]any{meta},
		Documents:  []string{doc.SearchableText()},
	}
	if err := idx.call(ctx, http.MethodPost, idx.collectionPath("/upsert"), req, nil); err != nil {
		return fmt.Errorf("chroma: upsert %s: %w", doc.ID, err)
	}
	return nil
}

// Search returns up to topK documents by descending similarity.
func (idx *Index) Search(ctx context.Context, embedding []float32, topK int) ([]domain.LawDocument, error) {
	if topK <= 0 {
		return nil, nil
	}

	req := queryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        topK,
		Include:         []string{"metadatas"},
	}
	var resp queryResponse
	if err := idx.call(ctx, http.MethodPost, idx.collectionPath("/query"), req, &resp); err != nil {
		return nil, fmt.Errorf("chroma: query: %w", err)
	}
	if len(resp.IDs) == 0 {
		return nil, nil
	}

	docs := make([]domain.LawDocument, 0, len(resp.IDs[0]))
	for i, id := range resp.IDs[0] {
		var meta map[string]any
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			meta = resp.Metadatas[0][i]
		}
		docs = append(docs, decodeMetadata(id, meta))
	}
	return docs, nil
}

// GetByID retrieves a document by id.
func (idx *Index) GetByID(ctx context.Context, id string) (*domain.LawDocument, error) {
	req := getRequest{IDs: []string{id}, Include: []string{"metadatas"}}
	var resp getResponse
	if err := idx.call(ctx, http.MethodPost, idx.collectionPath("/get"), req, &resp); err != nil {
		return nil, fmt.Errorf("chroma: get %s: %w", id, err)
	}
	if len(resp.IDs) == 0 {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}

	var meta map[string]any
	if len(resp.Metadatas) > 0 {
		meta = resp.Metadatas[0]
	}
	doc := decodeMetadata(resp.IDs[0], meta)
	return &doc, nil
}

// Delete removes a document, reporting whether it was present.
func (idx *Index) Delete(ctx context.Context, id string) (bool, error) {
	// Chroma's delete is silent about unknown ids; check first.
	if _, err := idx.GetByID(ctx, id); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}

	if err := idx.call(ctx, http.MethodPost, idx.collectionPath("/delete"), deleteRequest{IDs: []string{id}}, nil); err != nil {
		return false, fmt.Errorf("chroma: delete %s: %w", id, err)
	}
	return true, nil
}

// ListIDs returns all document ids in the collection.
func (idx *Index) ListIDs(ctx context.Context) ([]string, error) {
	var resp getResponse
	if err := idx.call(ctx, http.MethodPost, idx.collectionPath("/get"), getRequest{}, &resp); err != nil {
		return nil, fmt.Errorf("chroma: list: %w", err)
	}
	return resp.IDs, nil
}

// Count returns the number of documents in the collection.
func (idx *Index) Count(ctx context.Context) (int, error) {
	var count int
	if err := idx.call(ctx, http.MethodGet, idx.collectionPath("/count"), nil, &count); err != nil {
		return 0, fmt.Errorf("chroma: count: %w", err)
	}
	return count, nil
}

// Close releases resources.
func (idx *Index) Close() error {
	return nil
}

func (idx *Index) collectionPath(suffix string) string {
	return "/api/v1/collections/" + idx.collectionID + suffix
}

// call sends one JSON request and decodes the response into out when
// out is non-nil.
func (idx *Index) call(ctx context.Context, method, path string, reqBody, out any) error {
	var payload io.Reader = http.NoBody
	if reqBody != nil {
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, idx.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := idx.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// encodeMetadata flattens a document into Chroma's scalar metadata.
func encodeMetadata(doc domain.LawDocument) (map[string]any, error) {
	meta := map[string]any{
		"titulo":    doc.Titulo,
		"url":       doc.URL,
		"file_path": doc.FilePath,
		"summary":   doc.Summary,
	}
	if len(doc.Metadata) > 0 {
		blob, err := json.Marshal(doc.Metadata)
		if err != nil {
			return nil, err
		}
		meta["extra"] = string(blob)
	}
	return meta, nil
}

// decodeMetadata rebuilds a document from Chroma metadata. Unknown or
// malformed fields degrade to zero values.
func decodeMetadata(id string, meta map[string]any) domain.LawDocument {
	doc := domain.LawDocument{ID: id}
	if meta == nil {
		return doc
	}
	if v, ok := meta["titulo"].(string); ok {
		doc.Titulo = v
	}
	if v, ok := meta["url"].(string); ok {
		doc.URL = v
	}
	if v, ok := meta["file_path"].(string); ok {
		doc.FilePath = v
	}
	if v, ok := meta["summary"].(string); ok {
		doc.Summary = v
	}
	if blob, ok := meta["extra"].(string); ok && blob != "" {
		var extra map[string]any
		if err := json.Unmarshal([]byte(blob), &extra); err == nil {
			doc.Metadata = extra
		}
	}
	return doc
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
