// Package gemini provides generation and context-cache adapters using
// the Google Gemini API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/leyrag-labs/leyrag/internal/core/domain"
	"github.com/leyrag-labs/leyrag/internal/core/ports/driven"
)

// Ensure Generator implements the interfaces.
var (
	_ driven.Generator       = (*Generator)(nil)
	_ driven.ContextCacheAPI = (*Generator)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "models/gemini-1.5-pro"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Gemini generation service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL is the API base URL (default: the public Gemini endpoint).
	BaseURL string

	// Model is the generation model (default: models/gemini-1.5-pro).
	Model string

	// Timeout is the per-request timeout (default: 120s).
	Timeout time.Duration
}

// Generator produces answers using the Gemini API. It also exposes the
// cachedContents endpoints so a single client handles both generation
// and server-side context caching.
type Generator struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type textPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []textPart `json:"parts"`
}

// generateRequest is the Gemini generateContent request format.
type generateRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	CachedContent     string          `json:"cachedContent,omitempty"`
}

// generateResponse is the Gemini generateContent response format.
type generateResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

// cachedContentBody is the Gemini cachedContents resource format.
type cachedContentBody struct {
	Name              string          `json:"name,omitempty"`
	Model             string          `json:"model"`
	DisplayName       string          `json:"displayName,omitempty"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents,omitempty"`
	TTL               string          `json:"ttl,omitempty"`
	ExpireTime        time.Time       `json:"expireTime,omitempty"`
}

type cachedContentList struct {
	CachedContents []cachedContentBody `json:"cachedContents"`
	Error          *apiError           `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// NewGenerator creates a new Gemini generation service.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Generator{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Generate produces an answer for the request. When req.CacheID is set
// the request references a server-side cached context and must not
// carry its own system instruction.
func (g *Generator) Generate(ctx context.Context, req driven.GenerateRequest) (string, error) {
	apiReq := generateRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []textPart{{Text: req.Prompt}}},
		},
	}
	if req.CacheID != "" {
		apiReq.CachedContent = req.CacheID
	} else if req.System != "" {
		apiReq.SystemInstruction = &geminiContent{Parts: []textPart{{Text: req.System}}}
	}

	body, status, err := g.do(ctx, http.MethodPost, g.model+":generateContent", apiReq)
	if err != nil {
		return "", err
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if genResp.Error != nil {
		return "", fmt.Errorf("gemini error: %s", genResp.Error.Message)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("gemini error (status %d): %s", status, string(body))
	}
	if len(genResp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: no candidates returned")
	}

	var result strings.Builder
	for _, part := range genResp.Candidates[0].Content.Parts {
		result.WriteString(part.Text)
	}
	return result.String(), nil
}

// Create uploads a cached context and returns the server-assigned id.
func (g *Generator) Create(ctx context.Context, req driven.CreateCacheRequest) (string, error) {
	apiReq := cachedContentBody{
		Model:       req.Model,
		DisplayName: req.DisplayName,
		Contents: []geminiContent{
			{Role: "user", Parts: []textPart{{Text: req.Content}}},
		},
		TTL: fmt.Sprintf("%ds", int(req.TTL.Seconds())),
	}
	if req.System != "" {
		apiReq.SystemInstruction = &geminiContent{Parts: []textPart{{Text: req.System}}}
	}

	body, status, err := g.do(ctx, http.MethodPost, "cachedContents", apiReq)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("gemini error (status %d): %s", status, string(body))
	}

	var created cachedContentBody
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if created.Name == "" {
		return "", fmt.Errorf("gemini: cache created without a name")
	}
	return created.Name, nil
}

// List returns the cached contexts currently live on the server.
func (g *Generator) List(ctx context.Context) ([]driven.RemoteCache, error) {
	body, status, err := g.do(ctx, http.MethodGet, "cachedContents", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("gemini error (status %d): %s", status, string(body))
	}

	var list cachedContentList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if list.Error != nil {
		return nil, fmt.Errorf("gemini error: %s", list.Error.Message)
	}

	caches := make([]driven.RemoteCache, len(list.CachedContents))
	for i, c := range list.CachedContents {
		caches[i] = driven.RemoteCache{
			CacheID:     c.Name,
			DisplayName: c.DisplayName,
			ExpiresAt:   c.ExpireTime,
		}
	}
	return caches, nil
}

// Delete removes a cached context. Deleting a cache the server no
// longer knows returns domain.ErrNotFound.
func (g *Generator) Delete(ctx context.Context, cacheID string) error {
	body, status, err := g.do(ctx, http.MethodDelete, cacheID, nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%w: cache %s", domain.ErrNotFound, cacheID)
	default:
		return fmt.Errorf("gemini error (status %d): %s", status, string(body))
	}
}

// do sends one API request and returns the raw body and status code.
func (g *Generator) do(ctx context.Context, method, path string, reqBody any) ([]byte, int, error) {
	var payload io.Reader = http.NoBody
	if reqBody != nil {
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
		payload = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+"/"+path, payload)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// ModelName returns the name of the generation model being used.
func (g *Generator) ModelName() string {
	return g.model
}

// Ping validates the service is reachable and the API key accepted by
// fetching the model metadata. No inference is run.
func (g *Generator) Ping(ctx context.Context) error {
	body, status, err := g.do(ctx, http.MethodGet, g.model, nil)
	if err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("gemini: API returned status %d: %s", status, string(body))
	}
	return nil
}

// Close releases resources.
func (g *Generator) Close() error {
	return nil
}
