// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/agent-memory/internal/httputil"
	"github.com/pdiddy/agent-memory/pkg/types"
)

// DefaultOllamaHost is used when no base URL is configured.
const DefaultOllamaHost = "http://localhost:11434"

// OllamaProvider embeds text with a local Ollama server's /api/embed endpoint.
type OllamaProvider struct {
	Client     *http.Client
	Host       string
	Model      string
	UserAgent  string
	MaxRetries int
}

// NewOllamaProvider creates a provider from cfg.
func NewOllamaProvider(cfg types.EmbeddingConfig) *OllamaProvider {
	host := cfg.BaseURL
	if host == "" {
		host = DefaultOllamaHost
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	model := cfg.Model
	if model == "" || model == DefaultModel {
		model = "nomic-embed-text"
	}
	return &OllamaProvider{
		Client:     &http.Client{Timeout: timeout},
		Host:       strings.TrimRight(host, "/"),
		Model:      model,
		UserAgent:  cfg.UserAgent,
		MaxRetries: 1,
	}
}

// Name returns the provider identifier.
func (p *OllamaProvider) Name() string { return "ollama" }

// ollamaEmbedRequest is the request body for Ollama's /api/embed endpoint.
type ollamaEmbedRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// ollamaEmbedResponse is the response from Ollama's /api/embed endpoint.
type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// Embed posts texts to /api/embed. HTTP 429 responses are retried with
// backoff via httputil.DoWithRetry.
func (p *OllamaProvider) Embed(ctx context.Context, texts []string) ([]types.Embedding, error) {
	body, err := json.Marshal(ollamaEmbedRequest{
		Model:      p.Model,
		Input:      texts,
		Dimensions: types.EmbeddingDimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Host+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, p.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("ollama embed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama embed: status %d", resp.StatusCode)
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d texts", len(result.Embeddings), len(texts))
	}

	out := make([]types.Embedding, len(result.Embeddings))
	for i, v := range result.Embeddings {
		out[i] = v
	}
	return out, nil
}
