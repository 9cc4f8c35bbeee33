// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/agent-memory/pkg/types"
)

func filled(v float64) []float64 {
	out := make([]float64, types.EmbeddingDimensions)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestOllamaProviderEmbed(t *testing.T) {
	var got ollamaEmbedRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(ollamaEmbedResponse{
			Embeddings: [][]float64{filled(0.1), filled(0.2)},
		})
	}))
	defer ts.Close()

	p := NewOllamaProvider(types.EmbeddingConfig{BaseURL: ts.URL + "/", Model: "all-minilm"})
	vecs, err := p.Embed(context.Background(), []string{"one", "two"})
	require.NoError(t, err)

	assert.Equal(t, "all-minilm", got.Model)
	assert.Equal(t, []string{"one", "two"}, got.Input)
	assert.Equal(t, types.EmbeddingDimensions, got.Dimensions)
	require.Len(t, vecs, 2)
	assert.Equal(t, types.Embedding(filled(0.2)), vecs[1])
}

func TestOllamaProviderErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr: "status 500",
		},
		{
			name: "count mismatch",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				json.NewEncoder(w).Encode(ollamaEmbedResponse{})
			},
			wantErr: "0 embeddings for 1 texts",
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("{"))
			},
			wantErr: "decode embed response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			p := NewOllamaProvider(types.EmbeddingConfig{BaseURL: ts.URL})
			_, err := p.Embed(context.Background(), []string{"text"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGeneratorFallsBackWhenOllamaUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := ts.URL
	ts.Close()

	g := New(NewOllamaProvider(types.EmbeddingConfig{BaseURL: url}))
	assert.Equal(t, Deterministic("memory search"), g.Embed(context.Background(), "memory search"))
}

func TestOpenAIProviderEmbed(t *testing.T) {
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "text-embedding-3-small",
			"data": []map[string]any{
				{"object": "embedding", "index": 1, "embedding": filled(0.5)},
				{"object": "embedding", "index": 0, "embedding": filled(0.25)},
			},
			"usage": map[string]any{"prompt_tokens": 2, "total_tokens": 2},
		})
	}))
	defer ts.Close()

	p := NewOpenAIProvider(types.EmbeddingConfig{APIKey: "sk-test", BaseURL: ts.URL + "/"})
	vecs, err := p.Embed(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, body["model"])
	assert.EqualValues(t, types.EmbeddingDimensions, body["dimensions"])
	require.Len(t, vecs, 2)
	assert.Equal(t, 0.25, vecs[0][0])
	assert.Equal(t, 0.5, vecs[1][0])
}

func TestOpenAIProviderFailureFallsBack(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid key","type":"invalid_request_error"}}`))
	}))
	defer ts.Close()

	p := NewOpenAIProvider(types.EmbeddingConfig{APIKey: "bad", BaseURL: ts.URL + "/"})
	_, err := p.Embed(context.Background(), []string{"x"})
	require.Error(t, err)

	g := New(p)
	assert.Equal(t, Deterministic("x"), g.Embed(context.Background(), "x"))
}

func TestCachedProviderServesRepeats(t *testing.T) {
	inner := &stubProvider{vecs: basisVectors}
	c, err := NewCachedProvider(inner, 64)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	first, err := c.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	second, err := c.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.calls.Load())
	assert.Equal(t, "stub", c.Name())
}

func TestCachedProviderForwardsMisses(t *testing.T) {
	var seen atomic.Value
	inner := &stubProvider{vecs: func(texts []string) []types.Embedding {
		seen.Store(append([]string(nil), texts...))
		return basisVectors(texts)
	}}
	c, err := NewCachedProvider(inner, 64)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	_, err = c.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)

	got, err := c.Embed(context.Background(), []string{"b", "a", "c"})
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "c"}, seen.Load())
	require.Len(t, got, 3)
	assert.Equal(t, basisVectors([]string{"a"})[0], got[1])
}

func TestCachedProviderPropagatesErrors(t *testing.T) {
	c, err := NewCachedProvider(&stubProvider{err: assert.AnError}, 8)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	_, err = c.Embed(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, assert.AnError)
}
