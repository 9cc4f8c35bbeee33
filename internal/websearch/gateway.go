// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/agent-memory/internal/httputil"
)

const defaultMaxResults = 5

// Gateway queries a search gateway exposing POST /search.
type Gateway struct {
	Client     *http.Client
	BaseURL    string
	Token      string
	UserAgent  string
	MaxResults int
}

// Name returns the searcher identifier.
func (g *Gateway) Name() string { return "gateway" }

type gatewayRequest struct {
	Query      string `json:"query"`
	NumResults int    `json:"num_results"`
}

type gatewayResponse struct {
	Results []gatewayResult `json:"results"`
}

type gatewayResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Search posts the query to the gateway and formats the returned results
// as a findings text. 429 responses are retried.
func (g *Gateway) Search(ctx context.Context, query string) (string, error) {
	n := g.MaxResults
	if n <= 0 {
		n = defaultMaxResults
	}

	body, err := json.Marshal(gatewayRequest{Query: query, NumResults: n})
	if err != nil {
		return "", fmt.Errorf("encoding gateway request: %w", err)
	}

	endpoint := strings.TrimRight(g.BaseURL, "/") + "/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.UserAgent != "" {
		req.Header.Set("User-Agent", g.UserAgent)
	}
	if g.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.Token)
	}

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("search gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search gateway returned HTTP %d", resp.StatusCode)
	}

	var gr gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("parsing search gateway response: %w", err)
	}

	return formatResults(query, gr.Results), nil
}

func formatResults(query string, results []gatewayResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No web results were found for %q.", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Research findings for %q:\n", query)
	for i, r := range results {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, strings.TrimSpace(r.Title))
		if s := strings.TrimSpace(r.Snippet); s != "" {
			fmt.Fprintf(&b, "   %s\n", s)
		}
		if r.URL != "" {
			fmt.Fprintf(&b, "   Source: %s\n", r.URL)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
