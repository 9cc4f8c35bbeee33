// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package websearch produces the researcher's current findings for a query,
// either from canned topic summaries or from a search gateway.
package websearch

import (
	"context"
	"net/http"

	"github.com/pdiddy/agent-memory/pkg/types"
)

// Searcher turns a query into a findings text.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string) (string, error)
}

// New returns a Gateway searcher when cfg.GatewayURL is set, otherwise
// the Canned searcher.
func New(cfg types.SearchConfig, token string) Searcher {
	if cfg.GatewayURL == "" {
		return Canned{}
	}
	client := &http.Client{Timeout: cfg.Timeout}
	return &Gateway{
		Client:     client,
		BaseURL:    cfg.GatewayURL,
		Token:      token,
		UserAgent:  cfg.UserAgent,
		MaxResults: cfg.MaxResults,
	}
}
