// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"

	"github.com/pdiddy/agent-memory/internal/agents"
	"github.com/pdiddy/agent-memory/internal/embedding"
	"github.com/pdiddy/agent-memory/internal/logging"
	"github.com/pdiddy/agent-memory/internal/memory"
	"github.com/pdiddy/agent-memory/internal/secrets"
	"github.com/pdiddy/agent-memory/internal/websearch"
	"github.com/pdiddy/agent-memory/pkg/types"
)

// app holds the handles a command works with. Close releases them.
type app struct {
	cfg      types.Config
	embedder *embedding.Generator
	backend  memory.Backend
	system   *agents.System
}

// openStore opens only the memory backend, for commands that inspect it.
func openStore(cfg types.Config) (memory.Backend, error) {
	return memory.Open(cfg.Memory)
}

// openApp wires the embedding generator, memory backend and searcher into
// an agent system.
func openApp(ctx context.Context, cfg types.Config) (*app, error) {
	applySecrets(&cfg, loadedSecrets)

	gen, err := embedding.NewFromConfig(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	backend, err := memory.Open(cfg.Memory)
	if err != nil {
		gen.Close()
		return nil, err
	}

	searcher := websearch.New(cfg.Search, secrets.Lookup(loadedSecrets, secrets.SearchGatewayToken))

	logging.From(ctx).Debug("agent system ready",
		"embedding", gen.ProviderName(),
		"driver", cfg.Memory.Driver,
		"search", searcher.Name(),
	)

	return &app{
		cfg:      cfg,
		embedder: gen,
		backend:  backend,
		system:   agents.New(backend, gen, searcher, backend, cfg.Memory),
	}, nil
}

func (a *app) Close() error {
	return errors.Join(a.backend.Close(), a.embedder.Close())
}
