// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

// ExportEntry holds a research item for export. Embeddings are omitted.
type ExportEntry struct {
	ID         string    `json:"id" yaml:"id"`
	AgentID    string    `json:"agent_id" yaml:"agent_id"`
	Query      string    `json:"query" yaml:"query"`
	Findings   string    `json:"findings" yaml:"findings"`
	Source     string    `json:"source" yaml:"source"`
	Confidence float64   `json:"confidence" yaml:"confidence"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Export writes every item of s to dir/export.<format> and returns the
// path written.
func Export(ctx context.Context, s Store, dir, format string) (string, error) {
	switch format {
	case FormatYAML:
		return ExportYAML(ctx, s, dir)
	case FormatJSON:
		return ExportJSON(ctx, s, dir)
	default:
		return "", fmt.Errorf("unknown export format %q (want yaml or json)", format)
	}
}

// ExportYAML writes the store to dir/export.yaml.
func ExportYAML(ctx context.Context, s Store, dir string) (string, error) {
	entries, err := Entries(ctx, s)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeExport(dir, "export.yaml", data)
}

// ExportJSON writes the store to dir/export.json.
func ExportJSON(ctx context.Context, s Store, dir string) (string, error) {
	entries, err := Entries(ctx, s)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return writeExport(dir, "export.json", data)
}

func writeExport(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Entries returns every item of s in creation order, without embeddings.
func Entries(ctx context.Context, s Store) ([]ExportEntry, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing items for export: %w", err)
	}

	entries := make([]ExportEntry, len(items))
	for i, it := range items {
		entries[i] = ExportEntry{
			ID:         it.ID,
			AgentID:    it.AgentID,
			Query:      it.Query,
			Findings:   it.Findings,
			Source:     it.Source,
			Confidence: it.Confidence,
			CreatedAt:  it.CreatedAt,
		}
	}
	return entries, nil
}
