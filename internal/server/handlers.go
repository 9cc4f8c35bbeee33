// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/agent-memory/internal/agents"
	"github.com/pdiddy/agent-memory/internal/logging"
	"github.com/pdiddy/agent-memory/pkg/types"
)

const maxBodyBytes = 1 << 20

// Answerer runs one query through the agents.
type Answerer interface {
	Answer(ctx context.Context, query string) (types.Answer, error)
}

// Journal stores conversation turns and reports table counts.
type Journal interface {
	SaveConversation(ctx context.Context, m types.Message) error
	Stats(ctx context.Context) (types.Stats, error)
}

type Handlers struct {
	answerer Answerer
	journal  Journal
	now      func() time.Time
}

func NewHandlers(answerer Answerer, journal Journal) *Handlers {
	return &Handlers{
		answerer: answerer,
		journal:  journal,
		now:      time.Now,
	}
}

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// QueryResponse is the reply to POST /api/query.
type QueryResponse struct {
	Response      string `json:"response"`
	SessionID     string `json:"session_id"`
	ResearchCount int    `json:"research_count"`
	MemoryUsed    bool   `json:"memory_used"`
	RelatedCount  int    `json:"related_count"`
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return "session_" + uuid.NewString()
}

func (h *Handlers) HandleQuery(w http.ResponseWriter, r *http.Request) {
	logger := logging.From(r.Context())

	var req QueryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing field 'query'"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = NewSessionID()
	}

	ctx := agents.WithSession(r.Context(), req.SessionID)
	h.saveTurn(ctx, req.SessionID, types.RoleUser, req.Query)

	ans, err := h.answerer.Answer(ctx, req.Query)
	if err != nil {
		logger.Error("query failed", "session_id", req.SessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.saveTurn(ctx, req.SessionID, types.RoleAssistant, ans.Conclusion)

	writeJSON(w, http.StatusOK, QueryResponse{
		Response:      ans.Conclusion,
		SessionID:     req.SessionID,
		ResearchCount: ans.ResearchCount,
		MemoryUsed:    ans.MemoryUsed,
		RelatedCount:  ans.RelatedCount,
	})
}

func (h *Handlers) saveTurn(ctx context.Context, sessionID, role, content string) {
	err := h.journal.SaveConversation(ctx, types.Message{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
	})
	if err != nil {
		logging.From(ctx).Warn("saving conversation turn failed", "role", role, "error", err)
	}
}

func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.journal.Stats(r.Context())
	if err != nil {
		logging.From(r.Context()).Error("stats failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
