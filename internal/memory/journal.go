// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package memory

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/agent-memory/internal/logging"
	"github.com/pdiddy/agent-memory/pkg/types"
)

// LogJournal writes journal entries as structured log lines instead of
// table rows. It keeps in-process counts so Stats stays meaningful.
type LogJournal struct {
	activities atomic.Int64
	memories   atomic.Int64
	messages   atomic.Int64
}

func (j *LogJournal) RecordActivity(ctx context.Context, a types.Activity) error {
	j.activities.Add(1)
	logging.From(ctx).Info("agent activity",
		"agent_id", a.AgentID,
		"action", a.Action,
		"details", a.Details,
	)
	return nil
}

func (j *LogJournal) RecordCollaboration(ctx context.Context, from, to, topic string) error {
	logging.From(ctx).Info("agent collaboration", "from", from, "to", to, "topic", topic)
	return nil
}

func (j *LogJournal) SaveAnalysis(ctx context.Context, a types.Analysis) (types.Analysis, error) {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()
	j.memories.Add(1)
	logging.From(ctx).Info("analysis stored",
		"id", a.ID,
		"agent_id", a.AgentID,
		"topic", a.Topic,
		"related_research", a.RelatedResearch,
	)
	return a, nil
}

func (j *LogJournal) SaveConversation(ctx context.Context, m types.Message) error {
	j.messages.Add(1)
	logging.From(ctx).Info("conversation turn", "session_id", m.SessionID, "role", m.Role)
	return nil
}

// Stats reports the entries seen by this process. TotalResearch is left
// to the store that embeds the journal.
func (j *LogJournal) Stats(context.Context) (types.Stats, error) {
	return types.Stats{
		TotalMemories:   int(j.memories.Load()),
		TotalMessages:   int(j.messages.Load()),
		TotalActivities: int(j.activities.Load()),
	}, nil
}
