// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Activity actions written to the audit journal while a query is processed.
const (
	ActionQueryReceived     = "query_received"
	ActionDelegatingTask    = "delegating_task"
	ActionSearchStarted     = "search_started"
	ActionSearchCompleted   = "search_completed"
	ActionAnalysisStarted   = "analysis_started"
	ActionAnalysisCompleted = "analysis_completed"
	ActionTaskCompleted     = "task_completed"
)

// Activity is one audit entry recorded by an agent role.
type Activity struct {
	AgentID   string         `json:"agent_id" yaml:"agent_id"`
	Action    string         `json:"action" yaml:"action"`
	Details   map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
}

// Analysis is the analyst's stored conclusion for one query.
type Analysis struct {
	ID              string    `json:"id" yaml:"id"`
	AgentID         string    `json:"agent_id" yaml:"agent_id"`
	Topic           string    `json:"topic" yaml:"topic"`
	Content         string    `json:"content" yaml:"content"`
	Confidence      float64   `json:"confidence" yaml:"confidence"`
	RelatedResearch []string  `json:"related_research" yaml:"related_research"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
}

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation turn stored by the serving surface.
type Message struct {
	SessionID string    `json:"session_id" yaml:"session_id"`
	Role      string    `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Stats holds row counts of the memory tables.
type Stats struct {
	TotalResearch   int `json:"total_research" yaml:"total_research"`
	TotalMemories   int `json:"total_memories" yaml:"total_memories"`
	TotalMessages   int `json:"total_messages" yaml:"total_messages"`
	TotalActivities int `json:"total_activities" yaml:"total_activities"`
}
