// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/agent-memory/internal/agents"
	"github.com/pdiddy/agent-memory/internal/logging"
	"github.com/pdiddy/agent-memory/internal/server"
	"github.com/pdiddy/agent-memory/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question and print the agents' conclusion",
	Long: `Ask routes a single question through the researcher and analyst. The
findings are stored in memory, so asking a related question later surfaces
them under "Related Information from Memory".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.Join(args, " ")

	a, err := openApp(ctx, loadConfig(viper.GetViper()))
	if err != nil {
		return err
	}
	defer a.Close()

	sessionID, _ := cmd.Flags().GetString("session")
	if sessionID == "" {
		sessionID = server.NewSessionID()
	}
	ctx = agents.WithSession(ctx, sessionID)

	saveTurn := func(role, content string) {
		if err := a.backend.SaveConversation(ctx, types.Message{SessionID: sessionID, Role: role, Content: content}); err != nil {
			logging.From(ctx).Warn("saving conversation turn failed", "role", role, "error", err)
		}
	}

	saveTurn(types.RoleUser, query)
	ans, err := a.system.Answer(ctx, query)
	if err != nil {
		return err
	}
	saveTurn(types.RoleAssistant, ans.Conclusion)

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(server.QueryResponse{
			Response:      ans.Conclusion,
			SessionID:     sessionID,
			ResearchCount: ans.ResearchCount,
			MemoryUsed:    ans.MemoryUsed,
			RelatedCount:  ans.RelatedCount,
		})
	}

	fmt.Fprintln(out, ans.Conclusion)
	return nil
}

func init() {
	askCmd.Flags().Bool("json", false, "print the answer as JSON")
	askCmd.Flags().String("session", "", "session ID to record the exchange under (default: a new session)")
	askCmd.Flags().Float64("threshold", 0.6, "minimum similarity (exclusive) for related memory")
	askCmd.Flags().Int("limit", 5, "maximum number of memory matches")

	viper.BindPFlag("memory.threshold", askCmd.Flags().Lookup("threshold"))
	viper.BindPFlag("memory.limit", askCmd.Flags().Lookup("limit"))

	rootCmd.AddCommand(askCmd)
}
