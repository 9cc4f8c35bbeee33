// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/agent-memory/internal/memory"
	"github.com/pdiddy/agent-memory/pkg/types"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect stored research (list, export, stats)",
	Long: `Memory inspects the research findings the agents have stored. Findings
are only ever appended; nothing here modifies them.`,
}

// --- list subcommand ---

var memoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored research in creation order",
	Args:  cobra.NoArgs,
	RunE:  runMemoryList,
}

func runMemoryList(cmd *cobra.Command, args []string) error {
	store, err := openStore(loadConfig(viper.GetViper()))
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := memory.Entries(cmd.Context(), store)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatListOutput(cmd.OutOrStdout(), entries, jsonOutput)
}

func formatListOutput(w io.Writer, entries []memory.ExportEntry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No research stored.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-36s  %-40s  %s\n", "#", "ID", "Query", "Created")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, e := range entries {
		query := e.Query
		if r := []rune(query); len(r) > 40 {
			query = string(r[:37]) + "..."
		}
		fmt.Fprintf(w, "%-4d  %-36s  %-40s  %s\n",
			i+1, e.ID, query, e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}

	fmt.Fprintf(w, "\n%d items\n", len(entries))
	return nil
}

// --- export subcommand ---

var memoryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored research to YAML or JSON",
	Long: `Export writes every stored research item, without embeddings, to
<data-dir>/export.yaml or <data-dir>/export.json.`,
	Args: cobra.NoArgs,
	RunE: runMemoryExport,
}

func runMemoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	cfg := loadConfig(viper.GetViper())

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	path, err := memory.Export(cmd.Context(), store, cfg.Memory.DataDir, format)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

// --- stats subcommand ---

var memoryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print row counts of the memory tables",
	Long: `Stats prints the number of stored research items, analyst memories,
conversation messages and agent activities.

With the sqlite driver every count is read from the database. With the
chromem driver only the research count is persisted; the journal counts
are kept per process and therefore read 0 from a fresh invocation.`,
	Args: cobra.NoArgs,
	RunE:  runMemoryStats,
}

func runMemoryStats(cmd *cobra.Command, args []string) error {
	store, err := openStore(loadConfig(viper.GetViper()))
	if err != nil {
		return err
	}
	defer store.Close()

	st, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatStatsOutput(cmd.OutOrStdout(), st, jsonOutput)
}

func formatStatsOutput(w io.Writer, st types.Stats, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	fmt.Fprintf(w, "research:   %d\n", st.TotalResearch)
	fmt.Fprintf(w, "memories:   %d\n", st.TotalMemories)
	fmt.Fprintf(w, "messages:   %d\n", st.TotalMessages)
	fmt.Fprintf(w, "activities: %d\n", st.TotalActivities)
	return nil
}

func init() {
	memoryListCmd.Flags().Bool("json", false, "output items as JSON")
	memoryExportCmd.Flags().String("format", memory.FormatYAML, "export format: yaml or json")
	memoryStatsCmd.Flags().Bool("json", false, "output counts as JSON")

	memoryCmd.AddCommand(memoryListCmd)
	memoryCmd.AddCommand(memoryExportCmd)
	memoryCmd.AddCommand(memoryStatsCmd)

	rootCmd.AddCommand(memoryCmd)
}
