// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/agent-memory/internal/logging"
	"github.com/pdiddy/agent-memory/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	Long: `Serve exposes the agents over HTTP:

  POST /api/query   {"query": "...", "session_id": "..."}
  GET  /health
  GET  /api/stats

The service runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := loadConfig(viper.GetViper())

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(cfg.Server.Addr, a.system, a.backend, logging.From(ctx))
	return server.Run(ctx, srv)
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
