// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the agent-memory CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/agent-memory/internal/logging"
	"github.com/pdiddy/agent-memory/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the agent-memory CLI.
var rootCmd = &cobra.Command{
	Use:   "agent-memory",
	Short: "Memory-augmented research agents",
	Long: `agent-memory routes questions through a small team of agents. The
researcher gathers findings and stores them with an embedding; the analyst
retrieves related findings from earlier questions and writes a conclusion
that merges current research with past knowledge.

Ask a single question with "ask", run the HTTP service with "serve", and
inspect what has been remembered with "memory".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(viper.GetViper())

		logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
		logging.SetDefault(logger)
		cmd.SetContext(logging.With(cmd.Context(), logger))

		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", "path", f)
		}

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults(viper.GetViper())

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./agent-memory.yaml or ~/.config/agent-memory/config.yaml)")
	pf.String("data-dir", "data", "directory holding the memory database")
	pf.String("driver", "sqlite", "memory store backend: sqlite or chromem")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "console", "log format: console or json")

	viper.BindPFlag("memory.data_dir", pf.Lookup("data-dir"))
	viper.BindPFlag("memory.driver", pf.Lookup("driver"))
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.format", pf.Lookup("log-format"))
}

func initConfig() {
	// A missing .env is not an error.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("agent-memory")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "agent-memory"))
		}
	}

	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			logging.Default().Warn("reading config file", "error", err)
		}
	}
}

// bindEnv maps keys such as memory.data_dir to AGENT_MEMORY_MEMORY_DATA_DIR.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("AGENT_MEMORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Default().Error("command failed", "error", err)
		os.Exit(1)
	}
}
