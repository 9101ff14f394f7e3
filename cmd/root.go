// Package cmd wires flags and config into the two protocol front ends.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentic-research/sqlite-helper/internal/bridge"
	"github.com/agentic-research/sqlite-helper/internal/config"
	"github.com/agentic-research/sqlite-helper/internal/db"
	"github.com/agentic-research/sqlite-helper/internal/mcpserver"
	"github.com/agentic-research/sqlite-helper/internal/sandbox"
)

var (
	mcpMode       bool
	logLevel      string
	maxRows       int
	timeoutMS     int
	busyTimeoutMS int
	allowedDirs   []string
	configPath    string
)

func init() {
	rootCmd.Flags().BoolVar(&mcpMode, "mcp", false, "Run as an MCP server (JSON-RPC 2.0 over stdio)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level for stderr output (debug, info, warn, error)")
	rootCmd.Flags().IntVar(&maxRows, "max-rows", 1000, "Maximum rows returned per query unless a smaller limit is provided")
	rootCmd.Flags().IntVar(&timeoutMS, "timeout-ms", 30000, "Soft timeout for a single request, in milliseconds (0 disables)")
	rootCmd.Flags().IntVar(&busyTimeoutMS, "busy-timeout-ms", 2000, "SQLite busy timeout for cross-process lock contention, in milliseconds")
	rootCmd.Flags().StringArrayVar(&allowedDirs, "allowed-dir", nil, "Directory allowed to contain database files (repeatable; none disables sandboxing)")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Optional YAML config file; flags override file values")
}

var rootCmd = &cobra.Command{
	Use:   "sqlite-helper",
	Short: "Mediates agent and editor access to SQLite databases",
	Long: `sqlite-helper serializes all access to each SQLite database through one
dedicated worker, enforcing a directory sandbox, read-only restrictions for
the agent tool surface, and row-count pagination limits.

By default it speaks the newline-delimited JSON editor-bridge protocol on
stdio; with --mcp it runs as an MCP server instead.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		config.InitLogging(cfg.LogLevel)

		guard, err := sandbox.NewGuard(cfg.AllowedDirs)
		if err != nil {
			return err
		}
		registry := db.NewRegistry(cfg.BusyTimeout)

		if mcpMode {
			return mcpserver.New(cfg, registry, guard).Run()
		}
		handler := bridge.NewHandler(cfg, registry, guard)
		return handler.Run(context.Background(), os.Stdin, os.Stdout)
	},
}

// resolveConfig layers settings: defaults, then the config file, then any
// flag the user actually set.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("max-rows") {
		cfg.MaxRows = maxRows
	}
	if flags.Changed("timeout-ms") {
		cfg.Timeout = time.Duration(timeoutMS) * time.Millisecond
	}
	if flags.Changed("busy-timeout-ms") {
		cfg.BusyTimeout = time.Duration(busyTimeoutMS) * time.Millisecond
	}
	if flags.Changed("allowed-dir") {
		cfg.AllowedDirs = allowedDirs
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
