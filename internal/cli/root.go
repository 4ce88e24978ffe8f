// Package cli wires the bracketbot command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/bracketbot/config"
)

// Version is set at build time with -ldflags "-X".
var Version = "dev"

// RootConfig holds the persistent flags.
type RootConfig struct {
	ConfigPath string
	DBPath     string
	LogLevel   string
}

// load reads the config file and environment, then applies flags the user
// set explicitly.
func (rc *RootConfig) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(rc.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("db") {
		cfg.Journal.Type = "sqlite"
		cfg.Journal.DBPath = rc.DBPath
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = rc.LogLevel
	}
	return cfg, nil
}

func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}

	cmd := &cobra.Command{
		Use:           "bracketbot",
		Short:         "bracketbot: trend-following bracket order bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&rc.DBPath, "db", "./bracketbot.db", "SQLite journal database")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "info", "Log level: debug|info|warn|error")

	cmd.AddCommand(
		newRunCmd(rc),
		newConfigCmd(rc),
		newCandlesCmd(rc),
		newAccountCmd(rc),
		newJournalCmd(rc),
		newBacktestCmd(rc),
		newVersionCmd(),
	)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bracketbot %s\n", Version)
		},
	}
}

func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
