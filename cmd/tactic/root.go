package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/tactic/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "tactic",
	Short: "tactic runs hierarchical goal-driven agents on a navigation graph",
	Long: `tactic loads a scenario (a navigation graph plus agents and their evaluators),
advances it tick by tick with time-sliced A*/Dijkstra path searches, and exposes
it through a CLI, an HTTP API and an MCP server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("scenario", "s", "", "Scenario file (.yaml, .yml or .json)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}

// newLogger builds the logger selected by the persistent flags.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	levelName, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	if format != "text" && format != "json" {
		return nil, fmt.Errorf("invalid log format %q: use text or json", format)
	}
	return logging.New(level, format), nil
}

// scenarioPath returns --scenario, or the first positional argument.
func scenarioPath(cmd *cobra.Command, args []string) string {
	path, _ := cmd.Flags().GetString("scenario")
	if path == "" && len(args) > 0 {
		path = args[0]
	}
	return path
}
