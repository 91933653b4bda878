// Package cli provides the command-line interface for siftlog.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/siftlog/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "siftlog",
		Short: "Offline log analysis and detection engine",
		Long: `siftlog is an offline SIEM-style engine for analyzing log files that have
already been exported from their source systems.

It lets you:
  - Import CloudTrail or flat-JSON log files
  - Write and test YAML detection rules against a custom condition language
  - Scan individual log files or your entire imported library for matches,
    with optional sliding-window aggregation
  - Run ad-hoc SQL queries over imported logs

siftlog never connects outbound to any log source; everything it analyzes
must already be on disk.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewRulesCommand())
	rootCmd.AddCommand(commands.NewLogsCommand())
	rootCmd.AddCommand(commands.NewScanCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewTestRuleCommand())
	rootCmd.AddCommand(commands.NewValidateConditionCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewFieldsCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
