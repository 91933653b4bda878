package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/siftlog/pkg/appconfig"
)

// NewConfigCommand creates the "config" command group covering get_config,
// save_config, get_rules_directory, set_rules_directory, set_logs_directory,
// add_recent_log_file and clear_recent_files.
func NewConfigCommand() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and update siftlog's configuration",
	}
	cmd.PersistentFlags().StringVar(&g.DataDir, "data-dir", "", "Data directory (default: configured or ~/.siftlog)")
	cmd.PersistentFlags().BoolVar(&g.JSON, "json", false, "Emit JSON")
	cmd.PersistentFlags().BoolVar(&g.NoColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newConfigGetCommand(g))
	cmd.AddCommand(newConfigSaveCommand(g))
	cmd.AddCommand(newConfigGetRulesDirCommand(g))
	cmd.AddCommand(newConfigSetRulesDirCommand(g))
	cmd.AddCommand(newConfigSetLogsDirCommand(g))
	cmd.AddCommand(newConfigAddRecentCommand(g))
	cmd.AddCommand(newConfigClearRecentCommand(g))

	return cmd
}

func newConfigGetCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(g.resolveDataDir())
			if err != nil {
				return err
			}
			return printResultOrJSON(g.JSON, cfg, func() {
				fmt.Printf("rules directory:  %s\n", cfg.RulesDirectory)
				fmt.Printf("logs directory:   %s\n", cfg.DefaultLogsDirectory)
				fmt.Printf("max recent files: %d\n", cfg.MaxRecentFiles)
				fmt.Printf("recent files:     %v\n", cfg.RecentLogFiles)
			})
		},
	}
}

func newConfigSaveCommand(g *globalFlags) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Replace the configuration wholesale from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			g.applyColor()
			data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied CLI flag
			if err != nil {
				return fmt.Errorf("reading config file: %w", err)
			}
			var cfg appconfig.Config
			if err := json.Unmarshal(data, &cfg); err != nil {
				return fmt.Errorf("parsing config file: %w", err)
			}
			dataDir := g.resolveDataDir()
			if err := appconfig.Save(dataDir, &cfg); err != nil {
				return err
			}
			successColor.Println("configuration saved")
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "Path to a JSON config file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newConfigGetRulesDirCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get-rules-directory",
		Short: "Print the configured rules directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(g.resolveDataDir())
			if err != nil {
				return err
			}
			return printResultOrJSON(g.JSON, cfg.RulesDirectory, func() { fmt.Println(cfg.RulesDirectory) })
		},
	}
}

func newConfigSetRulesDirCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set-rules-directory <path>",
		Short: "Update the configured rules directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g.applyColor()
			dataDir := g.resolveDataDir()
			cfg, err := appconfig.Load(dataDir)
			if err != nil {
				return err
			}
			cfg.RulesDirectory = args[0]
			if err := appconfig.Save(dataDir, cfg); err != nil {
				return err
			}
			successColor.Printf("rules directory set to %s\n", args[0])
			return nil
		},
	}
}

func newConfigSetLogsDirCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set-logs-directory <path>",
		Short: "Update the configured default logs directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g.applyColor()
			dataDir := g.resolveDataDir()
			cfg, err := appconfig.Load(dataDir)
			if err != nil {
				return err
			}
			cfg.DefaultLogsDirectory = args[0]
			if err := appconfig.Save(dataDir, cfg); err != nil {
				return err
			}
			successColor.Printf("logs directory set to %s\n", args[0])
			return nil
		},
	}
}

func newConfigAddRecentCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add-recent-log-file <path>",
		Short: "Record a log file path at the front of the recent-files list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g.applyColor()
			dataDir := g.resolveDataDir()
			cfg, err := appconfig.Load(dataDir)
			if err != nil {
				return err
			}
			cfg.AddRecentLogFile(args[0])
			if err := appconfig.Save(dataDir, cfg); err != nil {
				return err
			}
			successColor.Println("recorded")
			return nil
		},
	}
}

func newConfigClearRecentCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-recent-files",
		Short: "Clear the recent-files list",
		RunE: func(cmd *cobra.Command, args []string) error {
			g.applyColor()
			dataDir := g.resolveDataDir()
			cfg, err := appconfig.Load(dataDir)
			if err != nil {
				return err
			}
			cfg.ClearRecentFiles()
			if err := appconfig.Save(dataDir, cfg); err != nil {
				return err
			}
			successColor.Println("cleared")
			return nil
		},
	}
}
