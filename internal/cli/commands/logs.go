package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/siftlog/pkg/appconfig"
	"github.com/ccollicutt/siftlog/pkg/record"
)

// NewLogsCommand creates the "logs" command group covering
// list_log_files, import_log_file, import_multiple_log_files,
// update_log_type, delete_log_file and load_log_events.
func NewLogsCommand() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Manage imported log files",
	}
	cmd.PersistentFlags().StringVar(&g.DataDir, "data-dir", "", "Data directory (default: configured or ~/.siftlog)")
	cmd.PersistentFlags().BoolVar(&g.JSON, "json", false, "Emit JSON")
	cmd.PersistentFlags().BoolVar(&g.NoColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newLogsListCommand(g))
	cmd.AddCommand(newLogsImportCommand(g))
	cmd.AddCommand(newLogsSetTypeCommand(g))
	cmd.AddCommand(newLogsDeleteCommand(g))
	cmd.AddCommand(newLogsLoadCommand(g))
	cmd.AddCommand(newLogsValidateCommand(g))

	return cmd
}

func newLogsListCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List imported log files",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := appconfig.ListLogFiles(g.resolveDataDir())
			if err != nil {
				return err
			}
			return printResultOrJSON(g.JSON, infos, func() {
				for _, info := range infos {
					fmt.Printf("%s\t%s\t%d bytes\n", info.Filename, info.LogType, info.SizeBytes)
				}
			})
		},
	}
}

func newLogsImportCommand(g *globalFlags) *cobra.Command {
	var logType string
	cmd := &cobra.Command{
		Use:   "import <path>...",
		Short: "Import one or more log files under a single declared format",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g.applyColor()
			format, ok := record.ParseFormat(logType)
			if !ok {
				return fmt.Errorf("unknown --type %q (expected cloudtrail or flatjson)", logType)
			}
			dataDir := g.resolveDataDir()
			for _, path := range args {
				info, err := appconfig.ImportLogFile(dataDir, path, format)
				if err != nil {
					errorColor.Printf("%s: %v\n", path, err)
					ExitCode = 1
					continue
				}
				successColor.Printf("imported %s (%s)\n", info.Filename, info.LogType)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&logType, "type", "", "Log format: cloudtrail or flatjson")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newLogsSetTypeCommand(g *globalFlags) *cobra.Command {
	var logType string
	cmd := &cobra.Command{
		Use:   "set-type <filename>",
		Short: "Update an imported log file's declared format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, ok := record.ParseFormat(logType)
			if !ok {
				return fmt.Errorf("unknown --type %q", logType)
			}
			return appconfig.UpdateLogType(g.resolveDataDir(), args[0], format)
		},
	}
	cmd.Flags().StringVar(&logType, "type", "", "Log format: cloudtrail or flatjson")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newLogsDeleteCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <filename>",
		Short: "Delete an imported log file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g.applyColor()
			if err := appconfig.DeleteLogFile(g.resolveDataDir(), args[0]); err != nil {
				return err
			}
			successColor.Printf("deleted %s\n", args[0])
			return nil
		},
	}
}

func newLogsValidateCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <log-path>",
		Short: "Check that an imported log file still parses under its declared format (validate_log_file)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g.applyColor()
			dataDir := g.resolveDataDir()
			lookup, err := appconfig.FormatLookup(dataDir)
			if err != nil {
				return err
			}
			format, ok := lookup(args[0])
			if !ok {
				return fmt.Errorf("no declared format for %s: import it first", args[0])
			}
			src, err := record.New(args[0], format)
			if err != nil {
				return printResultOrJSON(g.JSON, false, func() {
					errorColor.Printf("invalid: %v\n", err)
					ExitCode = 1
				})
			}
			defer src.Close()
			if _, err := record.CollectAll(context.Background(), src); err != nil {
				return printResultOrJSON(g.JSON, false, func() {
					errorColor.Printf("invalid: %v\n", err)
					ExitCode = 1
				})
			}
			return printResultOrJSON(g.JSON, true, func() { successColor.Println("valid") })
		},
	}
	return cmd
}

func newLogsLoadCommand(g *globalFlags) *cobra.Command {
	var logType string
	cmd := &cobra.Command{
		Use:   "load <path>",
		Short: "Parse a log file and print its records (load_log_events)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, ok := record.ParseFormat(logType)
			if !ok {
				return fmt.Errorf("unknown --type %q", logType)
			}
			src, err := record.New(args[0], format)
			if err != nil {
				return err
			}
			defer src.Close()

			records, err := record.CollectAll(context.Background(), src)
			if err != nil {
				return err
			}
			return printResultOrJSON(g.JSON, records, func() {
				for _, r := range records {
					fmt.Printf("%v\n", map[string]interface{}(r))
				}
			})
		},
	}
	cmd.Flags().StringVar(&logType, "type", "", "Log format: cloudtrail or flatjson")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
