package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/siftlog/pkg/appconfig"
	"github.com/ccollicutt/siftlog/pkg/rule"
)

// NewRulesCommand creates the "rules" command group covering list_rules,
// get_rule, save_rule, delete_rule, export_rule, export_all_rules,
// import_rule, import_multiple_rules and import_rules_zip.
func NewRulesCommand() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage detection rules",
	}
	cmd.PersistentFlags().StringVar(&g.DataDir, "data-dir", "", "Data directory (default: configured or ~/.siftlog)")
	cmd.PersistentFlags().BoolVar(&g.JSON, "json", false, "Emit JSON")
	cmd.PersistentFlags().BoolVar(&g.NoColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newRulesListCommand(g))
	cmd.AddCommand(newRulesGetCommand(g))
	cmd.AddCommand(newRulesSaveCommand(g))
	cmd.AddCommand(newRulesDeleteCommand(g))
	cmd.AddCommand(newRulesExportCommand(g))
	cmd.AddCommand(newRulesExportAllCommand(g))
	cmd.AddCommand(newRulesImportCommand(g))

	return cmd
}

func openStore(g *globalFlags) (*rule.Store, error) {
	return rule.NewStore(appconfig.RulesDir(g.resolveDataDir()))
}

func newRulesListCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every rule in the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			g.applyColor()
			store, err := openStore(g)
			if err != nil {
				return err
			}
			rules, malformed, err := store.List()
			if err != nil {
				return err
			}
			for _, name := range malformed {
				warningColor.Fprintf(os.Stderr, "skipping malformed rule file: %s\n", name)
			}
			return printResultOrJSON(g.JSON, rules, func() {
				for _, r := range rules {
					fmt.Printf("%s\t%s\t%s\t%s\n", r.ID, r.Status, r.Detection.Severity, r.Title)
				}
			})
		},
	}
}

func newRulesGetCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <rule-id>",
		Short: "Fetch a single rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(g)
			if err != nil {
				return err
			}
			r, err := store.Get(args[0])
			if err != nil {
				return err
			}
			return printResultOrJSON(g.JSON, r, func() {
				data, _ := yaml.Marshal(r)
				fmt.Print(string(data))
			})
		},
	}
}

func newRulesSaveCommand(g *globalFlags) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a rule from a YAML file (creates or overwrites by id)",
		RunE: func(cmd *cobra.Command, args []string) error {
			g.applyColor()
			data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied CLI flag
			if err != nil {
				return fmt.Errorf("reading rule file: %w", err)
			}
			var r rule.Rule
			if err := yaml.Unmarshal(data, &r); err != nil {
				return fmt.Errorf("parsing rule file: %w", err)
			}
			store, err := openStore(g)
			if err != nil {
				return err
			}
			saved, err := store.Save(&r)
			if err != nil {
				return err
			}
			successColor.Printf("saved rule %s\n", saved.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "Path to a rule YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newRulesDeleteCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <rule-id>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g.applyColor()
			store, err := openStore(g)
			if err != nil {
				return err
			}
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			successColor.Printf("deleted rule %s\n", args[0])
			return nil
		},
	}
}

func newRulesExportCommand(g *globalFlags) *cobra.Command {
	var dest string
	cmd := &cobra.Command{
		Use:   "export <rule-id>",
		Short: "Export a single rule to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(g)
			if err != nil {
				return err
			}
			return store.ExportRule(args[0], dest)
		},
	}
	cmd.Flags().StringVar(&dest, "dest", "", "Destination path")
	_ = cmd.MarkFlagRequired("dest")
	return cmd
}

func newRulesExportAllCommand(g *globalFlags) *cobra.Command {
	var dest string
	cmd := &cobra.Command{
		Use:   "export-all",
		Short: "Export every rule into a single ZIP archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			g.applyColor()
			store, err := openStore(g)
			if err != nil {
				return err
			}
			n, err := store.ExportAll(dest)
			if err != nil {
				return err
			}
			successColor.Printf("exported %d rule(s) to %s\n", n, dest)
			return nil
		},
	}
	cmd.Flags().StringVar(&dest, "dest", "", "Destination ZIP path")
	_ = cmd.MarkFlagRequired("dest")
	return cmd
}

func newRulesImportCommand(g *globalFlags) *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "import <path>...",
		Short: "Import one or more rule files, or a ZIP archive of rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g.applyColor()
			store, err := openStore(g)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				if ext := filepath.Ext(args[0]); ext == ".zip" {
					summary, err := store.ImportZip(args[0], overwrite)
					if err != nil {
						return err
					}
					return reportImportSummary(g, summary)
				}
			}

			summary := store.Import(args, overwrite)
			return reportImportSummary(g, summary)
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing rules with the same id")
	return cmd
}

func reportImportSummary(g *globalFlags, summary rule.ImportSummary) error {
	return printResultOrJSON(g.JSON, summary, func() {
		successColor.Printf("imported %d rule(s)\n", summary.SuccessCount)
		if len(summary.Skipped) > 0 {
			warningColor.Printf("skipped (duplicate id): %v\n", summary.Skipped)
		}
		if len(summary.Errors) > 0 {
			errorColor.Printf("errors: %v\n", summary.Errors)
			ExitCode = 1
		}
	})
}
