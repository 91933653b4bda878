package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/siftlog/pkg/appconfig"
	"github.com/ccollicutt/siftlog/pkg/condition"
	"github.com/ccollicutt/siftlog/pkg/record"
	"github.com/ccollicutt/siftlog/pkg/rule"
	"github.com/ccollicutt/siftlog/pkg/scan"
)

// NewScanCommand creates the "scan" command group covering scan_logs and
// scan_all_logs.
func NewScanCommand() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run detection rules against log files",
	}
	cmd.PersistentFlags().StringVar(&g.DataDir, "data-dir", "", "Data directory (default: configured or ~/.siftlog)")
	cmd.PersistentFlags().BoolVar(&g.JSON, "json", false, "Emit JSON")
	cmd.PersistentFlags().BoolVarP(&g.Verbose, "verbose", "v", false, "Verbose logging")
	cmd.PersistentFlags().BoolVarP(&g.Quiet, "quiet", "q", false, "Suppress progress output")
	cmd.PersistentFlags().BoolVar(&g.NoColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newScanLogCommand(g))
	cmd.AddCommand(newScanAllCommand(g))

	return cmd
}

func loadActiveRules(g *globalFlags) ([]*rule.Rule, error) {
	store, err := openStore(g)
	if err != nil {
		return nil, err
	}
	rules, malformed, err := store.List()
	if err != nil {
		return nil, err
	}
	for _, name := range malformed {
		warningColor.Printf("skipping malformed rule file: %s\n", name)
	}
	active := make([]*rule.Rule, 0, len(rules))
	for _, r := range rules {
		if r.Status == rule.StatusActive {
			active = append(active, r)
		}
	}
	return active, nil
}

func newScanLogCommand(g *globalFlags) *cobra.Command {
	var logType string
	cmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Scan a single log file against the active rule set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g.applyColor()
			format, ok := record.ParseFormat(logType)
			if !ok {
				return fmt.Errorf("unknown --type %q", logType)
			}
			rules, err := loadActiveRules(g)
			if err != nil {
				return err
			}

			src, err := record.New(args[0], format)
			if err != nil {
				return err
			}
			defer src.Close()

			resp, err := scan.Scan(context.Background(), src, rules, condition.NewCache(), g.logger())
			if err != nil {
				return err
			}
			return printResultOrJSON(g.JSON, resp, func() { renderScanResponse(resp) })
		},
	}
	cmd.Flags().StringVar(&logType, "type", "", "Log format: cloudtrail or flatjson")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newScanAllCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Scan every imported log file against the active rule set",
		RunE: func(cmd *cobra.Command, args []string) error {
			g.applyColor()
			rules, err := loadActiveRules(g)
			if err != nil {
				return err
			}

			dataDir := g.resolveDataDir()
			infos, err := appconfig.ListLogFiles(dataDir)
			if err != nil {
				return err
			}
			files := make([]scan.FileSpec, 0, len(infos))
			for _, info := range infos {
				files = append(files, scan.FileSpec{
					Path:   filepath.Join(appconfig.LogsDir(dataDir), info.Filename),
					Format: info.LogType,
				})
			}

			var s *spinner.Spinner
			if !g.Quiet && !g.JSON {
				s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				s.Suffix = " scanning log library..."
				s.Start()
			}
			resp := scan.Bulk(context.Background(), files, rules, g.logger())
			if s != nil {
				s.Stop()
			}

			return printResultOrJSON(g.JSON, resp, func() { renderBulkResponse(resp) })
		},
	}
}

func renderScanResponse(resp scan.Response) {
	if len(resp.Alerts) == 0 {
		successColor.Println("no alerts")
		return
	}
	for _, a := range resp.Alerts {
		errorColor.Printf("[%s] %s: %d match(es)\n", a.Severity, a.RuleTitle, a.MatchCount)
	}
	fmt.Printf("%d rule(s) evaluated in %dms\n", resp.RulesEvaluated, resp.ScanTimeMs)
}

func renderBulkResponse(resp scan.BulkResponse) {
	for _, fr := range resp.FileResults {
		for _, a := range fr.Alerts {
			errorColor.Printf("[%s] %s: %s: %d match(es)\n", a.Severity, fr.Path, a.RuleTitle, a.MatchCount)
		}
	}
	for _, ff := range resp.FailedFiles {
		warningColor.Printf("failed: %s: %s\n", ff.Path, ff.Error)
	}
	fmt.Printf("%d alert(s) across %d file(s) in %dms\n", resp.TotalAlerts, resp.TotalFilesScanned, resp.TotalScanTimeMs)
}
