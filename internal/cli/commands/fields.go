package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/siftlog/pkg/fieldpath"
	"github.com/ccollicutt/siftlog/pkg/record"
)

const fieldSuggestionSampleSize = 50

// NewFieldsCommand creates the "fields" command group covering
// get_field_suggestions.
func NewFieldsCommand() *cobra.Command {
	g := &globalFlags{}
	var logType string

	cmd := &cobra.Command{
		Use:   "fields <log-path>",
		Short: "List distinct field paths observed in a sample of a log file",
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
			if len(records) > fieldSuggestionSampleSize {
				records = records[:fieldSuggestionSampleSize]
			}

			seen := make(map[string]struct{})
			for _, r := range records {
				for _, p := range fieldpath.Walk(r) {
					seen[p] = struct{}{}
				}
			}
			paths := make([]string, 0, len(seen))
			for p := range seen {
				paths = append(paths, p)
			}
			sort.Strings(paths)

			return printResultOrJSON(g.JSON, paths, func() {
				for _, p := range paths {
					fmt.Println(p)
				}
			})
		},
	}
	cmd.Flags().StringVar(&logType, "type", "", "Log format: cloudtrail or flatjson")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().BoolVar(&g.JSON, "json", false, "Emit JSON")
	return cmd
}
