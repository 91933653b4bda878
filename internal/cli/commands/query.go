package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/siftlog/pkg/appconfig"
	"github.com/ccollicutt/siftlog/pkg/query"
)

// NewQueryCommand creates the "query" command covering run_query.
func NewQueryCommand() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run an ad-hoc SQL query over imported log files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir := g.resolveDataDir()
			lookup, err := appconfig.FormatLookup(dataDir)
			if err != nil {
				return err
			}
			result, err := query.Run(context.Background(), args[0], lookup)
			if err != nil {
				return err
			}
			return printResultOrJSON(g.JSON, result, func() { renderQueryResult(result) })
		},
	}
	cmd.Flags().StringVar(&g.DataDir, "data-dir", "", "Data directory (default: configured or ~/.siftlog)")
	cmd.Flags().BoolVar(&g.JSON, "json", false, "Emit JSON")
	return cmd
}

func renderQueryResult(result query.Result) {
	for i, col := range result.Columns {
		if i > 0 {
			fmt.Print("\t")
		}
		fmt.Print(col)
	}
	fmt.Println()
	for _, row := range result.Rows {
		for i, col := range result.Columns {
			if i > 0 {
				fmt.Print("\t")
			}
			fmt.Print(row[col])
		}
		fmt.Println()
	}
	fmt.Printf("(%d row(s) in %dms)\n", result.RowCount, result.ExecutionTimeMs)
}
