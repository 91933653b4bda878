package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/siftlog/pkg/condition"
	"github.com/ccollicutt/siftlog/pkg/record"
	"github.com/ccollicutt/siftlog/pkg/ruletest"
)

// NewTestRuleCommand creates the "test-rule" command covering test_rule.
func NewTestRuleCommand() *cobra.Command {
	g := &globalFlags{}
	var cond, logType string

	cmd := &cobra.Command{
		Use:   "test-rule <log-path>",
		Short: "Evaluate a condition against a log file without saving a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g.applyColor()
			format, ok := record.ParseFormat(logType)
			if !ok {
				return fmt.Errorf("unknown --type %q", logType)
			}
			src, err := record.New(args[0], format)
			if err != nil {
				return err
			}
			defer src.Close()

			result, err := ruletest.Run(context.Background(), cond, src)
			if err != nil {
				return err
			}
			return printResultOrJSON(g.JSON, result, func() {
				if !result.SyntaxValid {
					errorColor.Printf("invalid condition: %s\n", result.SyntaxError)
					ExitCode = 1
					return
				}
				successColor.Printf("%d/%d record(s) matched in %dms\n", result.MatchedCount, result.TotalCount, result.ExecutionTimeMs)
			})
		},
	}
	cmd.Flags().StringVar(&cond, "condition", "", "Condition expression to evaluate")
	_ = cmd.MarkFlagRequired("condition")
	cmd.Flags().StringVar(&logType, "type", "", "Log format: cloudtrail or flatjson")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().BoolVar(&g.JSON, "json", false, "Emit JSON")
	cmd.Flags().BoolVar(&g.NoColor, "no-color", false, "Disable colored output")
	return cmd
}

// NewValidateConditionCommand creates the "validate-condition" command
// covering validate_condition.
func NewValidateConditionCommand() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "validate-condition <condition>",
		Short: "Check a condition expression for syntax errors without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g.applyColor()
			result := condition.Validate(args[0])
			return printResultOrJSON(g.JSON, result, func() {
				if result.Valid {
					successColor.Println("valid")
					return
				}
				errorColor.Printf("invalid: %s (offset %d)\n", result.Message, result.Offset)
				if len(result.Suggestions) > 0 {
					fmt.Printf("suggestions: %v\n", result.Suggestions)
				}
				ExitCode = 1
			})
		},
	}
	cmd.Flags().BoolVar(&g.JSON, "json", false, "Emit JSON")
	cmd.Flags().BoolVar(&g.NoColor, "no-color", false, "Disable colored output")
	return cmd
}
