// Package ruletest implements the Rule Test Harness (C7): given a
// condition string and a declared log file, it validates the condition's
// syntax and, if valid, evaluates it against every record, returning a
// capped sample of matches and non-matches for rule-authoring iteration.
// Grounded on sigmaseven-cerberus/api/rule_testing.go's
// RuleTestRequest/RuleTestResponse shape, adapted from its event-list
// request body to this engine's file+condition request.
package ruletest

import (
	"context"
	"time"

	"github.com/ccollicutt/siftlog/pkg/condition"
	"github.com/ccollicutt/siftlog/pkg/record"
)

// maxMatchedEvents caps how many matching records are returned, mirroring
// the scan orchestrator's evidence cap.
const maxMatchedEvents = 100

// maxSampleNonMatched caps the non-matching sample returned for contrast.
const maxSampleNonMatched = 10

// Result is the test_rule command's return value.
type Result struct {
	MatchedCount     int              `json:"matched_count"`
	TotalCount       int              `json:"total_count"`
	MatchedEvents    []record.Record  `json:"matched_events"`
	SampleNonMatched []record.Record  `json:"sample_non_matched"`
	SyntaxValid      bool             `json:"syntax_valid"`
	SyntaxError      string           `json:"syntax_error,omitempty"`
	ExecutionTimeMs  int64            `json:"execution_time_ms"`
}

// Run validates condition and, if it parses, evaluates it against every
// record src yields.
func Run(ctx context.Context, conditionStr string, src record.Source) (Result, error) {
	start := time.Now()

	node, err := condition.Parse(conditionStr)
	if err != nil {
		return Result{
			SyntaxValid:     false,
			SyntaxError:     err.Error(),
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	records, err := record.CollectAll(ctx, src)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		SyntaxValid:      true,
		TotalCount:       len(records),
		MatchedEvents:    make([]record.Record, 0),
		SampleNonMatched: make([]record.Record, 0),
	}

	for _, rec := range records {
		if condition.Evaluate(node, rec) {
			result.MatchedCount++
			if len(result.MatchedEvents) < maxMatchedEvents {
				result.MatchedEvents = append(result.MatchedEvents, rec)
			}
		} else if len(result.SampleNonMatched) < maxSampleNonMatched {
			result.SampleNonMatched = append(result.SampleNonMatched, rec)
		}
	}

	result.ExecutionTimeMs = time.Since(start).Milliseconds()
	return result, nil
}
