package scan

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ccollicutt/siftlog/pkg/condition"
	"github.com/ccollicutt/siftlog/pkg/record"
	"github.com/ccollicutt/siftlog/pkg/rule"
)

// Scan materializes src's records and evaluates every active rule
// against them, applying each rule's aggregation policy (if configured)
// before emitting an alert. A rule whose condition fails to parse is
// skipped and logged rather than aborting the scan.
func Scan(ctx context.Context, src record.Source, rules []*rule.Rule, cache *condition.Cache, log *zap.SugaredLogger) (Response, error) {
	start := time.Now()

	records, err := record.CollectAll(ctx, src)
	if err != nil {
		return Response{}, err
	}

	var alerts []Alert
	evaluated := 0

	for _, r := range rules {
		node, err := cache.Get(r.Detection.Condition)
		if err != nil {
			if log != nil {
				log.Warnw("skipping rule with unparseable condition", "rule_id", r.ID, "error", err)
			}
			continue
		}
		evaluated++

		alert, emitted, err := evaluateRule(r, node, records, start)
		if err != nil {
			if log != nil {
				log.Warnw("skipping rule with invalid aggregation", "rule_id", r.ID, "error", err)
			}
			continue
		}
		if emitted {
			alerts = append(alerts, alert)
		}
	}

	return Response{
		Alerts:         alerts,
		RulesEvaluated: evaluated,
		ScanTimeMs:     time.Since(start).Milliseconds(),
	}, nil
}

// evaluateRule walks records against a rule's parsed condition, applies
// aggregation if configured, and builds the resulting alert.
func evaluateRule(r *rule.Rule, node *condition.Node, records []record.Record, scanTime time.Time) (Alert, bool, error) {
	var matches []int
	for i, rec := range records {
		if condition.Evaluate(node, rec) {
			matches = append(matches, i)
		}
	}
	if len(matches) == 0 {
		return Alert{}, false, nil
	}

	matchCount := len(matches)
	var windowSource WindowSource

	if r.Detection.Aggregation != nil && r.Detection.Aggregation.Enabled {
		result, err := applyAggregation(r.Detection.Aggregation, matches, records)
		if err != nil {
			return Alert{}, false, err
		}
		if !result.emit {
			return Alert{}, false, nil
		}
		matchCount = result.matchCount
		windowSource = result.windowSource
	}

	evidence := make([]record.Record, 0, min(len(matches), maxEvidence))
	for _, idx := range matches {
		if len(evidence) >= maxEvidence {
			break
		}
		evidence = append(evidence, records[idx])
	}

	return Alert{
		RuleID:            r.ID,
		RuleTitle:         r.Title,
		Severity:          r.Detection.Severity,
		Timestamp:         scanTime.UTC().Format(time.RFC3339),
		MatchCount:        matchCount,
		Evidence:          evidence,
		EvidenceTruncated: len(matches) > maxEvidence,
		WindowSource:      windowSource,
	}, true, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
