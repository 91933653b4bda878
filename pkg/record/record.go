// Package record implements the log ingester / tabular abstraction (C1):
// it parses an on-disk log file into a lazy, non-restartable sequence of
// records, the way the teacher's pkg/parser turns a log file into a lazy
// sequence of ParsedLine.
package record

import (
	"context"
	"io"
)

// Record is one event after parsing: an unordered mapping from field names
// to JSON-typed values. Numbers decode as json.Number, keeping their
// original text; the condition evaluator converts them to float64 for
// numeric comparison. Records are immutable once produced.
type Record map[string]interface{}

// Format names the on-disk log format a caller must declare; the engine
// never sniffs it (see the "no automatic format detection" non-goal).
type Format string

const (
	FormatCloudTrail Format = "cloudtrail"
	FormatFlatJSON   Format = "flatjson"
)

// ParseFormat validates a wire-supplied format string.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatCloudTrail:
		return FormatCloudTrail, true
	case FormatFlatJSON:
		return FormatFlatJSON, true
	default:
		return "", false
	}
}

// Source is a lazy, non-restartable sequence of records, mirroring the
// teacher's LogSource interface (pkg/parser.LogSource): Next returns
// io.EOF once exhausted, and the source must be Closed exactly once.
type Source interface {
	Next(ctx context.Context) (Record, error)
	Close() error
}

// CollectAll eagerly drains a Source into a slice. Callers needing more
// than one pass over the records (the scan orchestrator's aggregation
// pass, the test harness) must collect eagerly since a
// Source cannot be rewound.
func CollectAll(ctx context.Context, src Source) ([]Record, error) {
	var records []Record
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := src.Next(ctx)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}
