package scan

import (
	"time"

	"github.com/ccollicutt/siftlog/pkg/fieldpath"
	"github.com/ccollicutt/siftlog/pkg/record"
	"github.com/ccollicutt/siftlog/pkg/rule"
)

// eventTimeField is the well-known field a rule's aggregation window
// buckets matches by, when present and parseable.
const eventTimeField = "eventTime"

// aggregateResult is the outcome of applying a rule's aggregation policy
// to the set of record indices a rule matched.
type aggregateResult struct {
	emit         bool
	matchCount   int
	windowSource WindowSource
}

// applyAggregation buckets matches by eventTime using a sliding window
// (a match at time t is counted together with every other match whose
// timestamp lies in [t-window, t]), emitting an alert if any such window's
// count satisfies the threshold. If eventTime is missing or unparseable
// on any match, it falls back to positional bucketing over record
// position, counting matches within `window`-sized runs of consecutive
// record indices.
func applyAggregation(agg *rule.Aggregation, matches []int, records []record.Record) (aggregateResult, error) {
	window, err := rule.ParseWindow(agg.Window)
	if err != nil {
		return aggregateResult{}, err
	}
	op, threshold, err := rule.ParseThreshold(agg.Threshold)
	if err != nil {
		return aggregateResult{}, err
	}

	if times, ok := matchTimes(matches, records); ok {
		count := slidingWindowMaxCount(times, window)
		return aggregateResult{
			emit:         op.Compare(count, threshold),
			matchCount:   count,
			windowSource: WindowSourceEventTime,
		}, nil
	}

	windowSize := positionalWindowSize(agg.Window)
	count := positionalMaxCount(matches, windowSize)
	return aggregateResult{
		emit:         op.Compare(count, threshold),
		matchCount:   count,
		windowSource: WindowSourcePositional,
	}, nil
}

// matchTimes resolves and parses eventTime for every match; ok is false
// if any match lacks a parseable RFC3339 eventTime, signaling the
// positional fallback.
func matchTimes(matches []int, records []record.Record) ([]time.Time, bool) {
	times := make([]time.Time, len(matches))
	for i, idx := range matches {
		v, found := fieldpath.Resolve(records[idx], eventTimeField)
		if !found {
			return nil, false
		}
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, false
		}
		times[i] = t
	}
	return times, true
}

func slidingWindowMaxCount(times []time.Time, window time.Duration) int {
	best := 0
	for _, t := range times {
		lowerBound := t.Add(-window)
		count := 0
		for _, other := range times {
			if !other.Before(lowerBound) && !other.After(t) {
				count++
			}
		}
		if count > best {
			best = count
		}
	}
	return best
}

// positionalWindowSize reads the leading integer of a window string
// ("5m" -> 5), reinterpreting it as a record count for the positional
// fallback rather than a duration.
func positionalWindowSize(window string) int {
	n := 0
	for _, r := range window {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	if n <= 0 {
		n = 1
	}
	return n
}

// positionalMaxCount returns the largest number of match indices falling
// within any windowSize-wide span of consecutive record positions.
func positionalMaxCount(matches []int, windowSize int) int {
	best := 0
	for _, start := range matches {
		count := 0
		for _, idx := range matches {
			if idx >= start && idx < start+windowSize {
				count++
			}
		}
		if count > best {
			best = count
		}
	}
	return best
}
