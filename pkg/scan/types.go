// Package scan implements the Scan Orchestrator (C5): for a log file and
// an active rule set, it drives record iteration, evaluates each rule's
// condition, applies optional windowed-threshold aggregation, and
// produces alerts with capped evidence. It also drives a bulk scan across
// every file in the log library, fanning per-file work out across a
// bounded worker pool the way the teacher's analyzer drives rule engines
// across a merged log source.
package scan

import (
	"github.com/ccollicutt/siftlog/pkg/record"
	"github.com/ccollicutt/siftlog/pkg/rule"
)

// maxEvidence caps the number of contributing records attached to a
// single alert.
const maxEvidence = 100

// WindowSource names how an aggregated alert's window was computed.
type WindowSource string

const (
	WindowSourceEventTime  WindowSource = "event_time"
	WindowSourcePositional WindowSource = "positional"
)

// Alert is produced per (rule, scan) when a rule's condition (and, if
// configured, its aggregation threshold) is satisfied.
type Alert struct {
	RuleID            string        `json:"rule_id"`
	RuleTitle         string        `json:"rule_title"`
	Severity          rule.Severity `json:"severity"`
	Timestamp         string        `json:"timestamp"` // RFC3339, scan time
	MatchCount        int           `json:"match_count"`
	Evidence          []record.Record `json:"evidence"`
	EvidenceTruncated bool          `json:"evidence_truncated"`
	SourceFile        string        `json:"source_file,omitempty"`
	WindowSource      WindowSource  `json:"window_source,omitempty"`
}

// Response is the scan_logs command's return value.
type Response struct {
	Alerts        []Alert `json:"alerts"`
	RulesEvaluated int    `json:"rules_evaluated"`
	ScanTimeMs    int64   `json:"scan_time_ms"`
}

// FileResult is one file's outcome within a bulk scan.
type FileResult struct {
	Path   string  `json:"path"`
	Alerts []Alert `json:"alerts"`
}

// FailedFile records a per-file failure that did not abort a bulk scan.
type FailedFile struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// BulkResponse is the scan_all_logs command's return value.
type BulkResponse struct {
	TotalAlerts       int          `json:"total_alerts"`
	TotalFilesScanned int          `json:"total_files_scanned"`
	TotalScanTimeMs   int64        `json:"total_scan_time_ms"`
	FileResults       []FileResult `json:"file_results"`
	FailedFiles       []FailedFile `json:"failed_files"`
}
