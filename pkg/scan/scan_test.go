package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/siftlog/pkg/condition"
	"github.com/ccollicutt/siftlog/pkg/record"
	"github.com/ccollicutt/siftlog/pkg/rule"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func consoleLoginRule() *rule.Rule {
	return &rule.Rule{
		ID:    "r1",
		Title: "Console Login Success",
		Detection: rule.Detection{
			Severity:  rule.SeverityHigh,
			Condition: "eventName = 'ConsoleLogin' AND responseElements.ConsoleLogin = 'Success'",
		},
	}
}

func TestScanCloudTrailSuccessLogin(t *testing.T) {
	path := writeTemp(t, "trail.json", `{"Records":[{"eventName":"ConsoleLogin","responseElements":{"ConsoleLogin":"Success"}}]}`)
	src, err := record.New(path, record.FormatCloudTrail)
	require.NoError(t, err)
	defer src.Close()

	resp, err := Scan(context.Background(), src, []*rule.Rule{consoleLoginRule()}, condition.NewCache(), nil)
	require.NoError(t, err)
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, 1, resp.Alerts[0].MatchCount)
	assert.Len(t, resp.Alerts[0].Evidence, 1)
}

func TestScanCrossFormatNegative(t *testing.T) {
	path := writeTemp(t, "trail.json", `{"Records":[{"eventName":"ConsoleLogin"}]}`)
	src, err := record.New(path, record.FormatCloudTrail)
	require.NoError(t, err)
	defer src.Close()

	r := &rule.Rule{
		ID:    "r1",
		Title: "Suspicious Agent",
		Detection: rule.Detection{
			Severity:  rule.SeverityMedium,
			Condition: "verb != '' AND (userAgent CONTAINS 'python' OR userAgent CONTAINS 'curl')",
		},
	}

	resp, err := Scan(context.Background(), src, []*rule.Rule{r}, condition.NewCache(), nil)
	require.NoError(t, err)
	assert.Empty(t, resp.Alerts)
}

func TestScanThresholdBruteForceWithEventTime(t *testing.T) {
	var lines string
	for i := 0; i < 11; i++ {
		offset := i * 16 // 11 events spread across 160s (< 3m), all within the 5m window
		mm := 10 + offset/60
		ss := offset % 60
		lines += fmt.Sprintf(`{"errorCode":"AccessDenied","eventTime":"2026-01-05T10:%02d:%02dZ"}`, mm, ss) + "\n"
	}
	path := writeTemp(t, "flat.ndjson", lines)
	src, err := record.New(path, record.FormatFlatJSON)
	require.NoError(t, err)
	defer src.Close()

	r := &rule.Rule{
		ID:    "r1",
		Title: "Brute Force",
		Detection: rule.Detection{
			Severity:  rule.SeverityHigh,
			Condition: "errorCode = 'AccessDenied'",
			Aggregation: &rule.Aggregation{
				Enabled:   true,
				Window:    "5m",
				Threshold: "> 10",
			},
		},
	}

	resp, err := Scan(context.Background(), src, []*rule.Rule{r}, condition.NewCache(), nil)
	require.NoError(t, err)
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, WindowSourceEventTime, resp.Alerts[0].WindowSource)
}

func TestScanAggregationPositionalFallback(t *testing.T) {
	lines := ""
	for i := 0; i < 5; i++ {
		lines += `{"errorCode":"AccessDenied"}` + "\n"
	}
	path := writeTemp(t, "flat.ndjson", lines)
	src, err := record.New(path, record.FormatFlatJSON)
	require.NoError(t, err)
	defer src.Close()

	r := &rule.Rule{
		ID:    "r1",
		Title: "Brute Force",
		Detection: rule.Detection{
			Severity:  rule.SeverityHigh,
			Condition: "errorCode = 'AccessDenied'",
			Aggregation: &rule.Aggregation{
				Enabled:   true,
				Window:    "5m",
				Threshold: "> 3",
			},
		},
	}

	resp, err := Scan(context.Background(), src, []*rule.Rule{r}, condition.NewCache(), nil)
	require.NoError(t, err)
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, WindowSourcePositional, resp.Alerts[0].WindowSource)
}

func TestScanSkipsRuleWithBadCondition(t *testing.T) {
	path := writeTemp(t, "flat.json", `{"a":1}`)
	src, err := record.New(path, record.FormatFlatJSON)
	require.NoError(t, err)
	defer src.Close()

	r := &rule.Rule{ID: "bad", Detection: rule.Detection{Condition: "WHERE a = 1"}}
	resp, err := Scan(context.Background(), src, []*rule.Rule{r}, condition.NewCache(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.RulesEvaluated)
	assert.Empty(t, resp.Alerts)
}

func TestBulkScanIsolatesPerFileFailure(t *testing.T) {
	good := writeTemp(t, "good.json", `{"Records":[{"eventName":"ConsoleLogin","responseElements":{"ConsoleLogin":"Success"}}]}`)
	dir := filepath.Dir(good)
	missing := filepath.Join(dir, "missing.json")

	files := []FileSpec{
		{Path: good, Format: record.FormatCloudTrail},
		{Path: missing, Format: record.FormatCloudTrail},
	}

	resp := Bulk(context.Background(), files, []*rule.Rule{consoleLoginRule()}, nil)
	assert.Equal(t, 1, resp.TotalFilesScanned)
	assert.Equal(t, 1, resp.TotalAlerts)
	require.Len(t, resp.FailedFiles, 1)
	assert.Equal(t, missing, resp.FailedFiles[0].Path)
}
