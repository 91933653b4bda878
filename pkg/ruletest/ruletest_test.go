package ruletest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/siftlog/pkg/record"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunReportsSyntaxError(t *testing.T) {
	path := writeTemp(t, "flat.json", `{"a":1}`)
	src, err := record.New(path, record.FormatFlatJSON)
	require.NoError(t, err)
	defer src.Close()

	res, err := Run(context.Background(), "WHERE a = 1", src)
	require.NoError(t, err)
	assert.False(t, res.SyntaxValid)
	assert.NotEmpty(t, res.SyntaxError)
}

func TestRunSeparatesMatchedAndNonMatched(t *testing.T) {
	path := writeTemp(t, "flat.ndjson", "{\"errorCode\":\"AccessDenied\"}\n{\"errorCode\":\"Success\"}\n{\"errorCode\":\"AccessDenied\"}\n")
	src, err := record.New(path, record.FormatFlatJSON)
	require.NoError(t, err)
	defer src.Close()

	res, err := Run(context.Background(), "errorCode = 'AccessDenied'", src)
	require.NoError(t, err)
	assert.True(t, res.SyntaxValid)
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, 2, res.MatchedCount)
	assert.Len(t, res.MatchedEvents, 2)
	assert.Len(t, res.SampleNonMatched, 1)
}
