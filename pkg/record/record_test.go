package record

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCloudTrailSource(t *testing.T) {
	path := writeTemp(t, "trail.json", `{"Records":[{"eventName":"ConsoleLogin","responseElements":{"ConsoleLogin":"Success"}}]}`)

	src, err := New(path, FormatCloudTrail)
	require.NoError(t, err)
	defer src.Close()

	rec, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ConsoleLogin", rec["eventName"])

	_, err = src.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestCloudTrailSourceMissingRecords(t *testing.T) {
	path := writeTemp(t, "bad.json", `{"foo":"bar"}`)
	_, err := New(path, FormatCloudTrail)
	assert.Error(t, err)
}

func TestFlatJSONSingleObject(t *testing.T) {
	path := writeTemp(t, "flat.json", `  {"a":1,"b":"x"}`)

	src, err := New(path, FormatFlatJSON)
	require.NoError(t, err)
	defer src.Close()

	records, err := CollectAll(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "x", records[0]["b"])
}

func TestFlatJSONNDJSONSkipsBlankLines(t *testing.T) {
	path := writeTemp(t, "flat.ndjson", "{\"a\":1}\n\n{\"a\":2}\n")

	src, err := New(path, FormatFlatJSON)
	require.NoError(t, err)
	defer src.Close()

	records, err := CollectAll(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestFlatJSONNDJSONBadLine(t *testing.T) {
	path := writeTemp(t, "flat.ndjson", "{\"a\":1}\nnot json\n")

	src, err := New(path, FormatFlatJSON)
	require.NoError(t, err)
	defer src.Close()

	_, err = CollectAll(context.Background(), src)
	require.Error(t, err)
}
