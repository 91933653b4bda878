package query

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

func TestRunWithExplicitFormat(t *testing.T) {
	path := writeTemp(t, "trail.json", `{"Records":[{"eventName":"ConsoleLogin"},{"eventName":"PutObject"}]}`)

	q := `SELECT COUNT(*) AS n FROM read_json('` + path + `', 'cloudtrail')`
	res, err := Run(context.Background(), q, nil)
	require.NoError(t, err)
	require.Equal(t, 1, res.RowCount)
	assert.EqualValues(t, 2, res.Rows[0]["n"])
}

func TestRunWithAutoFormatLookup(t *testing.T) {
	path := writeTemp(t, "flat.ndjson", "{\"a\":1}\n{\"a\":2}\n")

	lookup := func(p string) (record.Format, bool) {
		if p == path {
			return record.FormatFlatJSON, true
		}
		return "", false
	}

	q := `SELECT COUNT(*) AS n FROM read_json_auto('` + path + `')`
	res, err := Run(context.Background(), q, lookup)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Rows[0]["n"])
}

func TestRunAutoWithoutLookupFails(t *testing.T) {
	path := writeTemp(t, "flat.ndjson", "{\"a\":1}\n")
	q := `SELECT * FROM read_json_auto('` + path + `')`
	_, err := Run(context.Background(), q, nil)
	assert.Error(t, err)
}

func TestRunSurfacesEngineErrorVerbatim(t *testing.T) {
	_, err := Run(context.Background(), "SELECT * FROM nonexistent_table", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent_table")
}
