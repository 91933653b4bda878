package appconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/siftlog/pkg/record"
)

func TestDataDirGlobal(t *testing.T) {
	SetDataDir("/tmp/one")
	assert.Equal(t, "/tmp/one", DataDir())
	SetDataDir("/tmp/two")
	assert.Equal(t, "/tmp/two", DataDir())
}

func TestLoadMissingReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, defaultMaxRecentFiles, cfg.MaxRecentFiles)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.RulesDirectory = "/data/rules"
	cfg.AddRecentLogFile("a.json")
	cfg.AddRecentLogFile("b.json")

	require.NoError(t, Save(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/data/rules", loaded.RulesDirectory)
	assert.Equal(t, []string{"b.json", "a.json"}, loaded.RecentLogFiles)
}

func TestAddRecentLogFileDedupsAndCaps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRecentFiles = 2
	cfg.AddRecentLogFile("a")
	cfg.AddRecentLogFile("b")
	cfg.AddRecentLogFile("a")
	cfg.AddRecentLogFile("c")

	assert.Equal(t, []string{"c", "a"}, cfg.RecentLogFiles)
}

func TestClearRecentFiles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AddRecentLogFile("a")
	cfg.ClearRecentFiles()
	assert.Empty(t, cfg.RecentLogFiles)
}

func TestImportListUpdateDeleteLogFile(t *testing.T) {
	dataDir := t.TempDir()
	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "trail.json")
	require.NoError(t, os.WriteFile(srcPath, []byte(`{"Records":[]}`), 0o600))

	info, err := ImportLogFile(dataDir, srcPath, record.FormatCloudTrail)
	require.NoError(t, err)
	assert.Equal(t, "trail.json", info.Filename)

	list, err := ListLogFiles(dataDir)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, record.FormatCloudTrail, list[0].LogType)

	require.NoError(t, UpdateLogType(dataDir, "trail.json", record.FormatFlatJSON))
	list, err = ListLogFiles(dataDir)
	require.NoError(t, err)
	assert.Equal(t, record.FormatFlatJSON, list[0].LogType)

	require.NoError(t, DeleteLogFile(dataDir, "trail.json"))
	list, err = ListLogFiles(dataDir)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFormatLookupResolvesByPath(t *testing.T) {
	dataDir := t.TempDir()
	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "flat.json")
	require.NoError(t, os.WriteFile(srcPath, []byte(`{"a":1}`), 0o600))

	_, err := ImportLogFile(dataDir, srcPath, record.FormatFlatJSON)
	require.NoError(t, err)

	lookup, err := FormatLookup(dataDir)
	require.NoError(t, err)

	format, ok := lookup(filepath.Join(LogsDir(dataDir), "flat.json"))
	require.True(t, ok)
	assert.Equal(t, record.FormatFlatJSON, format)

	_, ok = lookup("/nowhere/missing.json")
	assert.False(t, ok)
}
