package rule

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func sampleRule() *Rule {
	return &Rule{
		Title:       "Brute Force",
		Description: "AWS API brute force attempt",
		Author:      "SOC Team",
		Status:      StatusActive,
		Date:        "2026-01-05",
		Tags:        []string{"aws", "brute-force"},
		Detection: Detection{
			Severity:  SeverityHigh,
			Condition: "errorCode = 'AccessDenied'",
		},
	}
}

func TestSaveGeneratesIDAndGet(t *testing.T) {
	s := newTestStore(t)
	r := sampleRule()

	saved, err := s.Save(r)
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	got, err := s.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Brute Force", got.Title)
}

func TestSaveIsIdempotentOnFixedID(t *testing.T) {
	s := newTestStore(t)
	r := sampleRule()
	r.ID = "fixed-id"

	_, err := s.Save(r)
	require.NoError(t, err)
	list1, _, err := s.List()
	require.NoError(t, err)

	_, err = s.Save(r)
	require.NoError(t, err)
	list2, _, err := s.List()
	require.NoError(t, err)

	require.Len(t, list1, 1)
	require.Len(t, list2, 1)
	assert.Equal(t, list1[0].ID, list2[0].ID)
}

func TestSaveRejectsBadCondition(t *testing.T) {
	s := newTestStore(t)
	r := sampleRule()
	r.Detection.Condition = "WHERE x = 'y'"
	_, err := s.Save(r)
	assert.Error(t, err)
}

func TestSaveRejectsMissingRequiredField(t *testing.T) {
	s := newTestStore(t)
	r := sampleRule()
	r.Author = ""
	_, err := s.Save(r)
	assert.Error(t, err)
}

func TestDeleteRemovesRule(t *testing.T) {
	s := newTestStore(t)
	r := sampleRule()
	r.ID = "r1"
	_, err := s.Save(r)
	require.NoError(t, err)

	require.NoError(t, s.Delete("r1"))
	_, err = s.Get("r1")
	assert.Error(t, err)
}

func TestListReportsMalformedFilesSeparately(t *testing.T) {
	s := newTestStore(t)
	r := sampleRule()
	r.ID = "good"
	_, err := s.Save(r)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(s.pathFor("broken"), []byte("not: [valid"), 0o600))

	rules, malformed, err := s.List()
	require.NoError(t, err)
	require.Len(t, rules, 1)
	require.Len(t, malformed, 1)
	assert.Equal(t, "broken.yaml", malformed[0])
}

func TestExportThenImportRoundTrip(t *testing.T) {
	s := newTestStore(t)
	r := sampleRule()
	r.ID = "r1"
	_, err := s.Save(r)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "r1.yaml")
	require.NoError(t, s.ExportRule("r1", path))

	require.NoError(t, s.Delete("r1"))

	imported, err := s.ImportOne(path, false)
	require.NoError(t, err)
	assert.Equal(t, "r1", imported.ID)
	assert.Equal(t, "Brute Force", imported.Title)
}

func TestImportOneRejectsDuplicateUnlessOverwrite(t *testing.T) {
	s := newTestStore(t)
	r := sampleRule()
	r.ID = "r1"
	_, err := s.Save(r)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "r1.yaml")
	modified := *r
	modified.Title = "Brute Force (modified)"

	data, err := yaml.Marshal(&modified)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err = s.ImportOne(path, false)
	assert.Error(t, err)

	imported, err := s.ImportOne(path, true)
	require.NoError(t, err)
	assert.Equal(t, "Brute Force (modified)", imported.Title)
}

func TestImportSummaryAccounting(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()

	good := sampleRule()
	good.ID = "good-1"
	_, err := s.Save(good)
	require.NoError(t, err)

	goodPath := filepath.Join(dir, "good.yaml")
	require.NoError(t, s.ExportRule("good-1", goodPath))

	badPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("not: [valid"), 0o600))

	require.NoError(t, s.Delete("good-1"))

	summary := s.Import([]string{goodPath, goodPath, badPath}, false)
	assert.Equal(t, 3, len(summary.Skipped)+len(summary.Errors)+summary.SuccessCount)
	assert.Equal(t, 1, summary.SuccessCount)
	assert.Len(t, summary.Skipped, 1)
	assert.Len(t, summary.Errors, 1)
}

func TestExportAllThenImportZip(t *testing.T) {
	s := newTestStore(t)
	r1 := sampleRule()
	r1.ID = "r1"
	r2 := sampleRule()
	r2.ID = "r2"
	_, err := s.Save(r1)
	require.NoError(t, err)
	_, err = s.Save(r2)
	require.NoError(t, err)

	dir := t.TempDir()
	zipPath := filepath.Join(dir, "rules.zip")
	n, err := s.ExportAll(zipPath)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	dest, err := NewStore(t.TempDir())
	require.NoError(t, err)
	summary, err := dest.ImportZip(zipPath, false)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.SuccessCount)
	assert.Empty(t, summary.Errors)
}

func TestParseWindow(t *testing.T) {
	d, err := ParseWindow("5m")
	require.NoError(t, err)
	assert.Equal(t, "5m0s", d.String())

	_, err = ParseWindow("5x")
	assert.Error(t, err)

	_, err = ParseWindow("")
	assert.Error(t, err)
}

func TestParseThreshold(t *testing.T) {
	op, n, err := ParseThreshold(">= 10")
	require.NoError(t, err)
	assert.Equal(t, ThresholdGTE, op)
	assert.Equal(t, 10, n)
	assert.True(t, op.Compare(10, 10))
	assert.False(t, op.Compare(9, 10))

	_, _, err = ParseThreshold("10")
	assert.Error(t, err)
}
