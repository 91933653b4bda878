// Package query implements the ad-hoc Query Interface (C6): it runs a
// caller-supplied analytical SQL string against declared log files,
// independent of the custom condition language in pkg/condition. The
// embedded engine is a pure-Go, in-process SQL engine rather than the
// original program's DuckDB, grounded on the pack's own use of
// modernc.org/sqlite (sigmaseven-cerberus/storage/sqlite.go).
package query

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ccollicutt/siftlog/pkg/record"
	"github.com/ccollicutt/siftlog/pkg/sifterr"
)

// Result is the run_query command's return value.
type Result struct {
	Columns         []string                 `json:"columns"`
	Rows            []map[string]interface{} `json:"rows"`
	RowCount        int                      `json:"row_count"`
	ExecutionTimeMs int64                    `json:"execution_time_ms"`
}

// FormatLookup resolves a log file path to its declared format, the way
// the engine's logs/metadata.json sidecar does. It is the query engine's
// only source of format information: read_json_auto never sniffs file
// content, honoring the "no automatic format detection" non-goal even
// for this ad-hoc path.
type FormatLookup func(path string) (record.Format, bool)

// tableRefPattern matches read_json_auto('path') and
// read_json('path', 'format') table-valued references.
var tableRefPattern = regexp.MustCompile(`(?i)read_json(?:_auto)?\s*\(\s*'([^']*)'\s*(?:,\s*'([^']*)'\s*)?\)`)

// Run materializes every read_json_auto/read_json reference in query into
// a temporary table, then executes the remaining SQL against an ephemeral
// in-memory database. Errors are returned verbatim, wrapped as
// *sifterr.EngineError.
func Run(ctx context.Context, query string, lookup FormatLookup) (Result, error) {
	start := time.Now()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return Result{}, &sifterr.EngineError{Query: query, Err: err}
	}
	defer db.Close()

	rewritten, err := materializeTables(ctx, db, query, lookup)
	if err != nil {
		return Result{}, err
	}

	rows, err := db.QueryContext(ctx, rewritten)
	if err != nil {
		return Result{}, &sifterr.EngineError{Query: query, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Result{}, &sifterr.EngineError{Query: query, Err: err}
	}

	result := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return Result{}, &sifterr.EngineError{Query: query, Err: err}
		}
		row := make(map[string]interface{}, len(cols))
		for i, c := range cols {
			row[c] = normalizeValue(values[i])
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return Result{}, &sifterr.EngineError{Query: query, Err: err}
	}

	return Result{
		Columns:         cols,
		Rows:            result,
		RowCount:        len(result),
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func normalizeValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// materializeTables rewrites query, replacing each distinct
// read_json_auto/read_json reference with a generated table name after
// loading that file's records into a one-column (record TEXT, a JSON
// document) table the rest of the query can address with json_extract.
func materializeTables(ctx context.Context, db *sql.DB, query string, lookup FormatLookup) (string, error) {
	matches := tableRefPattern.FindAllStringSubmatchIndex(query, -1)
	if len(matches) == 0 {
		return query, nil
	}

	var out strings.Builder
	last := 0
	seen := map[string]string{}
	seq := 0

	for _, m := range matches {
		start, end := m[0], m[1]
		path := query[m[2]:m[3]]
		formatHint := ""
		if m[4] != -1 {
			formatHint = query[m[4]:m[5]]
		}

		key := path + "|" + formatHint
		tableName, ok := seen[key]
		if !ok {
			format, err := resolveFormat(path, formatHint, lookup)
			if err != nil {
				return "", err
			}
			seq++
			tableName = fmt.Sprintf("log_%d", seq)
			if err := materializeOne(ctx, db, tableName, path, format); err != nil {
				return "", err
			}
			seen[key] = tableName
		}

		out.WriteString(query[last:start])
		out.WriteString(tableName)
		last = end
	}
	out.WriteString(query[last:])

	return out.String(), nil
}

func resolveFormat(path, hint string, lookup FormatLookup) (record.Format, error) {
	if hint != "" {
		format, ok := record.ParseFormat(hint)
		if !ok {
			return "", &sifterr.EngineError{Query: path, Err: fmt.Errorf("unknown log format %q", hint)}
		}
		return format, nil
	}
	if lookup == nil {
		return "", &sifterr.EngineError{Query: path, Err: fmt.Errorf("read_json_auto(%q): no declared format and no format lookup configured", path)}
	}
	format, ok := lookup(path)
	if !ok {
		return "", &sifterr.EngineError{Query: path, Err: fmt.Errorf("read_json_auto(%q): file has no declared format", path)}
	}
	return format, nil
}

func materializeOne(ctx context.Context, db *sql.DB, tableName, path string, format record.Format) error {
	src, err := record.New(path, format)
	if err != nil {
		return &sifterr.EngineError{Query: path, Err: err}
	}
	defer src.Close()

	if _, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE %s (record TEXT)`, tableName)); err != nil {
		return &sifterr.EngineError{Query: path, Err: err}
	}

	stmt, err := db.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (record) VALUES (?)`, tableName))
	if err != nil {
		return &sifterr.EngineError{Query: path, Err: err}
	}
	defer stmt.Close()

	for {
		rec, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return &sifterr.EngineError{Query: path, Err: err}
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return &sifterr.EngineError{Query: path, Err: err}
		}
		if _, err := stmt.ExecContext(ctx, string(data)); err != nil {
			return &sifterr.EngineError{Query: path, Err: err}
		}
	}
	return nil
}
