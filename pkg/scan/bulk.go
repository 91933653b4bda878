package scan

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/siftlog/pkg/condition"
	"github.com/ccollicutt/siftlog/pkg/record"
	"github.com/ccollicutt/siftlog/pkg/rule"
)

// FileSpec names one log file a bulk scan should cover, together with
// its declared format. Bulk never sniffs a format itself; a file with no
// declared format is the caller's responsibility to omit, and omitting
// it is how the "no automatic format detection" non-goal is honored for
// files missing a metadata entry.
type FileSpec struct {
	Path   string
	Format record.Format
}

// Bulk scans every file in files against rules, fanning the per-file
// work out across a worker pool bounded by GOMAXPROCS. A single file's
// I/O or format failure is recorded in FailedFiles and does not abort
// the batch. Results are returned in the same order files were given,
// preserving a deterministic file order regardless of completion order.
//
// The condition cache is shared across all files so each rule's
// condition is parsed once per call rather than once per file.
func Bulk(ctx context.Context, files []FileSpec, rules []*rule.Rule, log *zap.SugaredLogger) BulkResponse {
	start := time.Now()

	results := make([]*FileResult, len(files))
	failures := make([]*FailedFile, len(files))
	cache := condition.NewCache()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			src, err := record.New(f.Path, f.Format)
			if err != nil {
				failures[i] = &FailedFile{Path: f.Path, Error: err.Error()}
				return nil
			}
			defer src.Close()

			resp, err := Scan(gctx, src, rules, cache, log)
			if err != nil {
				failures[i] = &FailedFile{Path: f.Path, Error: err.Error()}
				return nil
			}
			results[i] = &FileResult{Path: f.Path, Alerts: resp.Alerts}
			return nil
		})
	}

	// Per-file failures are captured into failures/results above rather
	// than propagated; Wait only surfaces infrastructure-level errors,
	// none of which this loop produces.
	_ = g.Wait()

	resp := BulkResponse{FileResults: []FileResult{}, FailedFiles: []FailedFile{}}
	for i := range files {
		if results[i] != nil {
			resp.FileResults = append(resp.FileResults, *results[i])
			resp.TotalAlerts += len(results[i].Alerts)
			resp.TotalFilesScanned++
		}
		if failures[i] != nil {
			resp.FailedFiles = append(resp.FailedFiles, *failures[i])
		}
	}
	resp.TotalScanTimeMs = time.Since(start).Milliseconds()

	return resp
}
