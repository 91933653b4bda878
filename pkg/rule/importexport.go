package rule

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/siftlog/pkg/sifterr"
)

// ImportSummary is the import_multiple_rules / import_rules_zip command's
// return value.
type ImportSummary struct {
	SuccessCount int      `json:"success_count"`
	Skipped      []string `json:"skipped"`
	Errors       []string `json:"errors"`
}

// maxImportFileSize guards a single imported rule file, maxImportEntries a
// ZIP archive's entry count, grounded on the pack's own import limits
// (sigmaseven-cerberus/api/rules_import_export.go).
const (
	maxImportFileSize = 5 * 1024 * 1024
	maxImportEntries  = 1000
)

// ImportOne loads a single rule YAML file and saves it to the store. On
// success it returns the saved rule; import semantics around
// duplicate/overwrite match Import.
func (s *Store) ImportOne(path string, overwrite bool) (*Rule, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is an explicit, caller-supplied argument
	if err != nil {
		return nil, &sifterr.IOError{Path: path, Err: err}
	}
	return s.importBytes(data, overwrite)
}

func (s *Store) importBytes(data []byte, overwrite bool) (*Rule, error) {
	var r Rule
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, &sifterr.SchemaError{Msg: "invalid YAML: " + err.Error()}
	}
	if err := Validate(&r); err != nil {
		return nil, err
	}

	if r.ID != "" {
		if _, err := s.Get(r.ID); err == nil {
			if !overwrite {
				return nil, &sifterr.DuplicateIDError{ID: r.ID}
			}
		}
	}

	return s.Save(&r)
}

// Import accepts a batch of rule file paths (YAML or ZIP) and returns an
// ImportSummary. Each YAML path adds exactly one to success_count,
// skipped or errors; a ZIP path adds one per YAML entry it holds (or a
// single error if the archive cannot be opened), so the totals equal
// len(paths) only when no ZIP paths are given.
func (s *Store) Import(paths []string, overwrite bool) ImportSummary {
	summary := ImportSummary{}

	for _, path := range paths {
		if filepath.Ext(path) == ".zip" {
			zipSummary, err := s.ImportZip(path, overwrite)
			if err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", path, err))
				continue
			}
			summary.SuccessCount += zipSummary.SuccessCount
			summary.Skipped = append(summary.Skipped, zipSummary.Skipped...)
			summary.Errors = append(summary.Errors, zipSummary.Errors...)
			continue
		}

		if _, err := s.ImportOne(path, overwrite); err != nil {
			if dup, ok := err.(*sifterr.DuplicateIDError); ok {
				summary.Skipped = append(summary.Skipped, dup.ID)
				continue
			}
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		summary.SuccessCount++
	}

	return summary
}

// ImportZip expands a ZIP archive of rule YAML files and imports each
// entry through the same pipeline as Import.
func (s *Store) ImportZip(zipPath string, overwrite bool) (ImportSummary, error) {
	summary := ImportSummary{}

	info, err := os.Stat(zipPath)
	if err != nil {
		return summary, &sifterr.IOError{Path: zipPath, Err: err}
	}
	if info.Size() > maxImportFileSize*10 {
		return summary, &sifterr.IOError{Path: zipPath, Err: fmt.Errorf("archive exceeds size limit")}
	}

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return summary, &sifterr.IOError{Path: zipPath, Err: err}
	}
	defer zr.Close()

	count := 0
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if filepath.Ext(f.Name) != ".yaml" && filepath.Ext(f.Name) != ".yml" {
			continue
		}
		count++
		if count > maxImportEntries {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: archive exceeds %d entries, stopped early", f.Name, maxImportEntries))
			break
		}
		if f.UncompressedSize64 > maxImportFileSize {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: exceeds size limit", f.Name))
			continue
		}

		rc, err := f.Open()
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", f.Name, err))
			continue
		}
		data, err := io.ReadAll(io.LimitReader(rc, maxImportFileSize+1))
		_ = rc.Close()
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", f.Name, err))
			continue
		}

		if _, err := s.importBytes(data, overwrite); err != nil {
			if dup, ok := err.(*sifterr.DuplicateIDError); ok {
				summary.Skipped = append(summary.Skipped, dup.ID)
				continue
			}
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", f.Name, err))
			continue
		}
		summary.SuccessCount++
	}

	return summary, nil
}

// ExportRule writes a single rule's canonical YAML to destPath.
func (s *Store) ExportRule(id, destPath string) error {
	r, err := s.Get(id)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding rule %q: %w", id, err)
	}
	if err := os.WriteFile(destPath, data, 0o600); err != nil {
		return &sifterr.IOError{Path: destPath, Err: err}
	}
	return nil
}

// ExportAll writes every rule in the store into a ZIP archive at
// destPath, returning the count written.
func (s *Store) ExportAll(destPath string) (int, error) {
	rules, _, err := s.List()
	if err != nil {
		return 0, err
	}

	f, err := os.Create(destPath) // #nosec G304 -- path is an explicit, caller-supplied argument
	if err != nil {
		return 0, &sifterr.IOError{Path: destPath, Err: err}
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	for _, r := range rules {
		data, err := yaml.Marshal(r)
		if err != nil {
			return 0, fmt.Errorf("encoding rule %q: %w", r.ID, err)
		}
		w, err := zw.Create(r.ID + ".yaml")
		if err != nil {
			return 0, fmt.Errorf("writing zip entry for %q: %w", r.ID, err)
		}
		if _, err := w.Write(data); err != nil {
			return 0, fmt.Errorf("writing zip entry for %q: %w", r.ID, err)
		}
	}

	return len(rules), nil
}

