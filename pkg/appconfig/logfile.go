package appconfig

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ccollicutt/siftlog/pkg/record"
	"github.com/ccollicutt/siftlog/pkg/sifterr"
)

// logMetaMu serializes writes to logs/metadata.json, matching the rule
// store's single-writer discipline for its own directory.
var logMetaMu sync.Mutex

// LogFileInfo describes one imported log file for list_log_files.
type LogFileInfo struct {
	Filename string        `json:"filename"`
	LogType  record.Format `json:"log_type"`
	SizeBytes int64        `json:"size_bytes"`
}

// loadMetadata reads logs/metadata.json, returning an empty map if it
// does not yet exist.
func loadMetadata(dataDir string) (map[string]record.Format, error) {
	path := MetadataPath(dataDir)
	data, err := os.ReadFile(path) // #nosec G304 -- path is derived from the configured data directory
	if os.IsNotExist(err) {
		return map[string]record.Format{}, nil
	}
	if err != nil {
		return nil, &sifterr.IOError{Path: path, Err: err}
	}

	raw := map[string]string{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &sifterr.FormatError{Path: path, Msg: "invalid metadata.json", Err: err}
	}

	meta := make(map[string]record.Format, len(raw))
	for filename, formatStr := range raw {
		format, ok := record.ParseFormat(formatStr)
		if !ok {
			return nil, &sifterr.FormatError{Path: path, Msg: "unknown log_type " + formatStr + " for " + filename}
		}
		meta[filename] = format
	}
	return meta, nil
}

// saveMetadata atomically rewrites logs/metadata.json.
func saveMetadata(dataDir string, meta map[string]record.Format) error {
	logsDir := LogsDir(dataDir)
	if err := os.MkdirAll(logsDir, 0o750); err != nil {
		return &sifterr.IOError{Path: logsDir, Err: err}
	}

	raw := make(map[string]string, len(meta))
	for filename, format := range meta {
		raw[filename] = string(format)
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return &sifterr.IOError{Path: MetadataPath(dataDir), Err: err}
	}

	dest := MetadataPath(dataDir)
	tmp, err := os.CreateTemp(logsDir, ".metadata-*.json.tmp")
	if err != nil {
		return &sifterr.IOError{Path: logsDir, Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &sifterr.IOError{Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &sifterr.IOError{Path: tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return &sifterr.IOError{Path: dest, Err: err}
	}
	return nil
}

// ListLogFiles returns every file recorded in logs/metadata.json, sorted
// by filename, augmented with its current on-disk size.
func ListLogFiles(dataDir string) ([]LogFileInfo, error) {
	meta, err := loadMetadata(dataDir)
	if err != nil {
		return nil, err
	}

	infos := make([]LogFileInfo, 0, len(meta))
	for filename, format := range meta {
		size := int64(0)
		if info, err := os.Stat(filepath.Join(LogsDir(dataDir), filename)); err == nil {
			size = info.Size()
		}
		infos = append(infos, LogFileInfo{Filename: filename, LogType: format, SizeBytes: size})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Filename < infos[j].Filename })
	return infos, nil
}

// ImportLogFile copies sourcePath into logs/<basename> and records its
// declared log type in the metadata sidecar.
func ImportLogFile(dataDir, sourcePath string, logType record.Format) (LogFileInfo, error) {
	logMetaMu.Lock()
	defer logMetaMu.Unlock()

	if _, ok := record.ParseFormat(string(logType)); !ok {
		return LogFileInfo{}, &sifterr.SchemaError{Field: "log_type", Msg: "unknown format " + string(logType)}
	}

	logsDir := LogsDir(dataDir)
	if err := os.MkdirAll(logsDir, 0o750); err != nil {
		return LogFileInfo{}, &sifterr.IOError{Path: logsDir, Err: err}
	}

	filename := filepath.Base(sourcePath)
	dest := filepath.Join(logsDir, filename)
	if err := copyFile(sourcePath, dest); err != nil {
		return LogFileInfo{}, err
	}

	meta, err := loadMetadata(dataDir)
	if err != nil {
		return LogFileInfo{}, err
	}
	meta[filename] = logType
	if err := saveMetadata(dataDir, meta); err != nil {
		return LogFileInfo{}, err
	}

	info, statErr := os.Stat(dest)
	size := int64(0)
	if statErr == nil {
		size = info.Size()
	}
	return LogFileInfo{Filename: filename, LogType: logType, SizeBytes: size}, nil
}

// UpdateLogType changes an already-imported log file's declared format.
func UpdateLogType(dataDir, filename string, logType record.Format) error {
	logMetaMu.Lock()
	defer logMetaMu.Unlock()

	if _, ok := record.ParseFormat(string(logType)); !ok {
		return &sifterr.SchemaError{Field: "log_type", Msg: "unknown format " + string(logType)}
	}

	meta, err := loadMetadata(dataDir)
	if err != nil {
		return err
	}
	if _, ok := meta[filename]; !ok {
		return &sifterr.IOError{Path: filename, Err: os.ErrNotExist}
	}
	meta[filename] = logType
	return saveMetadata(dataDir, meta)
}

// DeleteLogFile removes a log file and its metadata entry.
func DeleteLogFile(dataDir, filename string) error {
	logMetaMu.Lock()
	defer logMetaMu.Unlock()

	meta, err := loadMetadata(dataDir)
	if err != nil {
		return err
	}
	delete(meta, filename)
	if err := saveMetadata(dataDir, meta); err != nil {
		return err
	}

	path := filepath.Join(LogsDir(dataDir), filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &sifterr.IOError{Path: path, Err: err}
	}
	return nil
}

// FormatLookup returns a function suitable for pkg/query.Run's
// read_json_auto resolution, backed by dataDir's metadata sidecar and
// matching log files by absolute path under logs/.
func FormatLookup(dataDir string) (func(path string) (record.Format, bool), error) {
	meta, err := loadMetadata(dataDir)
	if err != nil {
		return nil, err
	}
	logsDir := LogsDir(dataDir)
	return func(path string) (record.Format, bool) {
		rel, err := filepath.Rel(logsDir, path)
		if err != nil {
			return "", false
		}
		format, ok := meta[rel]
		return format, ok
	}, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src) // #nosec G304 -- path is an explicit, caller-supplied argument
	if err != nil {
		return &sifterr.IOError{Path: src, Err: err}
	}
	defer in.Close()

	out, err := os.Create(dest) // #nosec G304 -- destination is derived from the configured logs directory
	if err != nil {
		return &sifterr.IOError{Path: dest, Err: err}
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return &sifterr.IOError{Path: dest, Err: err}
	}
	return nil
}
