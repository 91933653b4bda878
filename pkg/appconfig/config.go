package appconfig

import (
	"encoding/json"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/ccollicutt/siftlog/pkg/sifterr"
)

var structValidator = validator.New()

// defaultMaxRecentFiles bounds the recent-files list absent an explicit
// override in config.json.
const defaultMaxRecentFiles = 10

// Config is the engine's config.json (§6's on-disk layout), read and
// written wholesale by the get_config/save_config commands.
type Config struct {
	RulesDirectory       string                 `json:"rules_directory,omitempty"`
	DefaultLogsDirectory string                 `json:"default_logs_directory,omitempty"`
	RecentLogFiles       []string               `json:"recent_log_files"`
	MaxRecentFiles       int                    `json:"max_recent_files" validate:"min=1"`
	UIPreferences        map[string]interface{} `json:"ui_preferences,omitempty"`
}

// DefaultConfig returns a Config with every field at its default (empty
// directories, an empty recent-files list capped at defaultMaxRecentFiles,
// empty UI preferences), the way the teacher's config.DefaultConfig seeds
// fields Load then overlays the file's contents onto.
func DefaultConfig() *Config {
	return &Config{
		RecentLogFiles: []string{},
		MaxRecentFiles: defaultMaxRecentFiles,
		UIPreferences:  map[string]interface{}{},
	}
}

// Load reads config.json from dataDir, defaulting and validating it.
// A missing file is not an error: Load returns DefaultConfig().
func Load(dataDir string) (*Config, error) {
	path := ConfigPath(dataDir)
	data, err := os.ReadFile(path) // #nosec G304 -- path is derived from the configured data directory
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, &sifterr.IOError{Path: path, Err: err}
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, &sifterr.FormatError{Path: path, Msg: "invalid config.json", Err: err}
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks a Config's structural invariants.
func Validate(cfg *Config) error {
	if err := structValidator.Struct(cfg); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			fe := ve[0]
			return &sifterr.SchemaError{Field: fe.Namespace(), Msg: fe.Tag() + " constraint failed"}
		}
		return &sifterr.SchemaError{Msg: err.Error()}
	}
	return nil
}

// Save atomically writes cfg to dataDir/config.json (write temp, rename).
func Save(dataDir string, cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return &sifterr.IOError{Path: dataDir, Err: err}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return &sifterr.IOError{Path: ConfigPath(dataDir), Err: err}
	}

	dest := ConfigPath(dataDir)
	tmp, err := os.CreateTemp(dataDir, ".config-*.json.tmp")
	if err != nil {
		return &sifterr.IOError{Path: dataDir, Err: err}
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

// AddRecentLogFile prepends path to the recent-files list, deduplicating
// and truncating to MaxRecentFiles.
func (c *Config) AddRecentLogFile(path string) {
	filtered := make([]string, 0, len(c.RecentLogFiles)+1)
	filtered = append(filtered, path)
	for _, p := range c.RecentLogFiles {
		if p != path {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) > c.MaxRecentFiles {
		filtered = filtered[:c.MaxRecentFiles]
	}
	c.RecentLogFiles = filtered
}

// ClearRecentFiles empties the recent-files list.
func (c *Config) ClearRecentFiles() {
	c.RecentLogFiles = []string{}
}
