package rule

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/siftlog/pkg/sifterr"
)

// maxRuleFileSize guards against a YAML bomb in an imported/loaded rule
// file, grounded on the pack's own 1MB-size protection for Sigma rule
// files.
const maxRuleFileSize = 1024 * 1024

// Store persists rules as one YAML file per rule in a configured
// directory. Writes are serialized with a single-writer lock; reads do
// not lock.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a rule store rooted at dir, creating it if absent.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, &sifterr.IOError{Path: dir, Err: err}
	}
	return &Store{dir: dir}, nil
}

func (s *Store) pathFor(id string) string {
	return filepath.Join(s.dir, id+".yaml")
}

// List returns every well-formed rule in the store plus the base names of
// malformed files, which are reported but do not abort listing.
func (s *Store) List() ([]*Rule, []string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, nil, &sifterr.IOError{Path: s.dir, Err: err}
	}

	var rules []*Rule
	var malformed []string

	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}
		r, err := s.readFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			malformed = append(malformed, entry.Name())
			continue
		}
		rules = append(rules, r)
	}

	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules, malformed, nil
}

// Get retrieves a single rule by id.
func (s *Store) Get(id string) (*Rule, error) {
	path := s.pathFor(id)
	r, err := s.readFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &sifterr.IOError{Path: path, Err: err}
		}
		return nil, err
	}
	return r, nil
}

func (s *Store) readFile(path string) (*Rule, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxRuleFileSize {
		return nil, &sifterr.SchemaError{Msg: fmt.Sprintf("rule file exceeds %d bytes", maxRuleFileSize)}
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is derived from a trusted, configured rule directory
	if err != nil {
		return nil, err
	}

	var r Rule
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, &sifterr.SchemaError{Msg: "invalid YAML: " + err.Error()}
	}
	if err := Validate(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Save creates or overwrites a rule. If r.ID is empty, a fresh id is
// generated and used both for the returned rule and the file name. The
// write is atomic: encode to a temp file in the same directory, then
// rename over the destination.
func (s *Store) Save(r *Rule) (*Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if err := Validate(r); err != nil {
		return nil, err
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding rule %q: %w", r.ID, err)
	}

	dest := s.pathFor(r.ID)
	tmp, err := os.CreateTemp(s.dir, ".rule-*.yaml.tmp")
	if err != nil {
		return nil, &sifterr.IOError{Path: s.dir, Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return nil, &sifterr.IOError{Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return nil, &sifterr.IOError{Path: tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return nil, &sifterr.IOError{Path: dest, Err: err}
	}

	return r, nil
}

// Delete removes a rule by id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.pathFor(id)
	if err := os.Remove(path); err != nil {
		return &sifterr.IOError{Path: path, Err: err}
	}
	return nil
}

func isYAMLFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
