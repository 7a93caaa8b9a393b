package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/dxcite/internal/model"
)

// Sink persists result records as one JSON file per session
type Sink struct {
	dir string
}

// NewSink creates a sink writing into dir
func NewSink(dir string) *Sink {
	return &Sink{dir: dir}
}

// Path returns the file a record is saved to
func (s *Sink) Path(r *model.Record) string {
	return filepath.Join(s.dir, "results_"+r.ID()+".json")
}

// Save writes the record atomically and returns its path
func (s *Sink) Save(r *model.Record) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create results directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}

	path := s.Path(r)
	tmp, err := os.CreateTemp(s.dir, ".record-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("write record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("close record: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("rename record: %w", err)
	}
	return path, nil
}

// Load reads one saved record
func Load(path string) (*model.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	r := &model.Record{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", path, err)
	}
	return r, nil
}

// List returns the saved record files in dir, sorted by name
func (s *Sink) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read results directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "results_") || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
