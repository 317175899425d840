// sources.go manages saved Postgres data sources.
//
// Sources are stored in ~/.paidata/sources.yaml so users can reload
// a query result without retyping credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Source is a named, saveable Postgres query.
type Source struct {
	Name     string         `yaml:"name"`
	Postgres PostgresConfig `yaml:"postgres"`
	Query    string         `yaml:"query"`
}

// SourceStore manages saved sources on disk.
type SourceStore struct {
	path    string
	Sources []Source `yaml:"sources"`
}

// NewSourceStore creates a store, loading from ~/.paidata/sources.yaml.
func NewSourceStore() (*SourceStore, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return OpenSourceStore(filepath.Join(dir, "sources.yaml"))
}

// OpenSourceStore loads a store from an explicit path.
func OpenSourceStore(path string) (*SourceStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	store := &SourceStore{path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(raw, store); err != nil {
		return nil, fmt.Errorf("parse sources: %w", err)
	}

	return store, nil
}

// Save writes all sources to disk.
func (s *SourceStore) Save() error {
	raw, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0600)
}

// Add adds or updates a source by name.
func (s *SourceStore) Add(src Source) {
	for i, c := range s.Sources {
		if c.Name == src.Name {
			s.Sources[i] = src
			return
		}
	}
	s.Sources = append(s.Sources, src)
}

// Delete removes a source by name.
func (s *SourceStore) Delete(name string) bool {
	for i, c := range s.Sources {
		if c.Name == name {
			s.Sources = append(s.Sources[:i], s.Sources[i+1:]...)
			return true
		}
	}
	return false
}

// Get retrieves a source by name.
func (s *SourceStore) Get(name string) (Source, bool) {
	for _, c := range s.Sources {
		if c.Name == name {
			return c, true
		}
	}
	return Source{}, false
}
