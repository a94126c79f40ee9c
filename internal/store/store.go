package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPath is the config file used when nothing else is configured.
const DefaultPath = "monitor_config.json"

// ErrFileAccess marks failures to read or write the config file.
var ErrFileAccess = errors.New("config file access failed")

// Store persists a Document as a JSON file. Saves are serialised.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger

	created   bool
	recovered string
}

// New returns a store for path. An empty path means DefaultPath.
func New(path string, logger *zap.Logger) *Store {
	if path == "" {
		path = DefaultPath
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the config file location.
func (s *Store) Path() string {
	return s.path
}

// Created reports whether the last Load had to create the file.
func (s *Store) Created() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created
}

// Recovered returns where the last Load moved a corrupt file, if it did.
func (s *Store) Recovered() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recovered
}

// Load reads the document. A missing file is created empty. A file that is
// not valid JSON is moved aside to <path>.corrupt-<unix> and an empty
// document is returned without error.
func (s *Store) Load() (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.created = false
	s.recovered = ""

	b, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Document{}, fmt.Errorf("%w: read %s: %v", ErrFileAccess, s.path, err)
		}
		if err := s.writeLocked(Document{}); err != nil {
			return Document{}, err
		}
		s.created = true
		s.logger.Info("created empty config", zap.String("path", s.path))
		return Document{}, nil
	}

	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		backup := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
		if rerr := os.Rename(s.path, backup); rerr != nil {
			s.logger.Warn("config is not valid JSON and could not be backed up",
				zap.String("path", s.path), zap.Error(err), zap.NamedError("backup_error", rerr))
			return Document{}, nil
		}
		s.recovered = backup
		s.logger.Warn("config is not valid JSON, starting empty",
			zap.String("path", s.path), zap.String("backup", backup), zap.Error(err))
		return Document{}, nil
	}
	return doc, nil
}

// Save overwrites the file with doc.
func (s *Store) Save(doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(doc)
}

func (s *Store) writeLocked(doc Document) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrFileAccess, err)
		}
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrFileAccess, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: %v", ErrFileAccess, err)
	}
	return nil
}
