package hosts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Store persists the raw lines of the host registry
type Store interface {
	Load() ([]string, error)
	Save(lines []string) error
}

// FileStore keeps the registry in a line-oriented file
type FileStore struct {
	fs   afero.Fs
	path string
}

// NewFileStore creates a store for the file at path on fs
func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

// Path returns the location of the registry file
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the registry file. A missing file is an empty registry.
func (s *FileStore) Load() ([]string, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read host registry: %w", err)
	}

	content := strings.TrimSuffix(string(data), "\n")
	if content == "" {
		return nil, nil
	}
	return strings.Split(content, "\n"), nil
}

// Save replaces the registry file with lines
func (s *FileStore) Save(lines []string) error {
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var content string
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write host registry: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace host registry: %w", err)
	}
	return nil
}

// MemStore keeps the registry in memory
type MemStore struct {
	Lines []string
}

// Load returns a copy of the stored lines
func (s *MemStore) Load() ([]string, error) {
	return append([]string(nil), s.Lines...), nil
}

// Save replaces the stored lines
func (s *MemStore) Save(lines []string) error {
	s.Lines = append([]string(nil), lines...)
	return nil
}
