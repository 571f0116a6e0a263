// Package patchstore manages the directory that holds exported patch files.
package patchstore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/pders01/git-continuity/internal/errors"
	"github.com/pders01/git-continuity/internal/models"
)

// PatchFile describes one file in the patch directory
type PatchFile struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified"`
}

// Store reads and writes patch files under a single directory
type Store struct {
	fs     afero.Fs
	dir    string
	logger *slog.Logger
}

// New creates a store rooted at dir
func New(fs afero.Fs, dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{fs: fs, dir: dir, logger: logger}
}

// Dir returns the patch directory
func (s *Store) Dir() string {
	return s.dir
}

// List returns the patch files, newest first. A missing directory is empty.
func (s *Store) List() ([]PatchFile, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read patch directory: %w", err)
	}

	var files []PatchFile
	for _, fi := range entries {
		if !fi.Mode().IsRegular() || hidden(fi.Name()) {
			continue
		}
		files = append(files, s.patchFile(fi))
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// Resolve finds a patch given by the user: an existing path first, then a
// name inside the patch directory (with or without the .patch extension)
func (s *Store) Resolve(name string) (PatchFile, error) {
	if strings.TrimSpace(name) == "" {
		return PatchFile{}, errors.ErrMissingArgument
	}

	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = append(candidates, filepath.Join(s.dir, name))
		if filepath.Ext(name) == "" {
			candidates = append(candidates, filepath.Join(s.dir, name+models.PatchExt))
		}
	}

	for _, path := range candidates {
		fi, err := s.fs.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		pf := s.patchFile(fi)
		pf.Path = path
		return pf, nil
	}
	return PatchFile{}, fmt.Errorf("%w: %s", errors.ErrPatchNotFound, name)
}

// Read returns the content of a resolved patch
func (s *Store) Read(pf PatchFile) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, pf.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read patch %s: %w", pf.Path, err)
	}
	return data, nil
}

// Name decides the file name of a new export. An explicit name gets the
// .patch extension when it has none; without one the name is derived from
// the repository and timestamp and made unique within the directory.
func (s *Store) Name(explicit, repo string, now time.Time) (string, error) {
	if explicit != "" {
		if strings.ContainsAny(explicit, `/\`) || explicit == "." || explicit == ".." {
			return "", errors.NewConfigError("filename", explicit, fmt.Errorf("%w: must be a plain file name", errors.ErrInvalidConfiguration))
		}
		return models.NormalizePatchName(explicit), nil
	}

	name := models.DefaultPatchName(repo, now)
	exists, err := afero.Exists(s.fs, filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to check patch name: %w", err)
	}
	if exists {
		name = models.WithSuffix(name, uuid.NewString()[:8])
		s.logger.Debug("default patch name taken, added suffix", "name", name)
	}
	return name, nil
}

// Write stores data under name in the patch directory and returns its path.
// The file is written to a temporary name first and renamed into place.
func (s *Store) Write(name string, data []byte) (string, error) {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create patch directory: %w", err)
	}

	path := filepath.Join(s.dir, name)
	tmp := filepath.Join(s.dir, "."+name+".tmp")
	if err := afero.WriteFile(s.fs, tmp, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write patch: %w", err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return "", fmt.Errorf("failed to write patch: %w", err)
	}

	s.logger.Debug("patch written", "path", path, "bytes", len(data))
	return path, nil
}

// Remove deletes a patch file
func (s *Store) Remove(pf PatchFile) error {
	if err := s.fs.Remove(pf.Path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", pf.Name, err)
	}
	s.logger.Debug("patch removed", "path", pf.Path)
	return nil
}

func (s *Store) patchFile(fi os.FileInfo) PatchFile {
	return PatchFile{
		Name:    fi.Name(),
		Path:    filepath.Join(s.dir, fi.Name()),
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
