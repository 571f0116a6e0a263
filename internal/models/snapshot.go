package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ChangeSnapshot is the set of uncommitted changes captured at export time
type ChangeSnapshot struct {
	Staged    []byte   // binary diff of the index against HEAD
	Unstaged  []byte   // binary diff of the working tree against the index
	Untracked []string // paths relative to the repository root
}

// HasStaged reports whether the snapshot carries staged changes
func (s ChangeSnapshot) HasStaged() bool {
	return len(s.Staged) > 0
}

// HasUnstaged reports whether the snapshot carries unstaged changes
func (s ChangeSnapshot) HasUnstaged() bool {
	return len(s.Unstaged) > 0
}

// HasChanges reports whether the snapshot justifies an export.
// Untracked files alone do not count.
func (s ChangeSnapshot) HasChanges() bool {
	return s.HasStaged() || s.HasUnstaged()
}

// PatchExt is the extension given to patch files
const PatchExt = ".patch"

// DefaultPatchName generates the default file name for an export
// Format: <repo>_YYYYMMDD_HHMMSS.patch
func DefaultPatchName(repo string, timestamp time.Time) string {
	if repo == "" {
		repo = "patch"
	}
	return fmt.Sprintf("%s_%s%s", repo, timestamp.Format("20060102_150405"), PatchExt)
}

// NormalizePatchName appends the patch extension to names that have none
func NormalizePatchName(name string) string {
	if filepath.Ext(name) == "" {
		return name + PatchExt
	}
	return name
}

// WithSuffix inserts suffix before the extension of name
func WithSuffix(name, suffix string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "-" + suffix + ext
}
