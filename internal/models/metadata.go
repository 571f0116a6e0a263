package models

import "time"

// RepoInfo describes the repository a patch is exported from
type RepoInfo struct {
	Branch string // "HEAD" when detached
	Commit string // empty on an unborn branch
	Name   string // base name of the work tree root
	Root   string
}

// Metadata represents the header block of a patch envelope
type Metadata struct {
	Title      string    `json:"title"`
	Created    string    `json:"created"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	Branch     string    `json:"branch"`
	Commit     string    `json:"commit"`
	Repository string    `json:"repository"`
}

// ShortCommit returns the first eight characters of the commit hash
func (m Metadata) ShortCommit() string {
	if len(m.Commit) > 8 {
		return m.Commit[:8]
	}
	return m.Commit
}
