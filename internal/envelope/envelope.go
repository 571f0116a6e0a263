// Package envelope reads and writes the patch envelope: a plain-text file
// holding a metadata header followed by optional delimited sections.
//
//	# Git Continuity Patch
//	# Created: <date>
//	# Branch: <branch>
//	# Commit: <commit-sha>
//	# Repository: <repo-name>
//	---METADATA-END---
//	---STAGED-CHANGES---
//	<binary diff, index vs HEAD>
//	---STAGED-END---
//	---UNSTAGED-CHANGES---
//	<binary diff, worktree vs index>
//	---UNSTAGED-END---
//	---UNTRACKED-FILES---
//	<one relative path per line>
//	---UNTRACKED-END---
//
// Markers are whole lines. Section payloads are stored verbatim.
package envelope

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/pders01/git-continuity/internal/errors"
	"github.com/pders01/git-continuity/internal/models"
)

// Tag identifies a section of the envelope
type Tag string

const (
	TagStaged    Tag = "STAGED-CHANGES"
	TagUnstaged  Tag = "UNSTAGED-CHANGES"
	TagUntracked Tag = "UNTRACKED-FILES"
)

const (
	// Title is the first metadata line of every envelope
	Title = "Git Continuity Patch"

	// CreatedLayout is the layout of the Created metadata line
	CreatedLayout = time.UnixDate

	metadataEnd   = "---METADATA-END---"
	commentPrefix = "#"
)

// Tags lists every section tag in the order sections appear in an envelope
var Tags = []Tag{TagStaged, TagUnstaged, TagUntracked}

// StartMarker returns the line opening the section
func (t Tag) StartMarker() string {
	return "---" + string(t) + "---"
}

// EndMarker returns the line closing the section
func (t Tag) EndMarker() string {
	name, _, _ := strings.Cut(string(t), "-")
	return "---" + name + "-END---"
}

// Label returns a human readable name for the section
func (t Tag) Label() string {
	switch t {
	case TagStaged:
		return "Staged changes"
	case TagUnstaged:
		return "Unstaged changes"
	case TagUntracked:
		return "Untracked files"
	default:
		return string(t)
	}
}

// Encode serializes repository metadata and a change snapshot into an envelope.
// It returns ErrNoChanges when the snapshot has neither staged nor unstaged
// changes; untracked files alone never produce an envelope.
func Encode(info models.RepoInfo, snap models.ChangeSnapshot, created time.Time) ([]byte, error) {
	if !snap.HasChanges() {
		return nil, errors.ErrNoChanges
	}

	sections := []struct {
		tag     Tag
		payload []byte
	}{
		{TagStaged, snap.Staged},
		{TagUnstaged, snap.Unstaged},
		{TagUntracked, []byte(strings.Join(snap.Untracked, "\n"))},
	}
	for _, s := range sections {
		if err := checkPayload(s.tag, s.payload); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	writeComment(&buf, Title)
	writeComment(&buf, "Created: "+created.Format(CreatedLayout))
	writeComment(&buf, "Branch: "+info.Branch)
	writeComment(&buf, "Commit: "+info.Commit)
	writeComment(&buf, "Repository: "+info.Name)
	buf.WriteString(metadataEnd + "\n")

	for _, s := range sections {
		if len(s.payload) > 0 {
			writeSection(&buf, s.tag, s.payload)
		}
	}

	return buf.Bytes(), nil
}

func writeComment(buf *bytes.Buffer, text string) {
	buf.WriteString(strings.TrimRight(commentPrefix+" "+text, " "))
	buf.WriteByte('\n')
}

// checkPayload rejects a payload holding a line that would be read back as a
// marker. A deleted line "--STAGED-END---" is one such line once git prefixes
// it with "-".
func checkPayload(tag Tag, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	for n, line := range splitLines(payload) {
		if isMarker(line) {
			return errors.Wrapf(errors.ErrMalformedPatch,
				"%s line %d equals the marker %q and cannot be stored", tag.Label(), n+1, line)
		}
	}
	return nil
}

func writeSection(buf *bytes.Buffer, tag Tag, payload []byte) {
	buf.WriteString(tag.StartMarker() + "\n")
	buf.Write(payload)
	// the end marker must start its own line
	if len(payload) > 0 && payload[len(payload)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString(tag.EndMarker() + "\n")
}

// ExtractSection returns the bytes strictly between the start and end marker
// lines of tag. The boolean is false when the start marker is absent. A
// section missing its end marker runs to the end of the data.
//
// Only the requested section is scanned for; the result is a copy. Encode
// terminates a payload that lacks a final newline, so such a payload comes
// back with one. The untracked listing is written without a trailing newline
// and therefore reads back as the joined paths plus "\n"; use ExtractLines
// for the paths themselves.
func ExtractSection(data []byte, tag Tag) ([]byte, bool) {
	start := findLine(data, tag.StartMarker(), 0)
	if start < 0 {
		return nil, false
	}

	contentStart := start + len(tag.StartMarker())
	if contentStart < len(data) && data[contentStart] == '\n' {
		contentStart++
	}

	end := findLine(data, tag.EndMarker(), contentStart)
	if end < 0 {
		end = len(data)
	}

	return bytes.Clone(data[contentStart:end]), true
}

// ExtractLines returns the non-empty lines of a section, used for the
// untracked file manifest
func ExtractLines(data []byte, tag Tag) ([]string, bool) {
	section, ok := ExtractSection(data, tag)
	if !ok {
		return nil, false
	}

	var lines []string
	for _, line := range strings.Split(string(section), "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, true
}

// DecodeMetadata returns every comment line before the end-of-metadata
// marker, stripped of its comment prefix, in original order.
func DecodeMetadata(data []byte) []string {
	var lines []string
	for _, line := range splitLines(data) {
		if line == metadataEnd || isStartMarker(line) {
			break
		}
		if strings.HasPrefix(line, commentPrefix) {
			text := strings.TrimPrefix(line, commentPrefix)
			lines = append(lines, strings.TrimPrefix(text, " "))
		}
	}
	return lines
}

// ParseMetadata decodes the metadata header into its known fields
func ParseMetadata(data []byte) (models.Metadata, error) {
	if findLine(data, metadataEnd, 0) < 0 {
		return models.Metadata{}, errors.Wrap(errors.ErrMalformedPatch, "missing "+metadataEnd+" marker")
	}

	var meta models.Metadata
	for i, line := range DecodeMetadata(data) {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			if i == 0 {
				meta.Title = line
			}
			continue
		}

		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Created":
			meta.Created = value
			if t, err := time.Parse(CreatedLayout, value); err == nil {
				meta.CreatedAt = t
			}
		case "Branch":
			meta.Branch = value
		case "Commit":
			meta.Commit = value
		case "Repository":
			meta.Repository = value
		}
	}

	return meta, nil
}

// Validate checks the envelope grammar: the metadata block comes first,
// every section that is opened is closed before any other marker appears,
// and sections appear at most once in the fixed order staged, unstaged,
// untracked.
func Validate(data []byte) error {
	sawMetadataEnd := false
	var open *Tag
	last := -1

	for n, line := range splitLines(data) {
		lineNo := n + 1

		if line == metadataEnd {
			if sawMetadataEnd {
				return malformed(lineNo, "duplicate %s", metadataEnd)
			}
			sawMetadataEnd = true
			continue
		}

		for i, tag := range Tags {
			switch line {
			case tag.StartMarker():
				if !sawMetadataEnd {
					return malformed(lineNo, "%s before end of metadata", line)
				}
				if open != nil {
					return malformed(lineNo, "%s opened inside %s", line, *open)
				}
				if i <= last {
					return malformed(lineNo, "%s is duplicated or out of order", line)
				}
				t := tag
				open = &t
				last = i
			case tag.EndMarker():
				if open == nil || *open != tag {
					return malformed(lineNo, "unexpected %s", line)
				}
				open = nil
			}
		}
	}

	if !sawMetadataEnd {
		return errors.Wrap(errors.ErrMalformedPatch, "missing "+metadataEnd+" marker")
	}
	if open != nil {
		return errors.Wrapf(errors.ErrMalformedPatch, "%s is never closed", *open)
	}
	return nil
}

func malformed(line int, format string, args ...interface{}) error {
	return errors.Wrapf(errors.ErrMalformedPatch, "line %d: %s", line, fmt.Sprintf(format, args...))
}

// findLine returns the offset of the first line at or after from that equals
// marker, or -1.
func findLine(data []byte, marker string, from int) int {
	m := []byte(marker)
	for from <= len(data) {
		i := bytes.Index(data[from:], m)
		if i < 0 {
			return -1
		}
		pos := from + i
		end := pos + len(m)
		atLineStart := pos == 0 || data[pos-1] == '\n'
		atLineEnd := end == len(data) || data[end] == '\n'
		if atLineStart && atLineEnd {
			return pos
		}
		from = pos + 1
	}
	return -1
}

func splitLines(data []byte) []string {
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func isMarker(line string) bool {
	if line == metadataEnd {
		return true
	}
	for _, tag := range Tags {
		if line == tag.StartMarker() || line == tag.EndMarker() {
			return true
		}
	}
	return false
}

func isStartMarker(line string) bool {
	for _, tag := range Tags {
		if line == tag.StartMarker() {
			return true
		}
	}
	return false
}
