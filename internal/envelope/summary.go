package envelope

import (
	"bytes"
	"strings"

	"github.com/pders01/git-continuity/internal/models"
)

// Section describes one section present in an envelope
type Section struct {
	Tag   Tag      `json:"tag"`
	Bytes int      `json:"bytes"`
	Lines int      `json:"lines"`
	Files []string `json:"files"`
}

// Summary is an overview of an envelope used by previews and listings
type Summary struct {
	Metadata models.Metadata `json:"metadata"`
	Sections []Section       `json:"sections"`
}

// Summarize extracts the metadata and describes every section present
func Summarize(data []byte) (Summary, error) {
	meta, err := ParseMetadata(data)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Metadata: meta}
	for _, tag := range Tags {
		content, ok := ExtractSection(data, tag)
		if !ok {
			continue
		}

		section := Section{
			Tag:   tag,
			Bytes: len(content),
			Lines: bytes.Count(content, []byte("\n")),
		}
		if tag == TagUntracked {
			section.Files, _ = ExtractLines(data, tag)
		} else {
			section.Files = DiffFiles(content)
		}
		summary.Sections = append(summary.Sections, section)
	}

	return summary, nil
}

// Has reports whether the summary contains a section for tag
func (s Summary) Has(tag Tag) bool {
	for _, section := range s.Sections {
		if section.Tag == tag {
			return true
		}
	}
	return false
}

// DiffFiles returns the paths touched by a git diff, in order of appearance
func DiffFiles(diff []byte) []string {
	var files []string
	for _, line := range strings.Split(string(diff), "\n") {
		rest, ok := strings.CutPrefix(line, "diff --git ")
		if !ok {
			continue
		}
		// "a/<path> b/<path>"; the b side names the result
		if i := strings.LastIndex(rest, " b/"); i >= 0 {
			files = append(files, rest[i+3:])
		} else {
			files = append(files, rest)
		}
	}
	return files
}
