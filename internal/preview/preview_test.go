package preview

import (
	"bytes"
	stderrors "errors"
	"io"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/git-continuity/internal/errors"
)

const diff = "diff --git a/a.go b/a.go\n" +
	"--- a/a.go\n" +
	"+++ b/a.go\n" +
	"@@ -1 +1 @@\n" +
	"-old\n" +
	"+new\n" +
	" context\n"

func TestRenderPlainColors(t *testing.T) {
	var out bytes.Buffer
	New(TierPlain, Tools{}, &out, true, nil).Render(diff, "Staged changes")

	want := "\x1b[1m== Staged changes ==\x1b[0m\n" +
		"diff --git a/a.go b/a.go\n" +
		"\x1b[31m--- a/a.go\x1b[0m\n" +
		"\x1b[32m+++ b/a.go\x1b[0m\n" +
		"\x1b[36m@@ -1 +1 @@\x1b[0m\n" +
		"\x1b[31m-old\x1b[0m\n" +
		"\x1b[32m+new\x1b[0m\n" +
		" context\n"
	assert.Equal(t, want, out.String())
}

func TestRenderPlainWithoutColor(t *testing.T) {
	var out bytes.Buffer
	New(TierPlain, Tools{}, &out, false, nil).Render(diff, "Staged changes")

	assert.Equal(t, "== Staged changes ==\n"+diff, out.String())
}

func TestRenderPlainTerminatesOutput(t *testing.T) {
	var out bytes.Buffer
	New(TierPlain, Tools{}, &out, false, nil).Render("+a", "")

	assert.Equal(t, "+a\n", out.String())
}

func TestRenderRich(t *testing.T) {
	var out bytes.Buffer
	var gotStdin []byte
	r := New(TierRich, Tools{Glow: "/usr/bin/glow", Bat: "/usr/bin/bat"}, &out, true, nil).
		WithCommand(func(name string, args []string, stdin []byte, w io.Writer) error {
			assert.Equal(t, "/usr/bin/glow", name)
			assert.Equal(t, []string{"-"}, args)
			gotStdin = stdin
			_, err := io.WriteString(w, "RENDERED\n")
			return err
		})

	r.Render(diff, "Unstaged changes")
	assert.Equal(t, "RENDERED\n", out.String())
	assert.Equal(t, Markdown(diff, "Unstaged changes"), string(gotStdin))
}

func TestRenderFallsBackThroughTiers(t *testing.T) {
	var out bytes.Buffer
	var tried []string
	r := New(TierRich, Tools{Glow: "glow", Bat: "bat"}, &out, false, nil).
		WithCommand(func(name string, args []string, stdin []byte, w io.Writer) error {
			tried = append(tried, name)
			io.WriteString(w, "partial output")
			return stderrors.New("boom")
		})

	r.Render(diff, "Staged changes")
	assert.Equal(t, []string{"glow", "bat"}, tried)
	assert.Equal(t, "== Staged changes ==\n"+diff, out.String(), "failed tiers must not leak output")
}

func TestRenderPager(t *testing.T) {
	var out bytes.Buffer
	r := New(TierPager, Tools{Glow: "glow", Bat: "bat"}, &out, false, nil).
		WithCommand(func(name string, args []string, stdin []byte, w io.Writer) error {
			assert.Equal(t, "bat", name)
			assert.Contains(t, args, "--language=diff")
			_, err := w.Write(stdin)
			return err
		})

	r.Render(diff, "Staged changes")
	assert.Equal(t, "== Staged changes ==\n"+diff, out.String())
}

func TestMarkdownFence(t *testing.T) {
	assert.Equal(t, "# T\n\n```diff\n+x\n```\n", Markdown("+x\n", "T"))
	assert.Equal(t, "````diff\n+```go\n````\n", Markdown("+```go", ""))
}

func lookPathWith(found ...string) LookPathFunc {
	return func(file string) (string, error) {
		for _, f := range found {
			if f == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestDetectTier(t *testing.T) {
	tests := []struct {
		name     string
		override string
		terminal bool
		found    []string
		want     Tier
	}{
		{"auto with glow", "auto", true, []string{"glow", "bat"}, TierRich},
		{"auto with bat", "", true, []string{"bat"}, TierPager},
		{"auto with batcat", "", true, []string{"batcat"}, TierPager},
		{"auto without tools", "auto", true, nil, TierPlain},
		{"auto without terminal", "auto", false, []string{"glow", "bat"}, TierPlain},
		{"explicit pager", "pager", false, []string{"glow", "bat"}, TierPager},
		{"explicit rich degrades", "rich", true, []string{"bat"}, TierPager},
		{"explicit plain", "plain", true, []string{"glow"}, TierPlain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, _, err := DetectTier(tt.override, tt.terminal, lookPathWith(tt.found...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, tier)
		})
	}
}

func TestDetectTierInvalidOverride(t *testing.T) {
	_, _, err := DetectTier("fancy", true, lookPathWith())
	assert.ErrorIs(t, err, errors.ErrInvalidConfiguration)
}
