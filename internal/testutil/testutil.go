package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TempGitRepo creates a temporary git repository for testing
type TempGitRepo struct {
	Path string
	T    *testing.T
}

// NewTempGitRepo creates a new temporary git repository on branch main
// with one commit containing README.md
func NewTempGitRepo(t *testing.T) *TempGitRepo {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "continuity-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	// macOS temp dirs are symlinks; git reports the resolved path
	if resolved, err := filepath.EvalSymlinks(tmpDir); err == nil {
		tmpDir = resolved
	}

	r := &TempGitRepo{Path: tmpDir, T: t}

	setup := [][]string{
		{"init", "-q"},
		{"symbolic-ref", "HEAD", "refs/heads/main"},
		{"config", "user.name", "Test User"},
		{"config", "user.email", "test@example.com"},
		{"config", "commit.gpgsign", "false"},
		{"config", "core.autocrlf", "false"},
	}
	for _, args := range setup {
		if _, err := r.run(args...); err != nil {
			os.RemoveAll(tmpDir)
			t.Fatalf("failed to set up git repo (git %s): %v", strings.Join(args, " "), err)
		}
	}

	r.CreateFile("README.md", "# Test Repository\n")
	r.Commit("Initial commit")

	return r
}

// NewEmptyGitRepo creates a repository without any commits
func NewEmptyGitRepo(t *testing.T) *TempGitRepo {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "continuity-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	if resolved, err := filepath.EvalSymlinks(tmpDir); err == nil {
		tmpDir = resolved
	}

	r := &TempGitRepo{Path: tmpDir, T: t}
	r.Git("init", "-q")
	r.Git("symbolic-ref", "HEAD", "refs/heads/main")
	return r
}

// Cleanup removes the temporary git repository
func (r *TempGitRepo) Cleanup() {
	r.T.Helper()
	if err := os.RemoveAll(r.Path); err != nil {
		r.T.Errorf("failed to cleanup temp repo: %v", err)
	}
}

// Chdir changes into the repository and returns a function restoring the
// previous working directory
func (r *TempGitRepo) Chdir() func() {
	r.T.Helper()

	oldWd, err := os.Getwd()
	if err != nil {
		r.T.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(r.Path); err != nil {
		r.T.Fatalf("failed to change directory: %v", err)
	}
	return func() { os.Chdir(oldWd) }
}

// CreateFile creates a file in the repository
func (r *TempGitRepo) CreateFile(name, content string) {
	r.T.Helper()
	r.WriteBytes(name, []byte(content))
}

// WriteBytes creates a file with arbitrary (possibly binary) content
func (r *TempGitRepo) WriteBytes(name string, content []byte) {
	r.T.Helper()
	path := filepath.Join(r.Path, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		r.T.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		r.T.Fatalf("failed to create file: %v", err)
	}
}

// ReadFile returns the working tree content of a file
func (r *TempGitRepo) ReadFile(name string) string {
	r.T.Helper()
	data, err := os.ReadFile(filepath.Join(r.Path, name))
	if err != nil {
		r.T.Fatalf("failed to read file: %v", err)
	}
	return string(data)
}

// Stage adds paths to the index
func (r *TempGitRepo) Stage(paths ...string) {
	r.T.Helper()
	r.Git(append([]string{"add", "--"}, paths...)...)
}

// Commit stages and commits all changes
func (r *TempGitRepo) Commit(message string) {
	r.T.Helper()
	r.Git("add", ".")
	r.Git("commit", "-q", "-m", message)
}

// Head returns the commit hash of HEAD
func (r *TempGitRepo) Head() string {
	r.T.Helper()
	return strings.TrimSpace(r.Git("rev-parse", "HEAD"))
}

// StagedDiff returns the diff of the index against HEAD
func (r *TempGitRepo) StagedDiff() string {
	r.T.Helper()
	return r.Git("diff", "--cached", "--binary")
}

// UnstagedDiff returns the diff of the working tree against the index
func (r *TempGitRepo) UnstagedDiff() string {
	r.T.Helper()
	return r.Git("diff", "--binary")
}

// Status returns porcelain status lines
func (r *TempGitRepo) Status() []string {
	r.T.Helper()
	return parseLines(r.Git("status", "--porcelain"))
}

// Git runs a git command in the repository and returns its stdout
func (r *TempGitRepo) Git(args ...string) string {
	r.T.Helper()
	out, err := r.run(args...)
	if err != nil {
		r.T.Fatalf("git %s failed: %v", strings.Join(args, " "), err)
	}
	return out
}

func (r *TempGitRepo) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Path
	out, err := cmd.Output()
	if exitErr, ok := err.(*exec.ExitError); ok {
		return "", &gitFailure{err: err, stderr: string(exitErr.Stderr)}
	}
	return string(out), err
}

type gitFailure struct {
	err    error
	stderr string
}

func (e *gitFailure) Error() string {
	return e.err.Error() + ": " + strings.TrimSpace(e.stderr)
}

// parseLines splits output into non-empty lines
func parseLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
