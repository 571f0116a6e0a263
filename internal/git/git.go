package git

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pders01/git-continuity/internal/errors"
	"github.com/pders01/git-continuity/internal/models"
)

// Repository is the narrow set of version-control operations the exporter
// and importer need
type Repository interface {
	Info(ctx context.Context) (models.RepoInfo, error)
	StagedDiff(ctx context.Context) ([]byte, error)
	UnstagedDiff(ctx context.Context) ([]byte, error)
	UntrackedFiles(ctx context.Context) ([]string, error)
	HasUncommittedChanges(ctx context.Context) (bool, error)
	ApplyToIndex(ctx context.Context, patch []byte) error
	ApplyToWorktree(ctx context.Context, patch []byte) error
}

// Repo implements Repository by running the git binary
type Repo struct {
	root     string
	executor CommandExecutor
	logger   *slog.Logger
}

// diff output must apply on machines with a different git configuration
var diffArgs = []string{
	"diff", "--binary", "--no-color", "--no-ext-diff",
	"--src-prefix=a/", "--dst-prefix=b/",
}

// IsGitRepo checks if dir is inside a git working tree
func IsGitRepo(ctx context.Context, dir string) bool {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = dir
	out, err := cmd.Output()
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// Open returns the repository whose working tree contains dir.
// It returns ErrNotGitRepository when dir is not inside a working tree.
func Open(ctx context.Context, dir string, logger *slog.Logger) (*Repo, error) {
	return OpenWithExecutor(ctx, dir, NewExecExecutor(logger), logger)
}

// OpenWithExecutor is Open with a custom command executor
func OpenWithExecutor(ctx context.Context, dir string, executor CommandExecutor, logger *slog.Logger) (*Repo, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if !IsGitRepo(ctx, dir) {
		return nil, errors.ErrNotGitRepository
	}

	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	out, err := executor.Run(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to find repository root: %w", err)
	}

	return &Repo{
		root:     strings.TrimSpace(string(out)),
		executor: executor,
		logger:   logger,
	}, nil
}

// Root returns the top-level directory of the working tree
func (r *Repo) Root() string {
	return r.root
}

func (r *Repo) git(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.root
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	return r.executor.Run(cmd)
}

// StagedDiff returns the binary-safe diff of the index against HEAD
func (r *Repo) StagedDiff(ctx context.Context) ([]byte, error) {
	out, err := r.git(ctx, nil, append(slices.Clip(diffArgs), "--cached")...)
	if err != nil {
		return nil, fmt.Errorf("failed to get staged diff: %w", err)
	}
	return out, nil
}

// UnstagedDiff returns the binary-safe diff of the working tree against the index
func (r *Repo) UnstagedDiff(ctx context.Context) ([]byte, error) {
	out, err := r.git(ctx, nil, diffArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to get unstaged diff: %w", err)
	}
	return out, nil
}

// UntrackedFiles lists files git does not track and does not ignore,
// relative to the repository root
func (r *Repo) UntrackedFiles(ctx context.Context) ([]string, error) {
	out, err := r.git(ctx, nil, "ls-files", "--others", "--exclude-standard", "-z")
	if err != nil {
		return nil, fmt.Errorf("failed to list untracked files: %w", err)
	}

	var files []string
	for _, f := range strings.Split(string(out), "\x00") {
		if f != "" {
			files = append(files, filepath.ToSlash(f))
		}
	}
	return files, nil
}

// HasUncommittedChanges checks for staged or unstaged modifications to tracked files
func (r *Repo) HasUncommittedChanges(ctx context.Context) (bool, error) {
	out, err := r.git(ctx, nil, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return false, fmt.Errorf("failed to check git status: %w", err)
	}
	return len(bytes.TrimSpace(out)) > 0, nil
}

// ApplyToIndex applies a patch to both the index and the working tree, so
// the changes end up staged
func (r *Repo) ApplyToIndex(ctx context.Context, patch []byte) error {
	if _, err := r.git(ctx, patch, "apply", "--index", "--binary"); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrApplyFailed, err)
	}
	return nil
}

// ApplyToWorktree applies a patch to the working tree only
func (r *Repo) ApplyToWorktree(ctx context.Context, patch []byte) error {
	if _, err := r.git(ctx, patch, "apply", "--binary"); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrApplyFailed, err)
	}
	return nil
}

// Snapshot captures the staged diff, unstaged diff and untracked files
func Snapshot(ctx context.Context, repo Repository) (models.ChangeSnapshot, error) {
	staged, err := repo.StagedDiff(ctx)
	if err != nil {
		return models.ChangeSnapshot{}, err
	}

	unstaged, err := repo.UnstagedDiff(ctx)
	if err != nil {
		return models.ChangeSnapshot{}, err
	}

	untracked, err := repo.UntrackedFiles(ctx)
	if err != nil {
		return models.ChangeSnapshot{}, err
	}

	return models.ChangeSnapshot{
		Staged:    staged,
		Unstaged:  unstaged,
		Untracked: untracked,
	}, nil
}
