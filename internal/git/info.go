package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/pders01/git-continuity/internal/models"
)

// Info returns the branch, HEAD commit and name of the repository.
// The repository is read with go-git; when go-git cannot open it (for
// example an unsupported repository extension) the git binary is used.
func (r *Repo) Info(ctx context.Context) (models.RepoInfo, error) {
	info, err := readInfo(r.root)
	if err == nil {
		return info, nil
	}

	r.logger.Debug("go-git could not read repository, falling back to git", "error", err)
	return r.infoFromCLI(ctx)
}

func readInfo(root string) (models.RepoInfo, error) {
	repo, err := gogit.PlainOpenWithOptions(root, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return models.RepoInfo{}, fmt.Errorf("failed to open git repository: %w", err)
	}

	info := models.RepoInfo{
		Name: filepath.Base(root),
		Root: root,
	}

	head, err := repo.Head()
	switch {
	case err == nil:
		info.Commit = head.Hash().String()
		if head.Name().IsBranch() {
			info.Branch = head.Name().Short()
		} else {
			info.Branch = "HEAD"
		}
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		// unborn branch: HEAD points at a branch with no commits yet
		ref, refErr := repo.Reference(plumbing.HEAD, false)
		if refErr != nil {
			return models.RepoInfo{}, fmt.Errorf("failed to read HEAD: %w", refErr)
		}
		info.Branch = ref.Target().Short()
	default:
		return models.RepoInfo{}, fmt.Errorf("failed to read HEAD: %w", err)
	}

	return info, nil
}

func (r *Repo) infoFromCLI(ctx context.Context) (models.RepoInfo, error) {
	info := models.RepoInfo{
		Name: filepath.Base(r.root),
		Root: r.root,
	}

	branch, err := r.git(ctx, nil, "symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		info.Branch = "HEAD"
	} else {
		info.Branch = strings.TrimSpace(string(branch))
	}

	// rev-parse fails on an unborn branch; the commit stays empty
	if commit, err := r.git(ctx, nil, "rev-parse", "--verify", "-q", "HEAD"); err == nil {
		info.Commit = strings.TrimSpace(string(commit))
	}

	return info, nil
}
