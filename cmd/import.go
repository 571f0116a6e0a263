package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pders01/git-continuity/internal/envelope"
	"github.com/pders01/git-continuity/internal/errors"
	"github.com/pders01/git-continuity/internal/git"
	"github.com/pders01/git-continuity/internal/patchstore"
)

var importCmd = &cobra.Command{
	Use:   "import [filename]",
	Short: "Apply a patch file to the current repository",
	Long: `Apply a patch created by export. Staged changes are applied to the index
and the working tree, unstaged changes to the working tree only, so the
repository ends up in the same state as the one the patch was taken from.

The filename may be a path or a name inside the patch directory. Without a
filename you are asked to pick one of the stored patches.

Examples:
  git-continuity import
  git-continuity import widget_20261019_140300.patch
  git-continuity import ~/Downloads/wip-login.patch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	a, err := newApp()
	if err != nil {
		return err
	}

	repo, err := git.Open(ctx, ".", a.logger)
	if err != nil {
		return err
	}

	pf, err := resolvePatch(a, args, "Patch to import")
	if err != nil {
		return err
	}

	data, err := a.patches.Read(pf)
	if err != nil {
		return err
	}
	if err := envelope.Validate(data); err != nil {
		return fmt.Errorf("refusing to import %s: %w", pf.Path, err)
	}

	if meta, err := envelope.ParseMetadata(data); err == nil {
		fmt.Printf("Importing %s (branch %s", pf.Name, meta.Branch)
		if commit := meta.ShortCommit(); commit != "" {
			fmt.Printf(" at %s", commit)
		}
		fmt.Println(")")
	}

	staged, hasStaged := envelope.ExtractSection(data, envelope.TagStaged)
	unstaged, hasUnstaged := envelope.ExtractSection(data, envelope.TagUnstaged)
	hasStaged = hasStaged && len(staged) > 0
	hasUnstaged = hasUnstaged && len(unstaged) > 0
	if !hasStaged && !hasUnstaged {
		fmt.Printf("%s contains no changes to apply\n", pf.Name)
		return nil
	}

	if !noPreview && a.prompter.Interactive() {
		if err := showPatch(a, data); err != nil {
			return err
		}
		ok, err := a.prompter.Confirm("Apply this patch?", true)
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrCancelled
		}
	}

	dirty, err := repo.HasUncommittedChanges(ctx)
	if err != nil {
		return fmt.Errorf("failed to check working tree: %w", err)
	}
	if dirty {
		fmt.Fprintln(os.Stderr, "Warning: the repository has uncommitted changes; the patch will be applied on top of them")
		ok, err := a.prompter.Confirm("Continue anyway?", true)
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrCancelled
		}
	}

	if hasStaged {
		if err := repo.ApplyToIndex(ctx, staged); err != nil {
			return applyFailed(envelope.TagStaged, err)
		}
		fmt.Println("✓ Applied staged changes")
	}

	if hasUnstaged {
		if err := repo.ApplyToWorktree(ctx, unstaged); err != nil {
			return applyFailed(envelope.TagUnstaged, err)
		}
		fmt.Println("✓ Applied unstaged changes")
	}

	if untracked, ok := envelope.ExtractLines(data, envelope.TagUntracked); ok && len(untracked) > 0 {
		fmt.Println()
		fmt.Println("Untracked files on the source machine (not included in the patch):")
		for _, f := range untracked {
			fmt.Printf("  %s\n", f)
		}
	}

	return nil
}

func applyFailed(tag envelope.Tag, err error) error {
	fmt.Fprintln(os.Stderr, "Hint: run 'git status' to inspect what was applied")
	return fmt.Errorf("failed to apply %s: %w", tag.Label(), err)
}

// resolvePatch finds the patch named by args[0], or asks the user to pick
// one from the patch directory when no name is given
func resolvePatch(a *app, args []string, header string) (patchstore.PatchFile, error) {
	if len(args) > 0 {
		return a.patches.Resolve(args[0])
	}

	if !a.prompter.Interactive() {
		return patchstore.PatchFile{}, fmt.Errorf("%w: filename", errors.ErrMissingArgument)
	}

	files, err := a.patches.List()
	if err != nil {
		return patchstore.PatchFile{}, err
	}
	if len(files) == 0 {
		return patchstore.PatchFile{}, fmt.Errorf("%w: no patches in %s", errors.ErrPatchNotFound, a.patches.Dir())
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}

	choice, err := a.prompter.Choose(header, names)
	if err != nil {
		return patchstore.PatchFile{}, err
	}
	for _, f := range files {
		if f.Name == choice {
			return f, nil
		}
	}
	return a.patches.Resolve(choice)
}
