package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/git-continuity/internal/envelope"
	"github.com/pders01/git-continuity/internal/errors"
	"github.com/pders01/git-continuity/internal/git"
	"github.com/pders01/git-continuity/internal/models"
)

const (
	choiceSkip      = "Don't send"
	choiceOtherHost = "Other host..."
)

var exportCmd = &cobra.Command{
	Use:   "export [filename]",
	Short: "Save uncommitted changes to a patch file",
	Long: `Save the staged diff, the unstaged diff and a list of untracked files
into one patch file in the patch directory.

Without a filename the patch is named <repo>_<YYYYMMDD_HHMMSS>.patch.
A filename without an extension gets .patch appended.

Examples:
  git-continuity export
  git-continuity export wip-login
  git-continuity --scp devbox export
  git-continuity --no-preview --no-transfer export`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	a, err := newApp()
	if err != nil {
		return err
	}

	repo, err := git.Open(ctx, ".", a.logger)
	if err != nil {
		return err
	}

	info, err := repo.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to read repository info: %w", err)
	}

	snap, err := git.Snapshot(ctx, repo)
	if err != nil {
		return fmt.Errorf("failed to collect changes: %w", err)
	}

	if !snap.HasChanges() {
		fmt.Println("No staged or unstaged changes to export")
		if len(snap.Untracked) > 0 {
			fmt.Printf("%d untracked file(s) found; add them with 'git add' to include their content\n", len(snap.Untracked))
		}
		return errors.ErrNoChanges
	}

	if !noPreview && a.prompter.Interactive() {
		renderSnapshot(a, snap)
		ok, err := a.prompter.Confirm("Export these changes?", true)
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrCancelled
		}
	}

	now := time.Now()
	data, err := envelope.Encode(info, snap, now)
	if err != nil {
		return fmt.Errorf("failed to encode patch: %w", err)
	}

	var explicit string
	if len(args) > 0 {
		explicit = args[0]
	}
	name, err := a.patches.Name(explicit, info.Name, now)
	if err != nil {
		return err
	}

	path, err := a.patches.Write(name, data)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Patch saved: %s\n", path)
	fmt.Printf("  Branch: %s\n", info.Branch)
	if snap.HasStaged() {
		fmt.Printf("  Staged:   %d file(s)\n", len(envelope.DiffFiles(snap.Staged)))
	}
	if snap.HasUnstaged() {
		fmt.Printf("  Unstaged: %d file(s)\n", len(envelope.DiffFiles(snap.Unstaged)))
	}
	if len(snap.Untracked) > 0 {
		fmt.Printf("  Untracked (listed only): %d file(s)\n", len(snap.Untracked))
	}

	dest := scpAlias
	if dest == "" && !noTransfer && a.prompter.Interactive() {
		dest, err = chooseDestination(a)
		if err != nil {
			return err
		}
	}
	if dest == "" {
		return nil
	}

	result, err := a.agent.Send(ctx, path, dest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: the patch is still available locally at %s\n", path)
		return err
	}

	target := result.Target
	if result.HostName != "" {
		target = fmt.Sprintf("%s (%s)", target, result.HostName)
	}
	fmt.Printf("✓ Sent to %s\n", target)
	return nil
}

// renderSnapshot previews the changes about to be exported
func renderSnapshot(a *app, snap models.ChangeSnapshot) {
	if snap.HasStaged() {
		a.renderer.Render(string(snap.Staged), envelope.TagStaged.Label())
	}
	if snap.HasUnstaged() {
		a.renderer.Render(string(snap.Unstaged), envelope.TagUnstaged.Label())
	}
	if len(snap.Untracked) > 0 {
		fmt.Printf("%s (not included):\n", envelope.TagUntracked.Label())
		for _, f := range snap.Untracked {
			fmt.Printf("  %s\n", f)
		}
	}
}

// chooseDestination offers the saved hosts as transfer targets. An empty
// result means the patch stays local.
func chooseDestination(a *app) (string, error) {
	aliases, err := a.registry.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to read saved hosts: %v\n", err)
	}

	options := append([]string{choiceSkip}, aliases...)
	options = append(options, choiceOtherHost)

	choice, err := a.prompter.Choose("Send the patch to a remote host?", options)
	if errors.Is(err, errors.ErrCancelled) || errors.Is(err, errors.ErrNoInput) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	switch choice {
	case choiceSkip:
		return "", nil
	case choiceOtherHost:
		host, err := a.prompter.Input("Host (user@host)", "")
		if errors.Is(err, errors.ErrCancelled) {
			return "", nil
		}
		return host, err
	default:
		return choice, nil
	}
}
