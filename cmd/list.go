package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/alpkeskin/gotoon"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pders01/git-continuity/internal/patchstore"
)

var (
	listJSON  bool
	listToon  bool
	listWatch bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored patch files",
	Long: `List the patch files in the patch directory, newest first.

With --watch the command keeps running and reports patches as they arrive,
for example when another machine sends one with scp.

Examples:
  git-continuity list
  git-continuity list --json
  git-continuity list --watch`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listToon, "toon", false, "Output in LLM-friendly toon format")
	listCmd.Flags().BoolVarP(&listWatch, "watch", "w", false, "Keep running and report new patches")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	files, err := a.patches.List()
	if err != nil {
		return err
	}

	if listJSON {
		if files == nil {
			files = []patchstore.PatchFile{}
		}
		output, err := json.MarshalIndent(files, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	if listToon {
		output, err := gotoon.Encode(files)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	if len(files) == 0 {
		fmt.Printf("No patches found in %s\n", a.patches.Dir())
	} else {
		fmt.Printf("Found %d patch(es) in %s:\n\n", len(files), a.patches.Dir())
		for _, f := range files {
			printPatchFile(f)
		}
	}

	if !listWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()
	return watchPatches(ctx, a)
}

func watchPatches(ctx context.Context, a *app) error {
	fmt.Printf("\nWatching %s for new patches (Ctrl-C to stop)\n", a.patches.Dir())
	return a.patches.Watch(ctx, func(f patchstore.PatchFile) {
		fmt.Print("+ ")
		printPatchFile(f)
	})
}

func printPatchFile(f patchstore.PatchFile) {
	fmt.Printf("  %-50s %10s  %s\n", f.Name, humanize.Bytes(uint64(f.Size)), humanize.Time(f.ModTime))
}
