package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"

	"github.com/pders01/git-continuity/internal/envelope"
)

var (
	previewJSON bool
	previewToon bool
)

var previewCmd = &cobra.Command{
	Use:   "preview <filename>",
	Short: "Show the contents of a patch file",
	Long: `Show the metadata and every section of a patch without applying it.

Diffs are rendered with glow or bat when available, otherwise with plain
colored output.

Examples:
  git-continuity preview widget_20261019_140300.patch
  git-continuity preview wip-login --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().BoolVar(&previewJSON, "json", false, "Output a summary in JSON format")
	previewCmd.Flags().BoolVar(&previewToon, "toon", false, "Output a summary in LLM-friendly toon format")
}

func runPreview(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	pf, err := resolvePatch(a, args, "Patch to preview")
	if err != nil {
		return err
	}

	data, err := a.patches.Read(pf)
	if err != nil {
		return err
	}

	if previewJSON || previewToon {
		summary, err := envelope.Summarize(data)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", pf.Path, err)
		}

		if previewJSON {
			output, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Println(string(output))
			return nil
		}

		output, err := gotoon.Encode(summary)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	fmt.Printf("Patch: %s\n", pf.Path)
	return showPatch(a, data)
}

// showPatch prints the metadata header and renders every section present
func showPatch(a *app, data []byte) error {
	if err := envelope.Validate(data); err != nil {
		a.logger.Warn("patch does not follow the envelope format", "error", err)
	}

	meta := envelope.DecodeMetadata(data)
	if len(meta) == 0 {
		return fmt.Errorf("no metadata found in patch")
	}
	fmt.Println(strings.Repeat("━", 40))
	for _, line := range meta {
		fmt.Println(line)
	}
	fmt.Println(strings.Repeat("━", 40))
	fmt.Println()

	for _, tag := range []envelope.Tag{envelope.TagStaged, envelope.TagUnstaged} {
		section, ok := envelope.ExtractSection(data, tag)
		if !ok || len(section) == 0 {
			continue
		}
		a.renderer.Render(string(section), tag.Label())
		fmt.Println()
	}

	if files, ok := envelope.ExtractLines(data, envelope.TagUntracked); ok && len(files) > 0 {
		fmt.Printf("%s (not included):\n", envelope.TagUntracked.Label())
		for _, f := range files {
			fmt.Printf("  %s\n", f)
		}
	}
	return nil
}
