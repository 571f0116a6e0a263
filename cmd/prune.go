package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pders01/git-continuity/internal/config"
	"github.com/pders01/git-continuity/internal/patchstore"
)

var (
	pruneDays  int
	pruneForce bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old patch files from the patch directory",
	Long: `Remove patches older than the retention period.

The retention period is configured in $XDG_CONFIG_HOME/git-continuity/config.toml:
  [retention]
  days = 30

Example:
  git-continuity prune              # Show what would be pruned
  git-continuity prune --days 7     # Use a shorter retention period
  git-continuity prune --force      # Actually delete the patches`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().IntVar(&pruneDays, "days", 0, "Retention period in days (default from config)")
	pruneCmd.Flags().BoolVar(&pruneForce, "force", false, "Actually delete the patches")
}

func runPrune(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	retentionDays := pruneDays
	if retentionDays <= 0 {
		retentionDays = config.GetRetentionDays()
	}
	if retentionDays <= 0 {
		return fmt.Errorf("retention period must be positive, got %d", retentionDays)
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	fmt.Printf("Retention policy: %d days\n", retentionDays)
	fmt.Printf("Cutoff date: %s\n\n", cutoff.Format("2006-01-02"))

	files, err := a.patches.List()
	if err != nil {
		return err
	}

	var toPrune []patchstore.PatchFile
	for _, f := range files {
		if f.ModTime.Before(cutoff) {
			toPrune = append(toPrune, f)
		}
	}

	if len(toPrune) == 0 {
		fmt.Println("No patches to prune")
		return nil
	}

	fmt.Printf("Patches to prune (%d):\n\n", len(toPrune))
	for _, f := range toPrune {
		fmt.Printf("  %s (%s, %s)\n", f.Name, humanize.Bytes(uint64(f.Size)), humanize.Time(f.ModTime))
	}

	if !pruneForce {
		fmt.Println("\nThis is a dry run. Use --force to actually prune patches.")
		return nil
	}

	fmt.Println("\nPruning patches...")
	pruned := 0
	for _, f := range toPrune {
		if err := a.patches.Remove(f); err != nil {
			fmt.Printf("  Error: %v\n", err)
			continue
		}
		pruned++
	}
	fmt.Printf("✓ Pruned %d patch(es)\n", pruned)
	return nil
}
