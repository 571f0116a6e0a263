package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"

	"github.com/pders01/git-continuity/internal/config"
	"github.com/pders01/git-continuity/internal/errors"
	"github.com/pders01/git-continuity/internal/hosts"
)

var (
	configJSON bool
	configToon bool
)

const (
	choiceAddHost    = "Add host"
	choiceListHosts  = "List hosts"
	choiceRemoveHost = "Remove host"
	choiceDone       = "Done"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage saved transfer hosts",
	Long: `Manage the hosts patches can be sent to. Each host has an alias, an ssh
connection string (user@host or an ssh config alias) and an optional remote
directory.

Without a subcommand an interactive menu is shown.

Examples:
  git-continuity config
  git-continuity config add devbox me@devbox.local ~/patches
  git-continuity config list
  git-continuity config remove devbox`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

var configAddCmd = &cobra.Command{
	Use:   "add <alias> <connection> [remote-dir]",
	Short: "Add or replace a saved host",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runConfigAdd,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved hosts",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configRemoveCmd = &cobra.Command{
	Use:   "remove <alias>",
	Short: "Remove a saved host",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigRemove,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configAddCmd, configListCmd, configRemoveCmd)

	configListCmd.Flags().BoolVar(&configJSON, "json", false, "Output in JSON format")
	configListCmd.Flags().BoolVar(&configToon, "toon", false, "Output in LLM-friendly toon format")
}

func runConfig(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if !a.prompter.Interactive() {
		return printHosts(a.registry)
	}

	for {
		choice, err := a.prompter.Choose("Host configuration", []string{
			choiceAddHost, choiceListHosts, choiceRemoveHost, choiceDone,
		})
		if errors.Is(err, errors.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case choiceAddHost:
			err = addHostInteractive(a)
		case choiceListHosts:
			err = printHosts(a.registry)
		case choiceRemoveHost:
			err = removeHostInteractive(a)
		default:
			return nil
		}

		if errors.Is(err, errors.ErrCancelled) {
			continue
		}
		if err != nil {
			return err
		}
		fmt.Println()
	}
}

func addHostInteractive(a *app) error {
	alias, err := a.prompter.Input("Alias", "")
	if err != nil {
		return err
	}
	if err := hosts.ValidateAlias(alias); err != nil {
		fmt.Printf("Invalid alias: %v\n", err)
		return nil
	}

	connection, err := a.prompter.Input("Connection (user@host)", "")
	if err != nil {
		return err
	}

	remoteDir, err := a.prompter.Input("Remote directory", config.GetRemoteDir())
	if err != nil {
		return err
	}

	if err := a.registry.AddOrReplace(alias, connection, remoteDir); err != nil {
		fmt.Printf("Could not save host: %v\n", err)
		return nil
	}
	fmt.Printf("✓ Saved host %s\n", alias)
	return nil
}

func removeHostInteractive(a *app) error {
	aliases, err := a.registry.List()
	if err != nil {
		return err
	}
	if len(aliases) == 0 {
		fmt.Println("No saved hosts")
		return nil
	}

	alias, err := a.prompter.Choose("Remove which host?", aliases)
	if err != nil {
		return err
	}
	if err := a.registry.Remove(alias); err != nil {
		return err
	}
	fmt.Printf("✓ Removed host %s\n", alias)
	return nil
}

func runConfigAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	var remoteDir string
	if len(args) > 2 {
		remoteDir = args[2]
	}
	if err := a.registry.AddOrReplace(args[0], args[1], remoteDir); err != nil {
		return fmt.Errorf("failed to save host: %w", err)
	}

	fmt.Printf("✓ Saved host %s\n", args[0])
	return nil
}

func runConfigList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	return printHosts(a.registry)
}

func runConfigRemove(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if _, ok, err := a.registry.Resolve(args[0]); err != nil {
		return err
	} else if !ok {
		fmt.Printf("No saved host named %s\n", args[0])
		return nil
	}

	if err := a.registry.Remove(args[0]); err != nil {
		return fmt.Errorf("failed to remove host: %w", err)
	}
	fmt.Printf("✓ Removed host %s\n", args[0])
	return nil
}

func printHosts(registry *hosts.Registry) error {
	entries, err := registry.Entries()
	if err != nil {
		return fmt.Errorf("failed to read saved hosts: %w", err)
	}

	if configJSON {
		if entries == nil {
			entries = []hosts.Entry{}
		}
		output, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	if configToon {
		output, err := gotoon.Encode(entries)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	if len(entries) == 0 {
		fmt.Println("No saved hosts")
		return nil
	}

	fmt.Printf("Saved hosts (%d):\n", len(entries))
	for _, e := range entries {
		dir := e.RemoteDir
		if dir == "" {
			dir = config.GetRemoteDir() + " (default)"
		}
		fmt.Printf("  %-16s %s:%s\n", e.Alias, e.Connection, dir)
	}
	return nil
}
