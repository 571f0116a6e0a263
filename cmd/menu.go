package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pders01/git-continuity/internal/errors"
)

const choiceQuit = "quit"

// menu entries in display order
var menuActions = []struct {
	name string
	run  func(*cobra.Command, []string) error
}{
	{"export", runExport},
	{"import", runImport},
	{"preview", runPreview},
	{"config", runConfig},
	{"list", runList},
}

// runMenu lets the user pick an action when no command is given. Without a
// way to prompt it prints the help instead.
func runMenu(cmd *cobra.Command, args []string) error {
	prompter, err := newPrompter(slog.Default())
	if err != nil {
		return err
	}

	if !prompter.Interactive() {
		if cmd != nil {
			return cmd.Help()
		}
		return fmt.Errorf("%w: command", errors.ErrMissingArgument)
	}

	options := make([]string, 0, len(menuActions)+1)
	for _, action := range menuActions {
		options = append(options, action.name)
	}
	options = append(options, choiceQuit)

	choice, err := prompter.Choose("What do you want to do?", options)
	if errors.Is(err, errors.ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, action := range menuActions {
		if action.name == choice {
			return action.run(cmd, nil)
		}
	}
	return nil
}
