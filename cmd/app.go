package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/pders01/git-continuity/internal/config"
	"github.com/pders01/git-continuity/internal/hosts"
	"github.com/pders01/git-continuity/internal/patchstore"
	"github.com/pders01/git-continuity/internal/preview"
	"github.com/pders01/git-continuity/internal/term"
	"github.com/pders01/git-continuity/internal/transfer"
	"github.com/pders01/git-continuity/internal/ui"
)

// app holds the components a command works with, built from configuration
type app struct {
	logger   *slog.Logger
	patches  *patchstore.Store
	registry *hosts.Registry
	agent    *transfer.Agent
	prompter ui.Prompter
	renderer *preview.Renderer
}

// Component factories. Tests replace them to avoid terminals and networks.
var (
	newPrompter = func(logger *slog.Logger) (ui.Prompter, error) {
		tier, gumPath, err := ui.DetectTier(ui.Options{
			Override: config.GetUITier(),
			Force:    interactive,
			Terminal: term.IsTerminal(os.Stdin),
		})
		if err != nil {
			return nil, err
		}
		logger.Debug("prompt tier selected", "tier", tier.String())
		return ui.New(tier, gumPath, logger), nil
	}

	newRunner = func(logger *slog.Logger) transfer.Runner {
		return transfer.NewExecRunner(logger)
	}
)

func newApp() (*app, error) {
	logger := slog.Default()
	fs := afero.NewOsFs()

	prompter, err := newPrompter(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up prompts: %w", err)
	}

	tier, tools, err := preview.DetectTier(config.GetRenderTier(), term.IsTerminal(os.Stdout), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to set up preview: %w", err)
	}
	logger.Debug("preview tier selected", "tier", tier.String())

	registry := hosts.NewRegistry(hosts.NewFileStore(fs, config.GetHostsFile()))
	agent := transfer.NewAgent(registry, newRunner(logger), config.GetRemoteDir(), logger)
	if sshConfig, err := transfer.LoadSSHConfig(config.GetSSHConfig()); err != nil {
		logger.Debug("ignoring ssh config", "error", err)
	} else if sshConfig != nil {
		agent = agent.WithSSHConfig(sshConfig)
	}

	return &app{
		logger:   logger,
		patches:  patchstore.New(fs, config.GetPatchDir(), logger),
		registry: registry,
		agent:    agent,
		prompter: prompter,
		renderer: preview.New(tier, tools, os.Stdout, term.ColorEnabled(os.Stdout), logger),
	}, nil
}
