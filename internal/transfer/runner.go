package transfer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/pders01/git-continuity/internal/errors"
)

// Runner executes the remote-copy tools
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands attached to the terminal so ssh can prompt for
// passwords or host key confirmation
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// NewExecRunner creates a runner wired to the process's standard streams
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
	}
}

// Run implements Runner.Run
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout

	// keep a copy of stderr for the error while still showing it
	var stderr strings.Builder
	cmd.Stderr = io.MultiWriter(r.Stderr, &stderr)

	r.Logger.Debug("running command", "name", name, "args", args)

	if err := cmd.Run(); err != nil {
		return errors.NewCommandError(name, args, err, stderr.String())
	}
	return nil
}
