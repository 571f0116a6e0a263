package git

import (
	"bytes"
	"log/slog"
	"os/exec"

	"github.com/pders01/git-continuity/internal/errors"
)

// CommandExecutor defines an interface for executing external commands
type CommandExecutor interface {
	// Run executes the command and returns its stdout
	Run(cmd *exec.Cmd) ([]byte, error)
}

// ExecExecutor is the default implementation of CommandExecutor
// that delegates to the os/exec package
type ExecExecutor struct {
	Logger *slog.Logger
}

// NewExecExecutor creates a new ExecExecutor
func NewExecExecutor(logger *slog.Logger) *ExecExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecExecutor{Logger: logger}
}

// Run implements CommandExecutor.Run
func (e *ExecExecutor) Run(cmd *exec.Cmd) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.Logger.Debug("running command", "args", cmd.Args, "dir", cmd.Dir)

	if err := cmd.Run(); err != nil {
		name := ""
		if len(cmd.Args) > 0 {
			name = cmd.Args[0]
		}

		var args []string
		if len(cmd.Args) > 1 {
			args = cmd.Args[1:]
		}

		wrapped := errors.Wrap(errors.ErrGitOperationFailed, err.Error())
		return nil, errors.NewCommandError(name, args, wrapped, stderr.String())
	}

	return stdout.Bytes(), nil
}
