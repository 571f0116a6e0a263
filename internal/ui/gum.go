package ui

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pders01/git-continuity/internal/errors"
)

// gum exits 130 when the user aborts with ctrl-c or escape
const gumCancelled = 130

// GumFunc runs gum with args and returns its stdout and exit code. err is
// only set when gum could not be run at all.
type GumFunc func(args []string) (stdout string, code int, err error)

// GumPrompter drives the gum binary
type GumPrompter struct {
	path   string
	run    GumFunc
	logger *slog.Logger
}

// NewGumPrompter creates a prompter using the gum binary at path
func NewGumPrompter(path string, logger *slog.Logger) *GumPrompter {
	if logger == nil {
		logger = slog.Default()
	}
	p := &GumPrompter{path: path, logger: logger}
	p.run = p.exec
	return p
}

// WithRunner replaces how gum is invoked
func (p *GumPrompter) WithRunner(run GumFunc) *GumPrompter {
	p.run = run
	return p
}

func (p *GumPrompter) exec(args []string) (string, int, error) {
	var stdout bytes.Buffer
	cmd := exec.Command(p.path, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	p.logger.Debug("running gum", "args", args)
	err := cmd.Run()
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return stdout.String(), exitErr.ExitCode(), nil
	}
	if err != nil {
		return "", -1, errors.NewCommandError("gum", args, err, "")
	}
	return stdout.String(), 0, nil
}

// Confirm runs gum confirm. Exit 1 means "no".
func (p *GumPrompter) Confirm(question string, def bool) (bool, error) {
	args := []string{"confirm", "--default=" + strconv.FormatBool(def), question}
	_, code, err := p.run(args)
	if err != nil {
		return false, err
	}
	switch code {
	case 0:
		return true, nil
	case 1:
		return false, nil
	case gumCancelled:
		return false, errors.ErrCancelled
	default:
		return false, fmt.Errorf("gum confirm exited with status %d", code)
	}
}

// Choose runs gum choose
func (p *GumPrompter) Choose(header string, options []string) (string, error) {
	if len(options) == 0 {
		return "", errors.ErrNoInput
	}
	args := []string{"choose"}
	if header != "" {
		args = append(args, "--header", header)
	}
	args = append(args, options...)
	return p.text("choose", args)
}

// Input runs gum input
func (p *GumPrompter) Input(prompt, placeholder string) (string, error) {
	args := []string{"input", "--prompt", prompt + ": "}
	if placeholder != "" {
		args = append(args, "--placeholder", placeholder)
	}
	answer, err := p.text("input", args)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return placeholder, nil
	}
	return answer, nil
}

func (p *GumPrompter) text(verb string, args []string) (string, error) {
	out, code, err := p.run(args)
	if err != nil {
		return "", err
	}
	switch code {
	case 0:
		return strings.TrimRight(out, "\r\n"), nil
	case gumCancelled:
		return "", errors.ErrCancelled
	default:
		return "", fmt.Errorf("gum %s exited with status %d", verb, code)
	}
}

// Interactive is always true for gum
func (p *GumPrompter) Interactive() bool {
	return true
}
