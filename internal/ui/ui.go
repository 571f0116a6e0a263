// Package ui asks the user for confirmations, choices and free-form input.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pders01/git-continuity/internal/errors"
)

// Prompter is the interactive surface the commands depend on
type Prompter interface {
	// Confirm asks a yes/no question. def is returned on an empty answer.
	Confirm(question string, def bool) (bool, error)
	// Choose asks the user to pick one of options
	Choose(header string, options []string) (string, error)
	// Input asks for a line of text
	Input(prompt, placeholder string) (string, error)
	// Interactive reports whether the prompter can reach a user
	Interactive() bool
}

// Tier names the prompt backend
type Tier int

const (
	// TierNone never prompts
	TierNone Tier = iota
	// TierPrompt reads answers line by line
	TierPrompt
	// TierGum delegates to the gum binary
	TierGum
)

func (t Tier) String() string {
	switch t {
	case TierGum:
		return "gum"
	case TierPrompt:
		return "prompt"
	default:
		return "none"
	}
}

// Options feed tier detection
type Options struct {
	// Override is the configured ui.tier value (auto, gum, prompt, none)
	Override string
	// Force prompts even when stdin is not a terminal
	Force bool
	// Terminal reports whether stdin is attached to a terminal
	Terminal bool
	// LookPath finds executables, exec.LookPath when nil
	LookPath func(string) (string, error)
}

// DetectTier picks the prompt backend once at startup
func DetectTier(opts Options) (Tier, string, error) {
	lookPath := opts.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	var want Tier
	switch strings.ToLower(strings.TrimSpace(opts.Override)) {
	case "", "auto":
		if !opts.Terminal && !opts.Force {
			return TierNone, "", nil
		}
		want = TierGum
	case "gum":
		want = TierGum
	case "prompt":
		want = TierPrompt
	case "none":
		if opts.Force {
			return TierPrompt, "", nil
		}
		return TierNone, "", nil
	default:
		return TierNone, "", errors.NewConfigError("ui.tier", opts.Override, errors.ErrInvalidConfiguration)
	}

	if want == TierGum {
		if path, err := lookPath("gum"); err == nil && opts.Terminal {
			return TierGum, path, nil
		}
	}
	return TierPrompt, "", nil
}

// New builds the prompter for tier. gumPath is only used for TierGum.
func New(tier Tier, gumPath string, logger *slog.Logger) Prompter {
	switch tier {
	case TierGum:
		return NewGumPrompter(gumPath, logger)
	case TierPrompt:
		return NewLinePrompter(os.Stdin, os.Stderr)
	default:
		return NonInteractive{}
	}
}

// LinePrompter reads answers from Reader and writes questions to Writer
type LinePrompter struct {
	Reader *bufio.Reader
	Writer io.Writer
}

// NewLinePrompter creates a LinePrompter
func NewLinePrompter(r io.Reader, w io.Writer) *LinePrompter {
	return &LinePrompter{Reader: bufio.NewReader(r), Writer: w}
}

func (p *LinePrompter) readLine() (string, error) {
	answer, err := p.Reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && answer != "" {
			return strings.TrimSpace(answer), nil
		}
		if err == io.EOF {
			return "", errors.ErrCancelled
		}
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// Confirm asks a yes/no question
func (p *LinePrompter) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(p.Writer, "%s [%s]: ", question, hint)

	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	if answer == "" {
		return def, nil
	}
	return strings.HasPrefix(strings.ToLower(answer), "y"), nil
}

// Choose prints a numbered menu and accepts either a number or an option
func (p *LinePrompter) Choose(header string, options []string) (string, error) {
	if len(options) == 0 {
		return "", errors.ErrNoInput
	}

	for {
		if header != "" {
			fmt.Fprintln(p.Writer, header)
		}
		for i, opt := range options {
			fmt.Fprintf(p.Writer, "  %d) %s\n", i+1, opt)
		}
		fmt.Fprint(p.Writer, "> ")

		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" {
			return "", errors.ErrCancelled
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		for _, opt := range options {
			if opt == answer {
				return opt, nil
			}
		}
		fmt.Fprintf(p.Writer, "Invalid choice: %s\n", answer)
	}
}

// Input asks for a line of text. An empty answer returns placeholder.
func (p *LinePrompter) Input(prompt, placeholder string) (string, error) {
	if placeholder != "" {
		fmt.Fprintf(p.Writer, "%s [%s]: ", prompt, placeholder)
	} else {
		fmt.Fprintf(p.Writer, "%s: ", prompt)
	}

	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return placeholder, nil
	}
	return answer, nil
}

// Interactive is always true for a line prompter
func (p *LinePrompter) Interactive() bool {
	return true
}

// NonInteractive answers every confirmation with its default and refuses
// anything that needs real input
type NonInteractive struct{}

// Confirm returns def
func (NonInteractive) Confirm(question string, def bool) (bool, error) {
	return def, nil
}

// Choose always fails with ErrNoInput
func (NonInteractive) Choose(header string, options []string) (string, error) {
	return "", errors.ErrNoInput
}

// Input always fails with ErrNoInput
func (NonInteractive) Input(prompt, placeholder string) (string, error) {
	return "", errors.ErrNoInput
}

// Interactive is always false
func (NonInteractive) Interactive() bool {
	return false
}
