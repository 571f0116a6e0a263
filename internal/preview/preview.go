package preview

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/pders01/git-continuity/internal/errors"
)

// Tier is the fidelity level used to render diffs
type Tier int

const (
	// TierPlain colors diff lines itself and has no external dependency
	TierPlain Tier = iota
	// TierPager pipes diffs through a syntax highlighter (bat)
	TierPager
	// TierRich renders a markdown document with a fenced diff (glow)
	TierRich
)

func (t Tier) String() string {
	switch t {
	case TierRich:
		return "rich"
	case TierPager:
		return "pager"
	default:
		return "plain"
	}
}

// ParseTier parses a configured tier name. "auto" and "" return ok=false.
func ParseTier(s string) (tier Tier, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return TierPlain, false, nil
	case "rich", "glow":
		return TierRich, true, nil
	case "pager", "bat":
		return TierPager, true, nil
	case "plain":
		return TierPlain, true, nil
	default:
		return TierPlain, false, errors.NewConfigError("render.tier", s, errors.ErrInvalidConfiguration)
	}
}

// Tools holds the resolved paths of the optional external renderers
type Tools struct {
	Glow string
	Bat  string
}

// CommandFunc runs an external renderer with stdin and writes its output to out
type CommandFunc func(name string, args []string, stdin []byte, out io.Writer) error

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiCyan  = "\x1b[36m"
)

// Renderer formats diff text for review
type Renderer struct {
	tier   Tier
	tools  Tools
	out    io.Writer
	color  bool
	run    CommandFunc
	logger *slog.Logger
}

// New creates a renderer writing to out
func New(tier Tier, tools Tools, out io.Writer, color bool, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		tier:   tier,
		tools:  tools,
		out:    out,
		color:  color,
		run:    runCommand,
		logger: logger,
	}
}

// WithCommand replaces the function used to run external renderers
func (r *Renderer) WithCommand(run CommandFunc) *Renderer {
	r.run = run
	return r
}

// Render displays text under title. A failing external renderer drops to
// the next tier; the plain tier always succeeds.
func (r *Renderer) Render(text, title string) {
	if r.tier >= TierRich && r.tools.Glow != "" {
		err := r.renderRich(text, title)
		if err == nil {
			return
		}
		r.logger.Debug("rich preview failed, falling back", "error", err)
	}

	if r.tier >= TierPager && r.tools.Bat != "" {
		err := r.renderPager(text, title)
		if err == nil {
			return
		}
		r.logger.Debug("pager preview failed, falling back", "error", err)
	}

	r.renderPlain(text, title)
}

func (r *Renderer) renderRich(text, title string) error {
	var buf bytes.Buffer
	if err := r.run(r.tools.Glow, []string{"-"}, []byte(Markdown(text, title)), &buf); err != nil {
		return err
	}
	_, err := r.out.Write(buf.Bytes())
	return err
}

func (r *Renderer) renderPager(text, title string) error {
	var buf bytes.Buffer
	args := []string{"--language=diff", "--style=plain", "--paging=never", "--color=always"}
	if err := r.run(r.tools.Bat, args, []byte(text), &buf); err != nil {
		return err
	}
	r.writeTitle(title)
	_, err := r.out.Write(buf.Bytes())
	return err
}

func (r *Renderer) renderPlain(text, title string) {
	r.writeTitle(title)
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		fmt.Fprint(r.out, r.colorize(line))
	}
	if text != "" && !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(r.out)
	}
}

func (r *Renderer) writeTitle(title string) {
	if title == "" {
		return
	}
	if r.color {
		fmt.Fprintf(r.out, "%s== %s ==%s\n", ansiBold, title, ansiReset)
	} else {
		fmt.Fprintf(r.out, "== %s ==\n", title)
	}
}

// colorize wraps one line (including its newline) in the color matching its
// leading character
func (r *Renderer) colorize(line string) string {
	if !r.color {
		return line
	}

	var code string
	switch line[0] {
	case '+':
		code = ansiGreen
	case '-':
		code = ansiRed
	case '@':
		code = ansiCyan
	default:
		return line
	}

	body, nl := strings.CutSuffix(line, "\n")
	if nl {
		return code + body + ansiReset + "\n"
	}
	return code + body + ansiReset
}

// Markdown wraps diff text in a markdown document for the rich tier
func Markdown(text, title string) string {
	fence := "```"
	for strings.Contains(text, fence) {
		fence += "`"
	}

	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	b.WriteString(fence + "diff\n")
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(fence + "\n")
	return b.String()
}

func runCommand(name string, args []string, stdin []byte, out io.Writer) error {
	var stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return errors.NewCommandError(name, args, err, stderr.String())
	}
	return nil
}
