package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kevinburke/ssh_config"

	"github.com/pders01/git-continuity/internal/errors"
	"github.com/pders01/git-continuity/internal/hosts"
)

// DefaultRemoteDir is used for destinations that are not in the registry
const DefaultRemoteDir = "~/.local/share/git-continuity/patches"

// Resolver looks up saved destinations
type Resolver interface {
	Resolve(alias string) (hosts.Entry, bool, error)
}

// Result describes a completed or attempted transfer
type Result struct {
	Destination hosts.Entry
	Saved       bool   // destination came from the registry
	Target      string // scp target, connection:dir/file
	HostName    string // real host name from ssh config, if it differs
}

// Agent copies patch files to remote hosts with ssh and scp
type Agent struct {
	registry   Resolver
	runner     Runner
	defaultDir string
	sshConfig  *ssh_config.Config
	logger     *slog.Logger
}

// NewAgent creates an agent. An empty defaultDir means DefaultRemoteDir.
func NewAgent(registry Resolver, runner Runner, defaultDir string, logger *slog.Logger) *Agent {
	if defaultDir == "" {
		defaultDir = DefaultRemoteDir
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		registry:   registry,
		runner:     runner,
		defaultDir: defaultDir,
		logger:     logger,
	}
}

// WithSSHConfig lets the agent report the host names ssh aliases resolve to
func (a *Agent) WithSSHConfig(cfg *ssh_config.Config) *Agent {
	a.sshConfig = cfg
	return a
}

// Destination resolves alias against the registry. Unknown aliases are
// treated as a literal connection string with the default remote directory.
func (a *Agent) Destination(alias string) (hosts.Entry, bool, error) {
	if strings.TrimSpace(alias) == "" {
		return hosts.Entry{}, false, errors.Wrap(errors.ErrMissingArgument, "transfer destination")
	}

	entry, ok, err := a.registry.Resolve(alias)
	if err != nil {
		return hosts.Entry{}, false, err
	}
	if !ok {
		entry = hosts.Entry{Alias: alias, Connection: alias}
	}
	if entry.RemoteDir == "" {
		entry.RemoteDir = a.defaultDir
	}

	if strings.HasPrefix(entry.Connection, "-") {
		return hosts.Entry{}, false, errors.NewConfigError("connection", entry.Connection,
			errors.Wrap(errors.ErrInvalidConfiguration, "connection must not start with '-'"))
	}

	return entry, ok, nil
}

// Send copies localPath to the destination's remote directory. Creating the
// remote directory is best effort; only the copy decides success. The local
// file is never modified.
func (a *Agent) Send(ctx context.Context, localPath, alias string) (Result, error) {
	if _, err := os.Stat(localPath); err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", localPath, err)
	}

	dest, saved, err := a.Destination(alias)
	if err != nil {
		return Result{}, err
	}

	dir := remoteDir(dest.RemoteDir)
	result := Result{
		Destination: dest,
		Saved:       saved,
		Target:      dest.Connection + ":" + path.Join(dir, filepath.Base(localPath)),
		HostName:    a.hostName(dest.Connection),
	}

	a.logger.Debug("sending patch", "file", localPath, "target", result.Target, "saved", saved, "hostname", result.HostName)

	if err := a.runner.Run(ctx, "ssh", dest.Connection, "mkdir -p "+shellQuote(dir)); err != nil {
		a.logger.Warn("could not create remote directory", "connection", dest.Connection, "dir", dir, "error", err)
	}

	if err := a.runner.Run(ctx, "scp", localPath, result.Target); err != nil {
		return result, fmt.Errorf("%w: %w", errors.ErrTransferFailed, err)
	}

	return result, nil
}

// hostName returns the HostName ssh would connect to for connection, when an
// ssh config entry rewrites it
func (a *Agent) hostName(connection string) string {
	if a.sshConfig == nil {
		return ""
	}

	host := connection
	if _, after, ok := strings.Cut(host, "@"); ok {
		host = after
	}

	name, err := a.sshConfig.Get(host, "HostName")
	if err != nil || name == "" || name == host {
		return ""
	}
	return name
}

// LoadSSHConfig parses an ssh client config file. A missing file yields nil.
func LoadSSHConfig(file string) (*ssh_config.Config, error) {
	f, err := os.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open ssh config: %w", err)
	}
	defer f.Close()

	cfg, err := ssh_config.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ssh config: %w", err)
	}
	return cfg, nil
}

func remoteDir(dir string) string {
	trimmed := strings.TrimRight(dir, "/")
	if trimmed == "" && strings.HasPrefix(dir, "/") {
		return "/"
	}
	return trimmed
}

// shellQuote quotes a remote path for the remote shell, leaving a leading
// ~/ unquoted so it still expands to the remote home directory
func shellQuote(p string) string {
	if p == "~" {
		return p
	}
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		return "~/" + quote(rest)
	}
	return quote(p)
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
