// Package hosts keeps named remote destinations. Each alias is stored as
// two lines sharing the alias as prefix:
//
//	devbox_HOST='me@devbox.local'
//	devbox_PATH='~/patches'
//
// Updates filter out every line of the alias and append the new pair, so
// the last write wins.
package hosts

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/subosito/gotenv"

	"github.com/pders01/git-continuity/internal/errors"
)

const (
	hostSuffix = "_HOST"
	pathSuffix = "_PATH"
)

var aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Entry is a named remote target
type Entry struct {
	Alias      string `json:"alias"`
	Connection string `json:"connection"`
	RemoteDir  string `json:"remote_dir"`
}

// Registry maps aliases to remote destinations
type Registry struct {
	store Store
}

// NewRegistry creates a registry backed by store
func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// ValidateAlias checks that alias can be used as a registry key
func ValidateAlias(alias string) error {
	if !aliasPattern.MatchString(alias) {
		return errors.NewConfigError("alias", alias,
			errors.Wrap(errors.ErrInvalidConfiguration, "aliases may only contain letters, digits and underscores"))
	}
	return nil
}

func validateValue(name, value string) error {
	if strings.ContainsAny(value, "'\n\r") {
		return errors.NewConfigError(name, value,
			errors.Wrap(errors.ErrInvalidConfiguration, "quotes and line breaks are not allowed"))
	}
	return nil
}

// AddOrReplace stores alias, replacing any previous definition
func (r *Registry) AddOrReplace(alias, connection, remoteDir string) error {
	if err := ValidateAlias(alias); err != nil {
		return err
	}
	if strings.TrimSpace(connection) == "" {
		return errors.NewConfigError("connection", nil,
			errors.Wrap(errors.ErrInvalidConfiguration, "connection must not be empty"))
	}
	if err := validateValue("connection", connection); err != nil {
		return err
	}
	if err := validateValue("remote directory", remoteDir); err != nil {
		return err
	}

	lines, err := r.store.Load()
	if err != nil {
		return err
	}

	lines, _ = without(lines, alias)
	lines = append(lines,
		fmt.Sprintf("%s%s='%s'", alias, hostSuffix, connection),
		fmt.Sprintf("%s%s='%s'", alias, pathSuffix, remoteDir),
	)

	return r.store.Save(lines)
}

// Remove deletes every line for alias. Removing an unknown alias is a no-op.
func (r *Registry) Remove(alias string) error {
	lines, err := r.store.Load()
	if err != nil {
		return err
	}

	kept, removed := without(lines, alias)
	if removed == 0 {
		return nil
	}
	return r.store.Save(kept)
}

// List returns the registered aliases, sorted and de-duplicated
func (r *Registry) List() ([]string, error) {
	env, err := r.load()
	if err != nil {
		return nil, err
	}

	aliases := make([]string, 0, len(env))
	for key := range env {
		if alias, ok := strings.CutSuffix(key, hostSuffix); ok && alias != "" {
			aliases = append(aliases, alias)
		}
	}
	sort.Strings(aliases)
	return aliases, nil
}

// Entries returns every registered destination ordered by alias
func (r *Registry) Entries() ([]Entry, error) {
	env, err := r.load()
	if err != nil {
		return nil, err
	}

	aliases, err := r.List()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(aliases))
	for _, alias := range aliases {
		entries = append(entries, Entry{
			Alias:      alias,
			Connection: env[alias+hostSuffix],
			RemoteDir:  env[alias+pathSuffix],
		})
	}
	return entries, nil
}

// Resolve looks up alias
func (r *Registry) Resolve(alias string) (Entry, bool, error) {
	env, err := r.load()
	if err != nil {
		return Entry{}, false, err
	}

	connection, ok := env[alias+hostSuffix]
	if !ok || connection == "" {
		return Entry{}, false, nil
	}

	return Entry{
		Alias:      alias,
		Connection: connection,
		RemoteDir:  env[alias+pathSuffix],
	}, true, nil
}

func (r *Registry) load() (gotenv.Env, error) {
	lines, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	env, err := gotenv.StrictParse(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		return nil, errors.NewConfigError("host registry", nil, errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
	}
	return env, nil
}

// without filters the lines belonging to alias and reports how many were dropped
func without(lines []string, alias string) ([]string, int) {
	kept := make([]string, 0, len(lines))
	removed := 0
	for _, line := range lines {
		key := lineKey(line)
		if key == alias+hostSuffix || key == alias+pathSuffix {
			removed++
			continue
		}
		kept = append(kept, line)
	}
	return kept, removed
}

func lineKey(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "export ")
	key, _, ok := strings.Cut(line, "=")
	if !ok {
		return ""
	}
	return strings.TrimSpace(key)
}
