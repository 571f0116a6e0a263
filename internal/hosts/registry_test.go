package hosts

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/git-continuity/internal/errors"
)

func TestAddOrReplace(t *testing.T) {
	store := &MemStore{}
	reg := NewRegistry(store)

	require.NoError(t, reg.AddOrReplace("devbox", "me@devbox.local", "~/patches"))
	assert.Equal(t, []string{
		"devbox_HOST='me@devbox.local'",
		"devbox_PATH='~/patches'",
	}, store.Lines)

	entry, ok, err := reg.Resolve("devbox")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Entry{Alias: "devbox", Connection: "me@devbox.local", RemoteDir: "~/patches"}, entry)
}

func TestAddOrReplaceLastWriteWins(t *testing.T) {
	store := &MemStore{}
	reg := NewRegistry(store)

	require.NoError(t, reg.AddOrReplace("devbox", "me@old-host", "/old"))
	require.NoError(t, reg.AddOrReplace("laptop", "me@laptop", "/srv/patches"))
	require.NoError(t, reg.AddOrReplace("devbox", "me@new-host", "/new"))

	assert.Len(t, store.Lines, 4)

	aliases, err := reg.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"devbox", "laptop"}, aliases)

	entry, ok, err := reg.Resolve("devbox")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "me@new-host", entry.Connection)
	assert.Equal(t, "/new", entry.RemoteDir)

	count := 0
	for _, line := range store.Lines {
		if lineKey(line) == "devbox_HOST" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestListDeduplicatesHandEditedFiles(t *testing.T) {
	store := &MemStore{Lines: []string{
		"# remote hosts",
		"zeta_HOST='z@zeta'",
		"alpha_HOST='a@alpha'",
		"alpha_PATH='/a'",
		"alpha_HOST='a@alpha2'",
	}}
	reg := NewRegistry(store)

	aliases, err := reg.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, aliases)

	entry, ok, err := reg.Resolve("alpha")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a@alpha2", entry.Connection)
}

func TestAliasSharingPrefix(t *testing.T) {
	reg := NewRegistry(&MemStore{})

	require.NoError(t, reg.AddOrReplace("box", "me@box", "/box"))
	require.NoError(t, reg.AddOrReplace("box_2", "me@box2", "/box2"))
	require.NoError(t, reg.Remove("box"))

	aliases, err := reg.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"box_2"}, aliases)
}

func TestRemove(t *testing.T) {
	store := &MemStore{}
	reg := NewRegistry(store)
	require.NoError(t, reg.AddOrReplace("devbox", "me@devbox", "/p"))
	require.NoError(t, reg.AddOrReplace("laptop", "me@laptop", "/q"))

	require.NoError(t, reg.Remove("devbox"))

	_, ok, err := reg.Resolve("devbox")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"laptop_HOST='me@laptop'", "laptop_PATH='/q'"}, store.Lines)
}

func TestRemoveUnknownAliasIsNoop(t *testing.T) {
	store := &MemStore{Lines: []string{"devbox_HOST='me@devbox'", "devbox_PATH='/p'"}}
	before := append([]string(nil), store.Lines...)

	require.NoError(t, NewRegistry(store).Remove("nope"))
	assert.Equal(t, before, store.Lines)
}

func TestResolveUnknown(t *testing.T) {
	_, ok, err := NewRegistry(&MemStore{}).Resolve("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValuesAreNotExpanded(t *testing.T) {
	t.Setenv("HOME", "/home/someone")
	reg := NewRegistry(&MemStore{})

	require.NoError(t, reg.AddOrReplace("devbox", "me@devbox", "$HOME/patches"))
	entry, ok, err := reg.Resolve("devbox")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "$HOME/patches", entry.RemoteDir)
}

func TestAddOrReplaceValidation(t *testing.T) {
	reg := NewRegistry(&MemStore{})

	tests := []struct {
		name, alias, connection, dir string
	}{
		{"empty alias", "", "me@host", "/p"},
		{"hyphenated alias", "dev-box", "me@host", "/p"},
		{"alias with space", "dev box", "me@host", "/p"},
		{"empty connection", "devbox", " ", "/p"},
		{"quote in connection", "devbox", "me@'host", "/p"},
		{"newline in dir", "devbox", "me@host", "/p\n/q"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.AddOrReplace(tt.alias, tt.connection, tt.dir)
			assert.ErrorIs(t, err, errors.ErrInvalidConfiguration)
		})
	}
}

func TestEntries(t *testing.T) {
	reg := NewRegistry(&MemStore{})
	require.NoError(t, reg.AddOrReplace("b", "me@b", "/b"))
	require.NoError(t, reg.AddOrReplace("a", "me@a", ""))

	entries, err := reg.Entries()
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Alias: "a", Connection: "me@a", RemoteDir: ""},
		{Alias: "b", Connection: "me@b", RemoteDir: "/b"},
	}, entries)
}

func TestFileStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewFileStore(fs, "/home/me/.config/git-continuity/hosts")

	lines, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, lines)

	reg := NewRegistry(store)
	require.NoError(t, reg.AddOrReplace("devbox", "me@devbox", "~/patches"))

	data, err := afero.ReadFile(fs, store.Path())
	require.NoError(t, err)
	assert.Equal(t, "devbox_HOST='me@devbox'\ndevbox_PATH='~/patches'\n", string(data))

	exists, err := afero.Exists(fs, store.Path()+".tmp")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, reg.Remove("devbox"))
	data, err = afero.ReadFile(fs, store.Path())
	require.NoError(t, err)
	assert.Empty(t, data)

	aliases, err := reg.List()
	require.NoError(t, err)
	assert.Empty(t, aliases)
}

func TestInvalidRegistryFile(t *testing.T) {
	store := &MemStore{Lines: []string{"this is not a key value line"}}

	_, err := NewRegistry(store).List()
	assert.ErrorIs(t, err, errors.ErrInvalidConfiguration)
}
