package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/git-continuity/internal/transfer"
)

func TestDefaultsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	viper.Reset()
	defer viper.Reset()

	SetDefaults()

	assert.Equal(t, "/xdg/data/git-continuity/patches", GetPatchDir())
	assert.Equal(t, "/xdg/config/git-continuity/hosts", GetHostsFile())
	assert.Equal(t, transfer.DefaultRemoteDir, GetRemoteDir())
	assert.Equal(t, "auto", GetRenderTier())
	assert.Equal(t, "auto", GetUITier())
	assert.Equal(t, 30, GetRetentionDays())
}

func TestRemoteDirKeepsTilde(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set(KeyRemoteDir, "~/incoming")
	assert.Equal(t, "~/incoming", GetRemoteDir())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, ".ssh", "config"), ExpandHome("~/.ssh/config"))
	assert.Equal(t, "/etc/ssh/config", ExpandHome("/etc/ssh/config"))
	assert.Equal(t, "~other/x", ExpandHome("~other/x"))
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	viper.Reset()
	defer viper.Reset()

	viper.Set(KeyPatchDir, filepath.Join(root, "data", "patches"))
	viper.Set(KeyHostsFile, filepath.Join(root, "config", "hosts"))

	require.NoError(t, EnsureDirs())
	assert.DirExists(t, filepath.Join(root, "data", "patches"))
	assert.DirExists(t, filepath.Join(root, "config"))
	assert.NoFileExists(t, filepath.Join(root, "config", "hosts"))
}
