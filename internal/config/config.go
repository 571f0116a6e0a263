package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pders01/git-continuity/internal/transfer"
)

// AppName names the configuration and data directories
const AppName = "git-continuity"

// EnvPrefix prefixes environment overrides, e.g. GIT_CONTINUITY_PATCH_DIR
const EnvPrefix = "GIT_CONTINUITY"

// Keys
const (
	KeyPatchDir      = "patch_dir"
	KeyHostsFile     = "hosts_file"
	KeyRemoteDir     = "transfer.remote_dir"
	KeySSHConfig     = "transfer.ssh_config"
	KeyRenderTier    = "render.tier"
	KeyUITier        = "ui.tier"
	KeyRetentionDays = "retention.days"
	defaultTierValue = "auto"
)

// SetDefaults registers the default value of every key
func SetDefaults() {
	viper.SetDefault(KeyPatchDir, filepath.Join(DataDir(), "patches"))
	viper.SetDefault(KeyHostsFile, filepath.Join(Dir(), "hosts"))
	viper.SetDefault(KeyRemoteDir, transfer.DefaultRemoteDir)
	viper.SetDefault(KeySSHConfig, filepath.Join("~", ".ssh", "config"))
	viper.SetDefault(KeyRenderTier, defaultTierValue)
	viper.SetDefault(KeyUITier, defaultTierValue)
	viper.SetDefault(KeyRetentionDays, 30)
}

// Dir returns $XDG_CONFIG_HOME/git-continuity, falling back to ~/.config
func Dir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns $XDG_DATA_HOME/git-continuity, falling back to ~/.local/share
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) string {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(fallback, AppName)
	}
	return filepath.Join(home, fallback, AppName)
}

// GetPatchDir returns the local directory exports are written to
func GetPatchDir() string {
	return ExpandHome(viper.GetString(KeyPatchDir))
}

// GetHostsFile returns the path of the host registry file
func GetHostsFile() string {
	return ExpandHome(viper.GetString(KeyHostsFile))
}

// GetRemoteDir returns the remote directory used for hosts without one.
// It is interpreted on the remote side so "~" is kept as is.
func GetRemoteDir() string {
	return viper.GetString(KeyRemoteDir)
}

// GetSSHConfig returns the ssh client config consulted for host names
func GetSSHConfig() string {
	return ExpandHome(viper.GetString(KeySSHConfig))
}

// GetRenderTier returns the configured preview tier (auto, rich, pager, plain)
func GetRenderTier() string {
	return viper.GetString(KeyRenderTier)
}

// GetUITier returns the configured prompt tier (auto, gum, prompt, none)
func GetUITier() string {
	return viper.GetString(KeyUITier)
}

// GetRetentionDays returns how many days prune keeps patches
func GetRetentionDays() int {
	return viper.GetInt(KeyRetentionDays)
}

// EnsureDirs creates the patch directory and the directory of the hosts file
func EnsureDirs() error {
	for _, dir := range []string{GetPatchDir(), filepath.Dir(GetHostsFile())} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
