package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pders01/git-continuity/internal/config"
	"github.com/pders01/git-continuity/internal/errors"
)

const appName = "git-continuity"

var (
	cfgFile     string
	logLevel    string
	logFormat   string
	noTransfer  bool
	noPreview   bool
	scpAlias    string
	interactive bool
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Carry uncommitted git changes between machines",
	Long: `git-continuity packages your uncommitted work into a single patch file:
  - the staged diff
  - the unstaged diff
  - a manifest of untracked files

The patch can be copied to another machine over scp and applied there,
restoring staged and unstaged changes separately.

Run without a command to pick an action interactively.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		if err := config.EnsureDirs(); err != nil {
			slog.Warn("could not create data directories", "error", err)
		}
		return nil
	},
	RunE: runRoot,
}

// Execute runs the root command and exits non-zero on failure. A cancelled
// operation is not a failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errors.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "Cancelled")
			return
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/git-continuity/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text or json)")
	rootCmd.PersistentFlags().BoolVar(&noTransfer, "no-transfer", false, "Never offer to copy the patch to a remote host")
	rootCmd.PersistentFlags().BoolVar(&noPreview, "no-preview", false, "Skip the preview and confirmation before export and import")
	rootCmd.PersistentFlags().StringVar(&scpAlias, "scp", "", "Copy the exported patch to this host alias or user@host")
	rootCmd.PersistentFlags().BoolVar(&interactive, "interactive", false, "Prompt even when no terminal is detected")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(config.Dir())
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	config.SetDefaults()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: failed to read config %s: %v\n", filepath.Clean(cfgFile), err)
	}
}

// setupLogging initializes the slog logger based on flags
func setupLogging() {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	var handler slog.Handler
	if strings.ToLower(logFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	slog.SetDefault(slog.New(handler))
}

func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unknown command %q for %q", args[0], appName)
	}
	return runMenu(cmd, args)
}

// commandContext returns the command's context, or a background context
// when the command is invoked directly from tests
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
