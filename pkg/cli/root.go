// Package cli implements the gfs_rotator commands.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/williamokano/gfs_rotator/pkg/config"
	"github.com/williamokano/gfs_rotator/pkg/logger"
)

var (
	// Version is the semantic version (set by build flags)
	Version = "0.1.0"
	// GitCommit is the git commit hash (set by build flags)
	GitCommit = "unknown"
)

type globalFlags struct {
	configFile string
	logLevel   string
	logFormat  string
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "gfs_rotator",
		Short: "Grandfather-father-son backup rotation",
		Long: `gfs_rotator keeps a grandfather-father-son set of backups on local disk,
S3, Backblaze B2 or SFTP destinations: the newest daily backups, one backup per
ISO week and one per calendar month. Everything else is pruned, oldest first,
never leaving fewer than min_keep backups.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "./config.json", "config file path (.json, .yaml, .yml or .toml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format: json, console (overrides config)")

	root.AddCommand(
		newListCmd(flags),
		newPruneCmd(flags),
		newPushCmd(flags),
		newServeCmd(flags),
		newValidateCmd(flags),
		newVersionCmd(),
	)

	return root
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// load parses the configuration and initializes logging from it. Flags win
// over the file.
func (f *globalFlags) load() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.ParseConfig(f.configFile)
	if err != nil {
		logger.Init(pick(f.logLevel, "info"), pick(f.logFormat, "json"))
		return nil, *logger.Get(), err
	}

	logger.Init(pick(f.logLevel, cfg.GetLogLevel()), pick(f.logFormat, cfg.GetLogFormat()))
	log := *logger.Get()
	log.Debug().Str("config_file", f.configFile).Msg("configuration loaded")

	return cfg, log, nil
}

func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
