package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/dhikr-alarm/internal/config"
	"github.com/oshokin/dhikr-alarm/internal/logger"
	"github.com/oshokin/dhikr-alarm/internal/repository/schedule"
	"github.com/oshokin/dhikr-alarm/internal/service/registration"
	"github.com/oshokin/dhikr-alarm/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// settings is the configuration loaded before every subcommand.
	settings *config.Config

	// rootCmd represents the base command.
	rootCmd = &cobra.Command{
		Use:   "dhikr-alarm",
		Short: "Alarm clock dismissed by completing a dhikr count.",
		Long: `An alarm clock that keeps ringing until you tap out a full dhikr count.

Every tap silences the alarm for a few seconds. Stop tapping and it rings again.
Reach the goal (100 taps by default) and the alarm is dismissed.

Schedule the alarm with "set", keep "run" going in the background to watch for it,
and use "ring" to try the ringing screen right away.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			level, _ := logger.ParseLogLevel(cfg.LogLevel)
			logger.SetLevel(level)

			settings = cfg

			return nil
		},
	}
)

// Execute runs the dhikr-alarm CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newRegistration creates the registration service over the configured state file.
func newRegistration(cfg *config.Config) *registration.Service {
	return registration.New(schedule.NewFileRepository(cfg.StateFile))
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")

	rootCmd.AddCommand(setCmd, cancelCmd, statusCmd, permissionCmd, ringCmd, runCmd, initCmd)
}
