package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/dhikr-alarm/internal/config"
)

var (
	// force allows init to overwrite an existing configuration file.
	force bool

	// errConfigExists is returned when init would overwrite a configuration file.
	errConfigExists = errors.New("configuration file already exists, use --force to overwrite")

	// initCmd writes the default configuration.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default settings.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("%s: %w", configPath, errConfigExists)
			}

			if err := config.Save(configPath, config.Default()); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Settings written to %s\n", configPath)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration file")
}
