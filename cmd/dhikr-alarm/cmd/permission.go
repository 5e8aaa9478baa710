package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// errPermissionDenied is returned when exact alarms cannot be scheduled.
var errPermissionDenied = errors.New("exact alarm permission denied")

// permissionCmd asks the host for exact alarm scheduling.
var permissionCmd = &cobra.Command{
	Use:   "permission",
	Short: "Request permission to schedule exact alarms.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !newRegistration(settings).RequestExactAlarmPermission(cmd.Context()) {
			return errPermissionDenied
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Exact alarms are allowed")

		return nil
	},
}
