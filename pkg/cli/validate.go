package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/williamokano/gfs_rotator/pkg/config"
)

func newValidateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(flags.configFile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", flags.configFile)
			return nil
		},
	}
}
