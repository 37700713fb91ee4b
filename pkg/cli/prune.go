package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/williamokano/gfs_rotator/pkg/backup"
	"github.com/williamokano/gfs_rotator/pkg/rotation"
)

func newPruneCmd(flags *globalFlags) *cobra.Command {
	var (
		database string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete the backups retention no longer needs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := flags.load()
			if err != nil {
				return err
			}

			reports, err := backup.RotateAll(cmd.Context(), cfg, backup.RotateOptions{
				Database: database,
				DryRun:   dryRun,
			}, log, nil)

			printPruneSummary(cmd.OutOrStdout(), reports)
			return err
		},
	}

	cmd.Flags().StringVar(&database, "database", "", "only this database")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be deleted without deleting")

	return cmd
}

func printPruneSummary(w io.Writer, reports []rotation.Report) {
	for _, r := range reports {
		if r.DryRun {
			fmt.Fprintf(w, "%s on %s: would delete %d of %d backups\n", r.Database, r.Store, len(r.Selected), r.Total)
			for _, c := range r.Selected {
				fmt.Fprintf(w, "  %s (%s)\n", c.ID, c.Reason)
			}
			continue
		}

		fmt.Fprintf(w, "%s on %s: deleted %d, failed %d, kept %d\n", r.Database, r.Store, len(r.Deleted), len(r.Failed), r.Kept())
		ids := make([]string, 0, len(r.Failed))
		for id := range r.Failed {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(w, "  failed %s: %v\n", id, r.Failed[id])
		}
	}
}
