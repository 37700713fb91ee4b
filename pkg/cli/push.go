package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/williamokano/gfs_rotator/pkg/backup"
)

func newPushCmd(flags *globalFlags) *cobra.Command {
	var (
		database  string
		timestamp string
	)

	cmd := &cobra.Command{
		Use:   "push <archive>",
		Short: "Upload a finished backup archive to every destination, then rotate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := flags.load()
			if err != nil {
				return err
			}

			db, ok := cfg.Database(database)
			if !ok {
				return fmt.Errorf("database %s is not configured", database)
			}

			at := time.Now()
			if timestamp != "" {
				if at, err = time.Parse(time.RFC3339, timestamp); err != nil {
					return fmt.Errorf("invalid --timestamp: %w", err)
				}
			}

			result := backup.Push(cmd.Context(), cfg, db, args[0], at, log)

			out := cmd.OutOrStdout()
			for _, r := range result.BackendResults {
				status := "ok"
				if !r.Success {
					status = fmt.Sprintf("failed: %v", r.Error)
				}
				fmt.Fprintf(out, "%s -> %s: %s\n", result.Object, r.BackendName, status)
			}
			printPruneSummary(out, result.Reports)

			return result.Error
		},
	}

	cmd.Flags().StringVar(&database, "database", "", "database the archive belongs to")
	cmd.Flags().StringVar(&timestamp, "timestamp", "", "backup time in RFC3339 (default: now)")
	_ = cmd.MarkFlagRequired("database")

	return cmd
}
