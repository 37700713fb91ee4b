package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/williamokano/gfs_rotator/pkg/backup"
	"github.com/williamokano/gfs_rotator/pkg/rotation"
)

// TierKept labels backups an age-based plan keeps
const TierKept = "kept"

type listEntry struct {
	Database  string    `json:"database" yaml:"database"`
	Store     string    `json:"store" yaml:"store"`
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Tier      string    `json:"tier" yaml:"tier"`
	Reason    string    `json:"reason,omitempty" yaml:"reason,omitempty"`
	Prune     bool      `json:"prune" yaml:"prune"`
}

func newListCmd(flags *globalFlags) *cobra.Command {
	var (
		database    string
		destination string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the tier of every backup and what a prune would delete",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "text", "json", "yaml":
			default:
				return fmt.Errorf("unknown format %q (expected: text, json, yaml)", format)
			}

			cfg, log, err := flags.load()
			if err != nil {
				return err
			}

			reports, err := backup.RotateAll(cmd.Context(), cfg, backup.RotateOptions{
				Database:    database,
				Destination: destination,
				DryRun:      true,
			}, log, nil)

			entries := listEntries(reports)
			if werr := writeEntries(cmd.OutOrStdout(), format, entries); werr != nil {
				return werr
			}
			return err
		},
	}

	cmd.Flags().StringVar(&database, "database", "", "only this database")
	cmd.Flags().StringVar(&destination, "destination", "", "only this destination")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, yaml")

	return cmd
}

// listEntries flattens reports into one entry per backup, newest first
func listEntries(reports []rotation.Report) []listEntry {
	var entries []listEntry

	for _, r := range reports {
		prune := make(map[string]bool, len(r.Selected))
		for _, c := range r.Selected {
			prune[c.ID] = true
		}

		if r.Classified != nil {
			for _, c := range r.Classified {
				entries = append(entries, listEntry{
					Database:  r.Database,
					Store:     r.Store,
					ID:        c.ID,
					CreatedAt: c.CreatedAt,
					Tier:      string(c.Tier),
					Reason:    c.Reason,
					Prune:     prune[c.ID],
				})
			}
			continue
		}

		reasons := make(map[string]string, len(r.Selected))
		for _, c := range r.Selected {
			reasons[c.ID] = c.Reason
		}
		backups := append([]rotation.Backup(nil), r.Backups...)
		sort.Slice(backups, func(i, j int) bool { return backups[i].CreatedAt.After(backups[j].CreatedAt) })

		for _, b := range backups {
			e := listEntry{
				Database:  r.Database,
				Store:     r.Store,
				ID:        b.ID,
				CreatedAt: b.CreatedAt,
				Tier:      TierKept,
			}
			if prune[b.ID] {
				e.Tier = string(rotation.TierPrunable)
				e.Reason = reasons[b.ID]
				e.Prune = true
			}
			entries = append(entries, e)
		}
	}

	return entries
}

func writeEntries(w io.Writer, format string, entries []listEntry) error {
	if entries == nil {
		entries = []listEntry{}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(entries)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATABASE\tSTORE\tBACKUP\tCREATED\tTIER\tREASON\tPRUNE")
	for _, e := range entries {
		mark := ""
		if e.Prune {
			mark = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Database, e.Store, e.ID, e.CreatedAt.UTC().Format(time.RFC3339), e.Tier, e.Reason, mark)
	}
	return tw.Flush()
}
