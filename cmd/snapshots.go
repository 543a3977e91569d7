package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/store"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Inspect loaded roster snapshots",
	Long:  "Commands for listing, viewing, and deleting roster snapshots.",
}

// -- snapshots list --

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List roster snapshots",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, "outreach")
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		source, _ := cmd.Flags().GetString("source")
		limit, _ := cmd.Flags().GetInt("limit")

		snaps, err := st.ListSnapshots(ctx, store.SnapshotFilter{
			Source: source,
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "snapshots list")
		}

		if len(snaps) == 0 {
			fmt.Fprintln(os.Stderr, "No snapshots found.")
			return nil
		}

		formatSnapshotsList(os.Stdout, snaps)
		return nil
	},
}

// -- snapshots show --

var snapshotsShowCmd = &cobra.Command{
	Use:   "show <snapshot-id>",
	Short: "Show full details of a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, "outreach")
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		snap, err := st.GetSnapshot(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "snapshots show")
		}

		if withLeads, _ := cmd.Flags().GetBool("leads"); !withLeads {
			snap.Leads = nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}

// -- snapshots rm --

var snapshotsRmCmd = &cobra.Command{
	Use:   "rm <snapshot-id>",
	Short: "Delete a snapshot and its leads",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, "outreach")
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeleteSnapshot(ctx, args[0]); err != nil {
			return eris.Wrap(err, "snapshots rm")
		}

		fmt.Printf("Deleted snapshot %s\n", args[0])
		return nil
	},
}

func init() {
	snapshotsListCmd.Flags().String("source", "", "filter by source location")
	snapshotsListCmd.Flags().Int("limit", 50, "max number of snapshots to display")

	snapshotsShowCmd.Flags().Bool("leads", false, "include the full lead list in the output")

	snapshotsCmd.AddCommand(snapshotsListCmd)
	snapshotsCmd.AddCommand(snapshotsShowCmd)
	snapshotsCmd.AddCommand(snapshotsRmCmd)
	rootCmd.AddCommand(snapshotsCmd)
}

// formatSnapshotsList writes a tabular list of snapshots to w.
func formatSnapshotsList(out io.Writer, snaps []model.Snapshot) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSOURCE\tLEADS\tFINGERPRINT\tLOADED")
	_, _ = fmt.Fprintln(w, "--\t------\t-----\t-----------\t------")

	for _, s := range snaps {
		source := s.Source
		if len(source) > 40 {
			source = source[:37] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			truncateID(s.ID),
			source,
			s.LeadCount,
			truncateID(s.Fingerprint),
			s.LoadedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of an ID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
