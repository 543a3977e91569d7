package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leads-cli/internal/engine"
	"github.com/sells-group/leads-cli/internal/model"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the loaded roster",
	Long: `Compute aggregate statistics over the roster (or a filtered subset):
lead totals, participant median and average, tier counts, the geographic
distribution of the busiest states, and a participant count histogram.

Examples:
  # Roster-wide summary
  leads-cli stats

  # Tier 1 employers only, as JSON
  leads-cli stats --tiers 1 --format json

  # Wider geographic view with a coarser histogram
  leads-cli stats --top-states 25 --bins 10`,
	RunE: runStats,
}

func init() {
	addFilterFlags(statsCmd)
	f := statsCmd.Flags()
	f.String("format", "table", "output format: table or json")
	f.Int("top-states", 0, "states to list in the distribution (default from config)")
	f.Int("bins", 0, "participant histogram bins (default from config)")

	rootCmd.AddCommand(statsCmd)
}

// rosterStats bundles the three aggregate views for JSON output.
type rosterStats struct {
	Summary   engine.Summary           `json:"summary"`
	States    []engine.StateCount      `json:"states"`
	Histogram []engine.HistogramBucket `json:"histogram"`
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	format, _ := cmd.Flags().GetString("format")
	if format != "table" && format != "json" {
		return eris.Errorf("stats: --format must be table or json (got %q)", format)
	}

	st, err := openStore(ctx, "outreach")
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	snapID, _ := cmd.Flags().GetString("snapshot")
	snap, err := loadSnapshot(ctx, st, snapID)
	if err != nil {
		return eris.Wrap(err, "stats")
	}

	req, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	topStates, _ := cmd.Flags().GetInt("top-states")
	if topStates == 0 {
		topStates = cfg.Outreach.TopStates
	}
	bins, _ := cmd.Flags().GetInt("bins")
	if bins == 0 {
		bins = cfg.Outreach.HistogramBins
	}

	leads := engine.Filter(snap.View(), req)
	stats := rosterStats{
		Summary:   engine.Summarize(leads),
		States:    engine.StateDistribution(leads, topStates),
		Histogram: engine.ParticipantHistogram(leads, bins),
	}

	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	formatRosterStats(os.Stdout, stats)
	return nil
}

// formatRosterStats writes the aggregate views as aligned text tables.
func formatRosterStats(out io.Writer, stats rosterStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	s := stats.Summary
	_, _ = fmt.Fprintf(w, "Total leads:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Median participants:\t%s\n", formatFloat(s.MedianParticipants))
	_, _ = fmt.Fprintf(w, "Average participants:\t%s\n", formatFloat(s.AvgParticipants))
	for _, tier := range []model.Tier{model.Tier1, model.Tier2, model.Tier3} {
		_, _ = fmt.Fprintf(w, "%s:\t%d\n", tier, s.TierCounts[tier])
	}
	_, _ = fmt.Fprintf(w, "Large market:\t%d\n", s.LargeMarket)
	_ = w.Flush()

	if len(stats.States) > 0 {
		_, _ = fmt.Fprintln(out, "\nTop states:")
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "STATE\tTIER\tLEADS")
		_, _ = fmt.Fprintln(w, "-----\t----\t-----")
		for _, sc := range stats.States {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", sc.State, sc.Tier, sc.Count)
		}
		_ = w.Flush()
	}

	if len(stats.Histogram) > 0 {
		_, _ = fmt.Fprintln(out, "\nParticipants:")
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "RANGE\tLEADS")
		_, _ = fmt.Fprintln(w, "-----\t-----")
		for _, b := range stats.Histogram {
			_, _ = fmt.Fprintf(w, "%d-%d\t%d\n", b.Low, b.High, b.Count)
		}
		_ = w.Flush()
	}
}

// formatFloat renders an optional statistic, "-" when there is no data.
func formatFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}
