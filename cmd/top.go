package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/engine"
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Rank leads and emit the outreach shortlist",
	Long: `Rank the roster by priority tier, then participant count descending,
and emit the top N leads. Ranking is stable: employers tied on both keys keep
their roster order. Filter flags narrow the set before ranking.

Examples:
  # Default shortlist (top 50 by priority)
  leads-cli top

  # Top 100 Tier 1 and 2 leads as an XLSX workbook
  leads-cli top -n 100 --tiers 1,2 --format xlsx --output shortlist.xlsx

  # Shortlist with outreach query columns
  leads-cli top --queries --format csv --output queries.csv`,
	RunE: runTop,
}

func init() {
	addFilterFlags(topCmd)
	addOutputFlags(topCmd)
	topCmd.Flags().IntP("top", "n", 0, "shortlist size (default from config)")

	rootCmd.AddCommand(topCmd)
}

func runTop(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, "outreach")
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	snapID, _ := cmd.Flags().GetString("snapshot")
	snap, err := loadSnapshot(ctx, st, snapID)
	if err != nil {
		return eris.Wrap(err, "top")
	}

	req, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	n, _ := cmd.Flags().GetInt("top")
	if n == 0 {
		n = cfg.Outreach.TopN
	}

	matched := engine.Filter(snap.View(), req)
	shortlist := engine.TopN(matched, n)

	zap.L().Info("shortlist ranked",
		zap.String("snapshot", truncateID(snap.ID)),
		zap.Int("matched", len(matched)),
		zap.Int("shortlist", len(shortlist)),
	)

	if format, _ := cmd.Flags().GetString("format"); len(shortlist) == 0 && format == "table" {
		fmt.Fprintln(os.Stderr, "No leads matched.")
		return nil
	}

	return outputLeads(cmd, shortlist)
}
