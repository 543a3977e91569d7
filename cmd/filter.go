package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/engine"
	"github.com/sells-group/leads-cli/internal/export"
	"github.com/sells-group/leads-cli/internal/model"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter the loaded roster into a lead list",
	Long: `Select leads from the most recent snapshot by state, priority tier,
participant count, market segment, employer name, or EIN. Dimensions combine
with AND; leads come back in roster order, one page at a time.

Examples:
  # Tier 1 employers in Massachusetts with at least 1,000 participants
  leads-cli filter --states MA --tiers 1 --min-participants 1000

  # Every large-market lead, exported to CSV
  leads-cli filter --segments large --all --format csv --output large.csv

  # Second page of a name search
  leads-cli filter --employer "health" --page 2`,
	RunE: runFilter,
}

func init() {
	addFilterFlags(filterCmd)
	addOutputFlags(filterCmd)
	f := filterCmd.Flags()
	f.Int("page", 1, "page number (1-based)")
	f.Int("page-size", 0, "leads per page (default from config)")
	f.Bool("all", false, "emit every matching lead instead of one page")

	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, _ []string) error {
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
		return eris.Wrap(err, "filter")
	}

	req, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	matched := engine.Filter(snap.View(), req)
	total := len(matched)

	page, _ := cmd.Flags().GetInt("page")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	if pageSize == 0 {
		pageSize = cfg.Outreach.PageSize
	}
	all, _ := cmd.Flags().GetBool("all")

	leads := matched
	if !all {
		leads = engine.Paginate(matched, pageSize, page)
	}

	zap.L().Info("filter complete",
		zap.String("snapshot", truncateID(snap.ID)),
		zap.Int("matched", total),
		zap.Int("emitted", len(leads)),
	)

	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	if len(leads) == 0 && format == "table" {
		fmt.Fprintln(os.Stderr, "No leads matched.")
		return nil
	}

	if err := outputLeads(cmd, leads); err != nil {
		return err
	}

	if !all && format == "table" && outputPath == "" {
		fmt.Fprintf(os.Stderr, "Page %d of %d (%d leads)\n", page, engine.PageCount(total, pageSize), total)
	}
	return nil
}

// addFilterFlags registers the lead selection flags shared by the filter,
// top, stats, and push commands.
func addFilterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("states", "", "comma-separated state codes (e.g. MA,NY,CA)")
	f.String("tiers", "", "comma-separated priority tiers (e.g. 1,2)")
	f.String("segments", "", "comma-separated market segments: small, mid, large")
	f.Int("min-participants", 0, "minimum participant count, inclusive")
	f.Int("max-participants", 0, "maximum participant count, inclusive")
	f.String("employer", "", "case-insensitive employer name substring")
	f.String("ein", "", "EIN substring")
	f.String("snapshot", "", "snapshot ID to operate on (default: latest)")
}

// addOutputFlags registers the lead output flags shared by filter and top.
func addOutputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("format", "table", "output format: table, csv, or xlsx")
	f.String("output", "", "output file path (default: stdout; required for xlsx)")
	f.Bool("queries", false, "use the outreach query column layout for csv/xlsx")
	f.Bool("wide", false, "include the plan name column in table output")
}

// filterFromFlags builds a FilterRequest from the shared filter flags.
func filterFromFlags(cmd *cobra.Command) (engine.FilterRequest, error) {
	var req engine.FilterRequest

	if v, _ := cmd.Flags().GetString("states"); v != "" {
		req.States = splitAndTrim(v)
	}
	if v, _ := cmd.Flags().GetString("tiers"); v != "" {
		for _, s := range splitAndTrim(v) {
			t, err := model.ParseTier(s)
			if err != nil {
				return req, err
			}
			req.Tiers = append(req.Tiers, t)
		}
	}
	if v, _ := cmd.Flags().GetString("segments"); v != "" {
		for _, s := range splitAndTrim(v) {
			seg, err := model.ParseMarketSegment(s)
			if err != nil {
				return req, err
			}
			req.Segments = append(req.Segments, seg)
		}
	}
	req.MinParticipants, _ = cmd.Flags().GetInt("min-participants")
	req.MaxParticipants, _ = cmd.Flags().GetInt("max-participants")
	req.EmployerContains, _ = cmd.Flags().GetString("employer")
	req.EINContains, _ = cmd.Flags().GetString("ein")

	return req, nil
}

// outputLeads writes leads to the --output file (or stdout) in the format
// selected by the shared output flags.
func outputLeads(cmd *cobra.Command, leads []*model.Lead) error {
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	queries, _ := cmd.Flags().GetBool("queries")
	wide, _ := cmd.Flags().GetBool("wide")

	if format == "xlsx" && outputPath == "" {
		return eris.New("export: --output is required for xlsx")
	}

	var w *os.File
	if outputPath != "" {
		outputPath = resolveOutput(outputPath)
		var err error
		w, err = os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "export: create output file %s", outputPath)
		}
		defer w.Close() //nolint:errcheck
	} else {
		w = os.Stdout
	}

	opts := export.Options{Queries: queries}

	switch format {
	case "table":
		export.WriteTable(w, leads, wide)
		return nil
	case "csv":
		return export.WriteCSV(w, leads, opts)
	case "xlsx":
		return export.WriteXLSX(w, leads, opts)
	default:
		return eris.Errorf("export: unsupported format %q", format)
	}
}

// resolveOutput places bare filenames under the configured export directory.
// Paths with a directory component are left alone.
func resolveOutput(path string) string {
	if path == "" || filepath.IsAbs(path) || filepath.Dir(path) != "." {
		return path
	}
	if cfg.Export.Dir == "" {
		return path
	}
	return filepath.Join(cfg.Export.Dir, path)
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
