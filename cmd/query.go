package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leads-cli/internal/engine"
	"github.com/sells-group/leads-cli/internal/model"
)

var queryCmd = &cobra.Command{
	Use:   "query [ein]",
	Short: "Print the outreach query for an employer",
	Long: `Look up leads by EIN or employer name and print their prebuilt
outreach queries, ready to paste into a research tool. The EIN may be plain
digits or the punctuated IRS form; --employer matches a case-insensitive
name substring and may print several queries.

Examples:
  leads-cli query 43157915
  leads-cli query 04-3157915 --json
  leads-cli query --employer "acme"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().String("employer", "", "look up by employer name substring instead of EIN")
	queryCmd.Flags().String("snapshot", "", "snapshot ID to operate on (default: latest)")
	queryCmd.Flags().Bool("json", false, "print the full lead records as JSON")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	employer, _ := cmd.Flags().GetString("employer")
	switch {
	case employer == "" && len(args) == 0:
		return eris.New("query: an EIN argument or --employer is required")
	case employer != "" && len(args) > 0:
		return eris.New("query: pass an EIN or --employer, not both")
	}

	st, err := openStore(ctx, "outreach")
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	snapID, _ := cmd.Flags().GetString("snapshot")
	snap, err := loadSnapshot(ctx, st, snapID)
	if err != nil {
		return eris.Wrap(err, "query")
	}

	if employer != "" {
		matches := engine.Filter(snap.View(), engine.FilterRequest{EmployerContains: employer})
		if len(matches) == 0 {
			return eris.Errorf("query: no lead matching employer %q in snapshot %s", employer, truncateID(snap.ID))
		}
		return printQueries(cmd, matches)
	}

	ein, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(args[0]), "-", ""), 10, 64)
	if err != nil {
		return eris.Errorf("query: invalid ein %q", args[0])
	}

	for _, l := range snap.View() {
		if l.EIN == ein {
			return printQueries(cmd, []*model.Lead{l})
		}
	}

	return eris.Errorf("query: no lead with EIN %d in snapshot %s", ein, truncateID(snap.ID))
}

// printQueries writes one outreach query per line, or the full records with
// --json (a single object for one match, an array otherwise).
func printQueries(cmd *cobra.Command, leads []*model.Lead) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if len(leads) == 1 {
			return enc.Encode(leads[0])
		}
		return enc.Encode(leads)
	}
	for _, l := range leads {
		fmt.Println(l.OutreachQuery)
	}
	return nil
}
