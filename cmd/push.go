package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leads-cli/internal/engine"
	"github.com/sells-group/leads-cli/internal/export"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/store"
	"github.com/sells-group/leads-cli/pkg/notion"
	sfpkg "github.com/sells-group/leads-cli/pkg/salesforce"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push the ranked shortlist to an outreach tracker",
	Long:  "Commands for exporting top-ranked leads into external CRM and tracking systems.",
}

var pushNotionCmd = &cobra.Command{
	Use:   "notion",
	Short: "Create lead pages in the Notion outreach database",
	Long: `Rank the roster (after any filters) and create one page per lead in
the configured Notion database, ready for the outreach team to work through.

Examples:
  # Push the default shortlist
  leads-cli push notion

  # Push the top 20 Tier 1 leads, skipping EINs already tracked
  leads-cli push notion -n 20 --tiers 1 --skip-existing

  # See what would be pushed without creating pages
  leads-cli push notion --dry-run`,
	RunE: runPushNotion,
}

var pushSalesforceCmd = &cobra.Command{
	Use:   "salesforce",
	Short: "Insert the shortlist into Salesforce as Lead records",
	Long: `Rank the roster (after any filters) and insert the shortlist into
Salesforce via the collections API, batched at the 200-record limit.

Examples:
  # Push the default shortlist
  leads-cli push salesforce

  # Push every Tier 1 lead, skipping EINs already in Salesforce
  leads-cli push salesforce --tiers 1 --all --skip-existing`,
	RunE: runPushSalesforce,
}

func init() {
	for _, c := range []*cobra.Command{pushNotionCmd, pushSalesforceCmd} {
		addFilterFlags(c)
		f := c.Flags()
		f.IntP("top", "n", 0, "shortlist size (default from config)")
		f.Bool("all", false, "push every matching lead instead of the top N")
		f.Bool("skip-existing", false, "skip leads whose EIN already has a record")
		f.Bool("dry-run", false, "print the shortlist without pushing")
		pushCmd.AddCommand(c)
	}
	pushNotionCmd.Flags().Int("workers", 0, "concurrent page creates (default 4)")

	rootCmd.AddCommand(pushCmd)
}

// pushShortlist applies the shared filter flags to the selected snapshot and
// ranks the result, truncating to the top N unless --all is set.
func pushShortlist(ctx context.Context, cmd *cobra.Command, st store.Store) ([]*model.Lead, error) {
	snapID, _ := cmd.Flags().GetString("snapshot")
	snap, err := loadSnapshot(ctx, st, snapID)
	if err != nil {
		return nil, err
	}

	req, err := filterFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	matched := engine.Filter(snap.View(), req)

	if all, _ := cmd.Flags().GetBool("all"); all {
		return engine.Rank(matched), nil
	}
	n, _ := cmd.Flags().GetInt("top")
	if n == 0 {
		n = cfg.Outreach.TopN
	}
	return engine.TopN(matched, n), nil
}

// dryRunShortlist prints the shortlist instead of pushing it. Returns true
// when the caller should stop.
func dryRunShortlist(cmd *cobra.Command, leads []*model.Lead, target string) bool {
	if dry, _ := cmd.Flags().GetBool("dry-run"); !dry {
		return false
	}
	export.WriteTable(os.Stdout, leads, false)
	fmt.Fprintf(os.Stderr, "Dry run: %d leads would be pushed to %s.\n", len(leads), target)
	return true
}

func runPushNotion(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, "notion")
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	leads, err := pushShortlist(ctx, cmd, st)
	if err != nil {
		return eris.Wrap(err, "push notion")
	}
	if len(leads) == 0 {
		fmt.Fprintln(os.Stderr, "No leads matched.")
		return nil
	}
	if dryRunShortlist(cmd, leads, "Notion") {
		return nil
	}

	skip, _ := cmd.Flags().GetBool("skip-existing")
	workers, _ := cmd.Flags().GetInt("workers")

	client := notion.NewClient(cfg.Notion.Token)
	res, err := notion.PushLeads(ctx, client, cfg.Notion.LeadsDB, leads, notion.PushOptions{
		Workers:      workers,
		SkipExisting: skip,
	})
	if err != nil {
		return eris.Wrap(err, "push notion")
	}

	fmt.Printf("Created %d pages (%d skipped, %d failed)\n", res.Created, res.Skipped, res.Failed)
	return nil
}

func runPushSalesforce(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, "salesforce")
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	leads, err := pushShortlist(ctx, cmd, st)
	if err != nil {
		return eris.Wrap(err, "push salesforce")
	}
	if len(leads) == 0 {
		fmt.Fprintln(os.Stderr, "No leads matched.")
		return nil
	}
	if dryRunShortlist(cmd, leads, "Salesforce") {
		return nil
	}

	skip, _ := cmd.Flags().GetBool("skip-existing")

	client, err := initSalesforce()
	if err != nil {
		return err
	}
	res, err := sfpkg.SyncLeads(ctx, client, leads, sfpkg.SyncOptions{SkipExisting: skip})
	if err != nil {
		return eris.Wrap(err, "push salesforce")
	}

	fmt.Printf("Inserted %d leads (%d skipped, %d failed)\n", res.Created, res.Skipped, res.Failed)
	return nil
}
