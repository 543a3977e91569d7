package salesforce

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/model"
)

// leadSObject is the Salesforce object lead rows are inserted into.
const leadSObject = "Lead"

// maxBatchSize is the Salesforce Collections API limit per request.
const maxBatchSize = 200

// SyncOptions controls a SyncLeads run.
type SyncOptions struct {
	// SkipExisting queries Salesforce for EINs already on Lead records and
	// drops matching leads before inserting.
	SkipExisting bool
}

// SyncResult summarizes a SyncLeads run.
type SyncResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// SyncLeads inserts the given leads into Salesforce as Lead records, in
// collection batches of up to 200. Records rejected by Salesforce are logged
// and counted rather than aborting the run; a batch-level API failure returns
// the partial result alongside the error.
func SyncLeads(ctx context.Context, c Client, leads []*model.Lead, opts SyncOptions) (*SyncResult, error) {
	res := &SyncResult{}
	if len(leads) == 0 {
		return res, nil
	}

	log := zap.L().With(zap.String("sobject", leadSObject))

	if opts.SkipExisting {
		existing, err := ExistingEINs(ctx, c)
		if err != nil {
			return nil, err
		}
		kept := make([]*model.Lead, 0, len(leads))
		for _, l := range leads {
			if _, ok := existing[l.EINString()]; ok {
				res.Skipped++
				continue
			}
			kept = append(kept, l)
		}
		leads = kept
	}

	records := make([]map[string]any, len(leads))
	for i, l := range leads {
		records[i] = leadFields(l)
	}

	for start := 0; start < len(records); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(records) {
			end = len(records)
		}

		results, err := c.InsertCollection(ctx, leadSObject, records[start:end])
		if err != nil {
			return res, eris.Wrapf(err, "sf: insert leads batch %d-%d", start, end)
		}
		for i, r := range results {
			if r.Success {
				res.Created++
				continue
			}
			res.Failed++
			log.Warn("sf: lead rejected",
				zap.String("employer", leads[start+i].EmployerName),
				zap.String("detail", strings.Join(r.Errors, "; ")))
		}
	}

	log.Info("sf: sync complete",
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed))

	if res.Created == 0 && res.Failed > 0 {
		return res, eris.Errorf("sf: all %d lead inserts failed", res.Failed)
	}
	return res, nil
}

// leadEIN is the SOQL projection used to dedupe against existing Lead records.
type leadEIN struct {
	EIN string `json:"EIN__c" salesforce:"EIN__c"`
}

// ExistingEINs returns the set of EINs already present on Lead records.
func ExistingEINs(ctx context.Context, c Client) (map[string]struct{}, error) {
	var rows []leadEIN
	if err := c.Query(ctx, "SELECT EIN__c FROM Lead WHERE EIN__c != null", &rows); err != nil {
		return nil, eris.Wrap(err, "sf: list existing leads")
	}

	eins := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if ein := strings.TrimSpace(r.EIN); ein != "" {
			eins[ein] = struct{}{}
		}
	}
	return eins, nil
}

// leadFields maps a lead onto Lead sObject fields. The employer lands in
// Company and the outreach query in Description, so reps see the research
// prompt directly on the record.
func leadFields(l *model.Lead) map[string]any {
	fields := map[string]any{
		"Company":           l.EmployerName,
		"NumberOfEmployees": l.Participants,
		"Description":       l.OutreachQuery,
		"EIN__c":            l.EINString(),
		"Market_Segment__c": string(l.Segment),
		"Priority_Tier__c":  string(l.Tier),
	}
	if l.State != "" {
		fields["State"] = l.State
	}
	return fields
}
