package notion

import (
	"context"
	"sync/atomic"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leads-cli/internal/model"
)

// defaultPushWorkers bounds concurrent page creates. The client's rate
// limiter is the real throttle; workers just keep a few requests in flight.
const defaultPushWorkers = 4

// PushOptions configures a push batch.
type PushOptions struct {
	// Workers bounds concurrent page creates (default 4).
	Workers int
	// SkipExisting queries the tracker first and skips leads whose EIN
	// already has a page.
	SkipExisting bool
}

// PushResult summarizes a push batch.
type PushResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// PushLeads creates one tracker page per lead in the outreach database.
// Individual page failures are logged and counted rather than aborting the
// batch; the call returns an error only when every page failed.
func PushLeads(ctx context.Context, c Client, dbID string, leads []*model.Lead, opts PushOptions) (*PushResult, error) {
	if len(leads) == 0 {
		return &PushResult{}, nil
	}

	workers := opts.Workers
	if workers < 1 {
		workers = defaultPushWorkers
	}

	log := zap.L().With(zap.String("database", dbID))

	var existing map[string]struct{}
	if opts.SkipExisting {
		var err error
		existing, err = ExistingEINs(ctx, c, dbID)
		if err != nil {
			return nil, err
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var created, skipped, failed atomic.Int64
	for _, l := range leads {
		if _, ok := existing[l.EINString()]; ok {
			skipped.Add(1)
			continue
		}

		g.Go(func() error {
			req := &notionapi.PageCreateRequest{
				Parent: notionapi.Parent{
					Type:       notionapi.ParentTypeDatabaseID,
					DatabaseID: notionapi.DatabaseID(dbID),
				},
				Properties: leadProperties(l),
			}

			if _, err := c.CreatePage(gCtx, req); err != nil {
				failed.Add(1)
				log.Error("notion: create lead page",
					zap.String("employer", l.EmployerName),
					zap.Error(err),
				)
				return nil // keep pushing the rest of the batch
			}
			created.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &PushResult{
		Created: int(created.Load()),
		Skipped: int(skipped.Load()),
		Failed:  int(failed.Load()),
	}
	log.Info("notion: push complete",
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
	)

	if res.Created == 0 && res.Failed > 0 {
		return res, eris.Errorf("notion: all %d lead pages failed", res.Failed)
	}
	return res, nil
}

// leadProperties maps a lead onto the outreach tracker schema: Employer is
// the title, Participants a number, Status always starts Queued, everything
// else rich text.
func leadProperties(l *model.Lead) notionapi.Properties {
	props := notionapi.Properties{
		"Employer": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: l.EmployerName}},
			},
		},
		"EIN": richText(l.EINString()),
		"Participants": notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(l.Participants),
		},
		"Segment":        richText(string(l.Segment)),
		"Tier":           richText(string(l.Tier)),
		"Outreach Query": richText(l.OutreachQuery),
		"Status": notionapi.StatusProperty{
			Status: notionapi.Status{Name: "Queued"},
		},
	}
	if l.State != "" {
		props["State"] = richText(l.State)
	}
	return props
}

func richText(s string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		Type: notionapi.PropertyTypeRichText,
		RichText: []notionapi.RichText{
			{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
		},
	}
}
