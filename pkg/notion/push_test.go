package notion

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leads-cli/internal/model"
)

func pushFixture() []*model.Lead {
	return []*model.Lead{
		{
			EmployerName:  "Acme Industries",
			EIN:           111000111,
			State:         "MA",
			Participants:  6000,
			Segment:       model.SegmentLarge,
			Tier:          model.Tier1,
			OutreachQuery: "Find the employee benefits decision-maker for Acme Industries.",
		},
		{
			EmployerName:  "Bolt Manufacturing",
			EIN:           222000222,
			State:         "TX",
			Participants:  3000,
			Segment:       model.SegmentMid,
			Tier:          model.Tier2,
			OutreachQuery: "Find the employee benefits decision-maker for Bolt Manufacturing.",
		},
	}
}

// reqEmployer extracts the title text from a page create request.
func reqEmployer(req *notionapi.PageCreateRequest) string {
	tp, ok := req.Properties["Employer"].(notionapi.TitleProperty)
	if !ok || len(tp.Title) == 0 {
		return ""
	}
	return tp.Title[0].Text.Content
}

func TestPushLeads_CreatesAllPages(t *testing.T) {
	mc := new(MockClient)

	// The push runs under an errgroup-derived context, so match any ctx.
	mc.On("CreatePage", mock.Anything, mock.MatchedBy(func(req *notionapi.PageCreateRequest) bool {
		return req.Parent.DatabaseID == notionapi.DatabaseID("db-tracker") && reqEmployer(req) != ""
	})).Return(&notionapi.Page{ID: "created"}, nil).Twice()

	res, err := PushLeads(context.Background(), mc, "db-tracker", pushFixture(), PushOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, 0, res.Failed)
	mc.AssertExpectations(t)
}

func TestPushLeads_PartialFailure(t *testing.T) {
	mc := new(MockClient)

	mc.On("CreatePage", mock.Anything, mock.MatchedBy(func(req *notionapi.PageCreateRequest) bool {
		return reqEmployer(req) == "Acme Industries"
	})).Return(nil, assert.AnError).Once()

	mc.On("CreatePage", mock.Anything, mock.MatchedBy(func(req *notionapi.PageCreateRequest) bool {
		return reqEmployer(req) == "Bolt Manufacturing"
	})).Return(&notionapi.Page{ID: "created"}, nil).Once()

	res, err := PushLeads(context.Background(), mc, "db-tracker", pushFixture(), PushOptions{})
	require.NoError(t, err) // partial failure is not a batch failure
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Failed)
	mc.AssertExpectations(t)
}

func TestPushLeads_AllFail(t *testing.T) {
	mc := new(MockClient)

	mc.On("CreatePage", mock.Anything, mock.AnythingOfType("*notionapi.PageCreateRequest")).
		Return(nil, assert.AnError).Twice()

	res, err := PushLeads(context.Background(), mc, "db-tracker", pushFixture(), PushOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 lead pages failed")
	assert.Equal(t, 2, res.Failed)
	mc.AssertExpectations(t)
}

func TestPushLeads_Empty(t *testing.T) {
	mc := new(MockClient)

	res, err := PushLeads(context.Background(), mc, "db-tracker", nil, PushOptions{})
	require.NoError(t, err)
	assert.Equal(t, &PushResult{}, res)
	mc.AssertExpectations(t)
}

func TestPushLeads_SkipExisting(t *testing.T) {
	mc := new(MockClient)

	mc.On("QueryDatabase", mock.Anything, "db-tracker", mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Return(&notionapi.DatabaseQueryResponse{
			Results: []notionapi.Page{einPage("p1", "111000111")},
			HasMore: false,
		}, nil).Once()

	// Only Bolt gets a page; Acme's EIN is already tracked.
	mc.On("CreatePage", mock.Anything, mock.MatchedBy(func(req *notionapi.PageCreateRequest) bool {
		return reqEmployer(req) == "Bolt Manufacturing"
	})).Return(&notionapi.Page{ID: "created"}, nil).Once()

	res, err := PushLeads(context.Background(), mc, "db-tracker", pushFixture(), PushOptions{SkipExisting: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Failed)
	mc.AssertExpectations(t)
}

func TestLeadProperties(t *testing.T) {
	t.Parallel()

	l := pushFixture()[0]
	props := leadProperties(l)

	tp, ok := props["Employer"].(notionapi.TitleProperty)
	require.True(t, ok)
	assert.Equal(t, "Acme Industries", tp.Title[0].Text.Content)

	ein, ok := props["EIN"].(notionapi.RichTextProperty)
	require.True(t, ok)
	assert.Equal(t, "111000111", ein.RichText[0].Text.Content)

	np, ok := props["Participants"].(notionapi.NumberProperty)
	require.True(t, ok)
	assert.Equal(t, float64(6000), np.Number)

	sp, ok := props["Status"].(notionapi.StatusProperty)
	require.True(t, ok)
	assert.Equal(t, "Queued", sp.Status.Name)

	q, ok := props["Outreach Query"].(notionapi.RichTextProperty)
	require.True(t, ok)
	assert.Contains(t, q.RichText[0].Text.Content, "Acme Industries")

	assert.Contains(t, props, "State")
	assert.Contains(t, props, "Segment")
	assert.Contains(t, props, "Tier")
}

func TestLeadProperties_EmptyState(t *testing.T) {
	t.Parallel()

	l := pushFixture()[0]
	l.State = ""

	props := leadProperties(l)
	assert.NotContains(t, props, "State")
}
