package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leads-cli/internal/model"
)

func TestFilterUnconstrained(t *testing.T) {
	t.Parallel()

	roster := rosterABC()
	got := Filter(roster, FilterRequest{})

	require.Len(t, got, 3)
	// Same records, same order, same pointers — no copies.
	for i := range roster {
		assert.Same(t, roster[i], got[i])
	}
}

func TestFilterDimensions(t *testing.T) {
	t.Parallel()

	roster := rosterABC()

	cases := []struct {
		name string
		req  FilterRequest
		want []string
	}{
		{
			name: "state membership",
			req:  FilterRequest{States: []string{"MA", "WY"}},
			want: []string{"Acme Industries", "Crest Holdings"},
		},
		{
			name: "state is normalized",
			req:  FilterRequest{States: []string{" ma "}},
			want: []string{"Acme Industries"},
		},
		{
			name: "tier membership",
			req:  FilterRequest{Tiers: []model.Tier{model.Tier1, model.Tier2}},
			want: []string{"Acme Industries", "Bolt Manufacturing"},
		},
		{
			name: "participants range preserves order",
			req:  FilterRequest{MinParticipants: 4000, MaxParticipants: 10000},
			want: []string{"Acme Industries", "Crest Holdings"},
		},
		{
			name: "range is inclusive on both ends",
			req:  FilterRequest{MinParticipants: 3000, MaxParticipants: 6000},
			want: []string{"Acme Industries", "Bolt Manufacturing"},
		},
		{
			name: "min only",
			req:  FilterRequest{MinParticipants: 8000},
			want: []string{"Crest Holdings"},
		},
		{
			name: "max only",
			req:  FilterRequest{MaxParticipants: 3000},
			want: []string{"Bolt Manufacturing"},
		},
		{
			name: "segment membership",
			req:  FilterRequest{Segments: []model.MarketSegment{model.SegmentLarge}},
			want: []string{"Acme Industries", "Crest Holdings"},
		},
		{
			name: "employer substring is case-insensitive",
			req:  FilterRequest{EmployerContains: "acme"},
			want: []string{"Acme Industries"},
		},
		{
			name: "ein substring",
			req:  FilterRequest{EINContains: "3"},
			want: []string{"Crest Holdings"},
		},
		{
			name: "dimensions combine with AND",
			req: FilterRequest{
				Segments:        []model.MarketSegment{model.SegmentLarge},
				MinParticipants: 7000,
			},
			want: []string{"Crest Holdings"},
		},
		{
			name: "reversed range matches nothing",
			req:  FilterRequest{MinParticipants: 4000, MaxParticipants: 100},
			want: []string{},
		},
		{
			name: "no lead satisfies every dimension",
			req: FilterRequest{
				States: []string{"MA"},
				Tiers:  []model.Tier{model.Tier3},
			},
			want: []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Filter(roster, tc.req)
			assert.Equal(t, tc.want, names(got))
		})
	}
}

func TestFilterIdempotent(t *testing.T) {
	t.Parallel()

	roster := rosterABC()
	req := FilterRequest{
		Segments:        []model.MarketSegment{model.SegmentLarge},
		MinParticipants: 1000,
	}

	once := Filter(roster, req)
	twice := Filter(once, req)
	assert.Equal(t, once, twice)
}

func TestFilterAbsentFields(t *testing.T) {
	t.Parallel()

	noState := lead("Drift Labs", 44, "", 500, model.SegmentSmall)
	noName := lead("", 55, "MA", 700, model.SegmentSmall)
	roster := []*model.Lead{noState, noName}

	t.Run("absent state fails membership", func(t *testing.T) {
		t.Parallel()
		got := Filter(roster, FilterRequest{States: []string{"MA"}})
		assert.Equal(t, []string{""}, names(got))
	})

	t.Run("absent name never matches a non-empty term", func(t *testing.T) {
		t.Parallel()
		got := Filter(roster, FilterRequest{EmployerContains: "drift"})
		assert.Equal(t, []string{"Drift Labs"}, names(got))
	})

	t.Run("absent terms match everything", func(t *testing.T) {
		t.Parallel()
		got := Filter(roster, FilterRequest{EmployerContains: "", EINContains: ""})
		assert.Len(t, got, 2)
	})
}

func TestFilterRequestIsZero(t *testing.T) {
	t.Parallel()

	assert.True(t, FilterRequest{}.IsZero())
	assert.False(t, FilterRequest{States: []string{"MA"}}.IsZero())
	assert.False(t, FilterRequest{MaxParticipants: 10}.IsZero())
	assert.False(t, FilterRequest{EmployerContains: "a"}.IsZero())
}
