package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// MarketSegment is the size bucket assigned to a lead by the roster source.
// The set is closed: an unrecognized label is a malformed record at load
// time rather than a silent passthrough.
type MarketSegment string

const (
	SegmentSmall MarketSegment = "Small (<1K)"
	SegmentMid   MarketSegment = "Mid (1K-5K)"
	SegmentLarge MarketSegment = "Large (5K+)"
)

// ParseMarketSegment maps a roster label to its segment. Matching is on the
// leading word, case-insensitive, so "Mid", "mid (1k-5k)" and "MID" all
// parse to SegmentMid.
func ParseMarketSegment(s string) (MarketSegment, error) {
	head := strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(head, " ("); i >= 0 {
		head = head[:i]
	}
	switch head {
	case "small":
		return SegmentSmall, nil
	case "mid", "medium":
		return SegmentMid, nil
	case "large":
		return SegmentLarge, nil
	}
	return "", eris.Errorf("model: unknown market segment %q", s)
}

// Short returns the flag-friendly form used on the CLI ("small", "mid",
// "large").
func (m MarketSegment) Short() string {
	switch m {
	case SegmentSmall:
		return "small"
	case SegmentMid:
		return "mid"
	case SegmentLarge:
		return "large"
	}
	return string(m)
}
