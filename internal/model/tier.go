package model

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Tier is the outreach priority assigned to a lead from its state.
type Tier string

const (
	Tier1 Tier = "Tier 1"
	Tier2 Tier = "Tier 2"
	Tier3 Tier = "Tier 3"
)

// Rank returns the sort position of the tier, Tier1 first. Unknown values
// sort with Tier3.
func (t Tier) Rank() int {
	switch t {
	case Tier1:
		return 1
	case Tier2:
		return 2
	default:
		return 3
	}
}

// ParseTier accepts the forms "1", "tier1", "tier 1" (case-insensitive) as
// they appear in flags and query parameters.
func ParseTier(s string) (Tier, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "")
	switch norm {
	case "1", "tier1":
		return Tier1, nil
	case "2", "tier2":
		return Tier2, nil
	case "3", "tier3":
		return Tier3, nil
	}
	return "", eris.Errorf("model: unknown tier %q", s)
}

// TierTable holds the two configured state sets that drive classification.
// Construct with NewTierTable; the zero value classifies everything Tier3.
type TierTable struct {
	tier1 map[string]struct{}
	tier2 map[string]struct{}
	hash  string
}

// DefaultTier1States and DefaultTier2States are the shipped territory plan.
var (
	DefaultTier1States = []string{"MA", "NY", "CA"}
	DefaultTier2States = []string{"IL", "TX", "PA", "FL", "NJ", "OH"}
)

// NewTierTable builds a classification table from the two state lists.
// Codes are trimmed and uppercased; the sets must be disjoint.
func NewTierTable(tier1, tier2 []string) (TierTable, error) {
	t := TierTable{
		tier1: make(map[string]struct{}, len(tier1)),
		tier2: make(map[string]struct{}, len(tier2)),
	}
	for _, s := range tier1 {
		code := normalizeState(s)
		if code == "" {
			return TierTable{}, eris.Errorf("model: empty state code in tier 1 list")
		}
		t.tier1[code] = struct{}{}
	}
	for _, s := range tier2 {
		code := normalizeState(s)
		if code == "" {
			return TierTable{}, eris.Errorf("model: empty state code in tier 2 list")
		}
		if _, ok := t.tier1[code]; ok {
			return TierTable{}, eris.Errorf("model: state %s appears in both tier lists", code)
		}
		t.tier2[code] = struct{}{}
	}
	t.hash = t.computeHash()
	return t, nil
}

// DefaultTierTable returns the table for the shipped territory plan.
func DefaultTierTable() TierTable {
	t, err := NewTierTable(DefaultTier1States, DefaultTier2States)
	if err != nil {
		// The defaults are disjoint by construction.
		panic(err)
	}
	return t
}

// Classify maps a state code to its tier. Total: empty or unrecognized
// states fall to Tier3, never an error.
func (t TierTable) Classify(state string) Tier {
	code := normalizeState(state)
	if _, ok := t.tier1[code]; ok {
		return Tier1
	}
	if _, ok := t.tier2[code]; ok {
		return Tier2
	}
	return Tier3
}

// Hash is a stable digest of the table contents. It participates in the
// snapshot cache key, so reconfiguring the table invalidates stored
// snapshots and forces a full reclassification.
func (t TierTable) Hash() string {
	return t.hash
}

// Tier1States returns the tier 1 set, sorted.
func (t TierTable) Tier1States() []string { return sortedKeys(t.tier1) }

// Tier2States returns the tier 2 set, sorted.
func (t TierTable) Tier2States() []string { return sortedKeys(t.tier2) }

func (t TierTable) computeHash() string {
	canonical := "t1:" + strings.Join(sortedKeys(t.tier1), ",") +
		"|t2:" + strings.Join(sortedKeys(t.tier2), ",")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func normalizeState(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// tierFile is the on-disk YAML shape for a territory plan override.
type tierFile struct {
	Tier1States []string `yaml:"tier1_states"`
	Tier2States []string `yaml:"tier2_states"`
}

// LoadTierTable reads a YAML territory plan:
//
//	tier1_states: [MA, NY, CA]
//	tier2_states: [IL, TX, PA, FL, NJ, OH]
func LoadTierTable(path string) (TierTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TierTable{}, eris.Wrapf(err, "model: read tier table %s", path)
	}
	var f tierFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return TierTable{}, eris.Wrapf(err, "model: parse tier table %s", path)
	}
	t, err := NewTierTable(f.Tier1States, f.Tier2States)
	if err != nil {
		return TierTable{}, eris.Wrapf(err, "model: tier table %s", path)
	}
	return t, nil
}
