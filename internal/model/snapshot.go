package model

import "time"

// Snapshot is one fully loaded and classified roster. Snapshots are immutable:
// reloading the same source bytes against the same tier table yields the same
// snapshot, and any change to either produces a new one. Fingerprint is the
// SHA-256 hex digest of the raw source bytes; TierHash identifies the tier
// table the leads were classified with. The pair is unique per store.
type Snapshot struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Fingerprint string    `json:"fingerprint"`
	TierHash    string    `json:"tier_hash"`
	LeadCount   int       `json:"lead_count"`
	LoadedAt    time.Time `json:"loaded_at"`
	Leads       []Lead    `json:"leads,omitempty"`
}

// View returns pointers to the snapshot's leads in source order. Filtering and
// ranking operate on these views so the backing records are never copied.
func (s *Snapshot) View() []*Lead {
	out := make([]*Lead, len(s.Leads))
	for i := range s.Leads {
		out[i] = &s.Leads[i]
	}
	return out
}
