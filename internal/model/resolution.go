package model

// ResolutionTier names one strategy in the ordered fallback chain.
type ResolutionTier string

const (
	TierAlias      ResolutionTier = "alias"
	TierFuzzy      ResolutionTier = "fuzzy"
	TierAI         ResolutionTier = "ai"
	TierSynthetic  ResolutionTier = "synthetic"
	TierUnresolved ResolutionTier = "unresolved"
)

// Resolution is the per-placeholder outcome of a resolution pass. Created
// fresh per generation request; only promoted into the template's alias table
// through the review workflow.
type Resolution struct {
	Placeholder string         `json:"placeholder"`
	Value       string         `json:"value,omitempty"`
	Field       string         `json:"field,omitempty"` // canonical field that supplied Value
	Tier        ResolutionTier `json:"tier"`
	Confidence  int            `json:"confidence"` // 0-100, meaningful for fuzzy/ai only
	Note        string         `json:"note,omitempty"`
}

// Resolved reports whether a data-backed or synthetic value exists.
func (r Resolution) Resolved() bool {
	return r.Tier != TierUnresolved && r.Value != ""
}

// DataBacked reports whether the value came from real entity data rather than
// fabrication (tiers alias, fuzzy, ai).
func (r Resolution) DataBacked() bool {
	switch r.Tier {
	case TierAlias, TierFuzzy, TierAI:
		return true
	}
	return false
}

// ConfidenceMeaningful reports whether Confidence carries information. The
// synthetic tier fabricates values and must never present itself as
// high-confidence data; unresolved has nothing to score.
func (r Resolution) ConfidenceMeaningful() bool {
	return r.DataBacked()
}

// ResolutionSet aggregates a full pass over one placeholder list.
type ResolutionSet struct {
	Resolutions []Resolution `json:"resolutions"`
	// Warnings records non-fatal degradations, e.g. the AI tier timing out.
	Warnings []string `json:"warnings,omitempty"`
}

// Counts returns (data-backed, synthetic-or-unresolved) totals.
func (s ResolutionSet) Counts() (filled, fallback int) {
	for _, r := range s.Resolutions {
		if r.DataBacked() {
			filled++
		} else {
			fallback++
		}
	}
	return filled, fallback
}

// Coverage returns the fraction of placeholders resolved without fabrication.
func (s ResolutionSet) Coverage() float64 {
	if len(s.Resolutions) == 0 {
		return 0
	}
	filled, _ := s.Counts()
	return float64(filled) / float64(len(s.Resolutions))
}

// ByPlaceholder indexes the set for substitution.
func (s ResolutionSet) ByPlaceholder() map[string]Resolution {
	out := make(map[string]Resolution, len(s.Resolutions))
	for _, r := range s.Resolutions {
		out[r.Placeholder] = r
	}
	return out
}
