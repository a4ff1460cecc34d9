package model

import "time"

// SuggestionState is the review lifecycle of an AI mapping suggestion.
// suggested is the only non-terminal state.
type SuggestionState string

const (
	SuggestionSuggested SuggestionState = "suggested"
	SuggestionApproved  SuggestionState = "approved"
	SuggestionRejected  SuggestionState = "rejected"
	SuggestionCustom    SuggestionState = "custom"
)

// Terminal reports whether the state admits no further transitions.
func (s SuggestionState) Terminal() bool {
	return s == SuggestionApproved || s == SuggestionRejected || s == SuggestionCustom
}

// NoMatchField is the sentinel the inference service returns when it cannot
// map a placeholder; such suggestions are never committable.
const NoMatchField = "no_match"

// Suggestion is one AI-proposed placeholder→field mapping awaiting review.
type Suggestion struct {
	ID          string          `json:"id"`
	TemplateID  string          `json:"template_id"`
	Placeholder string          `json:"placeholder"`
	Field       string          `json:"field"` // proposed canonical field, or NoMatchField
	Confidence  int             `json:"confidence"`
	Reasoning   string          `json:"reasoning,omitempty"`
	State       SuggestionState `json:"state"`
	// CustomField overrides Field when State is custom.
	CustomField string     `json:"custom_field,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
}

// EffectiveField returns the field a commit would write: the reviewer's
// override when present, otherwise the AI proposal.
func (s Suggestion) EffectiveField() string {
	if s.State == SuggestionCustom && s.CustomField != "" {
		return s.CustomField
	}
	return s.Field
}

// Committable reports whether the suggestion may be written to the alias
// table in its current state.
func (s Suggestion) Committable() bool {
	if s.EffectiveField() == NoMatchField || s.EffectiveField() == "" {
		return false
	}
	return s.State == SuggestionApproved || s.State == SuggestionCustom
}
