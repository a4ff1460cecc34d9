package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestionState_Terminal(t *testing.T) {
	assert.False(t, SuggestionSuggested.Terminal())
	assert.True(t, SuggestionApproved.Terminal())
	assert.True(t, SuggestionRejected.Terminal())
	assert.True(t, SuggestionCustom.Terminal())
}

func TestSuggestion_EffectiveField(t *testing.T) {
	s := Suggestion{Field: "vessel_name", State: SuggestionApproved}
	assert.Equal(t, "vessel_name", s.EffectiveField())

	s.State = SuggestionCustom
	s.CustomField = "vessel_imo"
	assert.Equal(t, "vessel_imo", s.EffectiveField())
}

func TestSuggestion_Committable(t *testing.T) {
	cases := []struct {
		name string
		s    Suggestion
		want bool
	}{
		{"approved", Suggestion{Field: "vessel_name", State: SuggestionApproved}, true},
		{"custom", Suggestion{Field: "vessel_name", State: SuggestionCustom, CustomField: "vessel_imo"}, true},
		{"rejected", Suggestion{Field: "vessel_name", State: SuggestionRejected}, false},
		{"pending", Suggestion{Field: "vessel_name", State: SuggestionSuggested}, false},
		{"approved no_match", Suggestion{Field: NoMatchField, State: SuggestionApproved}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.s.Committable())
		})
	}
}
