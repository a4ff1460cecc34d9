package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolution_DataBacked(t *testing.T) {
	assert.True(t, Resolution{Tier: TierAlias}.DataBacked())
	assert.True(t, Resolution{Tier: TierFuzzy}.DataBacked())
	assert.True(t, Resolution{Tier: TierAI}.DataBacked())
	assert.False(t, Resolution{Tier: TierSynthetic}.DataBacked())
	assert.False(t, Resolution{Tier: TierUnresolved}.DataBacked())
}

func TestResolution_ConfidenceMeaningful(t *testing.T) {
	// A synthetic value carries no confidence no matter what the field says.
	r := Resolution{Tier: TierSynthetic, Confidence: 95}
	assert.False(t, r.ConfidenceMeaningful())
	assert.True(t, Resolution{Tier: TierFuzzy, Confidence: 70}.ConfidenceMeaningful())
}

func TestResolutionSet_Counts(t *testing.T) {
	set := ResolutionSet{Resolutions: []Resolution{
		{Placeholder: "vessel_name", Tier: TierAlias, Value: "MT Atlas"},
		{Placeholder: "buyer_company", Tier: TierFuzzy, Value: "Petra Trading"},
		{Placeholder: "loading_port", Tier: TierSynthetic, Value: "Port of Rotterdam"},
		{Placeholder: "xqz", Tier: TierUnresolved},
	}}
	filled, fallback := set.Counts()
	assert.Equal(t, 2, filled)
	assert.Equal(t, 2, fallback)
	assert.InDelta(t, 0.5, set.Coverage(), 1e-9)
}

func TestResolutionSet_CoverageEmpty(t *testing.T) {
	assert.Zero(t, ResolutionSet{}.Coverage())
}

func TestResolutionSet_ByPlaceholder(t *testing.T) {
	set := ResolutionSet{Resolutions: []Resolution{
		{Placeholder: "imo_number", Tier: TierAlias, Value: "9321483"},
	}}
	idx := set.ByPlaceholder()
	assert.Equal(t, "9321483", idx["imo_number"].Value)
}
