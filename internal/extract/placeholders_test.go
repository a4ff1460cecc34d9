package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceholders_AllSyntaxes(t *testing.T) {
	text := "Vessel {{vessel_name}} sails from {loading_port} with [cargo_quantity] for ${buyer_company}."
	got := Placeholders(text)
	assert.Equal(t, []string{"vessel_name", "buyer_company", "loading_port", "cargo_quantity"}, got)
}

func TestPlaceholders_CaseInsensitiveDedup(t *testing.T) {
	text := "{{Vessel_Name}} and later {{vessel_name}} and {VESSEL_NAME}"
	got := Placeholders(text)
	assert.Equal(t, []string{"Vessel_Name"}, got)
}

func TestPlaceholders_DoubleBraceNotDoubleCounted(t *testing.T) {
	got := Placeholders("{{imo_number}}")
	assert.Equal(t, []string{"imo_number"}, got)
}

func TestPlaceholders_FiltersInvalidTokens(t *testing.T) {
	text := "{1} {42} {x} {a placeholder with some reasonable name} {!!}"
	got := Placeholders(text)
	assert.Equal(t, []string{"a placeholder with some reasonable name"}, got)
}

func TestPlaceholders_Idempotent(t *testing.T) {
	text := "{{vessel_name}} [loading_port] {{vessel_name}}"
	first := Placeholders(text)
	second := Placeholders(text)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestPlaceholders_Empty(t *testing.T) {
	assert.Empty(t, Placeholders("no placeholders here"))
}
