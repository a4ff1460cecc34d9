// Package model defines the domain types shared across the document
// generation pipeline.
package model

import (
	"strings"
	"time"
	"unicode"
)

// SubscriptionTier gates which templates a plan can generate from.
type SubscriptionTier string

const (
	TierBasic      SubscriptionTier = "basic"
	TierPro        SubscriptionTier = "pro"
	TierEnterprise SubscriptionTier = "enterprise"
)

// Template is an uploaded document template with its discovered placeholders
// and the persisted placeholder→field mapping learned for it over time.
type Template struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description,omitempty"`
	FileName     string           `json:"file_name"`
	ContentRef   string           `json:"content_ref"` // storage key or URL
	Tier         SubscriptionTier `json:"subscription_tier"`
	Placeholders []string         `json:"placeholders"`

	// FieldMappings is the approved alias table keyed by normalized
	// placeholder. Loaded from template_aliases rows; approval upserts write
	// through the store, never this projection.
	FieldMappings map[string]string `json:"field_mappings,omitempty"`
	Active        bool              `json:"active"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// AliasMapping is one persisted placeholder→field row, versioned per template.
type AliasMapping struct {
	TemplateID  string    `json:"template_id"`
	Placeholder string    `json:"placeholder"` // normalized key
	Field       string    `json:"field"`
	Revision    int       `json:"revision"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NormalizeKey reduces a placeholder or field name to its comparison form:
// lowercase with all non-alphanumerics stripped. "Vessel Name", "vessel_name"
// and "VESSEL-NAME" all normalize to "vesselname".
func NormalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidToken reports whether a raw placeholder name is usable: it must keep at
// least one letter after trimming, stay under 100 runes, and not be purely
// numeric. Tokens of punctuation or whitespace only are discarded.
func ValidToken(name string) bool {
	name = strings.TrimSpace(name)
	if n := len([]rune(name)); n < 2 || n >= 100 {
		return false
	}
	hasLetter := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r), unicode.IsSpace(r):
		case r == '_' || r == '-' || r == '.':
		default:
			return false
		}
	}
	return hasLetter
}
