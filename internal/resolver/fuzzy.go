package resolver

import (
	"context"
	"strings"

	"github.com/petrodeal/docgen-cli/internal/model"
)

// FuzzyConfig tunes the fuzzy tier's scoring.
type FuzzyConfig struct {
	// Floor is the minimum score a match needs to be accepted.
	Floor int
	// ContainmentScore is awarded when a field name contains the placeholder.
	ContainmentScore int
	// ReverseContainmentScore is awarded when the placeholder contains a
	// field name.
	ReverseContainmentScore int
}

// DefaultFuzzyConfig matches the documented scoring ladder.
func DefaultFuzzyConfig() FuzzyConfig {
	return FuzzyConfig{
		Floor:                   60,
		ContainmentScore:        70,
		ReverseContainmentScore: 60,
	}
}

type fuzzyTier struct {
	cfg FuzzyConfig
}

// NewFuzzyTier returns the name-similarity tier.
func NewFuzzyTier(cfg FuzzyConfig) Tier {
	def := DefaultFuzzyConfig()
	if cfg.Floor <= 0 {
		cfg.Floor = def.Floor
	}
	if cfg.ContainmentScore <= 0 {
		cfg.ContainmentScore = def.ContainmentScore
	}
	if cfg.ReverseContainmentScore <= 0 {
		cfg.ReverseContainmentScore = def.ReverseContainmentScore
	}
	return fuzzyTier{cfg: cfg}
}

func (fuzzyTier) Name() model.ResolutionTier { return model.TierFuzzy }

// Resolve scores each pending placeholder against every populated field.
// Exact normalized equality scores 100; a field containing the placeholder
// scores ContainmentScore (only when the placeholder is longer than three
// characters, short fragments contain too easily); a placeholder containing
// a field scores ReverseContainmentScore. The best match at or above the
// floor wins; ties keep the earliest field in bag insertion order.
func (t fuzzyTier) Resolve(ctx context.Context, req *Request, pending []string) (map[string]model.Resolution, error) {
	fields := req.Bag.Fields()
	out := make(map[string]model.Resolution)

	for _, p := range pending {
		normP := model.NormalizeKey(p)
		if normP == "" {
			continue
		}

		bestField := ""
		bestScore := 0
		for _, f := range fields {
			score := t.score(normP, model.NormalizeKey(f))
			if score > bestScore {
				bestScore = score
				bestField = f
			}
		}
		if bestScore < t.cfg.Floor {
			continue
		}

		value, ok := req.Bag.Get(bestField)
		if !ok {
			continue
		}
		out[p] = model.Resolution{
			Placeholder: p,
			Value:       value,
			Field:       bestField,
			Tier:        model.TierFuzzy,
			Confidence:  bestScore,
		}
	}
	return out, nil
}

func (t fuzzyTier) score(normPlaceholder, normField string) int {
	switch {
	case normField == normPlaceholder:
		return 100
	case len(normPlaceholder) > 3 && strings.Contains(normField, normPlaceholder):
		return t.cfg.ContainmentScore
	case strings.Contains(normPlaceholder, normField):
		return t.cfg.ReverseContainmentScore
	}
	return 0
}
