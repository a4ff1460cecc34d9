// Package resolver maps template placeholders to values through an ordered
// chain of strategies: persisted aliases, fuzzy name matching, AI inference,
// and synthetic fallback. Earlier tiers are cheaper and more trustworthy;
// a placeholder never reaches a later tier once an earlier one resolves it.
package resolver

import (
	"context"

	"go.uber.org/zap"

	"github.com/petrodeal/docgen-cli/internal/model"
)

// Request carries everything the tiers need for one resolution pass.
type Request struct {
	Template *model.Template
	Bag      *model.AttributeBag
}

// Tier attempts to resolve a batch of pending placeholders. Returned map
// keys are the original placeholder spellings; placeholders absent from the
// map stay pending for the next tier. A tier error degrades the pass with a
// warning and never aborts it.
type Tier interface {
	Name() model.ResolutionTier
	Resolve(ctx context.Context, req *Request, pending []string) (map[string]model.Resolution, error)
}

// Resolver runs the tier chain.
type Resolver struct {
	tiers []Tier
}

// New builds a Resolver from tiers in priority order.
func New(tiers ...Tier) *Resolver {
	return &Resolver{tiers: tiers}
}

// Resolve runs every placeholder through the chain and returns one
// Resolution per placeholder, in input order. Placeholders no tier claims
// come back with TierUnresolved.
func (r *Resolver) Resolve(ctx context.Context, req *Request, placeholders []string) model.ResolutionSet {
	resolved := make(map[string]model.Resolution, len(placeholders))
	pending := append([]string(nil), placeholders...)
	var warnings []string

	for _, tier := range r.tiers {
		if len(pending) == 0 {
			break
		}
		results, err := tier.Resolve(ctx, req, pending)
		if err != nil {
			warnings = append(warnings, err.Error())
			zap.L().Warn("resolution tier degraded",
				zap.String("tier", string(tier.Name())),
				zap.Error(err),
			)
		}

		var still []string
		for _, p := range pending {
			if res, ok := results[p]; ok && res.Resolved() {
				resolved[p] = res
				continue
			}
			still = append(still, p)
		}
		pending = still
	}

	set := model.ResolutionSet{
		Resolutions: make([]model.Resolution, 0, len(placeholders)),
		Warnings:    warnings,
	}
	for _, p := range placeholders {
		if res, ok := resolved[p]; ok {
			set.Resolutions = append(set.Resolutions, res)
			continue
		}
		set.Resolutions = append(set.Resolutions, model.Resolution{
			Placeholder: p,
			Tier:        model.TierUnresolved,
		})
	}

	filled, fallback := set.Counts()
	zap.L().Info("resolution pass complete",
		zap.Int("placeholders", len(placeholders)),
		zap.Int("filled", filled),
		zap.Int("fallback", fallback),
	)
	return set
}
