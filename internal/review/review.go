// Package review drives the human side of placeholder mapping: AI
// suggestions move through a small state machine and the accepted ones are
// committed into the template's alias table, so future generations resolve
// the same placeholder without another inference call.
package review

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/petrodeal/docgen-cli/internal/model"
	"github.com/petrodeal/docgen-cli/internal/store"
)

// DefaultAutoApplyThreshold is the confidence at or above which a suggestion
// may be committed without individual review.
const DefaultAutoApplyThreshold = 70

// Reviewer owns suggestion state transitions and alias commits.
type Reviewer struct {
	store     store.Store
	threshold int
	now       func() time.Time
}

// New builds a Reviewer. A non-positive threshold falls back to the default.
func New(st store.Store, threshold int) *Reviewer {
	if threshold <= 0 {
		threshold = DefaultAutoApplyThreshold
	}
	return &Reviewer{store: st, threshold: threshold, now: time.Now}
}

// Pending lists suggestions still awaiting review for a template.
func (r *Reviewer) Pending(ctx context.Context, templateID string) ([]model.Suggestion, error) {
	return r.store.ListSuggestions(ctx, templateID, model.SuggestionSuggested)
}

// Approve marks a suggestion approved and commits its mapping.
func (r *Reviewer) Approve(ctx context.Context, id string) (*model.Suggestion, error) {
	return r.transition(ctx, id, model.SuggestionApproved, "")
}

// Reject marks a suggestion rejected. The placeholder stays uncommitted and
// falls through to the synthetic tier on future generations.
func (r *Reviewer) Reject(ctx context.Context, id string) (*model.Suggestion, error) {
	return r.transition(ctx, id, model.SuggestionRejected, "")
}

// Override marks a suggestion custom with a reviewer-chosen field and
// commits that field instead of the AI proposal.
func (r *Reviewer) Override(ctx context.Context, id, field string) (*model.Suggestion, error) {
	if field == "" || field == model.NoMatchField {
		return nil, eris.New("review: custom field must be a real field name")
	}
	return r.transition(ctx, id, model.SuggestionCustom, field)
}

func (r *Reviewer) transition(ctx context.Context, id string, to model.SuggestionState, customField string) (*model.Suggestion, error) {
	s, err := r.store.GetSuggestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.State.Terminal() {
		return nil, eris.Wrapf(model.ErrSuggestionFinal, "review: suggestion %s is %s", id, s.State)
	}

	now := r.now().UTC()
	s.State = to
	s.CustomField = customField
	s.ReviewedAt = &now
	if err := r.store.UpdateSuggestion(ctx, s); err != nil {
		return nil, err
	}

	if s.Committable() {
		if err := r.commit(ctx, s.TemplateID, []model.Suggestion{*s}); err != nil {
			return nil, err
		}
	}
	zap.L().Info("suggestion reviewed",
		zap.String("suggestion_id", s.ID),
		zap.String("template_id", s.TemplateID),
		zap.String("state", string(s.State)),
	)
	return s, nil
}

// AutoApplyHighConfidence approves and commits every pending suggestion at or
// above the confidence threshold, regardless of individual review. Returns
// the number committed.
func (r *Reviewer) AutoApplyHighConfidence(ctx context.Context, templateID string) (int, error) {
	pending, err := r.store.ListSuggestions(ctx, templateID, model.SuggestionSuggested)
	if err != nil {
		return 0, err
	}

	now := r.now().UTC()
	var applied []model.Suggestion
	for i := range pending {
		s := pending[i]
		if s.Confidence < r.threshold {
			continue
		}
		if s.Field == "" || s.Field == model.NoMatchField {
			continue
		}
		s.State = model.SuggestionApproved
		s.ReviewedAt = &now
		if err := r.store.UpdateSuggestion(ctx, &s); err != nil {
			return 0, err
		}
		applied = append(applied, s)
	}
	if len(applied) == 0 {
		return 0, nil
	}
	if err := r.commit(ctx, templateID, applied); err != nil {
		return 0, err
	}
	zap.L().Info("auto-applied high confidence suggestions",
		zap.String("template_id", templateID),
		zap.Int("applied", len(applied)),
		zap.Int("threshold", r.threshold),
	)
	return len(applied), nil
}

// ApplySelected commits only the named suggestions, and only those already in
// a committable state. Returns the number committed.
func (r *Reviewer) ApplySelected(ctx context.Context, templateID string, ids []string) (int, error) {
	var chosen []model.Suggestion
	for _, id := range ids {
		s, err := r.store.GetSuggestion(ctx, id)
		if err != nil {
			return 0, err
		}
		if s.TemplateID != templateID {
			return 0, eris.Errorf("review: suggestion %s belongs to template %s", id, s.TemplateID)
		}
		if !s.Committable() {
			continue
		}
		chosen = append(chosen, *s)
	}
	if len(chosen) == 0 {
		return 0, nil
	}
	if err := r.commit(ctx, templateID, chosen); err != nil {
		return 0, err
	}
	return len(chosen), nil
}

// commit writes the suggestions' effective mappings into the template's
// alias table in a single atomic upsert batch.
func (r *Reviewer) commit(ctx context.Context, templateID string, suggestions []model.Suggestion) error {
	aliases := make(map[string]string, len(suggestions))
	for _, s := range suggestions {
		aliases[model.NormalizeKey(s.Placeholder)] = s.EffectiveField()
	}
	if err := r.store.UpsertAliases(ctx, templateID, aliases); err != nil {
		return eris.Wrap(err, "review: commit aliases")
	}
	return nil
}
