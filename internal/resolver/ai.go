package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/petrodeal/docgen-cli/internal/model"
	"github.com/petrodeal/docgen-cli/internal/resilience"
	"github.com/petrodeal/docgen-cli/internal/store"
	"github.com/petrodeal/docgen-cli/pkg/anthropic"
)

// AIConfig tunes the inference tier.
type AIConfig struct {
	Model              string
	MaxBatchSize       int
	Timeout            time.Duration
	AutoApplyThreshold int
}

// DefaultAIConfig returns the documented defaults.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Model:              "claude-sonnet-4-5-20250929",
		MaxBatchSize:       50,
		Timeout:            30 * time.Second,
		AutoApplyThreshold: 70,
	}
}

type aiTier struct {
	client anthropic.Client
	store  store.Store
	cfg    AIConfig
	retry  resilience.RetryConfig
}

// NewAITier returns the inference tier. The store receives every suggestion
// the model makes so the review workflow can surface them; it may be nil in
// tests.
func NewAITier(client anthropic.Client, st store.Store, cfg AIConfig) Tier {
	def := DefaultAIConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = def.MaxBatchSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.AutoApplyThreshold <= 0 {
		cfg.AutoApplyThreshold = def.AutoApplyThreshold
	}
	return &aiTier{
		client: client,
		store:  st,
		cfg:    cfg,
		retry:  resilience.DefaultRetryConfig(),
	}
}

func (*aiTier) Name() model.ResolutionTier { return model.TierAI }

// aiSuggestion is the wire shape the model is instructed to return.
type aiSuggestion struct {
	Placeholder string `json:"placeholder"`
	MappedField string `json:"mapped_field"`
	Confidence  int    `json:"confidence"`
	Reasoning   string `json:"reasoning"`
}

type aiAnalysis struct {
	Suggestions []aiSuggestion `json:"suggestions"`
}

const aiSystemPrompt = `You map document template placeholders to canonical data fields for maritime oil trade documents. For each placeholder, pick the single best field from the available list, or "no_match" if none fits. Respond with JSON only, no prose:
{"suggestions":[{"placeholder":"...","mapped_field":"...","confidence":0-100,"reasoning":"..."}]}`

// Resolve sends the pending placeholders to the model in batches. Mappings
// at or above the auto-apply threshold whose field holds a value resolve
// immediately; everything the model proposes is persisted as a suggestion for
// review. Any transport or parse failure degrades the whole tier.
func (t *aiTier) Resolve(ctx context.Context, req *Request, pending []string) (map[string]model.Resolution, error) {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	out := make(map[string]model.Resolution)
	for start := 0; start < len(pending); start += t.cfg.MaxBatchSize {
		end := start + t.cfg.MaxBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		suggestions, err := t.analyzeBatch(ctx, req, pending[start:end])
		if err != nil {
			return out, eris.Wrap(model.ErrInferenceUnavailable, err.Error())
		}
		t.apply(ctx, req, suggestions, out)
	}
	return out, nil
}

func (t *aiTier) analyzeBatch(ctx context.Context, req *Request, batch []string) ([]aiSuggestion, error) {
	var b strings.Builder
	b.WriteString("Placeholders:\n")
	for _, p := range batch {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	b.WriteString("\nAvailable fields:\n")
	for _, f := range req.Bag.Fields() {
		fmt.Fprintf(&b, "- %s\n", f)
	}

	resp, err := resilience.DoVal(ctx, t.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return t.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     t.cfg.Model,
			MaxTokens: 2048,
			System:    aiSystemPrompt,
			Messages:  []anthropic.Message{{Role: "user", Content: b.String()}},
		})
	})
	if err != nil {
		return nil, err
	}
	resp.Usage.LogUsage(t.cfg.Model, "placeholder_mapping")

	var analysis aiAnalysis
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Text())), &analysis); err != nil {
		return nil, eris.Wrap(err, "resolver: parse inference response")
	}
	return analysis.Suggestions, nil
}

func (t *aiTier) apply(ctx context.Context, req *Request, suggestions []aiSuggestion, out map[string]model.Resolution) {
	var records []model.Suggestion
	for _, sg := range suggestions {
		if sg.Placeholder == "" {
			continue
		}
		records = append(records, model.Suggestion{
			TemplateID:  req.Template.ID,
			Placeholder: sg.Placeholder,
			Field:       sg.MappedField,
			Confidence:  sg.Confidence,
			Reasoning:   sg.Reasoning,
		})

		if sg.MappedField == model.NoMatchField || sg.MappedField == "" {
			continue
		}
		if sg.Confidence < t.cfg.AutoApplyThreshold {
			continue
		}
		value, ok := req.Bag.Get(sg.MappedField)
		if !ok {
			continue
		}
		out[sg.Placeholder] = model.Resolution{
			Placeholder: sg.Placeholder,
			Value:       value,
			Field:       sg.MappedField,
			Tier:        model.TierAI,
			Confidence:  sg.Confidence,
			Note:        sg.Reasoning,
		}
	}

	if t.store != nil && len(records) > 0 {
		if err := t.store.CreateSuggestions(ctx, records); err != nil {
			zap.L().Warn("persisting inference suggestions failed", zap.Error(err))
		}
	}
}

// stripCodeFence removes a surrounding markdown code fence if the model
// wrapped its JSON in one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
