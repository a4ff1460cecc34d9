package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/petrodeal/docgen-cli/internal/collect"
	"github.com/petrodeal/docgen-cli/internal/model"
	"github.com/petrodeal/docgen-cli/internal/pipeline"
	"github.com/petrodeal/docgen-cli/internal/render"
	"github.com/petrodeal/docgen-cli/internal/resolver"
	"github.com/petrodeal/docgen-cli/internal/review"
	"github.com/petrodeal/docgen-cli/internal/store"
	"github.com/petrodeal/docgen-cli/internal/validator"
)

type apiStore struct {
	store.Store
	templates   map[string]*model.Template
	vessels     map[int64]*model.Vessel
	suggestions map[string]*model.Suggestion
	aliases     map[string]map[string]string
	saved       []*model.GeneratedDocument
	reports     []*model.ValidationReport
}

func (s *apiStore) GetTemplate(ctx context.Context, id string) (*model.Template, error) {
	t, ok := s.templates[id]
	if !ok {
		return nil, eris.Wrapf(model.ErrTemplateNotFound, "template %s", id)
	}
	return t, nil
}

func (s *apiStore) GetVessel(ctx context.Context, id int64) (*model.Vessel, error) {
	v, ok := s.vessels[id]
	if !ok {
		return nil, eris.Wrapf(model.ErrEntityNotFound, "vessel %d", id)
	}
	return v, nil
}

func (s *apiStore) GetAliases(ctx context.Context, templateID string) (map[string]string, error) {
	return s.aliases[templateID], nil
}

func (s *apiStore) UpsertAliases(ctx context.Context, templateID string, aliases map[string]string) error {
	if s.aliases[templateID] == nil {
		s.aliases[templateID] = make(map[string]string)
	}
	for k, v := range aliases {
		s.aliases[templateID][k] = v
	}
	return nil
}

func (s *apiStore) GetSuggestion(ctx context.Context, id string) (*model.Suggestion, error) {
	sg, ok := s.suggestions[id]
	if !ok {
		return nil, eris.Errorf("suggestion %s not found", id)
	}
	copied := *sg
	return &copied, nil
}

func (s *apiStore) ListSuggestions(ctx context.Context, templateID string, state model.SuggestionState) ([]model.Suggestion, error) {
	var out []model.Suggestion
	for _, sg := range s.suggestions {
		if sg.TemplateID != templateID {
			continue
		}
		if state != "" && sg.State != state {
			continue
		}
		out = append(out, *sg)
	}
	return out, nil
}

func (s *apiStore) UpdateSuggestion(ctx context.Context, sg *model.Suggestion) error {
	copied := *sg
	s.suggestions[sg.ID] = &copied
	return nil
}

func (s *apiStore) SaveDocument(ctx context.Context, doc *model.GeneratedDocument) error {
	s.saved = append(s.saved, doc)
	return nil
}

func (s *apiStore) SaveReport(ctx context.Context, report *model.ValidationReport) error {
	s.reports = append(s.reports, report)
	return nil
}

type apiBlobs struct {
	data map[string][]byte
}

func (b *apiBlobs) Put(ctx context.Context, key string, data []byte) (string, error) {
	b.data[key] = data
	return key, nil
}

func (b *apiBlobs) Get(ctx context.Context, ref string) ([]byte, error) {
	data, ok := b.data[ref]
	if !ok {
		return nil, eris.Errorf("no blob at %s", ref)
	}
	return data, nil
}

func (b *apiBlobs) Delete(ctx context.Context, ref string) error {
	delete(b.data, ref)
	return nil
}

func testAPI(t *testing.T) (http.Handler, *apiStore) {
	t.Helper()

	st := &apiStore{
		templates: map[string]*model.Template{
			"tpl-1": {
				ID:         "tpl-1",
				Title:      "Charter Party",
				ContentRef: "templates/tpl-1/charter.txt",
				Active:     true,
			},
		},
		vessels: map[int64]*model.Vessel{
			7: {ID: 7, Name: "MT Atlas", IMO: "9321483", Flag: "Malta"},
		},
		suggestions: map[string]*model.Suggestion{},
		aliases:     map[string]map[string]string{},
	}
	blobs := &apiBlobs{data: map[string][]byte{
		"templates/tpl-1/charter.txt": []byte("Vessel: {{vessel name}} (IMO {{imo}})"),
	}}

	resolverFor := func(bool) *resolver.Resolver {
		return resolver.New(
			resolver.NewAliasTier(),
			resolver.NewFuzzyTier(resolver.FuzzyConfig{Floor: 60, ContainmentScore: 70, ReverseContainmentScore: 60}),
			resolver.NewSyntheticTier(42),
		)
	}
	collector := collect.New(st)
	renderer := render.New(0)

	e := &env{
		Store:       st,
		Blobs:       blobs,
		Collector:   collector,
		Renderer:    renderer,
		Engine:      pipeline.New(st, blobs, collector, resolverFor, renderer),
		Validator:   validator.New(st, blobs, collector, resolverFor(false), renderer),
		Reviewer:    review.New(st, 0),
		ResolverFor: resolverFor,
	}
	return newRouter(e, rate.NewLimiter(rate.Inf, 0)), st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServe_Health(t *testing.T) {
	h, _ := testAPI(t)

	rec := doJSON(t, h, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServe_Generate(t *testing.T) {
	h, st := testAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/generate", map[string]any{
		"template_id": "tpl-1",
		"vessel_id":   7,
		"encodings":   []string{"html"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Filled)
	assert.Len(t, st.saved, 1)
}

func TestServe_Generate_TemplateMissing(t *testing.T) {
	h, _ := testAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/generate", map[string]any{
		"template_id": "no-such",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServe_Generate_BadRequest(t *testing.T) {
	h, _ := testAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/generate", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_Validate(t *testing.T) {
	h, st := testAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/validate", map[string]any{
		"template_id": "tpl-1",
		"vessel_id":   7,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var rep model.ValidationReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, model.StageSuccess, rep.OverallStatus)
	assert.Len(t, st.reports, 1)
}

func TestServe_Suggestions(t *testing.T) {
	h, st := testAPI(t)
	st.suggestions["s-1"] = &model.Suggestion{
		ID: "s-1", TemplateID: "tpl-1", Placeholder: "witness name",
		Field: "witness_name", Confidence: 85, State: model.SuggestionSuggested,
	}

	rec := doJSON(t, h, http.MethodGet, "/api/templates/tpl-1/suggestions?state=suggested", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var out []model.Suggestion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "s-1", out[0].ID)
}

func TestServe_Review_Approve(t *testing.T) {
	h, st := testAPI(t)
	st.suggestions["s-1"] = &model.Suggestion{
		ID: "s-1", TemplateID: "tpl-1", Placeholder: "Witness Name",
		Field: "witness_name", Confidence: 85, State: model.SuggestionSuggested,
	}

	rec := doJSON(t, h, http.MethodPost, "/api/templates/tpl-1/review", map[string]any{
		"action":        "approve",
		"suggestion_id": "s-1",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "witness_name", st.aliases["tpl-1"]["witnessname"])
}

func TestServe_Review_TerminalConflict(t *testing.T) {
	h, st := testAPI(t)
	reviewed := time.Now()
	st.suggestions["s-1"] = &model.Suggestion{
		ID: "s-1", TemplateID: "tpl-1", Placeholder: "Witness Name",
		Field: "witness_name", State: model.SuggestionRejected, ReviewedAt: &reviewed,
	}

	rec := doJSON(t, h, http.MethodPost, "/api/templates/tpl-1/review", map[string]any{
		"action":        "approve",
		"suggestion_id": "s-1",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServe_Review_UnknownAction(t *testing.T) {
	h, _ := testAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/templates/tpl-1/review", map[string]any{
		"action": "escalate",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_RateLimit(t *testing.T) {
	limited := newRouter(&env{}, rate.NewLimiter(rate.Limit(1), 1))

	first := doJSON(t, limited, http.MethodGet, "/health", nil)
	second := doJSON(t, limited, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
