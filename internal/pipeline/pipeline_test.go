package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrodeal/docgen-cli/internal/collect"
	"github.com/petrodeal/docgen-cli/internal/model"
	"github.com/petrodeal/docgen-cli/internal/render"
	"github.com/petrodeal/docgen-cli/internal/resolver"
	"github.com/petrodeal/docgen-cli/internal/store"
)

// stubStore backs the engine with fixed templates and entities and records
// the persisted document.
type stubStore struct {
	store.Store
	templates map[string]*model.Template
	vessels   map[int64]*model.Vessel
	saved     *model.GeneratedDocument
}

func (s *stubStore) GetTemplate(ctx context.Context, id string) (*model.Template, error) {
	if t, ok := s.templates[id]; ok {
		return t, nil
	}
	return nil, model.ErrTemplateNotFound
}

func (s *stubStore) GetVessel(ctx context.Context, id int64) (*model.Vessel, error) {
	if v, ok := s.vessels[id]; ok {
		return v, nil
	}
	return nil, model.ErrEntityNotFound
}

func (s *stubStore) GetCompany(ctx context.Context, id int64) (*model.Company, error) {
	return nil, model.ErrEntityNotFound
}

func (s *stubStore) SaveDocument(ctx context.Context, doc *model.GeneratedDocument) error {
	s.saved = doc
	return nil
}

// memBlobs is an in-memory blob store.
type memBlobs struct {
	data map[string][]byte
}

func (m *memBlobs) Put(ctx context.Context, key string, data []byte) (string, error) {
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = data
	return key, nil
}

func (m *memBlobs) Get(ctx context.Context, ref string) ([]byte, error) {
	if d, ok := m.data[ref]; ok {
		return d, nil
	}
	return nil, model.ErrTemplateNotFound
}

func (m *memBlobs) Delete(ctx context.Context, ref string) error {
	delete(m.data, ref)
	return nil
}

func testEngine(t *testing.T, templateContent string) (*Engine, *stubStore, *memBlobs) {
	t.Helper()
	st := &stubStore{
		templates: map[string]*model.Template{
			"tpl-1": {ID: "tpl-1", Title: "Charter Party", ContentRef: "templates/tpl-1"},
		},
		vessels: map[int64]*model.Vessel{
			7: {ID: 7, Name: "MT Atlas", IMO: "9321483", Flag: "Malta", Deadweight: 115000},
		},
	}
	blobs := &memBlobs{data: map[string][]byte{
		"templates/tpl-1": []byte(templateContent),
	}}
	resolverFor := func(useInference bool) *resolver.Resolver {
		return resolver.New(
			resolver.NewAliasTier(),
			resolver.NewFuzzyTier(resolver.FuzzyConfig{}),
			resolver.NewSyntheticTier(42),
		)
	}
	engine := New(st, blobs, collect.New(st), resolverFor, render.New(0))
	engine.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return engine, st, blobs
}

func TestGenerate_FullFlow(t *testing.T) {
	engine, st, blobs := testEngine(t, "<p>Vessel: {{vessel name}}</p><p>IMO: {{imo}}</p><p>Witness: {{witness}}</p>")

	vesselID := int64(7)
	resp, err := engine.Generate(context.Background(), model.GenerateRequest{
		TemplateID: "tpl-1",
		VesselID:   &vesselID,
		Encodings:  []model.Encoding{model.EncodingHTML, model.EncodingPDF},
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	require.Len(t, resp.ByteRefs, 2)
	assert.Equal(t, 2, resp.Filled)
	assert.Equal(t, 1, resp.Fallback)

	page, err := blobs.Get(context.Background(), resp.ByteRefs[model.EncodingHTML])
	require.NoError(t, err)
	assert.Contains(t, string(page), "Vessel: MT Atlas")
	assert.Contains(t, string(page), "IMO: 9321483")

	require.NotNil(t, st.saved)
	assert.Equal(t, model.DocumentCompleted, st.saved.Status)
	assert.Equal(t, resp.DocumentID, st.saved.ID)
	assert.Equal(t, 2, st.saved.Filled)
}

func TestGenerate_TemplateNotFound(t *testing.T) {
	engine, _, _ := testEngine(t, "<p>{{vessel name}}</p>")

	_, err := engine.Generate(context.Background(), model.GenerateRequest{TemplateID: "missing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrTemplateNotFound)
}

func TestGenerate_EncodingFailureIsolated(t *testing.T) {
	engine, st, _ := testEngine(t, "<p>{{vessel name}}</p>")

	vesselID := int64(7)
	resp, err := engine.Generate(context.Background(), model.GenerateRequest{
		TemplateID: "tpl-1",
		VesselID:   &vesselID,
		Encodings:  []model.Encoding{model.EncodingHTML, model.Encoding("rtf")},
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Len(t, resp.ByteRefs, 1)
	require.Len(t, resp.Failed, 1)
	assert.Contains(t, resp.Failed[model.Encoding("rtf")], "rtf")
	assert.Equal(t, model.DocumentPartial, st.saved.Status)
}

func TestGenerate_MissingEntityDegradesToSynthetic(t *testing.T) {
	engine, st, _ := testEngine(t, "<p>{{vessel name}}</p>")

	vesselID := int64(404)
	resp, err := engine.Generate(context.Background(), model.GenerateRequest{
		TemplateID: "tpl-1",
		VesselID:   &vesselID,
		Encodings:  []model.Encoding{model.EncodingHTML},
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, 0, resp.Filled)
	assert.Equal(t, 1, resp.Fallback)
	assert.NotEmpty(t, resp.Warnings)
	assert.Equal(t, model.DocumentCompleted, st.saved.Status)
}

func TestGenerate_DefaultsToDocxEncoding(t *testing.T) {
	engine, st, _ := testEngine(t, "<p>{{vessel name}}</p>")

	vesselID := int64(7)
	resp, err := engine.Generate(context.Background(), model.GenerateRequest{
		TemplateID: "tpl-1",
		VesselID:   &vesselID,
	})
	require.NoError(t, err)

	assert.Contains(t, resp.ByteRefs, model.EncodingDocx)
	assert.Equal(t, []model.Encoding{model.EncodingDocx}, st.saved.Encodings)
}