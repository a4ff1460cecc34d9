package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrodeal/docgen-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_TemplateRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	tpl := &model.Template{
		Title:        "Charter Party",
		Description:  "Standard tanker voyage charter",
		FileName:     "charter.docx",
		ContentRef:   "templates/charter.docx",
		Tier:         model.TierPro,
		Placeholders: []string{"vessel_name", "loading_port"},
		Active:       true,
	}
	require.NoError(t, s.CreateTemplate(ctx, tpl))
	require.NotEmpty(t, tpl.ID)

	got, err := s.GetTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, tpl.Title, got.Title)
	assert.Equal(t, model.TierPro, got.Tier)
	assert.Equal(t, []string{"vessel_name", "loading_port"}, got.Placeholders)
	assert.True(t, got.Active)
}

func TestSQLiteStore_GetTemplate_NotFound(t *testing.T) {
	s := newTestSQLiteStore(t)
	_, err := s.GetTemplate(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrTemplateNotFound)
}

func TestSQLiteStore_UpsertAliases_RevisionBump(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	tpl := &model.Template{Title: "T", FileName: "t.docx", ContentRef: "r", Tier: model.TierBasic, Active: true}
	require.NoError(t, s.CreateTemplate(ctx, tpl))

	require.NoError(t, s.UpsertAliases(ctx, tpl.ID, map[string]string{"Vessel Name": "vessel_name"}))
	aliases, err := s.GetAliases(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "vessel_name", aliases["vesselname"])

	// Re-approving with a different field replaces and bumps the revision.
	require.NoError(t, s.UpsertAliases(ctx, tpl.ID, map[string]string{"vessel_name": "vessel_imo"}))
	aliases, err = s.GetAliases(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "vessel_imo", aliases["vesselname"])

	var revision int
	err = s.db.QueryRowContext(ctx,
		`SELECT revision FROM template_aliases WHERE template_id = ? AND placeholder_key = ?`,
		tpl.ID, "vesselname",
	).Scan(&revision)
	require.NoError(t, err)
	assert.Equal(t, 2, revision)
}

func TestSQLiteStore_SuggestionLifecycle(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	tpl := &model.Template{Title: "T", FileName: "t.docx", ContentRef: "r", Tier: model.TierBasic, Active: true}
	require.NoError(t, s.CreateTemplate(ctx, tpl))

	suggestions := []model.Suggestion{
		{TemplateID: tpl.ID, Placeholder: "chrtr_vsl", Field: "vessel_name", Confidence: 85},
		{TemplateID: tpl.ID, Placeholder: "qty", Field: "cargo_quantity", Confidence: 60},
	}
	require.NoError(t, s.CreateSuggestions(ctx, suggestions))

	pending, err := s.ListSuggestions(ctx, tpl.ID, model.SuggestionSuggested)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	reviewed := pending[0]
	reviewed.State = model.SuggestionApproved
	now := time.Now().UTC()
	reviewed.ReviewedAt = &now
	require.NoError(t, s.UpdateSuggestion(ctx, &reviewed))

	approved, err := s.ListSuggestions(ctx, tpl.ID, model.SuggestionApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, reviewed.ID, approved[0].ID)
	assert.NotNil(t, approved[0].ReviewedAt)
}

func TestSQLiteStore_Entities(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vessels (id, name, imo, flag, deadweight) VALUES (7, 'MT Atlas', '9321483', 'Malta', 115000)`)
	require.NoError(t, err)

	v, err := s.GetVessel(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "MT Atlas", v.Name)
	assert.Equal(t, int64(115000), v.Deadweight)

	_, err = s.GetVessel(ctx, 404)
	assert.ErrorIs(t, err, model.ErrEntityNotFound)

	_, err = s.GetCompany(ctx, 404)
	assert.ErrorIs(t, err, model.ErrEntityNotFound)
}

func TestSQLiteStore_DocumentRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	tpl := &model.Template{Title: "T", FileName: "t.docx", ContentRef: "r", Tier: model.TierBasic, Active: true}
	require.NoError(t, s.CreateTemplate(ctx, tpl))

	doc := &model.GeneratedDocument{
		ID:             newID(),
		TemplateID:     tpl.ID,
		EntityRefs:     []model.EntityRef{{Kind: model.KindVessel, ID: 7}},
		Encodings:      []model.Encoding{model.EncodingDocx, model.EncodingPDF},
		ByteRefs:       map[model.Encoding]string{model.EncodingDocx: "docs/d.docx"},
		EncodingErrors: map[model.Encoding]string{model.EncodingPDF: "render failed"},
		Filled:         4,
		Fallback:       1,
		Status:         model.DocumentPartial,
		CompletedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.SaveDocument(ctx, doc))

	got, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentPartial, got.Status)
	assert.Equal(t, "docs/d.docx", got.ByteRefs[model.EncodingDocx])
	assert.Equal(t, "render failed", got.EncodingErrors[model.EncodingPDF])
	assert.Equal(t, model.KindVessel, got.EntityRefs[0].Kind)

	list, err := s.ListDocuments(ctx, tpl.ID, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSQLiteStore_ReportRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	tpl := &model.Template{Title: "T", FileName: "t.docx", ContentRef: "r", Tier: model.TierBasic, Active: true}
	require.NoError(t, s.CreateTemplate(ctx, tpl))

	report := &model.ValidationReport{
		TemplateID:    tpl.ID,
		TemplateTitle: "T",
		Stages: []model.StageResult{
			{Name: "template_analysis", Status: model.StageSuccess},
			{Name: "placeholder_mapping", Status: model.StageWarning, Issues: []string{"2 placeholders unmapped"}},
		},
		CoveragePct: 75,
	}
	report.Finalize()
	require.NoError(t, s.SaveReport(ctx, report))

	list, err := s.ListReports(ctx, tpl.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, report.Score, list[0].Score)
	assert.Equal(t, model.StageWarning, list[0].OverallStatus)
	assert.Len(t, list[0].Stages, 2)
}
