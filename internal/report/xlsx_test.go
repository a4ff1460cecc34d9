package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/petrodeal/docgen-cli/internal/model"
)

func TestWriteXLSX(t *testing.T) {
	reports := []model.ValidationReport{
		{
			ID:            "rep-1",
			TemplateID:    "tpl-1",
			TemplateTitle: "Charter Party",
			OverallStatus: model.StageWarning,
			Score:         85,
			CoveragePct:   62.5,
			CreatedAt:     time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
			Stages: []model.StageResult{
				{Name: "template_analysis", Status: model.StageSuccess},
				{Name: "placeholder_mapping", Status: model.StageWarning, Issues: []string{"low coverage", "1 entity missing"}},
			},
		},
		{
			ID:            "rep-2",
			TemplateID:    "tpl-2",
			TemplateTitle: "Bill of Lading",
			OverallStatus: model.StageSuccess,
			Score:         110,
			CoveragePct:   100,
			CreatedAt:     time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, reports))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)

	summary := f.Sheets[0]
	assert.Equal(t, "Summary", summary.Name)
	require.Len(t, summary.Rows, 3)
	assert.Equal(t, "Template ID", summary.Rows[0].Cells[0].String())
	assert.Equal(t, "tpl-1", summary.Rows[1].Cells[0].String())
	assert.Equal(t, "warning", summary.Rows[1].Cells[2].String())
	score, err := summary.Rows[1].Cells[3].Int()
	require.NoError(t, err)
	assert.Equal(t, 85, score)
	assert.Equal(t, "tpl-2", summary.Rows[2].Cells[0].String())

	stages := f.Sheets[1]
	assert.Equal(t, "Stages", stages.Name)
	require.Len(t, stages.Rows, 3)
	assert.Equal(t, "placeholder_mapping", stages.Rows[2].Cells[1].String())
	assert.Equal(t, "low coverage; 1 entity missing", stages.Rows[2].Cells[3].String())
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)
	assert.Len(t, f.Sheets[0].Rows, 1)
}
