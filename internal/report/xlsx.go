// Package report exports validation reports to spreadsheets for operator
// review.
package report

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/petrodeal/docgen-cli/internal/model"
)

var summaryHeader = []string{
	"Template ID", "Title", "Status", "Score", "Coverage %", "Created",
}

var stageHeader = []string{
	"Template ID", "Stage", "Status", "Issues",
}

// WriteXLSX writes the reports as a two-sheet workbook: a summary row per
// report and a row per stage with its issues.
func WriteXLSX(w io.Writer, reports []model.ValidationReport) error {
	f := xlsx.NewFile()

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}
	addRow(summary, summaryHeader...)
	for _, r := range reports {
		row := summary.AddRow()
		row.AddCell().SetString(r.TemplateID)
		row.AddCell().SetString(r.TemplateTitle)
		row.AddCell().SetString(string(r.OverallStatus))
		row.AddCell().SetInt(r.Score)
		row.AddCell().SetFloat(r.CoveragePct)
		row.AddCell().SetString(r.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	stages, err := f.AddSheet("Stages")
	if err != nil {
		return eris.Wrap(err, "report: add stages sheet")
	}
	addRow(stages, stageHeader...)
	for _, r := range reports {
		for _, s := range r.Stages {
			row := stages.AddRow()
			row.AddCell().SetString(r.TemplateID)
			row.AddCell().SetString(s.Name)
			row.AddCell().SetString(string(s.Status))
			row.AddCell().SetString(strings.Join(s.Issues, "; "))
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "report: write workbook")
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}
