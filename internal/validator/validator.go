// Package validator measures how production-ready a template is by running
// the resolution pipeline against sample entities and scoring the result.
// The report is advisory and never gates generation.
package validator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/petrodeal/docgen-cli/internal/collect"
	"github.com/petrodeal/docgen-cli/internal/extract"
	"github.com/petrodeal/docgen-cli/internal/model"
	"github.com/petrodeal/docgen-cli/internal/render"
	"github.com/petrodeal/docgen-cli/internal/resolver"
	"github.com/petrodeal/docgen-cli/internal/storage"
	"github.com/petrodeal/docgen-cli/internal/store"
)

// Stage names as they appear in reports.
const (
	StageTemplateAnalysis   = "template_analysis"
	StagePlaceholderMapping = "placeholder_mapping"
	StageDocumentGeneration = "document_generation"
)

// coverageWarnPct is the coverage below which the mapping stage warns.
const coverageWarnPct = 70.0

// Options selects what one validation run covers.
type Options struct {
	TemplateID string
	// Refs are the sample entities resolution runs against.
	Refs []model.EntityRef
	// RenderCheck additionally renders each encoding; skipped when false.
	RenderCheck bool
	Encodings   []model.Encoding
}

// Validator runs the pipeline stages and assembles a ValidationReport.
type Validator struct {
	store     store.Store
	blobs     storage.Store
	collector *collect.Collector
	resolver  *resolver.Resolver
	renderer  *render.Renderer
	now       func() time.Time
}

// New builds a Validator.
func New(st store.Store, blobs storage.Store, collector *collect.Collector, res *resolver.Resolver, renderer *render.Renderer) *Validator {
	return &Validator{
		store:     st,
		blobs:     blobs,
		collector: collector,
		resolver:  res,
		renderer:  renderer,
		now:       time.Now,
	}
}

// Validate runs the stages and persists the finalized report. Only a missing
// template aborts; every other failure lands in the report as a stage issue.
func (v *Validator) Validate(ctx context.Context, opts Options) (*model.ValidationReport, error) {
	tmpl, err := v.store.GetTemplate(ctx, opts.TemplateID)
	if err != nil {
		return nil, err
	}

	report := &model.ValidationReport{
		ID:            uuid.New().String(),
		TemplateID:    tmpl.ID,
		TemplateTitle: tmpl.Title,
		CreatedAt:     v.now().UTC(),
	}

	content, placeholders := v.analysisStage(ctx, tmpl, report)

	var set model.ResolutionSet
	if len(placeholders) > 0 {
		set = v.mappingStage(ctx, tmpl, opts.Refs, placeholders, report)
	} else {
		report.Stages = append(report.Stages, model.StageResult{
			Name:   StagePlaceholderMapping,
			Status: model.StageSkipped,
		})
	}

	if opts.RenderCheck && content != nil {
		v.renderStage(tmpl, content, set.Resolutions, opts.Encodings, report)
	} else {
		report.Stages = append(report.Stages, model.StageResult{
			Name:   StageDocumentGeneration,
			Status: model.StageSkipped,
		})
	}

	for _, s := range report.Stages {
		report.Issues = append(report.Issues, s.Issues...)
	}
	report.Finalize()

	if err := v.store.SaveReport(ctx, report); err != nil {
		zap.L().Warn("validator: persist report failed", zap.Error(err))
	}
	zap.L().Info("validation finished",
		zap.String("template_id", tmpl.ID),
		zap.Int("score", report.Score),
		zap.String("status", string(report.OverallStatus)),
	)
	return report, nil
}

// analysisStage fetches the template content and extracts its placeholders.
func (v *Validator) analysisStage(ctx context.Context, tmpl *model.Template, report *model.ValidationReport) ([]byte, []string) {
	stage := model.StageResult{Name: StageTemplateAnalysis, Status: model.StageSuccess}

	content, err := v.blobs.Get(ctx, tmpl.ContentRef)
	if err != nil {
		stage.Status = model.StageError
		stage.Issues = append(stage.Issues, fmt.Sprintf("template content unreadable: %s", err))
		report.Stages = append(report.Stages, stage)
		report.Recommendations = append(report.Recommendations, "re-upload the template file")
		return nil, nil
	}

	placeholders, err := extract.Extract(content)
	if err != nil {
		if errors.Is(err, model.ErrUnreadableTemplate) {
			stage.Issues = append(stage.Issues, "template bytes could not be decoded")
		} else {
			stage.Issues = append(stage.Issues, err.Error())
		}
		stage.Status = model.StageError
		report.Stages = append(report.Stages, stage)
		return nil, nil
	}
	if len(placeholders) == 0 {
		stage.Status = model.StageError
		stage.Issues = append(stage.Issues, "no placeholders detected")
		report.Recommendations = append(report.Recommendations,
			"check that the template uses {{name}}, ${name}, {name} or [name] tokens")
		report.Stages = append(report.Stages, stage)
		return content, nil
	}

	stage.Metadata = map[string]any{"placeholder_count": len(placeholders)}
	report.Stages = append(report.Stages, stage)
	return content, placeholders
}

// mappingStage resolves the placeholders against the sample entities and
// measures data-backed coverage.
func (v *Validator) mappingStage(ctx context.Context, tmpl *model.Template, refs []model.EntityRef, placeholders []string, report *model.ValidationReport) model.ResolutionSet {
	stage := model.StageResult{Name: StagePlaceholderMapping, Status: model.StageSuccess}

	bag, warnings, err := v.collector.Collect(ctx, refs, v.now())
	if err != nil {
		stage.Status = model.StageWarning
		stage.Issues = append(stage.Issues, err.Error())
		bag = model.NewAttributeBag()
		bag.ContextFields(v.now())
	}
	stage.Issues = append(stage.Issues, warnings...)

	set := v.resolver.Resolve(ctx, &resolver.Request{Template: tmpl, Bag: bag}, placeholders)
	stage.Issues = append(stage.Issues, set.Warnings...)

	report.CoveragePct = set.Coverage() * 100
	filled, fallback := set.Counts()
	stage.Metadata = map[string]any{
		"filled":       filled,
		"fallback":     fallback,
		"coverage_pct": report.CoveragePct,
	}

	if report.CoveragePct < coverageWarnPct {
		stage.Status = model.StageWarning
		stage.Issues = append(stage.Issues,
			fmt.Sprintf("only %.0f%% of placeholders resolved from data", report.CoveragePct))
		report.Recommendations = append(report.Recommendations,
			"review AI suggestions and approve alias mappings to raise coverage")
	}
	if len(stage.Issues) > 0 && stage.Status == model.StageSuccess {
		stage.Status = model.StageWarning
	}

	report.Stages = append(report.Stages, stage)
	return set
}

// renderStage exercises each requested encoding. All encodings failing is an
// error; a partial failure warns.
func (v *Validator) renderStage(tmpl *model.Template, content []byte, resolutions []model.Resolution, encodings []model.Encoding, report *model.ValidationReport) {
	if len(encodings) == 0 {
		encodings = []model.Encoding{model.EncodingDocx, model.EncodingPDF, model.EncodingHTML}
	}
	stage := model.StageResult{Name: StageDocumentGeneration, Status: model.StageSuccess}

	failures := 0
	for _, enc := range encodings {
		if _, err := v.renderer.Render(tmpl, content, resolutions, enc); err != nil {
			failures++
			stage.Issues = append(stage.Issues, fmt.Sprintf("%s: render failed: %s", enc, err))
		}
	}
	switch {
	case failures == len(encodings):
		stage.Status = model.StageError
	case failures > 0:
		stage.Status = model.StageWarning
	}
	stage.Metadata = map[string]any{
		"encodings": len(encodings),
		"failed":    failures,
	}
	report.Stages = append(report.Stages, stage)
}
