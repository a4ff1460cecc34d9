// Package pipeline orchestrates a generation request end to end: fetch the
// template, collect entity data, resolve placeholders, render each requested
// encoding, store the bytes and persist the document record.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/petrodeal/docgen-cli/internal/collect"
	"github.com/petrodeal/docgen-cli/internal/extract"
	"github.com/petrodeal/docgen-cli/internal/model"
	"github.com/petrodeal/docgen-cli/internal/render"
	"github.com/petrodeal/docgen-cli/internal/resolver"
	"github.com/petrodeal/docgen-cli/internal/storage"
	"github.com/petrodeal/docgen-cli/internal/store"
)

// Engine wires the generation phases together.
type Engine struct {
	store     store.Store
	blobs     storage.Store
	collector *collect.Collector
	// resolverFor returns the tier chain for one request; inference is a
	// per-request opt-in, so the chain cannot be built once up front.
	resolverFor func(useInference bool) *resolver.Resolver
	renderer    *render.Renderer
	now         func() time.Time
}

// New builds an Engine.
func New(st store.Store, blobs storage.Store, collector *collect.Collector, resolverFor func(bool) *resolver.Resolver, renderer *render.Renderer) *Engine {
	return &Engine{
		store:       st,
		blobs:       blobs,
		collector:   collector,
		resolverFor: resolverFor,
		renderer:    renderer,
		now:         time.Now,
	}
}

// Generate runs one request. The response enumerates per-encoding outcomes;
// only template fetch and extraction failures abort the request.
func (e *Engine) Generate(ctx context.Context, req model.GenerateRequest) (*model.GenerateResponse, error) {
	log := zap.L().With(zap.String("template_id", req.TemplateID))
	log.Info("generation: starting")

	trackPhase := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		if err != nil {
			log.Error("generation: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Error(err),
			)
			return err
		}
		log.Info("generation: phase complete",
			zap.String("phase", name),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	// Phase 1: template fetch and placeholder extraction.
	var tmpl *model.Template
	var content []byte
	var placeholders []string
	if err := trackPhase("template_fetch", func() error {
		var err error
		tmpl, err = e.store.GetTemplate(ctx, req.TemplateID)
		if err != nil {
			return err
		}
		content, err = e.blobs.Get(ctx, tmpl.ContentRef)
		if err != nil {
			return eris.Wrap(err, "pipeline: fetch template content")
		}
		placeholders, err = extract.Extract(content)
		return err
	}); err != nil {
		return nil, err
	}

	// Phase 2: entity collection. Partial data degrades, never aborts.
	var bag *model.AttributeBag
	var warnings []string
	_ = trackPhase("collect", func() error {
		var err error
		bag, warnings, err = e.collector.Collect(ctx, req.Refs(), e.now())
		return err
	})
	if bag == nil {
		bag = model.NewAttributeBag()
		bag.ContextFields(e.now())
	}

	// Phase 3: tiered resolution.
	var set model.ResolutionSet
	_ = trackPhase("resolve", func() error {
		res := e.resolverFor(req.UseInference)
		set = res.Resolve(ctx, &resolver.Request{Template: tmpl, Bag: bag}, placeholders)
		return nil
	})
	warnings = append(warnings, set.Warnings...)

	// Phase 4: render and store each encoding independently.
	encodings := req.Encodings
	if len(encodings) == 0 {
		encodings = []model.Encoding{model.EncodingDocx}
	}
	docID := uuid.New().String()
	byteRefs := make(map[model.Encoding]string)
	failed := make(map[model.Encoding]string)
	_ = trackPhase("render", func() error {
		for _, enc := range encodings {
			data, err := e.renderer.Render(tmpl, content, set.Resolutions, enc)
			if err != nil {
				failed[enc] = err.Error()
				continue
			}
			key := fmt.Sprintf("generated/%s/%s.%s", tmpl.ID, docID, enc)
			ref, err := e.blobs.Put(ctx, key, data)
			if err != nil {
				failed[enc] = err.Error()
				continue
			}
			byteRefs[enc] = ref
		}
		return nil
	})

	filled, fallback := set.Counts()
	status := model.DocumentCompleted
	switch {
	case len(byteRefs) == 0:
		status = model.DocumentFailed
	case len(failed) > 0:
		status = model.DocumentPartial
	}

	doc := &model.GeneratedDocument{
		ID:             docID,
		TemplateID:     tmpl.ID,
		EntityRefs:     req.Refs(),
		Encodings:      encodings,
		ByteRefs:       byteRefs,
		EncodingErrors: failed,
		Filled:         filled,
		Fallback:       fallback,
		Status:         status,
		CompletedAt:    e.now().UTC(),
	}
	if err := trackPhase("persist", func() error {
		return e.store.SaveDocument(ctx, doc)
	}); err != nil {
		return nil, err
	}

	log.Info("generation: finished",
		zap.String("document_id", doc.ID),
		zap.String("status", string(status)),
		zap.Int("filled", filled),
		zap.Int("fallback", fallback),
	)

	resp := &model.GenerateResponse{
		Success:     status != model.DocumentFailed,
		DocumentID:  doc.ID,
		ByteRefs:    byteRefs,
		Filled:      filled,
		Fallback:    fallback,
		Resolutions: set.Resolutions,
		Warnings:    warnings,
	}
	if len(failed) > 0 {
		resp.Failed = failed
	}
	return resp, nil
}
