package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/petrodeal/docgen-cli/internal/collect"
	"github.com/petrodeal/docgen-cli/internal/pipeline"
	"github.com/petrodeal/docgen-cli/internal/render"
	"github.com/petrodeal/docgen-cli/internal/resolver"
	"github.com/petrodeal/docgen-cli/internal/review"
	"github.com/petrodeal/docgen-cli/internal/storage"
	"github.com/petrodeal/docgen-cli/internal/store"
	"github.com/petrodeal/docgen-cli/internal/validator"
	anthropicpkg "github.com/petrodeal/docgen-cli/pkg/anthropic"
)

// env holds the initialized store, blob storage and pipeline components
// shared by the commands.
type env struct {
	Store       store.Store
	Blobs       storage.Store
	Collector   *collect.Collector
	Renderer    *render.Renderer
	Engine      *pipeline.Engine
	Validator   *validator.Validator
	Reviewer    *review.Reviewer
	ResolverFor func(useInference bool) *resolver.Resolver
}

// Close releases resources held by the environment.
func (e *env) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "docgen.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEnv validates the config for the given mode and builds the shared
// environment. Callers should defer env.Close().
func initEnv(ctx context.Context, mode string) (*env, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	blobs, err := storage.NewLocal(cfg.Storage.Root)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	collector := collect.New(st)
	renderer := render.New(cfg.Render.MaxTemplateBytes)

	aiCfg := resolver.AIConfig{
		Model:              cfg.Anthropic.Model,
		MaxBatchSize:       cfg.Anthropic.MaxBatchSize,
		Timeout:            time.Duration(cfg.Anthropic.TimeoutSecs) * time.Second,
		AutoApplyThreshold: cfg.Resolver.AutoApplyThreshold,
	}
	fuzzyCfg := resolver.FuzzyConfig{
		Floor:                   cfg.Resolver.FuzzyFloor,
		ContainmentScore:        cfg.Resolver.ContainmentScore,
		ReverseContainmentScore: cfg.Resolver.ReverseContainScore,
	}

	resolverFor := func(useInference bool) *resolver.Resolver {
		tiers := []resolver.Tier{
			resolver.NewAliasTier(),
			resolver.NewFuzzyTier(fuzzyCfg),
		}
		if useInference && cfg.Anthropic.Key != "" {
			client := anthropicpkg.NewClient(cfg.Anthropic.Key)
			tiers = append(tiers, resolver.NewAITier(client, st, aiCfg))
		}
		tiers = append(tiers, resolver.NewSyntheticTier(cfg.Resolver.SyntheticSeed))
		return resolver.New(tiers...)
	}

	return &env{
		Store:       st,
		Blobs:       blobs,
		Collector:   collector,
		Renderer:    renderer,
		Engine:      pipeline.New(st, blobs, collector, resolverFor, renderer),
		Validator:   validator.New(st, blobs, collector, resolverFor(false), renderer),
		Reviewer:    review.New(st, cfg.Resolver.AutoApplyThreshold),
		ResolverFor: resolverFor,
	}, nil
}
