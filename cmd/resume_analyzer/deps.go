package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/catalog"
	"github.com/jonathan/resume-analyzer/internal/config"
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/filestore"
	"github.com/jonathan/resume-analyzer/internal/llm"
	"github.com/jonathan/resume-analyzer/internal/rules"
)

// deps is the analysis stack assembled from configuration.
type deps struct {
	analyzer *analysis.Analyzer
	catalog  *catalog.Catalog
	rules    *rules.Cache // nil when the rule engine is disabled
	db       *db.DB       // nil without a database URL
	files    *filestore.Store
	closers  []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// buildDeps wires stores, caches and the analyzer. The database takes precedence over rule
// and catalog files; with neither, the built-in rules and catalog are used.
func buildDeps(ctx context.Context, cfg *config.Config, logger *zap.Logger, withModel bool) (*deps, error) {
	d := &deps{}
	var (
		ruleStore    rules.Store
		catalogStore catalog.Store
	)

	switch {
	case cfg.DatabaseURL != "":
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		d.db = database
		d.closers = append(d.closers, database.Close)
		ruleStore, catalogStore = database, database
	case cfg.RulesFile != "" || cfg.CatalogFile != "":
		d.files = filestore.New(cfg.RulesFile, cfg.CatalogFile, logger)
		ruleStore, catalogStore = d.files, d.files
	}

	d.catalog = catalog.New(catalogStore, logger)
	if err := d.catalog.Refresh(ctx); err != nil {
		d.Close()
		return nil, err
	}

	var engine *rules.Engine
	if cfg.UseRuleEngine {
		d.rules = rules.NewCache(ruleStore, logger)
		if err := d.rules.Load(ctx); err != nil {
			d.Close()
			return nil, err
		}
		if skipped := d.rules.Snapshot().Skipped; len(skipped) > 0 {
			logger.Warn("some detection rules were skipped", zap.Error(errors.Join(skipped...)))
		}
		engine = rules.NewEngine(d.rules, logger)
	}

	opts := analysis.Options{
		Catalog: d.catalog,
		Rules:   engine,
		Logger:  logger,
	}
	if withModel {
		if cfg.GeminiAPIKey == "" {
			d.Close()
			return nil, fmt.Errorf("model features require an API key (set GEMINI_API_KEY)")
		}
		client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.closers = append(d.closers, func() { _ = client.Close() })
		opts.Features = llm.NewFeatureExtractor(client, logger)
	}
	d.analyzer = analysis.New(opts)
	return d, nil
}
