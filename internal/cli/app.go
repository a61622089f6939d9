package cli

import (
	"fmt"

	"textorder/internal/catalog"
	"textorder/internal/config"
	"textorder/internal/database"
	"textorder/internal/evaluation"
	"textorder/internal/llmparser"
	"textorder/internal/logger"
	"textorder/internal/models/providers"
	"textorder/internal/monitoring"
	"textorder/internal/parser"
	"textorder/internal/playground"
	"textorder/internal/processing"
)

// app holds the components every command is built from
type app struct {
	catalog   *catalog.Catalog
	store     *database.Store
	processor *processing.Processor
	evaluator *evaluation.Evaluator
	collector *evaluation.MetricsCollector
	monitor   *monitoring.Monitor
	models    []playground.ModelInfo
}

func newApp(cfg *config.Config, log *logger.Logger) (*app, error) {
	a := &app{
		collector: evaluation.NewMetricsCollector(),
		monitor:   monitoring.NewMonitor(),
	}

	if cfg.Database.Enabled() {
		store, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		a.store = store
	}

	cat, err := loadCatalog(cfg, a.store, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.catalog = cat

	opts := []processing.Option{
		processing.WithCollector(a.collector),
		processing.WithMonitor(a.monitor),
		processing.WithLogger(log.Named("processing")),
	}
	registry := providers.NewRegistry()
	if cfg.LLM.Enabled {
		provider, err := registry.Get(cfg.LLM.Settings())
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize LLM: %w", err)
		}
		opts = append(opts, processing.WithLLM(llmparser.New(provider, cat,
			llmparser.WithLogger(log.Named("llmparser")),
			llmparser.WithMaxRetries(cfg.LLM.MaxRetries),
		)))
		log.Info("llm_enabled", map[string]any{"provider": provider.Name(), "model": cfg.LLM.Model})
	}
	a.models = modelInfo(cfg, registry)

	a.processor = processing.New(parser.New(cat, parser.WithLogger(log.Named("parser"))), opts...)
	a.evaluator = evaluation.NewEvaluator(
		evaluation.WithCollector(a.collector),
		evaluation.WithMonitor(a.monitor),
		evaluation.WithLogger(log.Named("evaluation")),
	)
	return a, nil
}

// loadCatalog reads the configured menu file or the built-in menus. With
// catalog.from_database the menus are seeded into the database once and
// read back from it.
func loadCatalog(cfg *config.Config, store *database.Store, log *logger.Logger) (*catalog.Catalog, error) {
	cat := catalog.Default()
	if cfg.Catalog.Path != "" {
		loaded, err := catalog.LoadFile(cfg.Catalog.Path)
		if err != nil {
			return nil, err
		}
		cat = loaded
	}
	if !cfg.Catalog.FromDatabase || store == nil {
		return cat, nil
	}

	seeded, err := store.SeedCatalog(cat)
	if err != nil {
		return nil, err
	}
	if seeded {
		log.Info("catalog_seeded", map[string]any{"restaurants": len(cat.Restaurants())})
	}
	return store.LoadCatalog()
}

func modelInfo(cfg *config.Config, registry *providers.Registry) []playground.ModelInfo {
	active := providers.Type(cfg.LLM.Provider)
	if active == "" {
		active = providers.TypeOllama
	}
	var out []playground.ModelInfo
	for _, t := range registry.Types() {
		info := playground.ModelInfo{Type: string(t)}
		if t == active {
			info.Model = cfg.LLM.Model
			info.MaxTokens = cfg.LLM.MaxTokens
			info.Active = cfg.LLM.Enabled
		}
		out = append(out, info)
	}
	return out
}

func (a *app) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
