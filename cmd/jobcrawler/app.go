package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/LouYuanbo1/jobcrawler/internal/config"
	"github.com/LouYuanbo1/jobcrawler/internal/infra/crawler/chrome"
	"github.com/LouYuanbo1/jobcrawler/internal/infra/crawler/collector"
	"github.com/LouYuanbo1/jobcrawler/internal/infra/embedding"
	"github.com/LouYuanbo1/jobcrawler/internal/infra/persistence/es"
	"github.com/LouYuanbo1/jobcrawler/internal/service/aggregator"
	"github.com/LouYuanbo1/jobcrawler/internal/service/crawler"
	"github.com/LouYuanbo1/jobcrawler/internal/service/indexer"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// app 命令共用的依赖,store/indexer 在 elasticsearch 未启用时为 nil
type app struct {
	aggregator aggregator.Service
	store      es.JobStore
	indexer    indexer.Service
}

func newAdapters(cfg *config.Config, logger *zap.Logger) ([]crawler.Adapter, error) {
	launcher, err := chrome.InitLauncher(&cfg.Browser)
	if err != nil {
		return nil, err
	}
	details := collector.InitCollyCollector(&cfg.Collector, logger)

	var adapters []crawler.Adapter
	if cfg.Sources.Wanted.Enabled {
		adapters = append(adapters, crawler.InitWantedAdapter(&cfg.Sources.Wanted, launcher, details, logger))
	}
	if cfg.Sources.Jumpit.Enabled {
		adapters = append(adapters, crawler.InitJumpitAdapter(&cfg.Sources.Jumpit, launcher, details, logger))
	}
	if len(adapters) == 0 {
		return nil, eris.New("no source enabled")
	}
	return adapters, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	adapters, err := newAdapters(cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &app{aggregator: aggregator.InitService(adapters, &cfg.Aggregator, logger)}
	if !cfg.Elasticsearch.Enabled {
		return a, nil
	}

	store, err := es.InitJobStore(&cfg.Elasticsearch, logger)
	if err != nil {
		return nil, err
	}
	var embedder embedding.Embedder
	if cfg.Embedder.Enabled {
		embedder, err = embedding.InitEmbedder(ctx, &cfg.Embedder)
		if err != nil {
			return nil, err
		}
	}
	a.store = store
	a.indexer = indexer.InitService(a.aggregator, store, embedder, logger)
	return a, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
