package indexer

import (
	"context"
	"strings"
	"time"

	"github.com/LouYuanbo1/jobcrawler/internal/domain/model"
	"github.com/LouYuanbo1/jobcrawler/internal/infra/embedding"
	"github.com/LouYuanbo1/jobcrawler/internal/infra/persistence/es"
	"github.com/LouYuanbo1/jobcrawler/internal/service/aggregator"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

var ErrKeywordRequired = eris.New("indexer: keyword is required")

// Service 抓取岗位并写入存储
type Service interface {
	CrawlAndIndex(ctx context.Context, keyword string, limit int) (int, error)
	// Similar 按文本语义检索已入库岗位,没有配置 embedder 时返回空
	Similar(ctx context.Context, text string, k int) ([]model.JobRecord, error)
}

type service struct {
	aggregator aggregator.Service
	store      es.JobStore
	// 可以为 nil
	embedder embedding.Embedder
	logger   *zap.Logger
}

func InitService(agg aggregator.Service, store es.JobStore, embedder embedding.Embedder, logger *zap.Logger) Service {
	return &service{
		aggregator: agg,
		store:      store,
		embedder:   embedder,
		logger:     logger.Named("indexer"),
	}
}

func (s *service) CrawlAndIndex(ctx context.Context, keyword string, limit int) (int, error) {
	if strings.TrimSpace(keyword) == "" {
		return 0, ErrKeywordRequired
	}
	start := time.Now()
	records := s.aggregator.FetchAll(ctx, keyword, limit)
	if len(records) == 0 {
		s.logger.Info("nothing to index", zap.String("keyword", keyword))
		return 0, nil
	}

	docs := make([]*model.JobDoc, 0, len(records))
	for _, r := range records {
		docs = append(docs, model.NewJobDoc(r))
	}
	if s.embedder != nil {
		s.embeddingDocs(ctx, docs)
	}

	if err := s.store.EnsureIndex(ctx); err != nil {
		return 0, eris.Wrap(err, "indexer: ensure index")
	}
	indexed, err := s.store.Upsert(ctx, docs)
	if err != nil {
		return 0, eris.Wrapf(err, "indexer: upsert %d docs", len(docs))
	}
	s.logger.Info("crawl and index finished",
		zap.String("keyword", keyword),
		zap.Int("fetched", len(records)),
		zap.Int("indexed", indexed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return indexed, nil
}

// embeddingDocs 按批次生成向量,失败的批次不带向量继续入库
func (s *service) embeddingDocs(ctx context.Context, docs []*model.JobDoc) {
	batchSize := s.embedder.BatchSize()
	if batchSize <= 0 {
		batchSize = len(docs)
	}
	for i := 0; i < len(docs); i += batchSize {
		end := min(i+batchSize, len(docs))
		texts := make([]string, 0, end-i)
		for _, doc := range docs[i:end] {
			texts = append(texts, doc.GetEmbeddingString())
		}
		vectors, err := s.embedder.Embed(ctx, texts)
		if err != nil {
			s.logger.Warn("embed batch failed", zap.Int("from", i), zap.Int("to", end), zap.Error(err))
			continue
		}
		if len(vectors) != len(texts) {
			s.logger.Warn("embed batch size mismatch", zap.Int("want", len(texts)), zap.Int("got", len(vectors)))
			continue
		}
		for j, v := range vectors {
			docs[i+j].SetEmbedding(v)
		}
	}
}

func (s *service) Similar(ctx context.Context, text string, k int) ([]model.JobRecord, error) {
	if s.embedder == nil || strings.TrimSpace(text) == "" {
		return []model.JobRecord{}, nil
	}
	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, eris.Wrap(err, "indexer: embed query")
	}
	if len(vectors) == 0 {
		return []model.JobRecord{}, nil
	}
	return s.store.Similar(ctx, vectors[0], k)
}
