package aggregator

import (
	"context"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/LouYuanbo1/jobcrawler/internal/config"
	"github.com/LouYuanbo1/jobcrawler/internal/domain/model"
	"github.com/LouYuanbo1/jobcrawler/internal/service/crawler"
	"github.com/LouYuanbo1/jobcrawler/param"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service 合并多个站点的抓取结果
// 所有方法都不返回错误,站点失败时只是少了该站点的数据
type Service interface {
	FetchAll(ctx context.Context, keyword string, limit int) []model.JobRecord
	FetchFromSource(ctx context.Context, source string, keyword string, limit int) []model.JobRecord
	Search(ctx context.Context, params *param.Search) []model.JobRecord
	Sources() []model.Source
}

type service struct {
	adapters   []crawler.Adapter
	multiplier int
	logger     *zap.Logger
}

// InitService adapters 的顺序决定合并时同一天岗位的先后
func InitService(adapters []crawler.Adapter, cfg *config.Aggregator, logger *zap.Logger) Service {
	multiplier := cfg.SearchMultiplier
	if multiplier <= 0 {
		multiplier = 2
	}
	return &service{
		adapters:   adapters,
		multiplier: multiplier,
		logger:     logger.Named("aggregator"),
	}
}

func (s *service) Sources() []model.Source {
	sources := make([]model.Source, 0, len(s.adapters))
	for _, a := range s.adapters {
		sources = append(sources, a.Source())
	}
	return sources
}

func (s *service) FetchAll(ctx context.Context, keyword string, limit int) []model.JobRecord {
	if strings.TrimSpace(keyword) == "" || limit <= 0 || len(s.adapters) == 0 {
		return []model.JobRecord{}
	}
	perSource := int(math.Ceil(float64(limit) / float64(len(s.adapters))))

	start := time.Now()
	results := make([][]model.JobRecord, len(s.adapters))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range s.adapters {
		g.Go(func() error {
			// 每个站点只写自己的槽位,Acquire 不会返回错误
			results[i] = a.Acquire(gctx, keyword, perSource)
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	merged := make([]model.JobRecord, 0, total)
	for i, r := range results {
		s.logger.Debug("source finished", zap.String("source", string(s.adapters[i].Source())), zap.Int("count", len(r)))
		merged = append(merged, r...)
	}

	SortByPostedDesc(merged)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	s.logger.Info("fetch all finished",
		zap.String("keyword", keyword),
		zap.Int("limit", limit),
		zap.Int("per_source", perSource),
		zap.Int("count", len(merged)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return merged
}

func (s *service) FetchFromSource(ctx context.Context, source string, keyword string, limit int) []model.JobRecord {
	if strings.TrimSpace(keyword) == "" {
		return []model.JobRecord{}
	}
	for _, a := range s.adapters {
		if string(a.Source()) == source {
			return a.Acquire(ctx, keyword, limit)
		}
	}
	s.logger.Warn("unknown source", zap.String("source", source))
	return []model.JobRecord{}
}

func (s *service) Search(ctx context.Context, params *param.Search) []model.JobRecord {
	if params == nil || strings.TrimSpace(params.Keyword) == "" || params.Limit <= 0 {
		return []model.JobRecord{}
	}
	// 过滤会丢掉一部分结果,先多抓一些
	fetched := s.FetchAll(ctx, params.Keyword, params.Limit*s.multiplier)
	filtered := Filter(fetched, params)
	if len(filtered) > params.Limit {
		filtered = filtered[:params.Limit]
	}
	s.logger.Info("search finished",
		zap.String("keyword", params.Keyword),
		zap.String("category", params.Category),
		zap.String("location", params.Location),
		zap.Int("fetched", len(fetched)),
		zap.Int("count", len(filtered)),
	)
	return filtered
}

// SortByPostedDesc 按发布日期倒序的稳定排序,日期无法解析的排在最后
func SortByPostedDesc(records []model.JobRecord) {
	slices.SortStableFunc(records, func(a, b model.JobRecord) int {
		return b.Posted().Compare(a.Posted())
	})
}

// Filter 分类精确匹配,地区按子串匹配,哨兵值表示不过滤
func Filter(records []model.JobRecord, params *param.Search) []model.JobRecord {
	filterCategory := params.FilterCategory()
	filterLocation := params.FilterLocation()
	out := make([]model.JobRecord, 0, len(records))
	for _, r := range records {
		if filterCategory && r.Category != params.Category {
			continue
		}
		if filterLocation && !strings.Contains(r.Location, params.Location) {
			continue
		}
		out = append(out, r)
	}
	return out
}
