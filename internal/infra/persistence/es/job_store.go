package es

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/LouYuanbo1/jobcrawler/internal/config"
	"github.com/LouYuanbo1/jobcrawler/internal/domain/model"
	"github.com/LouYuanbo1/jobcrawler/param"
	"github.com/elastic/go-elasticsearch/v9/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types/enums/sortorder"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	aggBySource   = "by_source"
	aggByCategory = "by_category"
	statsBuckets  = 50
)

// JobStore 已抓取岗位的存储,供 HTTP 接口和管理命令使用
type JobStore interface {
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, docs []*model.JobDoc) (int, error)
	Get(ctx context.Context, id string) (*model.JobDoc, error)
	Search(ctx context.Context, q *param.Stored) (model.Page[model.JobRecord], error)
	Similar(ctx context.Context, vector []float32, k int) ([]model.JobRecord, error)
	Stats(ctx context.Context) (*model.JobStats, error)
	Clear(ctx context.Context) (int64, error)
}

type jobStore struct {
	client TypedEsClient[*model.JobDoc]
	logger *zap.Logger
}

func InitJobStore(cfg *config.Elasticsearch, logger *zap.Logger) (JobStore, error) {
	model.SetJobIndex(cfg.Index, cfg.EmbeddingDims)
	client, err := InitTypedEsClient[*model.JobDoc](cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewJobStore(client, logger), nil
}

func NewJobStore(client TypedEsClient[*model.JobDoc], logger *zap.Logger) JobStore {
	return &jobStore{client: client, logger: logger.Named("job_store")}
}

func (s *jobStore) EnsureIndex(ctx context.Context) error {
	return s.client.CreateIndexWithMapping(ctx)
}

// Upsert 同一批次中重复的ID只保留第一条
func (s *jobStore) Upsert(ctx context.Context, docs []*model.JobDoc) (int, error) {
	unique := DedupByID(docs)
	if dropped := len(docs) - len(unique); dropped > 0 {
		s.logger.Debug("duplicate docs dropped", zap.Int("dropped", dropped))
	}
	return s.client.BulkIndexDocsWithID(ctx, unique)
}

func (s *jobStore) Get(ctx context.Context, id string) (*model.JobDoc, error) {
	return s.client.GetDoc(ctx, id)
}

func (s *jobStore) Search(ctx context.Context, q *param.Stored) (model.Page[model.JobRecord], error) {
	docs, total, err := s.client.SearchDoc(ctx, BuildStoredSearch(q))
	if err != nil {
		return model.Page[model.JobRecord]{}, err
	}
	return model.NewPage(records(docs), int(total), max(q.Page, 1), q.Limit), nil
}

func (s *jobStore) Similar(ctx context.Context, vector []float32, k int) ([]model.JobRecord, error) {
	if len(vector) == 0 || k <= 0 {
		return []model.JobRecord{}, nil
	}
	docs, _, err := s.client.SearchDoc(ctx, BuildKnnSearch(vector, k))
	if err != nil {
		return nil, err
	}
	return records(docs), nil
}

func (s *jobStore) Stats(ctx context.Context) (*model.JobStats, error) {
	resp, err := s.client.GetClient().Search().
		Index((*model.JobDoc)(nil).GetIndex()).
		Request(BuildStatsSearch()).
		Do(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "es: stats")
	}

	stats := &model.JobStats{
		BySource:   termCounts(resp.Aggregations[aggBySource]),
		ByCategory: termCounts(resp.Aggregations[aggByCategory]),
	}
	if resp.Hits.Total != nil {
		stats.TotalJobs = resp.Hits.Total.Value
	}
	// 按日期倒序取的第一条就是最近一次入库的岗位
	if len(resp.Hits.Hits) > 0 {
		var doc model.JobDoc
		if err := json.Unmarshal(resp.Hits.Hits[0].Source_, &doc); err == nil {
			stats.LastUpdated = doc.PostedDate
		}
	}
	return stats, nil
}

func (s *jobStore) Clear(ctx context.Context) (int64, error) {
	deleted, err := s.client.DeleteAllDocs(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("job index cleared", zap.Int64("deleted", deleted))
	return deleted, nil
}

func DedupByID(docs []*model.JobDoc) []*model.JobDoc {
	seen := make(map[string]struct{}, len(docs))
	unique := make([]*model.JobDoc, 0, len(docs))
	for _, doc := range docs {
		if doc == nil || doc.GetID() == "" {
			continue
		}
		if _, ok := seen[doc.GetID()]; ok {
			continue
		}
		seen[doc.GetID()] = struct{}{}
		unique = append(unique, doc)
	}
	return unique
}

// BuildStoredSearch 关键字匹配标题/公司/技术栈,分类和来源精确过滤,地区短语匹配
func BuildStoredSearch(q *param.Stored) *search.Request {
	boolQuery := &types.BoolQuery{}
	if q.Keyword != "" {
		boolQuery.Must = append(boolQuery.Must, types.Query{
			MultiMatch: &types.MultiMatchQuery{
				Query:  q.Keyword,
				Fields: []string{"title^2", "company", "techStack", "description"},
			},
		})
	}
	if q.FilterCategory() {
		boolQuery.Filter = append(boolQuery.Filter, types.Query{
			Term: map[string]types.TermQuery{"category": {Value: q.Category}},
		})
	}
	if q.Source != "" {
		boolQuery.Filter = append(boolQuery.Filter, types.Query{
			Term: map[string]types.TermQuery{"source": {Value: q.Source}},
		})
	}
	if q.FilterLocation() {
		boolQuery.Filter = append(boolQuery.Filter, types.Query{
			MatchPhrase: map[string]types.MatchPhraseQuery{"location": {Query: q.Location}},
		})
	}

	query := &types.Query{Bool: boolQuery}
	if len(boolQuery.Must) == 0 && len(boolQuery.Filter) == 0 {
		query = &types.Query{MatchAll: &types.MatchAllQuery{}}
	}

	from, size := q.Offset(), q.Limit
	return &search.Request{
		Query: query,
		From:  &from,
		Size:  &size,
		Sort:  storedSort(q.SortBy),
		// 不设置时总数最多统计到 10000
		TrackTotalHits: true,
	}
}

func storedSort(sortBy string) []types.SortCombinations {
	field, order := "postedDate", sortorder.Desc
	if sortBy == param.SortCompany {
		field, order = "company.keyword", sortorder.Asc
	}
	return []types.SortCombinations{
		types.SortOptions{SortOptions: map[string]types.FieldSort{
			field: {Order: &order},
		}},
	}
}

func BuildKnnSearch(vector []float32, k int) *search.Request {
	candidates := k * 10
	return &search.Request{
		Knn: []types.KnnSearch{{
			Field:         "embedding",
			QueryVector:   vector,
			K:             &k,
			NumCandidates: &candidates,
		}},
		Size: &k,
	}
}

func BuildStatsSearch() *search.Request {
	size, buckets := 1, statsBuckets
	sourceField, categoryField := "source", "category"
	order := sortorder.Desc
	return &search.Request{
		Size:           &size,
		TrackTotalHits: true,
		Sort: []types.SortCombinations{
			types.SortOptions{SortOptions: map[string]types.FieldSort{"postedDate": {Order: &order}}},
		},
		Aggregations: map[string]types.Aggregations{
			aggBySource:   {Terms: &types.TermsAggregation{Field: &sourceField, Size: &buckets}},
			aggByCategory: {Terms: &types.TermsAggregation{Field: &categoryField, Size: &buckets}},
		},
	}
}

func termCounts(agg types.Aggregate) map[string]int64 {
	counts := map[string]int64{}
	terms, ok := agg.(*types.StringTermsAggregate)
	if !ok {
		return counts
	}
	buckets, ok := terms.Buckets.([]types.StringTermsBucket)
	if !ok {
		return counts
	}
	for _, b := range buckets {
		counts[fmt.Sprint(b.Key)] = b.DocCount
	}
	return counts
}

func records(docs []*model.JobDoc) []model.JobRecord {
	out := make([]model.JobRecord, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.JobRecord)
	}
	return out
}
