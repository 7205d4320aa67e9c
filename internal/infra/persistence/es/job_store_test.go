package es

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/LouYuanbo1/jobcrawler/internal/domain/model"
	"github.com/LouYuanbo1/jobcrawler/param"
	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/typedapi/core/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTypedClient struct {
	indexed  []*model.JobDoc
	docs     []*model.JobDoc
	total    int64
	requests []*search.Request
	deleted  int64
}

func (f *fakeTypedClient) GetClient() *elasticsearch.TypedClient            { return nil }
func (f *fakeTypedClient) CreateIndexWithMapping(ctx context.Context) error { return nil }
func (f *fakeTypedClient) DeleteIndex(ctx context.Context) error            { return nil }
func (f *fakeTypedClient) CountDocs(ctx context.Context) (int64, error)     { return f.total, nil }
func (f *fakeTypedClient) DeleteAllDocs(ctx context.Context) (int64, error) { return f.deleted, nil }
func (f *fakeTypedClient) GetDoc(ctx context.Context, id string) (*model.JobDoc, error) {
	for _, d := range f.docs {
		if d.GetID() == id {
			return d, nil
		}
	}
	return nil, nil
}

func (f *fakeTypedClient) BulkIndexDocsWithID(ctx context.Context, docs []*model.JobDoc) (int, error) {
	f.indexed = append(f.indexed, docs...)
	return len(docs), nil
}

func (f *fakeTypedClient) SearchDoc(ctx context.Context, req *search.Request) ([]*model.JobDoc, int64, error) {
	f.requests = append(f.requests, req)
	return f.docs, f.total, nil
}

func doc(id, title string) *model.JobDoc {
	return model.NewJobDoc(model.JobRecord{ID: id, Title: title, PostedDate: "2025-06-01"})
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestDedupByID(t *testing.T) {
	docs := []*model.JobDoc{doc("wanted-1", "first"), doc("jumpit-1", "x"), doc("wanted-1", "second"), nil, doc("", "no id")}

	unique := DedupByID(docs)

	require.Len(t, unique, 2)
	assert.Equal(t, "first", unique[0].Title)
	assert.Equal(t, "jumpit-1", unique[1].ID)
}

func TestUpsertKeepsFirstOccurrence(t *testing.T) {
	client := &fakeTypedClient{}
	store := NewJobStore(client, zap.NewNop())

	n, err := store.Upsert(context.Background(), []*model.JobDoc{doc("a", "1"), doc("a", "2"), doc("b", "3")})

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "1", client.indexed[0].Title)
}

func TestBuildStoredSearch(t *testing.T) {
	req := BuildStoredSearch(&param.Stored{
		Keyword:  "golang",
		Category: "개발",
		Location: "서울",
		Source:   "jumpit",
		Page:     3,
		Limit:    20,
	})

	assert.Equal(t, 40, *req.From)
	assert.Equal(t, 20, *req.Size)
	body := toJSON(t, req)
	assert.Contains(t, body, `"multi_match"`)
	assert.Contains(t, body, `"golang"`)
	assert.Contains(t, body, `"match_phrase"`)
	assert.Contains(t, body, `"source"`)
	assert.Contains(t, body, `"postedDate"`)
	assert.Contains(t, body, `"desc"`)
}

func TestBuildStoredSearch_SentinelsAndEmpty(t *testing.T) {
	req := BuildStoredSearch(&param.Stored{Category: "전체", Location: "전국", Page: 1, Limit: 10})

	assert.NotNil(t, req.Query.MatchAll)
	assert.Nil(t, req.Query.Bool)
	assert.Equal(t, 0, *req.From)
}

func TestBuildStoredSearch_SortByCompany(t *testing.T) {
	body := toJSON(t, BuildStoredSearch(&param.Stored{SortBy: param.SortCompany, Page: 1, Limit: 10}))
	assert.Contains(t, body, `"company.keyword"`)
	assert.Contains(t, body, `"asc"`)
}

func TestSearchBuildsPage(t *testing.T) {
	client := &fakeTypedClient{docs: []*model.JobDoc{doc("a", "1"), doc("b", "2")}, total: 5}
	store := NewJobStore(client, zap.NewNop())

	page, err := store.Search(context.Background(), &param.Stored{Page: 1, Limit: 2})

	require.NoError(t, err)
	assert.Len(t, page.Jobs, 2)
	assert.Equal(t, 5, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasMore)
	require.Len(t, client.requests, 1)
}

func TestSimilar(t *testing.T) {
	client := &fakeTypedClient{docs: []*model.JobDoc{doc("a", "1")}}
	store := NewJobStore(client, zap.NewNop())

	got, err := store.Similar(context.Background(), []float32{0.1, 0.2}, 3)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	require.Len(t, client.requests, 1)
	require.Len(t, client.requests[0].Knn, 1)
	assert.Equal(t, "embedding", client.requests[0].Knn[0].Field)
	assert.Equal(t, 30, *client.requests[0].Knn[0].NumCandidates)

	got, err = store.Similar(context.Background(), nil, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Len(t, client.requests, 1)
}

func TestBuildStatsSearch(t *testing.T) {
	body := toJSON(t, BuildStatsSearch())
	assert.Contains(t, body, `"by_source"`)
	assert.Contains(t, body, `"by_category"`)
	assert.Contains(t, body, `"terms"`)
}

func TestClear(t *testing.T) {
	store := NewJobStore(&fakeTypedClient{deleted: 7}, zap.NewNop())
	n, err := store.Clear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
