package es

import (
	"context"

	"github.com/LouYuanbo1/jobcrawler/internal/domain/model"
	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/typedapi/core/search"
)

// TypedEsClient 泛型 es 客户端,索引名和 mapping 由文档类型决定
type TypedEsClient[D model.Document] interface {
	GetClient() *elasticsearch.TypedClient
	CreateIndexWithMapping(ctx context.Context) error
	DeleteIndex(ctx context.Context) error
	BulkIndexDocsWithID(ctx context.Context, docs []D) (int, error)
	GetDoc(ctx context.Context, id string) (D, error)
	CountDocs(ctx context.Context) (int64, error)
	SearchDoc(ctx context.Context, req *search.Request) ([]D, int64, error)
	DeleteAllDocs(ctx context.Context) (int64, error)
}
