package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"time"

	"github.com/LouYuanbo1/jobcrawler/internal/config"
	"github.com/LouYuanbo1/jobcrawler/internal/domain/model"
	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esutil"
	"github.com/elastic/go-elasticsearch/v9/typedapi/core/deletebyquery"
	"github.com/elastic/go-elasticsearch/v9/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

type typedEsClient[D model.Document] struct {
	client *elasticsearch.TypedClient
	logger *zap.Logger
	// 仅用于获取索引名和 mapping,不存数据
	schemaDoc D
}

func InitTypedEsClient[D model.Document](cfg *config.Elasticsearch, logger *zap.Logger) (TypedEsClient[D], error) {
	typedClient, err := elasticsearch.NewTypedClient(elasticsearch.Config{
		Username:  cfg.Username,
		Password:  cfg.Password,
		Addresses: []string{cfg.Address},
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       90 * time.Second,
			// 本地开发用的自签名证书
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "es: init typed client")
	}
	return &typedEsClient[D]{client: typedClient, logger: logger.Named("es")}, nil
}

func (tec *typedEsClient[D]) GetClient() *elasticsearch.TypedClient {
	return tec.client
}

func (tec *typedEsClient[D]) CreateIndexWithMapping(ctx context.Context) error {
	index := tec.schemaDoc.GetIndex()
	exists, err := tec.client.Indices.Exists(index).Do(ctx)
	if err != nil {
		return eris.Wrapf(err, "es: check index %s", index)
	}
	if exists {
		tec.logger.Debug("index already exists, skip create", zap.String("index", index))
		return nil
	}

	mapping := tec.schemaDoc.GetTypeMapping()
	if mapping == nil {
		_, err = tec.client.Indices.Create(index).Do(ctx)
	} else {
		_, err = tec.client.Indices.Create(index).Mappings(mapping).Do(ctx)
	}
	if err != nil {
		return eris.Wrapf(err, "es: create index %s", index)
	}
	tec.logger.Info("index created", zap.String("index", index))
	return nil
}

func (tec *typedEsClient[D]) DeleteIndex(ctx context.Context) error {
	index := tec.schemaDoc.GetIndex()
	if _, err := tec.client.Indices.Delete(index).Do(ctx); err != nil {
		return eris.Wrapf(err, "es: delete index %s", index)
	}
	return nil
}

// BulkIndexDocsWithID 以文档ID写入,已存在的文档会被覆盖,返回成功写入的数量
func (tec *typedEsClient[D]) BulkIndexDocsWithID(ctx context.Context, docs []D) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         tec.schemaDoc.GetIndex(),
		Client:        tec.client,
		NumWorkers:    2,
		FlushBytes:    5 * 1024 * 1024,
		FlushInterval: 30 * time.Second,
		OnError: func(ctx context.Context, err error) {
			tec.logger.Error("bulk indexer error", zap.Error(err))
		},
	})
	if err != nil {
		return 0, eris.Wrap(err, "es: create bulk indexer")
	}

	for _, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			tec.logger.Warn("marshal document failed", zap.String("id", doc.GetID()), zap.Error(err))
			continue
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: doc.GetID(),
			Body:       bytes.NewReader(data),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					tec.logger.Warn("index document failed", zap.String("id", item.DocumentID), zap.Error(err))
				} else {
					tec.logger.Warn("index document failed", zap.String("id", item.DocumentID), zap.String("reason", res.Error.Reason))
				}
			},
		})
		if err != nil {
			tec.logger.Warn("add document to bulk indexer", zap.String("id", doc.GetID()), zap.Error(err))
		}
	}

	if err := bi.Close(ctx); err != nil {
		return 0, eris.Wrap(err, "es: close bulk indexer")
	}
	stats := bi.Stats()
	tec.logger.Info("bulk indexing completed",
		zap.Uint64("indexed", stats.NumIndexed),
		zap.Uint64("failed", stats.NumFailed),
	)
	return int(stats.NumIndexed), nil
}

// GetDoc 文档不存在时返回 nil, nil
func (tec *typedEsClient[D]) GetDoc(ctx context.Context, id string) (D, error) {
	resp, err := tec.client.Get(tec.schemaDoc.GetIndex(), id).Do(ctx)
	if err != nil {
		return nil, eris.Wrapf(err, "es: get doc %s", id)
	}
	if !resp.Found {
		return nil, nil
	}
	var doc D
	if err := json.Unmarshal(resp.Source_, &doc); err != nil {
		return nil, eris.Wrapf(err, "es: unmarshal doc %s", id)
	}
	return doc, nil
}

func (tec *typedEsClient[D]) CountDocs(ctx context.Context) (int64, error) {
	resp, err := tec.client.Count().Index(tec.schemaDoc.GetIndex()).Do(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "es: count docs")
	}
	return resp.Count, nil
}

func (tec *typedEsClient[D]) SearchDoc(ctx context.Context, req *search.Request) ([]D, int64, error) {
	resp, err := tec.client.Search().
		Index(tec.schemaDoc.GetIndex()).
		Request(req).
		Do(ctx)
	if err != nil {
		return nil, 0, eris.Wrap(err, "es: search")
	}

	results := make([]D, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		var doc D
		if err := json.Unmarshal(hit.Source_, &doc); err != nil {
			tec.logger.Debug("skip undecodable hit", zap.Error(err))
			continue
		}
		results = append(results, doc)
	}
	var total int64
	if resp.Hits.Total != nil {
		total = resp.Hits.Total.Value
	}
	return results, total, nil
}

func (tec *typedEsClient[D]) DeleteAllDocs(ctx context.Context) (int64, error) {
	resp, err := tec.client.DeleteByQuery(tec.schemaDoc.GetIndex()).
		Request(&deletebyquery.Request{
			Query: &types.Query{MatchAll: &types.MatchAllQuery{}},
		}).
		Do(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "es: delete all docs")
	}
	if resp.Deleted == nil {
		return 0, nil
	}
	return *resp.Deleted, nil
}
