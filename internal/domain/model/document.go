package model

import (
	"strings"

	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
)

// Document 可以写入 es 的文档
type Document interface {
	*JobDoc
	GetID() string
	GetIndex() string
	GetTypeMapping() *types.TypeMapping
	GetEmbeddingString() string
	SetEmbedding(embedding []float32)
	GetEmbedding() []float32
}

// JobDoc 岗位记录在 es 中的存储形式
type JobDoc struct {
	JobRecord
	Embedding []float32 `json:"embedding,omitempty"`
}

// 索引名可以通过配置修改,由 es 客户端初始化时设置
var jobIndex = "jobs"

// 向量维度为 0 时 mapping 中不包含 embedding 字段
var embeddingDims = 0

func SetJobIndex(index string, dims int) {
	if index != "" {
		jobIndex = index
	}
	embeddingDims = dims
}

func NewJobDoc(record JobRecord) *JobDoc {
	return &JobDoc{JobRecord: record}
}

func (d *JobDoc) GetID() string {
	return d.ID
}

func (d *JobDoc) GetIndex() string {
	return jobIndex
}

func (d *JobDoc) GetTypeMapping() *types.TypeMapping {
	properties := map[string]types.Property{
		"id":           types.NewKeywordProperty(),
		"title":        types.NewTextProperty(),
		"company":      companyProperty(),
		"location":     types.NewTextProperty(),
		"category":     types.NewKeywordProperty(),
		"experience":   types.NewKeywordProperty(),
		"postedDate":   types.NewDateProperty(),
		"source":       types.NewKeywordProperty(),
		"sourceUrl":    types.NewKeywordProperty(),
		"imageUrl":     types.NewKeywordProperty(),
		"salary":       types.NewKeywordProperty(),
		"reward":       types.NewKeywordProperty(),
		"contractType": types.NewKeywordProperty(),
		"description":  types.NewTextProperty(),
		"techStack":    types.NewTextProperty(),
		"deadline":     types.NewKeywordProperty(),
		"dueDate":      types.NewDateProperty(),
	}
	if embeddingDims > 0 {
		vector := types.NewDenseVectorProperty()
		dims := embeddingDims
		vector.Dims = &dims
		properties["embedding"] = vector
	}
	return &types.TypeMapping{Properties: properties}
}

// companyProperty 全文检索之外保留 keyword 子字段用于排序
func companyProperty() *types.TextProperty {
	company := types.NewTextProperty()
	company.Fields = map[string]types.Property{"keyword": types.NewKeywordProperty()}
	return company
}

// GetEmbeddingString 用于生成向量的文本
func (d *JobDoc) GetEmbeddingString() string {
	parts := []string{d.Title, d.Company, d.Category, d.Location}
	if d.JumpitDetail != nil && d.TechStack != "" {
		parts = append(parts, d.TechStack)
	}
	if d.WantedDetail != nil && d.Description != "" {
		parts = append(parts, d.Description)
	}
	return strings.Join(parts, " ")
}

func (d *JobDoc) SetEmbedding(embedding []float32) {
	d.Embedding = embedding
}

func (d *JobDoc) GetEmbedding() []float32 {
	return d.Embedding
}
