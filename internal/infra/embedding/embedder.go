package embedding

import "context"

// Embedder 把文本转换为向量,用于相似岗位检索
type Embedder interface {
	BatchSize() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
