package embedding

import (
	"context"
	"strconv"

	"github.com/LouYuanbo1/jobcrawler/internal/config"
	"github.com/cloudwego/eino-ext/components/embedding/ollama"
	"github.com/rotisserie/eris"
)

type ollamaEmbedder struct {
	model     *ollama.Embedder
	batchSize int
}

func InitEmbedder(ctx context.Context, cfg *config.Embedder) (Embedder, error) {
	model, err := ollama.NewEmbedder(ctx, &ollama.EmbeddingConfig{
		Model:   cfg.Model,
		BaseURL: cfg.Host + ":" + strconv.Itoa(cfg.Port),
	})
	if err != nil {
		return nil, eris.Wrapf(err, "embedding: init ollama model %s", cfg.Model)
	}
	return &ollamaEmbedder{model: model, batchSize: cfg.BatchSize}, nil
}

func (e *ollamaEmbedder) BatchSize() int {
	return e.batchSize
}

func (e *ollamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	vectors, err := e.model.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, eris.Wrapf(err, "embedding: embed %d texts", len(texts))
	}
	// es 的 dense_vector 用 float32
	return ToFloat32(vectors), nil
}

func ToFloat32(vectors [][]float64) [][]float32 {
	out := make([][]float32, 0, len(vectors))
	for _, v := range vectors {
		f32 := make([]float32, len(v))
		for i, f := range v {
			f32[i] = float32(f)
		}
		out = append(out, f32)
	}
	return out
}
