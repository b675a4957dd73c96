// Package embedding provides text embedding via a remote embedding service.
package embedding

import "context"

// Embedder produces fixed-dimension vector embeddings for text. For a fixed
// model the output is deterministic and order-preserving. Implementations
// must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
