// Package vectorindex provides the narrow client interface to the remote
// vector index service. The pipeline treats similarity search as a black
// box: it never computes vector math itself.
package vectorindex

import (
	"context"

	"github.com/hyperjump/horitsu/internal/models"
)

// Item is one vector to upsert, keyed by chunk ID. Metadata travels with
// the vector so query results can be rendered without a corpus lookup.
type Item struct {
	ID       string
	Values   []float32
	Metadata Metadata
}

// Metadata is the chunk metadata stored alongside a vector.
type Metadata struct {
	SourceFile string `json:"source_file"`
	Page       *int   `json:"page"`
	Text       string `json:"text"`
}

// Index is the vector index consumed by ingestion (Upsert) and retrieval
// (Query). Query returns matches in the service's own best-first order with
// raw similarity scores (higher = more similar). Implementations must be
// safe for concurrent read use.
type Index interface {
	Upsert(ctx context.Context, items []Item) error
	Query(ctx context.Context, vector []float32, topK int) ([]models.Match, error)
	Close() error
}
