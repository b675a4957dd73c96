// Package corpus persists the chunk corpus: a SQLite store for lookups and
// counts, and the chunks.jsonl snapshot that is the durable artifact of
// ingestion.
package corpus

import (
	"context"
	"errors"

	"github.com/hyperjump/horitsu/internal/models"
)

// ErrChunkNotFound is returned by GetChunk when no chunk has the given ID.
var ErrChunkNotFound = errors.New("chunk not found")

// Store persists chunks produced by ingestion. Chunks are immutable once
// written; updating a document means deleting its chunks and re-ingesting.
type Store interface {
	SaveChunks(ctx context.Context, chunks []models.Chunk) error
	DeleteChunksBySource(ctx context.Context, sourceFile string) error
	// GetChunk returns ErrChunkNotFound when the ID is unknown.
	GetChunk(ctx context.Context, id string) (*models.Chunk, error)
	AllChunks(ctx context.Context) ([]models.Chunk, error)
	CountChunks(ctx context.Context) (int, error)
	CountSources(ctx context.Context) (int, error)
	Close() error
}
