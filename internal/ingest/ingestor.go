// Package ingest runs the offline pipeline: extract pages from a source
// document, normalize them, chunk them, persist the chunks, and index
// their embeddings.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/horitsu/internal/chunker"
	"github.com/hyperjump/horitsu/internal/corpus"
	"github.com/hyperjump/horitsu/internal/embedding"
	"github.com/hyperjump/horitsu/internal/extract"
	"github.com/hyperjump/horitsu/internal/models"
	"github.com/hyperjump/horitsu/internal/normalize"
	"github.com/hyperjump/horitsu/internal/vectorindex"
)

// Result summarizes one ingestion run.
type Result struct {
	RunID      string `json:"run_id"`
	SourceFile string `json:"source_file"`
	Pages      int    `json:"pages"`
	Chunks     int    `json:"chunks"`
	Indexed    int    `json:"indexed"`
}

// Ingestor wires the offline pipeline stages together.
type Ingestor struct {
	extractor  *extract.Extractor
	normalizer *normalize.Normalizer
	chunker    *chunker.Chunker
	store      corpus.Store
	embedder   embedding.Embedder
	index      vectorindex.Index

	chunksPath   string
	manifestPath string
	batchSize    int
	logger       *zap.Logger
}

// IngestorConfig holds the paths and batch size for ingestion runs.
type IngestorConfig struct {
	ChunksPath   string
	ManifestPath string
	// BatchSize is how many chunks are embedded per service call.
	BatchSize int
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithLogger sets a logger for per-stage progress and skip warnings.
func WithLogger(l *zap.Logger) IngestorOption {
	return func(ing *Ingestor) { ing.logger = l }
}

// NewIngestor creates an ingestor. BatchSize defaults to 50.
func NewIngestor(
	extractor *extract.Extractor,
	normalizer *normalize.Normalizer,
	chk *chunker.Chunker,
	store corpus.Store,
	embedder embedding.Embedder,
	index vectorindex.Index,
	cfg IngestorConfig,
	opts ...IngestorOption,
) *Ingestor {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	ing := &Ingestor{
		extractor:    extractor,
		normalizer:   normalizer,
		chunker:      chk,
		store:        store,
		embedder:     embedder,
		index:        index,
		chunksPath:   cfg.ChunksPath,
		manifestPath: cfg.ManifestPath,
		batchSize:    cfg.BatchSize,
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// IngestFile runs the full pipeline for one document. Re-ingesting a file
// replaces its previous chunks in the store, and the JSONL snapshot is
// rewritten from the store so the two never diverge. The vector index is
// updated by ID upsert, so stale IDs from a shrunk document may linger
// until the index is rebuilt.
func (ing *Ingestor) IngestFile(ctx context.Context, path string) (*Result, error) {
	doc, err := ing.extractor.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	pages := ing.normalizer.NormalizePages(doc.Pages)
	entries := make([]models.Entry, len(pages))
	for i, text := range pages {
		page := i + 1
		entries[i] = models.Entry{Page: &page, Text: text}
	}

	base := documentBase(doc.SourceFile)
	chunks := ing.chunker.ChunkDocument(base, doc.SourceFile, entries)
	if ing.logger != nil {
		ing.logger.Info("chunked document",
			zap.String("source", doc.SourceFile), zap.Int("pages", len(pages)), zap.Int("chunks", len(chunks)))
	}

	if err := ing.store.DeleteChunksBySource(ctx, doc.SourceFile); err != nil {
		return nil, fmt.Errorf("clear previous chunks: %w", err)
	}
	if err := ing.store.SaveChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("save chunks: %w", err)
	}
	if ing.chunksPath != "" {
		all, err := ing.store.AllChunks(ctx)
		if err != nil {
			return nil, fmt.Errorf("load chunks for snapshot: %w", err)
		}
		if err := corpus.WriteJSONL(ing.chunksPath, all); err != nil {
			return nil, fmt.Errorf("write chunk snapshot: %w", err)
		}
	}

	indexed, err := ing.indexChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:      uuid.NewString(),
		SourceFile: doc.SourceFile,
		Pages:      len(pages),
		Chunks:     len(chunks),
		Indexed:    indexed,
	}
	if ing.manifestPath != "" {
		if err := ing.writeManifest(path, doc, result); err != nil && ing.logger != nil {
			// Manifest is bookkeeping; a write failure must not undo the run.
			ing.logger.Warn("manifest write failed", zap.String("source", doc.SourceFile), zap.Error(err))
		}
	}
	return result, nil
}

// IngestDir ingests every file under dir whose extension is in extensions
// (lowercase, with leading dot). Failures on individual files are logged
// and skipped so one bad document never aborts the batch.
func (ing *Ingestor) IngestDir(ctx context.Context, dir string, extensions []string) ([]*Result, error) {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}

	var results []*Result
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !allowed[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		res, ierr := ing.IngestFile(ctx, path)
		if ierr != nil {
			if ing.logger != nil {
				ing.logger.Warn("skipping document", zap.String("path", path), zap.Error(ierr))
			}
			return nil
		}
		results = append(results, res)
		return nil
	})
	if err != nil {
		return results, fmt.Errorf("walk %s: %w", dir, err)
	}
	return results, nil
}

// indexChunks embeds chunks in batches and upserts them into the vector
// index. Returns the number of vectors upserted.
func (ing *Ingestor) indexChunks(ctx context.Context, chunks []models.Chunk) (int, error) {
	indexed := 0
	for start := 0; start < len(chunks); start += ing.batchSize {
		end := start + ing.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, ch := range batch {
			texts[i] = ch.Text
		}
		vectors, err := ing.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return indexed, fmt.Errorf("embed batch at %d: %w", start, err)
		}

		items := make([]vectorindex.Item, len(batch))
		for i, ch := range batch {
			items[i] = vectorindex.Item{
				ID:     ch.ID,
				Values: vectors[i],
				Metadata: vectorindex.Metadata{
					SourceFile: ch.SourceFile,
					Page:       ch.Page,
					Text:       ch.Text,
				},
			}
		}
		if err := ing.index.Upsert(ctx, items); err != nil {
			return indexed, fmt.Errorf("upsert batch at %d: %w", start, err)
		}
		indexed += len(items)
	}
	return indexed, nil
}

func (ing *Ingestor) writeManifest(path string, doc *models.Document, res *Result) error {
	sum, err := fileSHA256(path)
	if err != nil {
		return err
	}
	firstPage := ""
	if len(doc.Pages) > 0 {
		firstPage = doc.Pages[0]
	}
	return AppendManifest(ing.manifestPath, ManifestRecord{
		RunID:      res.RunID,
		SourceFile: doc.SourceFile,
		SHA256:     sum,
		PageCount:  res.Pages,
		ChunkCount: res.Chunks,
		Title:      guessTitle(firstPage),
		Date:       guessDate(firstPage),
		IngestedAt: time.Now().UTC(),
	})
}

// documentBase derives the chunk ID prefix from a file name: the stem,
// lowercased, with runs of non-alphanumerics collapsed to single hyphens.
func documentBase(sourceFile string) string {
	stem := strings.TrimSuffix(sourceFile, filepath.Ext(sourceFile))
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(stem) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func fileSHA256(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
