package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/horitsu/internal/chunker"
	"github.com/hyperjump/horitsu/internal/corpus"
	"github.com/hyperjump/horitsu/internal/embedding"
	"github.com/hyperjump/horitsu/internal/extract"
	"github.com/hyperjump/horitsu/internal/models"
	"github.com/hyperjump/horitsu/internal/normalize"
	"github.com/hyperjump/horitsu/internal/vectorindex"
)

type memStore struct {
	chunks  map[string]models.Chunk
	deleted []string
}

func newMemStore() *memStore {
	return &memStore{chunks: make(map[string]models.Chunk)}
}

func (m *memStore) SaveChunks(ctx context.Context, chunks []models.Chunk) error {
	for _, ch := range chunks {
		m.chunks[ch.ID] = ch
	}
	return nil
}

func (m *memStore) DeleteChunksBySource(ctx context.Context, sourceFile string) error {
	m.deleted = append(m.deleted, sourceFile)
	for id, ch := range m.chunks {
		if ch.SourceFile == sourceFile {
			delete(m.chunks, id)
		}
	}
	return nil
}

func (m *memStore) GetChunk(ctx context.Context, id string) (*models.Chunk, error) {
	if ch, ok := m.chunks[id]; ok {
		return &ch, nil
	}
	return nil, corpus.ErrChunkNotFound
}

func (m *memStore) AllChunks(ctx context.Context) ([]models.Chunk, error) {
	out := make([]models.Chunk, 0, len(m.chunks))
	for _, ch := range m.chunks {
		out = append(out, ch)
	}
	return out, nil
}

func (m *memStore) CountChunks(ctx context.Context) (int, error)  { return len(m.chunks), nil }
func (m *memStore) CountSources(ctx context.Context) (int, error) { return 0, nil }
func (m *memStore) Close() error                                  { return nil }

type memIndex struct {
	items   []vectorindex.Item
	upserts int
}

func (m *memIndex) Upsert(ctx context.Context, items []vectorindex.Item) error {
	m.upserts++
	m.items = append(m.items, items...)
	return nil
}

func (m *memIndex) Query(ctx context.Context, vector []float32, topK int) ([]models.Match, error) {
	return nil, nil
}

func (m *memIndex) Close() error { return nil }

func writeSourceFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

// legalBody is long enough to clear the entry minimum and produce multiple
// chunks with small chunker settings.
func legalBody() string {
	var b strings.Builder
	b.WriteString("The Indian Penal Code 1860\n\n")
	for i := 0; i < 12; i++ {
		b.WriteString("Whoever intends to take dishonestly any movable property out of the possession of any person without consent commits theft under this section.\n")
	}
	b.WriteString("\nPage 1\n")
	return b.String()
}

func newTestIngestor(t *testing.T, store *memStore, idx *memIndex, cfg IngestorConfig) *Ingestor {
	t.Helper()
	return NewIngestor(
		extract.NewExtractor(),
		normalize.NewNormalizer(2, 0.8),
		chunker.NewChunker(40, 10, 5).WithMinEntryWords(10),
		store,
		embedding.NewMockEmbedder(8),
		idx,
		cfg,
	)
}

func TestIngestFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSourceFile(t, dir, "ipc.txt", legalBody())
	store := newMemStore()
	idx := &memIndex{}
	ing := newTestIngestor(t, store, idx, IngestorConfig{
		ChunksPath:   filepath.Join(dir, "chunks.jsonl"),
		ManifestPath: filepath.Join(dir, "manifest.jsonl"),
		BatchSize:    2,
	})

	res, err := ing.IngestFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "ipc.txt", res.SourceFile)
	assert.Equal(t, 1, res.Pages)
	assert.Greater(t, res.Chunks, 1)
	assert.Equal(t, res.Chunks, res.Indexed)
	assert.NotEmpty(t, res.RunID)

	// Store and index agree on the chunk set.
	assert.Len(t, store.chunks, res.Chunks)
	assert.Len(t, idx.items, res.Chunks)
	for id := range store.chunks {
		assert.True(t, strings.HasPrefix(id, "ipc-"), "chunk id %s", id)
	}
	// Batch size 2 forces multiple upsert calls.
	assert.Greater(t, idx.upserts, 1)

	// Snapshot and manifest were written.
	_, err = os.Stat(filepath.Join(dir, "chunks.jsonl"))
	require.NoError(t, err)
	records, err := ReadManifest(filepath.Join(dir, "manifest.jsonl"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ipc.txt", records[0].SourceFile)
	assert.Len(t, records[0].SHA256, 64)
	assert.Equal(t, res.Chunks, records[0].ChunkCount)
	assert.Equal(t, "1860", records[0].Date)
}

func TestIngestFile_reingestReplacesChunks(t *testing.T) {
	dir := t.TempDir()
	path := writeSourceFile(t, dir, "ipc.txt", legalBody())
	store := newMemStore()
	ing := newTestIngestor(t, store, &memIndex{}, IngestorConfig{})

	first, err := ing.IngestFile(context.Background(), path)
	require.NoError(t, err)
	second, err := ing.IngestFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, first.Chunks, second.Chunks)
	assert.Len(t, store.chunks, second.Chunks)
	assert.Equal(t, []string{"ipc.txt", "ipc.txt"}, store.deleted)
}

func TestIngestFile_snapshotMatchesStoreAfterReingest(t *testing.T) {
	dir := t.TempDir()
	path := writeSourceFile(t, dir, "ipc.txt", legalBody())
	snapshot := filepath.Join(dir, "chunks.jsonl")
	store := newMemStore()
	ing := newTestIngestor(t, store, &memIndex{}, IngestorConfig{ChunksPath: snapshot})

	_, err := ing.IngestFile(context.Background(), path)
	require.NoError(t, err)
	second, err := ing.IngestFile(context.Background(), path)
	require.NoError(t, err)

	chunks, err := corpus.ReadJSONL(snapshot, nil)
	require.NoError(t, err)
	// The snapshot mirrors the store exactly, with no lines left over from
	// the first run.
	assert.Len(t, chunks, second.Chunks)
	assert.Len(t, chunks, len(store.chunks))
	seen := make(map[string]bool, len(chunks))
	for _, ch := range chunks {
		assert.False(t, seen[ch.ID], "duplicate chunk id %s in snapshot", ch.ID)
		seen[ch.ID] = true
	}
}

func TestIngestDir_filtersAndSkipsBadFiles(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, "ipc.txt", legalBody())
	writeSourceFile(t, dir, "crpc.txt", legalBody())
	writeSourceFile(t, dir, "notes.docx", "ignored extension")
	store := newMemStore()
	ing := newTestIngestor(t, store, &memIndex{}, IngestorConfig{})

	results, err := ing.IngestDir(context.Background(), dir, []string{".txt"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	names := []string{results[0].SourceFile, results[1].SourceFile}
	assert.ElementsMatch(t, []string{"ipc.txt", "crpc.txt"}, names)
}

func TestDocumentBase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ipc.pdf", "ipc"},
		{"Indian Penal Code.pdf", "indian-penal-code"},
		{"CrPC_1973 (final).pdf", "crpc-1973-final"},
		{"a..b.txt", "a-b"},
	}
	for _, tt := range tests {
		if got := documentBase(tt.in); got != tt.want {
			t.Errorf("documentBase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGuessTitleAndDate(t *testing.T) {
	page := "\n\nThe Code of Criminal Procedure\nAct No. 2 of 1974\n"
	assert.Equal(t, "The Code of Criminal Procedure", guessTitle(page))
	assert.Equal(t, "1974", guessDate(page))
	assert.Equal(t, "", guessTitle("   \n  \n"))
	assert.Equal(t, "", guessDate("no year here"))
}
