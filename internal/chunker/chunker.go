// Package chunker splits normalized document text into overlapping,
// size-bounded passages with stable identifiers.
package chunker

import (
	"fmt"
	"strings"

	"github.com/hyperjump/horitsu/internal/models"
	"github.com/hyperjump/horitsu/pkg/utils"
)

const (
	// DefaultMaxWords is the target maximum words per chunk.
	DefaultMaxWords = 250
	// DefaultOverlapWords is how many trailing words of a closed chunk seed the next one.
	DefaultOverlapWords = 100
	// DefaultMinWords is the minimum word count for a chunk to be kept.
	DefaultMinWords = 40
	// DefaultMinEntryWords is the minimum word count for a page entry to be chunked at all.
	DefaultMinEntryWords = 50
)

// Chunker accumulates sentence units into overlapping word-bounded chunks.
// Chunking is deterministic: identical input and parameters always produce
// identical chunk boundaries and text.
type Chunker struct {
	maxWords      int
	overlapWords  int
	minWords      int
	minEntryWords int
}

// NewChunker creates a chunker. Non-positive maxWords falls back to the
// default; negative overlap is treated as zero.
func NewChunker(maxWords, overlapWords, minWords int) *Chunker {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	if overlapWords < 0 {
		overlapWords = 0
	}
	if minWords < 0 {
		minWords = 0
	}
	return &Chunker{
		maxWords:      maxWords,
		overlapWords:  overlapWords,
		minWords:      minWords,
		minEntryWords: DefaultMinEntryWords,
	}
}

// WithMinEntryWords sets the minimum entry word count below which a page
// entry is skipped entirely (not chunked, not indexed).
func (c *Chunker) WithMinEntryWords(n int) *Chunker {
	c.minEntryWords = n
	return c
}

// ChunkDocument chunks each entry of a document. Chunk IDs have the form
// {documentBase}-{entryIndex}-{chunkIndex}; entryIndex counts skipped
// entries too, so IDs stay stable when short pages are interleaved.
func (c *Chunker) ChunkDocument(documentBase, sourceFile string, entries []models.Entry) []models.Chunk {
	var chunks []models.Chunk
	for entryIdx, entry := range entries {
		text := strings.TrimSpace(entry.Text)
		if text == "" || utils.WordCount(text) < c.minEntryWords {
			continue
		}
		for chunkIdx, chunkText := range c.ChunkText(text) {
			chunks = append(chunks, models.Chunk{
				ID:         fmt.Sprintf("%s-%d-%d", documentBase, entryIdx, chunkIdx),
				SourceFile: sourceFile,
				Page:       entry.Page,
				Text:       chunkText,
				WordCount:  utils.WordCount(chunkText),
			})
		}
	}
	return chunks
}

// ChunkText splits text into overlapping chunks. Sentence units accumulate
// until adding the next one would push the word count over maxWords; the
// buffer is then closed and reseeded with its trailing overlap words. A
// single sentence longer than maxWords is emitted whole, never split.
// Chunks below minWords are dropped.
func (c *Chunker) ChunkText(text string) []string {
	sents := SplitSentences(text)
	var chunks []string
	var cur []string
	curWords := 0
	for _, sent := range sents {
		ws := utils.WordCount(sent)
		if len(cur) > 0 && curWords+ws > c.maxWords {
			closed := strings.TrimSpace(strings.Join(cur, " "))
			chunks = append(chunks, closed)
			if c.overlapWords > 0 {
				words := strings.Fields(closed)
				start := len(words) - c.overlapWords
				if start < 0 {
					start = 0
				}
				seed := strings.Join(words[start:], " ")
				cur = []string{seed}
				curWords = len(words) - start
			} else {
				cur = nil
				curWords = 0
			}
		}
		cur = append(cur, sent)
		curWords += ws
	}
	if len(cur) > 0 {
		chunks = append(chunks, strings.TrimSpace(strings.Join(cur, " ")))
	}

	kept := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		if utils.WordCount(ch) >= c.minWords {
			kept = append(kept, ch)
		}
	}
	return kept
}
