// Package models defines core data structures for documents, chunks, and retrieval results.
package models

// Document represents an extracted source document as a sequence of raw pages.
// Created once at extraction time, immutable afterwards.
type Document struct {
	SourceFile string   `json:"source_file"`
	Pages      []string `json:"pages"`
}

// Entry is one normalized page of a document, the input unit for chunking.
// Page is nil when the source carried no usable page number.
type Entry struct {
	Page *int   `json:"page"`
	Text string `json:"text"`
}

// Chunk is the unit of embedding and retrieval: a bounded, overlapping
// segment of normalized document text. IDs have the form
// {documentBase}-{entryIndex}-{chunkIndex} and are stable across re-runs
// given identical input.
type Chunk struct {
	ID         string `json:"id"`
	SourceFile string `json:"source_file"`
	Page       *int   `json:"page"`
	Text       string `json:"text"`
	WordCount  int    `json:"-"`
}
