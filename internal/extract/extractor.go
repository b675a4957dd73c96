// Package extract provides page-wise text extraction from source documents.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/horitsu/internal/models"
)

// Extractor extracts page text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns a Document with one entry per page.
// PDF pages map 1:1 to Document.Pages; plain text files (.txt, .md) become a
// single-page document. Returns an error if the file cannot be read or the
// format is unsupported.
func (e *Extractor) Extract(path string) (*models.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	pages, err := e.ExtractBytes(content, ext)
	if err != nil {
		return nil, err
	}
	return &models.Document{
		SourceFile: filepath.Base(path),
		Pages:      pages,
	}, nil
}

// ExtractBytes extracts page texts from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractBytes(content []byte, ext string) ([]string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".txt", ".md", "":
		return extractPlain(content)
	default:
		// Unknown extension: treat as plain text
		return extractPlain(content)
	}
}
