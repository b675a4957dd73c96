package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ManifestRecord describes one completed ingestion run for one document.
// The manifest is append-only JSONL; the latest record per source wins.
type ManifestRecord struct {
	RunID      string    `json:"run_id"`
	SourceFile string    `json:"source_file"`
	SHA256     string    `json:"sha256"`
	PageCount  int       `json:"page_count"`
	ChunkCount int       `json:"chunk_count"`
	Title      string    `json:"title,omitempty"`
	Date       string    `json:"date,omitempty"`
	IngestedAt time.Time `json:"ingested_at"`
}

// AppendManifest appends rec to the manifest file at path, creating parent
// directories as needed.
func AppendManifest(path string, rec ManifestRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create manifest directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := json.NewEncoder(w).Encode(rec); err != nil {
		return fmt.Errorf("encode manifest record: %w", err)
	}
	return w.Flush()
}

// ReadManifest loads all manifest records from path. A missing file is not
// an error; it returns an empty slice.
func ReadManifest(path string) ([]ManifestRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	var records []ManifestRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec ManifestRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, sc.Err()
}

var yearRe = regexp.MustCompile(`\b(1[89]|20)\d{2}\b`)

// guessTitle takes the first non-empty line of the first page as the
// document title, capped at 120 characters.
func guessTitle(firstPage string) string {
	for _, line := range strings.Split(firstPage, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > 120 {
			line = line[:120]
		}
		return line
	}
	return ""
}

// guessDate returns the first four-digit year found on the first page,
// which for statutes is usually the enactment year in the title.
func guessDate(firstPage string) string {
	return yearRe.FindString(firstPage)
}
