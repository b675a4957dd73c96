package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hyperjump/horitsu/internal/models"
)

// WriteJSONL writes chunks to the JSONL corpus file at path, one JSON
// object per line with fields id, source_file, page, and text. Any
// existing file is replaced: the snapshot always reflects one complete
// corpus state, never an accumulation of past runs. Parent directories
// are created if needed.
func WriteJSONL(path string, chunks []models.Chunk) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create chunks directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("open chunks file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, ch := range chunks {
		if err := enc.Encode(ch); err != nil {
			return fmt.Errorf("encode chunk %s: %w", ch.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush chunks file: %w", err)
	}
	return nil
}

// ReadJSONL loads chunks from the JSONL corpus file at path. Malformed
// lines are logged and skipped, never fatal to the whole load. logger may
// be nil.
func ReadJSONL(path string, logger *zap.Logger) ([]models.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chunks file: %w", err)
	}
	defer f.Close()

	var chunks []models.Chunk
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var ch models.Chunk
		if err := json.Unmarshal(line, &ch); err != nil {
			if logger != nil {
				logger.Warn("skipping malformed chunk line",
					zap.String("path", path), zap.Int("line", lineNo), zap.Error(err))
			}
			continue
		}
		chunks = append(chunks, ch)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read chunks file: %w", err)
	}
	return chunks, nil
}
