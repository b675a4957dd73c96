package answer

import (
	"fmt"
	"strings"

	"github.com/hyperjump/horitsu/internal/models"
	"github.com/hyperjump/horitsu/pkg/utils"
)

const (
	// localMaxPassages caps how many passages the extractive answer quotes.
	localMaxPassages = 3
	// localPassageLimit caps each quoted passage, in bytes.
	localPassageLimit = 400
)

const noMatchesMessage = "I could not find any relevant legal provisions for this question. Try rephrasing it, or ingest the documents that cover this topic."

// buildLocalAnswer assembles an extractive answer from the top retrieved
// passages, quoting each with its source and raw similarity score. No
// language model is involved.
func buildLocalAnswer(matches []models.Match) string {
	if len(matches) == 0 {
		return noMatchesMessage
	}

	shown := matches
	if len(shown) > localMaxPassages {
		shown = shown[:localMaxPassages]
	}

	var b strings.Builder
	b.WriteString("Based on the retrieved legal documents:\n")
	for i, m := range shown {
		b.WriteString(fmt.Sprintf("\n[%d] From %s (Relevance: %.2f):\n%s\n",
			i+1, m.SourceFile, m.Score, utils.Truncate(strings.TrimSpace(m.Text), localPassageLimit)))
	}
	if len(matches) > len(shown) {
		b.WriteString(fmt.Sprintf("\nNote: %d relevant passages were found in total; the top %d are shown.", len(matches), len(shown)))
	}
	return b.String()
}

// dedupeSources returns source files in first-appearance order, without
// duplicates.
func dedupeSources(matches []models.Match) []string {
	seen := make(map[string]bool, len(matches))
	sources := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.SourceFile == "" || seen[m.SourceFile] {
			continue
		}
		seen[m.SourceFile] = true
		sources = append(sources, m.SourceFile)
	}
	return sources
}
