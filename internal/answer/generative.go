package answer

import (
	"fmt"
	"strings"

	"github.com/hyperjump/horitsu/internal/models"
)

// greetingPhrases short-circuit context construction: a conversational
// opener gains nothing from legal passages stuffed into the prompt.
var greetingPhrases = []string{"hi", "hello", "hey", "good morning", "good evening", "how are you"}

const emptyContextPlaceholder = "No relevant legal documents found."

// isGreeting reports whether the query is a short conversational greeting:
// at most 3 whitespace-separated tokens and containing a known phrase.
func isGreeting(query string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(query))
	if len(strings.Fields(trimmed)) > 3 {
		return false
	}
	for _, p := range greetingPhrases {
		if strings.Contains(trimmed, p) {
			return true
		}
	}
	return false
}

// buildContext concatenates the retrieved passages into a numbered context
// block, one document header per match, joined by blank lines.
func buildContext(matches []models.Match) string {
	if len(matches) == 0 {
		return emptyContextPlaceholder
	}
	blocks := make([]string, len(matches))
	for i, m := range matches {
		blocks[i] = fmt.Sprintf("Document %d (%s):\n%s", i+1, m.SourceFile, m.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// buildUserPrompt assembles the user message for the chat call. Greetings
// get the bare question; everything else gets the document context first.
func buildUserPrompt(query string, matches []models.Match) string {
	if isGreeting(query) {
		return fmt.Sprintf("User Question: %s", query)
	}
	return fmt.Sprintf("Legal Documents:\n%s\n\nUser Question: %s", buildContext(matches), query)
}

// positionalSources lists one source per match in retrieval order. Unlike
// the extractive strategy, duplicates are preserved so entries line up
// with the numbered documents in the prompt.
func positionalSources(matches []models.Match) []string {
	sources := make([]string, len(matches))
	for i, m := range matches {
		sources[i] = m.SourceFile
	}
	return sources
}
