package chunker

import "strings"

// sentence boundary punctuation: a whitespace run that directly follows one
// of these characters closes a sentence unit. A bare newline also counts as
// a boundary when followed by more whitespace.
func isBoundary(b byte) bool {
	switch b {
	case '.', '?', '!', ';', ':', '\n':
		return true
	}
	return false
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// SplitSentences splits text into sentence-like units at whitespace runs
// that follow sentence-ending punctuation. Units are trimmed and empty
// units dropped. Carriage returns are treated as plain spaces first.
func SplitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var units []string
	appendUnit := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" {
			units = append(units, s)
		}
	}

	start := 0
	i := 0
	for i < len(text) {
		if isSpace(text[i]) && i > 0 && isBoundary(text[i-1]) {
			appendUnit(text[start:i])
			for i < len(text) && isSpace(text[i]) {
				i++
			}
			start = i
			continue
		}
		i++
	}
	if start < len(text) {
		appendUnit(text[start:])
	}
	return units
}
