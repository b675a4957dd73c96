// Package normalize repairs extracted page text before chunking: repeated
// header/footer stripping, de-hyphenation, and whitespace collapsing.
package normalize

import (
	"regexp"
	"strings"
)

const (
	// DefaultLookLines is how many leading/trailing lines per page are
	// considered header/footer candidates.
	DefaultLookLines = 2
	// DefaultRepeatThreshold is the fraction of pages a candidate must
	// appear on to be treated as a running header/footer.
	DefaultRepeatThreshold = 0.8
)

var (
	hyphenBreakRe   = regexp.MustCompile(`(\w+)-\n(\w+)`)
	manyNewlinesRe  = regexp.MustCompile(`\n{3,}`)
	horizontalWSRe  = regexp.MustCompile(`[ \t]{2,}`)
)

// Normalizer repairs extracted page text. The header/footer candidate set is
// recomputed per document; a Normalizer carries only thresholds and is safe
// for concurrent use.
type Normalizer struct {
	lookLines       int
	repeatThreshold float64
}

// NewNormalizer creates a Normalizer. Non-positive lookLines or a threshold
// outside (0, 1] fall back to the defaults.
func NewNormalizer(lookLines int, repeatThreshold float64) *Normalizer {
	if lookLines <= 0 {
		lookLines = DefaultLookLines
	}
	if repeatThreshold <= 0 || repeatThreshold > 1 {
		repeatThreshold = DefaultRepeatThreshold
	}
	return &Normalizer{
		lookLines:       lookLines,
		repeatThreshold: repeatThreshold,
	}
}

// NormalizePages strips repeated headers/footers detected across the
// document's pages and repairs each page's text. The result has the same
// page count and order as the input.
func (n *Normalizer) NormalizePages(pages []string) []string {
	heads, foots := n.repeatedCandidates(pages)
	out := make([]string, len(pages))
	for i, p := range pages {
		t := removeCandidates(p, heads)
		t = removeCandidates(t, foots)
		out[i] = RepairText(t)
	}
	return out
}

// repeatedCandidates returns header and footer strings that appear on at
// least repeatThreshold of the pages, looking at the first and last
// lookLines lines of each page.
func (n *Normalizer) repeatedCandidates(pages []string) (heads, foots []string) {
	headCounts := make(map[string]int)
	footCounts := make(map[string]int)
	headOrder := make([]string, 0)
	footOrder := make([]string, 0)

	for _, p := range pages {
		lines := strings.Split(p, "\n")
		head := strings.TrimSpace(strings.Join(firstN(lines, n.lookLines), "\n"))
		foot := strings.TrimSpace(strings.Join(lastN(lines, n.lookLines), "\n"))
		if head != "" {
			if headCounts[head] == 0 {
				headOrder = append(headOrder, head)
			}
			headCounts[head]++
		}
		if foot != "" {
			if footCounts[foot] == 0 {
				footOrder = append(footOrder, foot)
			}
			footCounts[foot]++
		}
	}

	total := len(pages)
	if total < 1 {
		total = 1
	}
	for _, h := range headOrder {
		if float64(headCounts[h])/float64(total) >= n.repeatThreshold {
			heads = append(heads, h)
		}
	}
	for _, f := range footOrder {
		if float64(footCounts[f])/float64(total) >= n.repeatThreshold {
			foots = append(foots, f)
		}
	}
	return heads, foots
}

func firstN(lines []string, n int) []string {
	if n > len(lines) {
		n = len(lines)
	}
	return lines[:n]
}

func lastN(lines []string, n int) []string {
	if n > len(lines) {
		n = len(lines)
	}
	return lines[len(lines)-n:]
}

func removeCandidates(text string, candidates []string) string {
	for _, c := range candidates {
		if c != "" && strings.Contains(text, c) {
			text = strings.ReplaceAll(text, c, "")
		}
	}
	return text
}

// RepairText fixes hyphenated line-break word splits, collapses single
// newlines into spaces, caps newline runs at two, and collapses horizontal
// whitespace runs to a single space.
func RepairText(text string) string {
	text = hyphenBreakRe.ReplaceAllString(text, "$1$2")
	text = collapseSingleNewlines(text)
	text = manyNewlinesRe.ReplaceAllString(text, "\n\n")
	text = horizontalWSRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// collapseSingleNewlines replaces each newline that is not adjacent to
// another newline with a space, preserving blank-line paragraph breaks.
func collapseSingleNewlines(text string) string {
	b := []byte(text)
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] == '\n' {
			prevNL := i > 0 && b[i-1] == '\n'
			nextNL := i+1 < len(b) && b[i+1] == '\n'
			if !prevNL && !nextNL {
				out = append(out, ' ')
				continue
			}
		}
		out = append(out, b[i])
	}
	return string(out)
}
