package summarize

import (
	"sort"
	"strings"
	"unicode"
)

type sentence struct {
	raw   string
	words []string
}

type document struct {
	sentences []sentence
}

// Common English words that carry no topical signal and would
// otherwise dominate the similarity scores
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true,
	"at": true, "be": true, "but": true, "by": true, "for": true,
	"from": true, "had": true, "has": true, "have": true, "he": true,
	"her": true, "his": true, "if": true, "in": true, "is": true,
	"it": true, "its": true, "no": true, "not": true, "of": true,
	"on": true, "or": true, "she": true, "that": true, "the": true,
	"their": true, "then": true, "there": true, "these": true,
	"they": true, "this": true, "to": true, "was": true, "we": true,
	"were": true, "which": true, "will": true, "with": true, "you": true,
}

// Abbreviations that end with a period but don't end a sentence
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"sr": true, "jr": true, "st": true, "vs": true, "etc": true,
	"e.g": true, "i.e": true,
}

func parse(text string) *document {
	doc := &document{}

	for _, raw := range splitSentences(text) {
		doc.sentences = append(doc.sentences, sentence{
			raw:   raw,
			words: tokenize(raw),
		})
	}

	return doc
}

// splitSentences performs rough rule-based segmentation: a sentence
// ends at '.', '!' or '?' followed by whitespace, unless the period
// belongs to a known abbreviation or a decimal number
func splitSentences(text string) []string {
	var out []string
	var b strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		b.WriteRune(r)

		if r != '.' && r != '!' && r != '?' {
			continue
		}

		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}

		if r == '.' {
			if endsWithAbbreviation(b.String()) {
				continue
			}

			if i >= 1 && unicode.IsDigit(runes[i-1]) && i+1 < len(runes) && unicode.IsDigit(runes[i+1]) {
				continue
			}
		}

		s := strings.TrimSpace(b.String())
		if s != "" {
			out = append(out, s)
		}
		b.Reset()
	}

	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}

	return out
}

func endsWithAbbreviation(s string) bool {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".")

	idx := strings.LastIndexFunc(s, unicode.IsSpace)
	last := strings.ToLower(s[idx+1:])

	return abbreviations[last]
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	words := make([]string, 0, len(fields))
	for _, w := range fields {
		if !stopwords[w] {
			words = append(words, w)
		}
	}

	return words
}

// join assembles the chosen sentences in document order
func (d *document) join(indices []int) string {
	sort.Ints(indices)

	parts := make([]string, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(d.sentences) {
			parts = append(parts, d.sentences[i].raw)
		}
	}

	return strings.Join(parts, " ")
}

// topN returns the indices of the n highest scores
func topN(scores []float64, n int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	if n > len(idx) {
		n = len(idx)
	}

	return idx[:n]
}
