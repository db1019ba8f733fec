// Package summarize implements extractive text summarization. A
// document is split into sentences, a ranking strategy scores them and
// the top ones are returned in their original order.
package summarize

import "strings"

// Method is the closed set of ranking strategies
type Method int

const (
	MethodTextRank Method = iota
	MethodLSA
	MethodLexRank
)

func (m Method) String() string {
	switch m {
	case MethodTextRank:
		return "textrank"
	case MethodLSA:
		return "lsa"
	case MethodLexRank:
		return "lexrank"
	default:
		return "unknown"
	}
}

// Strategy ranks the sentences of a document and returns the indices
// of the n best ones, in any order
type Strategy interface {
	Rank(doc *document, n int) []int
}

var strategies = map[Method]Strategy{
	MethodTextRank: textRank{},
	MethodLSA:      lsaRank{},
	MethodLexRank:  lexRank{},
}

// MethodFor picks the ranking strategy from the input word count.
// Short texts work best with plain graph centrality, mid-sized ones
// with latent semantic analysis and long ones with the thresholded
// centrality variant.
func MethodFor(wordCount int) Method {
	switch {
	case wordCount < 80:
		return MethodTextRank
	case wordCount < 300:
		return MethodLSA
	default:
		return MethodLexRank
	}
}

// budget returns how many sentences the summary gets for an input of
// total sentences
func budget(total int) int {
	switch {
	case total <= 5:
		return 2
	case total <= 10:
		return 3
	case total <= 20:
		return 4
	default:
		return max(3, total/4)
	}
}

// Document summarizes text with the automatically selected strategy.
// Inputs of up to three sentences are returned unchanged (trimmed), as
// is the input whenever the strategy comes back empty.
func Document(text string) string {
	return WithMethod(text, MethodFor(len(strings.Fields(text))))
}

// WithMethod summarizes text using a specific strategy, keeping the
// sentence budget and fallback rules of Document
func WithMethod(text string, m Method) string {
	trimmed := strings.TrimSpace(text)

	doc := parse(trimmed)
	if len(doc.sentences) <= 3 {
		return trimmed
	}

	strategy, ok := strategies[m]
	if !ok {
		strategy = strategies[MethodLSA]
	}

	n := budget(len(doc.sentences))

	picked := strategy.Rank(doc, n)
	summary := doc.join(picked)
	if strings.TrimSpace(summary) == "" {
		return trimmed
	}

	return summary
}
