package summarize

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// lsaRank scores sentences by latent semantic analysis: a singular
// value decomposition of the term-sentence matrix projects every
// sentence into topic space, and sentences with the largest
// singular-value-weighted projections win (Steinberger & Jezek
// sentence length strategy)
type lsaRank struct{}

func (lsaRank) Rank(doc *document, n int) []int {
	sents := doc.sentences

	terms := make(map[string]int)
	for _, s := range sents {
		for _, w := range s.words {
			if _, ok := terms[w]; !ok {
				terms[w] = len(terms)
			}
		}
	}

	if len(terms) == 0 {
		return nil
	}

	a := mat.NewDense(len(terms), len(sents), nil)
	for j, s := range sents {
		for _, w := range s.words {
			i := terms[w]
			a.Set(i, j, a.At(i, j)+1)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil
	}

	var v mat.Dense
	svd.VTo(&v)
	sigma := svd.Values(nil)

	// Keep roughly the top third of the topics, at least one
	topics := max(1, len(sigma)/3)
	if topics > v.RawMatrix().Cols {
		topics = v.RawMatrix().Cols
	}

	scores := make([]float64, len(sents))
	for i := range sents {
		var sum float64
		for k := 0; k < topics; k++ {
			p := sigma[k] * v.At(i, k)
			sum += p * p
		}
		scores[i] = math.Sqrt(sum)
	}

	return topN(scores, n)
}
