package summarize

import "math"

const (
	dampingFactor = 0.85
	maxIterations = 50
	convergence   = 1e-4
)

// powerIteration runs the damped PageRank recurrence over a weighted
// adjacency matrix until the scores settle
func powerIteration(weights [][]float64) []float64 {
	n := len(weights)

	// Column sums for normalization
	outSum := make([]float64, n)
	for i := range weights {
		for j := range weights[i] {
			outSum[i] += weights[i][j]
		}
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / float64(n)
	}

	next := make([]float64, n)
	for range maxIterations {
		var delta float64

		for i := range next {
			sum := 0.0
			for j := range weights {
				if j == i || outSum[j] == 0 {
					continue
				}
				sum += scores[j] * weights[j][i] / outSum[j]
			}

			next[i] = (1-dampingFactor)/float64(n) + dampingFactor*sum
			delta += math.Abs(next[i] - scores[i])
		}

		copy(scores, next)

		if delta < convergence {
			break
		}
	}

	return scores
}

// textRank scores sentences by graph centrality over a similarity
// graph where edge weight is word overlap normalized by sentence
// lengths
type textRank struct{}

func (textRank) Rank(doc *document, n int) []int {
	sents := doc.sentences
	weights := make([][]float64, len(sents))
	for i := range weights {
		weights[i] = make([]float64, len(sents))
	}

	for i := range sents {
		for j := i + 1; j < len(sents); j++ {
			w := overlapSimilarity(sents[i].words, sents[j].words)
			weights[i][j] = w
			weights[j][i] = w
		}
	}

	return topN(powerIteration(weights), n)
}

func overlapSimilarity(a, b []string) float64 {
	if len(a) <= 1 || len(b) <= 1 {
		return 0
	}

	set := make(map[string]bool, len(a))
	for _, w := range a {
		set[w] = true
	}

	var common float64
	seen := make(map[string]bool)
	for _, w := range b {
		if set[w] && !seen[w] {
			common++
			seen[w] = true
		}
	}

	return common / (math.Log(float64(len(a))) + math.Log(float64(len(b))))
}

// lexRank scores sentences by centrality over a TF-IDF cosine
// similarity graph, keeping only edges above a fixed threshold
type lexRank struct{}

const cosineThreshold = 0.1

func (lexRank) Rank(doc *document, n int) []int {
	sents := doc.sentences

	idf := inverseDocumentFrequency(doc)
	vectors := make([]map[string]float64, len(sents))
	for i, s := range sents {
		vectors[i] = tfidfVector(s.words, idf)
	}

	weights := make([][]float64, len(sents))
	for i := range weights {
		weights[i] = make([]float64, len(sents))
	}

	for i := range sents {
		for j := i + 1; j < len(sents); j++ {
			sim := cosine(vectors[i], vectors[j])
			if sim < cosineThreshold {
				continue
			}
			weights[i][j] = sim
			weights[j][i] = sim
		}
	}

	return topN(powerIteration(weights), n)
}

func inverseDocumentFrequency(doc *document) map[string]float64 {
	df := make(map[string]float64)
	for _, s := range doc.sentences {
		seen := make(map[string]bool)
		for _, w := range s.words {
			if !seen[w] {
				df[w]++
				seen[w] = true
			}
		}
	}

	total := float64(len(doc.sentences))
	idf := make(map[string]float64, len(df))
	for w, f := range df {
		idf[w] = math.Log(total / f)
	}

	return idf
}

func tfidfVector(words []string, idf map[string]float64) map[string]float64 {
	vec := make(map[string]float64)
	for _, w := range words {
		vec[w]++
	}
	for w := range vec {
		vec[w] *= idf[w]
	}

	return vec
}

func cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64

	for w, x := range a {
		normA += x * x
		if y, ok := b[w]; ok {
			dot += x * y
		}
	}
	for _, y := range b {
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
