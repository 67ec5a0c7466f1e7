// Package score ranks clauses by how central they are to their document.
package score

import (
	"fmt"
	"sort"

	"github.com/ppiankov/clauserisk/internal/embed"
	"github.com/ppiankov/clauserisk/internal/model"
)

// Ranker scores clause importance as semantic centrality: the row sum of the
// document's cosine-similarity matrix (self-similarity included).
type Ranker struct {
	topN int
}

// NewRanker creates a ranker returning at most topN clauses
func NewRanker(topN int) *Ranker {
	return &Ranker{topN: topN}
}

// Scores returns one importance score per embedding, in input order
func (r *Ranker) Scores(embeddings [][]float32) ([]float64, error) {
	units, err := embed.NormalizeAll(embeddings)
	if err != nil {
		return nil, fmt.Errorf("normalize embeddings: %w", err)
	}

	matrix := embed.SimilarityMatrix(units)
	scores := make([]float64, len(matrix))
	for i, row := range matrix {
		var sum float64
		for _, s := range row {
			sum += s
		}
		scores[i] = sum
	}

	return scores, nil
}

// Rank returns the topN clauses by importance, descending.
// Equal scores keep document order.
func (r *Ranker) Rank(clauses []model.Clause, embeddings [][]float32) ([]model.RankedClause, error) {
	if len(clauses) != len(embeddings) {
		return nil, fmt.Errorf("have %d clauses but %d embeddings", len(clauses), len(embeddings))
	}

	scores, err := r.Scores(embeddings)
	if err != nil {
		return nil, err
	}

	return r.Top(clauses, scores), nil
}

// Top selects the topN clauses from precomputed scores
func (r *Ranker) Top(clauses []model.Clause, scores []float64) []model.RankedClause {
	ranked := make([]model.RankedClause, len(clauses))
	for i, c := range clauses {
		ranked[i] = model.RankedClause{Clause: c, Score: scores[i]}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	n := r.topN
	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
