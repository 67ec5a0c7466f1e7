// Package remedy maps flagged clauses to the closest known risk category.
package remedy

import (
	"fmt"

	"github.com/ppiankov/clauserisk/internal/embed"
	"github.com/ppiankov/clauserisk/internal/model"
)

// Matcher finds the catalog entry most similar to a clause embedding
type Matcher struct {
	catalog model.Catalog
	units   [][]float64
}

// NewMatcher pairs each catalog entry with its embedding.
// vectors must be aligned 1:1 with catalog and share one dimensionality.
func NewMatcher(catalog model.Catalog, vectors [][]float32) (*Matcher, error) {
	if len(catalog) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	if len(vectors) != len(catalog) {
		return nil, fmt.Errorf("have %d catalog entries but %d embeddings", len(catalog), len(vectors))
	}

	units, err := embed.NormalizeAll(vectors)
	if err != nil {
		return nil, fmt.Errorf("normalize catalog embeddings: %w", err)
	}

	return &Matcher{catalog: catalog, units: units}, nil
}

// Match returns the most similar catalog entry. On exact ties the earlier entry wins.
func (m *Matcher) Match(vector []float32) (model.RemediationMatch, error) {
	if len(vector) != len(m.units[0]) {
		return model.RemediationMatch{}, fmt.Errorf("embedding has dimension %d, catalog has %d", len(vector), len(m.units[0]))
	}

	unit := embed.Normalize(vector)
	best := 0
	bestScore := embed.Dot(unit, m.units[0])
	for i := 1; i < len(m.units); i++ {
		if s := embed.Dot(unit, m.units[i]); s > bestScore {
			best, bestScore = i, s
		}
	}

	entry := m.catalog[best]
	return model.RemediationMatch{
		Category:    entry.Category,
		Remediation: entry.Remediation,
		Similarity:  bestScore,
	}, nil
}

// Size returns the number of catalog entries
func (m *Matcher) Size() int {
	return len(m.catalog)
}
