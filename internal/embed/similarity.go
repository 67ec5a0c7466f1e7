package embed

import (
	"fmt"
	"math"
)

// CosineSimilarity computes similarity between two embeddings.
// Returns 1.0 for identical directions, 0.0 for orthogonal vectors.
// Returns 0.0 if vectors have different lengths, are empty, or either is all zeros.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}
	return Dot(Normalize(a), Normalize(b))
}

// Normalize returns the unit-length float64 copy of v.
// A zero vector stays zero.
func Normalize(v []float32) []float64 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)

	out := make([]float64, len(v))
	if norm == 0 {
		return out
	}
	for i, x := range v {
		out[i] = float64(x) / norm
	}
	return out
}

// NormalizeAll normalizes a set of vectors that must share one dimensionality
func NormalizeAll(vectors [][]float32) ([][]float64, error) {
	out := make([][]float64, len(vectors))
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("vector %d is empty", i)
		}
		if len(v) != len(vectors[0]) {
			return nil, fmt.Errorf("vector %d has dimension %d, expected %d", i, len(v), len(vectors[0]))
		}
		out[i] = Normalize(v)
	}
	return out, nil
}

// Dot returns the inner product of two equal-length vectors
func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// SimilarityMatrix returns the full pairwise cosine-similarity matrix of
// unit vectors. Entry [i][j] and [j][i] are computed by the same expression,
// so rows of identical vectors are bit-for-bit identical.
func SimilarityMatrix(units [][]float64) [][]float64 {
	n := len(units)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s := Dot(units[i], units[j])
			m[i][j] = s
			m[j][i] = s
		}
	}
	return m
}
