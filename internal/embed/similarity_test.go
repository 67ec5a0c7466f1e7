package embed

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"first zero", []float32{0, 0, 0}, []float32{1, 2, 3}, 0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"empty", []float32{}, []float32{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeAll_DimensionMismatch(t *testing.T) {
	if _, err := NormalizeAll([][]float32{{1, 2}, {1, 2, 3}}); err == nil {
		t.Error("expected error for ragged vectors")
	}
	if _, err := NormalizeAll([][]float32{{}}); err == nil {
		t.Error("expected error for empty vector")
	}
}

func TestSimilarityMatrix_SymmetricWithUnitDiagonal(t *testing.T) {
	units, err := NormalizeAll([][]float32{{1, 0, 0}, {1, 1, 0}, {0, 0, 5}})
	if err != nil {
		t.Fatalf("NormalizeAll: %v", err)
	}

	m := SimilarityMatrix(units)
	for i := range m {
		if math.Abs(m[i][i]-1) > 1e-9 {
			t.Errorf("diagonal [%d] = %v, want 1", i, m[i][i])
		}
		for j := range m {
			if m[i][j] != m[j][i] {
				t.Errorf("matrix not symmetric at [%d][%d]", i, j)
			}
		}
	}
	if math.Abs(m[0][1]-1/math.Sqrt2) > 1e-9 {
		t.Errorf("m[0][1] = %v, want %v", m[0][1], 1/math.Sqrt2)
	}
}

func TestSimilarityMatrix_DuplicateRowsIdentical(t *testing.T) {
	units, err := NormalizeAll([][]float32{{0.3, 0.7, 0.1}, {0.9, 0.2, 0.4}, {0.3, 0.7, 0.1}})
	if err != nil {
		t.Fatalf("NormalizeAll: %v", err)
	}

	m := SimilarityMatrix(units)
	var sum0, sum2 float64
	for j := range m {
		sum0 += m[0][j]
		sum2 += m[2][j]
	}
	if sum0 != sum2 {
		t.Errorf("duplicate rows differ: %v vs %v", sum0, sum2)
	}
}
