package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/clauserisk/internal/model"
)

func toFloat32(points [][]float64) [][]float32 {
	out := make([][]float32, len(points))
	for i, p := range points {
		v := make([]float32, len(p))
		for j, x := range p {
			v[j] = float32(x)
		}
		out[i] = v
	}
	return out
}

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier(DefaultOptions())
	require.NoError(t, err)
	return c
}

func TestNewClassifierValidatesOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"zero contamination", func(o *Options) { o.Contamination = 0 }},
		{"contamination above half", func(o *Options) { o.Contamination = 0.51 }},
		{"no trees", func(o *Options) { o.Trees = 0 }},
		{"tiny subsample", func(o *Options) { o.MaxSamples = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			_, err := NewClassifier(opts)
			assert.Error(t, err)
		})
	}

	opts := DefaultOptions()
	opts.Contamination = 0.5
	_, err := NewClassifier(opts)
	assert.NoError(t, err)
}

func TestClassifyEmpty(t *testing.T) {
	res, err := newTestClassifier(t).Classify(nil)
	require.NoError(t, err)
	assert.Empty(t, res.Labels)
	assert.Empty(t, res.Scores)
}

func TestClassifySinglePointIsNormal(t *testing.T) {
	res, err := newTestClassifier(t).Classify([][]float32{{0.3, 0.4}})
	require.NoError(t, err)
	assert.Equal(t, []model.RiskLabel{model.RiskNormal}, res.Labels)
	assert.Equal(t, []float64{0}, res.Scores)
}

func TestClassifyFlagsOutlier(t *testing.T) {
	points := toFloat32(clusterWithOutlier())
	res, err := newTestClassifier(t).Classify(points)
	require.NoError(t, err)
	require.Len(t, res.Labels, len(points))

	assert.Equal(t, model.RiskAnomalous, res.Labels[len(points)-1])

	// Strictly-above threshold at the 70th percentile of 21 scores leaves at most 6
	flagged := 0
	for _, l := range res.Labels {
		if l.IsHighRisk() {
			flagged++
		}
	}
	assert.GreaterOrEqual(t, flagged, 1)
	assert.LessOrEqual(t, flagged, 6)
}

func TestClassifyIsDeterministic(t *testing.T) {
	points := toFloat32(clusterWithOutlier())
	c := newTestClassifier(t)

	first, err := c.Classify(points)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := c.Classify(points)
		require.NoError(t, err)
		assert.Equal(t, first.Labels, again.Labels)
		assert.Equal(t, first.Scores, again.Scores)
	}
}

func TestClassifyDuplicatesGetIdenticalLabels(t *testing.T) {
	points := toFloat32(clusterWithOutlier())
	points = append(points, points[3], points[len(points)-1])

	res, err := newTestClassifier(t).Classify(points)
	require.NoError(t, err)

	n := len(points)
	assert.Equal(t, res.Labels[3], res.Labels[n-2])
	assert.Equal(t, res.Scores[3], res.Scores[n-2])
	assert.Equal(t, res.Labels[20], res.Labels[n-1])
	assert.Equal(t, res.Scores[20], res.Scores[n-1])
}

func TestClassifyAllIdenticalIsNormal(t *testing.T) {
	points := [][]float32{{1, 2, 3}, {1, 2, 3}, {1, 2, 3}}
	res, err := newTestClassifier(t).Classify(points)
	require.NoError(t, err)
	for _, l := range res.Labels {
		assert.Equal(t, model.RiskNormal, l)
	}
}

func TestClassifyRaggedInput(t *testing.T) {
	_, err := newTestClassifier(t).Classify([][]float32{{1, 2}, {1, 2, 3}})
	assert.Error(t, err)
}
