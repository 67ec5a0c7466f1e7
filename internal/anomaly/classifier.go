package anomaly

import (
	"fmt"

	"github.com/ppiankov/clauserisk/internal/model"
)

// MinSamples is the smallest population a forest can be fitted on
const MinSamples = 2

// Result holds per-clause labels and scores for one document
type Result struct {
	Labels    []model.RiskLabel
	Scores    []float64 // Isolation scores; zero when the classifier short-circuited
	Threshold float64
}

// Classifier labels clause embeddings as NORMAL or ANOMALOUS relative to their own document.
// Each Classify call fits a fresh forest; nothing is shared between calls.
type Classifier struct {
	opts Options
}

// NewClassifier creates a classifier with the given forest options
func NewClassifier(opts Options) (*Classifier, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid classifier options: %w", err)
	}
	return &Classifier{opts: opts}, nil
}

// Classify fits on embeddings and predicts on the same set
func (c *Classifier) Classify(embeddings [][]float32) (*Result, error) {
	n := len(embeddings)
	result := &Result{
		Labels: make([]model.RiskLabel, n),
		Scores: make([]float64, n),
	}
	for i := range result.Labels {
		result.Labels[i] = model.RiskNormal
	}

	if n < MinSamples {
		return result, nil
	}

	points := make([][]float64, n)
	for i, e := range embeddings {
		p := make([]float64, len(e))
		for j, v := range e {
			p[j] = float64(v)
		}
		points[i] = p
	}

	forest, err := Fit(points, c.opts)
	if err != nil {
		return nil, fmt.Errorf("fit isolation forest: %w", err)
	}

	result.Threshold = forest.Threshold()
	for i, p := range points {
		s := forest.Score(p)
		result.Scores[i] = s
		if forest.IsAnomaly(s) {
			result.Labels[i] = model.RiskAnomalous
		}
	}

	return result, nil
}
