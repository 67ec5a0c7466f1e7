// Package anomaly implements an isolation forest: points that need fewer
// random axis-aligned splits to isolate are more anomalous.
package anomaly

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

// eulerGamma is the Euler–Mascheroni constant used by the harmonic number estimate
const eulerGamma = 0.5772156649015329

// Options configures forest construction
type Options struct {
	Trees         int     // Number of isolation trees
	MaxSamples    int     // Subsample size per tree (capped at the number of points)
	Contamination float64 // Expected fraction of anomalies, (0, 0.5]
	Seed          int64   // RNG seed; identical seeds give identical forests
}

// DefaultOptions returns the standard forest settings
func DefaultOptions() Options {
	return Options{
		Trees:         100,
		MaxSamples:    256,
		Contamination: 0.3,
		Seed:          42,
	}
}

// Validate checks the options
func (o Options) Validate() error {
	if o.Trees < 1 {
		return fmt.Errorf("trees must be >= 1, got %d", o.Trees)
	}
	if o.MaxSamples < 2 {
		return fmt.Errorf("max samples must be >= 2, got %d", o.MaxSamples)
	}
	if o.Contamination <= 0 || o.Contamination > 0.5 {
		return fmt.Errorf("contamination must be in (0, 0.5], got %v", o.Contamination)
	}
	return nil
}

// ErrTooFewPoints is returned when fitting fewer than two points
var ErrTooFewPoints = errors.New("isolation forest needs at least 2 points")

// node is an internal split or, when feature < 0, a leaf
type node struct {
	feature     int
	split       float64
	left, right *node
	size        int // Training points that reached this leaf
}

// Forest is a fitted isolation forest
type Forest struct {
	trees      []*node
	sampleSize int
	threshold  float64
}

// Fit builds a forest over points and calibrates the decision threshold on them
func Fit(points [][]float64, opts Options) (*Forest, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	n := len(points)
	if n < 2 {
		return nil, ErrTooFewPoints
	}
	dims := len(points[0])
	if dims == 0 {
		return nil, fmt.Errorf("points have zero dimensions")
	}
	for i, p := range points {
		if len(p) != dims {
			return nil, fmt.Errorf("point %d has dimension %d, expected %d", i, len(p), dims)
		}
	}

	psi := opts.MaxSamples
	if psi > n {
		psi = n
	}
	heightLimit := int(math.Ceil(math.Log2(float64(psi))))

	seed := uint64(opts.Seed)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	f := &Forest{
		trees:      make([]*node, 0, opts.Trees),
		sampleSize: psi,
	}
	for t := 0; t < opts.Trees; t++ {
		sample := rng.Perm(n)[:psi]
		f.trees = append(f.trees, build(points, sample, 0, heightLimit, rng))
	}

	f.threshold = percentile(f.ScoreAll(points), 1-opts.Contamination)
	return f, nil
}

// build grows one isolation tree over the points referenced by idx
func build(points [][]float64, idx []int, depth, limit int, rng *rand.Rand) *node {
	if depth >= limit || len(idx) <= 1 {
		return &node{feature: -1, size: len(idx)}
	}

	dims := len(points[idx[0]])
	// Constant features cannot split; retry a bounded number of times
	for attempt := 0; attempt < dims; attempt++ {
		feature := rng.IntN(dims)

		lo, hi := points[idx[0]][feature], points[idx[0]][feature]
		for _, i := range idx[1:] {
			v := points[i][feature]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if lo == hi {
			continue
		}

		split := lo + rng.Float64()*(hi-lo)
		var left, right []int
		for _, i := range idx {
			if points[i][feature] <= split {
				left = append(left, i)
			} else {
				right = append(right, i)
			}
		}
		if len(left) == 0 || len(right) == 0 {
			continue
		}

		return &node{
			feature: feature,
			split:   split,
			left:    build(points, left, depth+1, limit, rng),
			right:   build(points, right, depth+1, limit, rng),
		}
	}

	return &node{feature: -1, size: len(idx)}
}

// pathLength is the depth at which x is isolated, corrected for leaf size
func pathLength(x []float64, n *node, depth int) float64 {
	for n.feature >= 0 {
		if x[n.feature] <= n.split {
			n = n.left
		} else {
			n = n.right
		}
		depth++
	}
	return float64(depth) + averagePathLength(n.size)
}

// averagePathLength is c(n), the mean path length of an unsuccessful BST search
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	fn := float64(n)
	return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
}

// Score returns the anomaly score of x in (0, 1]; higher is more anomalous
func (f *Forest) Score(x []float64) float64 {
	var total float64
	for _, t := range f.trees {
		total += pathLength(x, t, 0)
	}
	mean := total / float64(len(f.trees))
	return math.Pow(2, -mean/averagePathLength(f.sampleSize))
}

// ScoreAll scores every point
func (f *Forest) ScoreAll(points [][]float64) []float64 {
	scores := make([]float64, len(points))
	for i, p := range points {
		scores[i] = f.Score(p)
	}
	return scores
}

// Threshold is the calibrated score above which a point is anomalous
func (f *Forest) Threshold() float64 {
	return f.threshold
}

// IsAnomaly reports whether a score lies strictly above the threshold
func (f *Forest) IsAnomaly(score float64) bool {
	return score > f.threshold
}

// percentile returns the q-quantile (0..1) of values using linear interpolation
func percentile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
