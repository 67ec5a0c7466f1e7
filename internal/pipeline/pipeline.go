// Package pipeline orchestrates one document analysis: segmentation,
// embedding, importance ranking, risk classification and remediation matching.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ppiankov/clauserisk/internal/anomaly"
	"github.com/ppiankov/clauserisk/internal/cache"
	"github.com/ppiankov/clauserisk/internal/embed"
	"github.com/ppiankov/clauserisk/internal/extract"
	"github.com/ppiankov/clauserisk/internal/metrics"
	"github.com/ppiankov/clauserisk/internal/model"
	"github.com/ppiankov/clauserisk/internal/remedy"
	"github.com/ppiankov/clauserisk/internal/score"
)

// UserAgent identifies document fetches
const UserAgent = "clauserisk/0.1 (+https://github.com/ppiankov/clauserisk)"

const defaultFetchTimeout = 30 * time.Second

// Pipeline orchestrates the complete analysis process.
// It is safe for concurrent use; only the provider and the catalog cache are shared between runs.
type Pipeline struct {
	provider  embed.Provider
	label     string
	catalog   model.Catalog
	segmenter *extract.ClauseExtractor
	ranker    *score.Ranker
	forest    anomaly.Options
	loader    *Loader
	renderer  *Renderer
	cache     cache.Cache
	cacheTTL  time.Duration
	flight    singleflight.Group
	metrics   *metrics.Metrics
	logger    *zap.Logger
	config    *model.Config
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithLogger sets the structured logger (default: no-op)
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithMetrics records Prometheus metrics for every run
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithCache overrides the catalog embedding cache built from the config
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithLoader overrides the document loader
func WithLoader(l *Loader) Option {
	return func(p *Pipeline) { p.loader = l }
}

// New creates a pipeline around an injected embedding provider
func New(cfg *model.Config, provider embed.Provider, opts ...Option) (*Pipeline, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: no embedding provider", ErrModelUnavailable)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	forest := anomaly.Options{
		Trees:         cfg.Analysis.Trees,
		MaxSamples:    cfg.Analysis.MaxSamples,
		Contamination: cfg.Analysis.Contamination,
		Seed:          cfg.Analysis.Seed,
	}
	if err := forest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid classifier options: %w", err)
	}

	p := &Pipeline{
		provider:  provider,
		label:     embed.Label(provider),
		catalog:   cfg.Catalog,
		segmenter: extract.NewClauseExtractor(),
		ranker:    score.NewRanker(cfg.Analysis.TopN),
		forest:    forest,
		renderer:  NewRenderer(cfg.Output.IncludeFooter, cfg.Output.Color),
		cacheTTL:  cfg.Cache.DiskTTL,
		logger:    zap.NewNop(),
		config:    cfg,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.cache == nil {
		p.cache = cache.New(cfg.Cache)
	}
	if p.loader == nil {
		p.loader = NewLoader(cfg.Analysis.MaxDocBytes, NewFetcher(defaultFetchTimeout, UserAgent, cfg.Analysis.MaxDocBytes))
	}

	return p, nil
}

// Provider returns the injected embedding provider
func (p *Pipeline) Provider() embed.Provider {
	return p.provider
}

// Ready reports ErrModelUnavailable when the provider cannot be reached
func (p *Pipeline) Ready(ctx context.Context) error {
	if !p.provider.IsAvailable(ctx) {
		return fmt.Errorf("%w: %s is not reachable or the model is not installed", ErrModelUnavailable, p.label)
	}
	return nil
}

// Analyze runs the full analysis on raw document text
func (p *Pipeline) Analyze(ctx context.Context, text string) (*model.AnalysisResult, error) {
	return p.AnalyzeDocument(ctx, &Document{Text: text})
}

// AnalyzeFile loads a document (path, URL or "-") and analyzes it
func (p *Pipeline) AnalyzeFile(ctx context.Context, source string) (*model.AnalysisResult, error) {
	doc, err := p.loader.Load(ctx, source)
	if err != nil {
		p.metrics.ObserveAnalysis(metrics.OutcomeInputError, 0, 0)
		return nil, fmt.Errorf("load %s: %w", source, err)
	}
	return p.AnalyzeDocument(ctx, doc)
}

// AnalyzeDocument runs the full analysis on a decoded document
func (p *Pipeline) AnalyzeDocument(ctx context.Context, doc *Document) (*model.AnalysisResult, error) {
	start := time.Now()

	result, err := p.analyze(ctx, doc)
	if err != nil {
		p.metrics.ObserveAnalysis(outcomeOf(err), 0, 0)
		p.logger.Warn("analysis failed",
			zap.String("source", doc.Source),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	outcome := metrics.OutcomeOK
	if result.IsEmpty() {
		outcome = metrics.OutcomeEmpty
	}
	p.metrics.ObserveAnalysis(outcome, result.ClauseCount, result.AnomalousCount())
	p.logger.Info("analysis complete",
		zap.String("run_id", result.ID),
		zap.String("source", doc.Source),
		zap.Int("clauses", result.ClauseCount),
		zap.Int("anomalous", result.AnomalousCount()),
		zap.Duration("elapsed", time.Since(start)))

	return result, nil
}

func (p *Pipeline) analyze(ctx context.Context, doc *Document) (*model.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 1. Validate input
	if !utf8.ValidString(doc.Text) {
		return nil, fmt.Errorf("%w: document is not valid UTF-8", ErrInput)
	}

	// 2. Segment
	clauses := p.segmenter.Extract(doc.Text)

	result := &model.AnalysisResult{
		ID:          uuid.NewString(),
		Source:      doc.Source,
		AnalyzedAt:  time.Now().UTC(),
		Preview:     model.PreviewText(strings.TrimSpace(doc.Text), p.config.Analysis.PreviewChars),
		ClauseCount: len(clauses),
		TopClauses:  []model.RankedClause{},
		Clauses:     []model.ClauseRisk{},
		Provider: model.Provenance{
			Embedding:     p.label,
			TopN:          p.config.Analysis.TopN,
			Contamination: p.forest.Contamination,
			Trees:         p.forest.Trees,
			Seed:          p.forest.Seed,
		},
	}

	// Nothing to embed or classify
	if len(clauses) == 0 {
		p.logger.Debug("document has no clauses", zap.String("run_id", result.ID))
		return result, nil
	}

	// 3. Embed clauses in one batched call
	vectors, err := p.embed(ctx, model.ClauseTexts(clauses))
	if err != nil {
		return nil, fmt.Errorf("embed clauses: %w", err)
	}

	// 4. Catalog embeddings, memoized across runs
	catalogVectors, err := p.catalogVectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("embed catalog: %w", err)
	}
	matcher, err := remedy.NewMatcher(p.catalog, catalogVectors)
	if err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}

	// 5. Rank
	importance, err := p.ranker.Scores(vectors)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	result.TopClauses = p.ranker.Top(clauses, importance)

	// 6. Classify with a forest that lives only for this run
	classifier, err := anomaly.NewClassifier(p.forest)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	assessment, err := classifier.Classify(vectors)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	// 7. Match anomalous clauses and assemble
	result.Clauses = make([]model.ClauseRisk, len(clauses))
	for i, c := range clauses {
		risk := model.ClauseRisk{
			Clause:       c,
			Importance:   importance[i],
			AnomalyScore: assessment.Scores[i],
			Label:        assessment.Labels[i],
		}
		if risk.Label.IsHighRisk() {
			m, err := matcher.Match(vectors[i])
			if err != nil {
				return nil, fmt.Errorf("match clause %d: %w", c.Index, err)
			}
			risk.Match = &m
		}
		result.Clauses[i] = risk
	}

	p.logger.Debug("clauses classified",
		zap.String("run_id", result.ID),
		zap.Float64("threshold", assessment.Threshold),
		zap.Int("top", len(result.TopClauses)),
		zap.Int("catalog_entries", matcher.Size()))

	return result, nil
}

// embed calls the provider and checks its output is one vector per text,
// all of the same non-zero dimension
func (p *Pipeline) embed(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vectors, err := p.provider.Embed(ctx, texts)
	p.metrics.ObserveEmbedding(p.label, time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrModelUnavailable, p.label, err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: %s returned %d vectors for %d texts", ErrModelUnavailable, p.label, len(vectors), len(texts))
	}
	for i, v := range vectors {
		if len(v) == 0 || len(v) != len(vectors[0]) {
			return nil, fmt.Errorf("%w: %s returned a malformed vector at %d", ErrModelUnavailable, p.label, i)
		}
	}

	return vectors, nil
}

// catalogVectors returns the catalog's remediation embeddings. Concurrent
// misses for the same catalog and model share a single provider call. The
// shared call is detached from any one caller: a cancelled caller stops
// waiting, while the others still get the vectors.
func (p *Pipeline) catalogVectors(ctx context.Context) ([][]float32, error) {
	key := cache.CatalogKey(p.label, p.catalog.Fingerprint())

	if vectors, ok := cache.GetVectors(p.cache, key, p.label); ok && len(vectors) == len(p.catalog) {
		p.metrics.CatalogLookup(metrics.CacheHit)
		return vectors, nil
	}

	ch := p.flight.DoChan(key, func() (interface{}, error) {
		if vectors, ok := cache.GetVectors(p.cache, key, p.label); ok && len(vectors) == len(p.catalog) {
			return vectors, nil
		}
		p.metrics.CatalogLookup(metrics.CacheMiss)

		flightCtx, cancel := p.detached(ctx)
		defer cancel()

		vectors, err := p.embed(flightCtx, p.catalog.Remediations())
		if err != nil {
			return nil, err
		}
		if err := cache.SetVectors(p.cache, key, p.label, vectors, p.cacheTTL); err != nil {
			p.logger.Warn("catalog cache write failed", zap.Error(err))
		}
		return vectors, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([][]float32), nil
	}
}

// detached keeps ctx's values but not its cancellation, bounded by the
// embedding timeout instead
func (p *Pipeline) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if timeout := p.config.Embedding.Timeout; timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

// RenderReport writes the JSON and Markdown reports and prints the terminal summary
func (p *Pipeline) RenderReport(result *model.AnalysisResult, jsonPath, mdPath string, verbose bool) error {
	return p.renderer.RenderReport(result, jsonPath, mdPath, verbose)
}

// outcomeOf maps an analysis error to a metrics outcome label
func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrInput):
		return metrics.OutcomeInputError
	case errors.Is(err, ErrModelUnavailable):
		return metrics.OutcomeModelUnavailable
	}
	return metrics.OutcomeError
}
