package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/clauserisk/internal/model"
)

// Analyzer analyzes a single document file
type Analyzer interface {
	AnalyzeFile(ctx context.Context, path string) (*model.AnalysisResult, error)
}

// DocumentJob represents one document analysis
type DocumentJob struct {
	Index    int
	Path     string
	Analyzer Analyzer
}

// Execute executes the analysis job
func (j *DocumentJob) Execute(ctx context.Context) Result {
	result, err := j.Analyzer.AnalyzeFile(ctx, j.Path)
	return &DocumentResult{
		Index:  j.Index,
		Path:   j.Path,
		Result: result,
		Error:  err,
	}
}

// DocumentResult represents the result of a document job
type DocumentResult struct {
	Index  int
	Path   string
	Result *model.AnalysisResult
	Error  error
}

// GetError returns the error from the document result
func (r *DocumentResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple documents concurrently. Every document is
// an independent analysis; nothing is pooled across them.
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessPaths analyzes documents concurrently and returns results in input order
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*DocumentResult {
	if len(paths) == 0 {
		return []*DocumentResult{}
	}

	jobs := make([]Job, len(paths))
	for i, path := range paths {
		jobs[i] = &DocumentJob{
			Index:    i,
			Path:     path,
			Analyzer: b.analyzer,
		}
	}

	ordered := make([]*DocumentResult, len(paths))
	for _, r := range Run(ctx, b.concurrency, jobs) {
		dr := r.(*DocumentResult)
		ordered[dr.Index] = dr
	}

	// Jobs dropped by cancellation still get a result
	for i, dr := range ordered {
		if dr == nil {
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("document was not processed")
			}
			ordered[i] = &DocumentResult{Index: i, Path: paths[i], Error: err}
		}
	}

	return ordered
}

// ProcessFile reads document paths from a list file and analyzes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*DocumentResult, error) {
	paths, err := ReadPathsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads document paths from a file (one per line)
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
