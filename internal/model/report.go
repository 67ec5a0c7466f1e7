package model

import "time"

// AnalysisResult is the complete output of one document analysis.
// It is the only artifact handed to renderers.
type AnalysisResult struct {
	ID          string    `json:"id"`                // Run identifier
	Source      string    `json:"source,omitempty"`  // Where the document came from (path, "stdin", request)
	AnalyzedAt  time.Time `json:"analyzed_at"`       // When the analysis ran
	Preview     string    `json:"preview,omitempty"` // First characters of the document
	ClauseCount int       `json:"clause_count"`

	TopClauses []RankedClause `json:"top_clauses"` // Most important clauses, descending by score
	Clauses    []ClauseRisk   `json:"clauses"`     // Every clause in document order

	Provider Provenance `json:"provider"` // Embedding provider and classifier settings used
}

// RankedClause is a clause with its importance score
type RankedClause struct {
	Clause Clause  `json:"clause"`
	Score  float64 `json:"score"`
}

// ClauseRisk is the per-clause risk assessment
type ClauseRisk struct {
	Clause       Clause            `json:"clause"`
	Importance   float64           `json:"importance"`
	AnomalyScore float64           `json:"anomaly_score"` // Isolation score in (0,1]; higher is more unusual
	Label        RiskLabel         `json:"label"`
	Match        *RemediationMatch `json:"match,omitempty"` // Only set for ANOMALOUS clauses
}

// RemediationMatch is the closest catalog entry for a flagged clause
type RemediationMatch struct {
	Category    string  `json:"category"`
	Remediation string  `json:"remediation"`
	Similarity  float64 `json:"similarity"`
}

// Provenance records how a result was produced
type Provenance struct {
	Embedding     string  `json:"embedding"` // provider/model
	TopN          int     `json:"top_n"`
	Contamination float64 `json:"contamination"`
	Trees         int     `json:"trees"`
	Seed          int64   `json:"seed"`
}

// AnomalousCount returns how many clauses were flagged
func (r *AnalysisResult) AnomalousCount() int {
	count := 0
	for _, c := range r.Clauses {
		if c.Label.IsHighRisk() {
			count++
		}
	}
	return count
}

// IsEmpty reports whether the document yielded no clauses
func (r *AnalysisResult) IsEmpty() bool {
	return r.ClauseCount == 0
}

// PreviewText returns the first limit characters of text, with "..." appended when truncated
func PreviewText(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
