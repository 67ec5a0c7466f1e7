package model

// Clause is one segmented provision of a document
type Clause struct {
	Index int    `json:"index"` // Position in document order (0-based)
	Text  string `json:"text"`  // Trimmed clause text
}

// RiskLabel classifies a clause relative to the rest of its document
type RiskLabel string

const (
	RiskNormal    RiskLabel = "NORMAL"    // Low risk
	RiskAnomalous RiskLabel = "ANOMALOUS" // High risk: semantically unusual for this document
)

// IsHighRisk reports whether the label flags the clause for remediation
func (l RiskLabel) IsHighRisk() bool {
	return l == RiskAnomalous
}

// ClauseTexts returns the clause texts in document order
func ClauseTexts(clauses []Clause) []string {
	texts := make([]string, len(clauses))
	for i, c := range clauses {
		texts[i] = c.Text
	}
	return texts
}
