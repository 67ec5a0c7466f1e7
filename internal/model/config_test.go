package model

import (
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Analysis.TopN != 5 {
		t.Errorf("expected top_n 5, got %d", cfg.Analysis.TopN)
	}
	if cfg.Analysis.Contamination != 0.3 {
		t.Errorf("expected contamination 0.3, got %v", cfg.Analysis.Contamination)
	}
	if cfg.Analysis.Seed != 42 {
		t.Errorf("expected seed 42, got %d", cfg.Analysis.Seed)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero top_n", func(c *Config) { c.Analysis.TopN = 0 }},
		{"zero contamination", func(c *Config) { c.Analysis.Contamination = 0 }},
		{"contamination above half", func(c *Config) { c.Analysis.Contamination = 0.6 }},
		{"no trees", func(c *Config) { c.Analysis.Trees = 0 }},
		{"tiny max samples", func(c *Config) { c.Analysis.MaxSamples = 1 }},
		{"zero batch size", func(c *Config) { c.Embedding.BatchSize = 0 }},
		{"empty catalog", func(c *Config) { c.Catalog = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestPreviewText(t *testing.T) {
	if got := PreviewText("short", 10); got != "short" {
		t.Errorf("unexpected preview: %q", got)
	}
	if got := PreviewText("abcdef", 3); got != "abc..." {
		t.Errorf("unexpected preview: %q", got)
	}
}

func TestAnalysisResult_AnomalousCount(t *testing.T) {
	r := &AnalysisResult{
		ClauseCount: 3,
		Clauses: []ClauseRisk{
			{Label: RiskNormal},
			{Label: RiskAnomalous},
			{Label: RiskAnomalous},
		},
	}
	if got := r.AnomalousCount(); got != 2 {
		t.Errorf("expected 2 anomalous, got %d", got)
	}
	if r.IsEmpty() {
		t.Error("result with clauses should not be empty")
	}
}
