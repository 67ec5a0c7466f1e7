// Test program to demonstrate clause ranking and risk flagging offline.
// Uses the hash embedder, so no embedding service is needed.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/clauserisk/internal/embed"
	"github.com/ppiankov/clauserisk/internal/model"
	"github.com/ppiankov/clauserisk/internal/pipeline"
)

const sampleContract = `1. PARTIES
This Agreement is made between Acme Corp and Beta LLC.
2. SERVICES
Provider shall deliver the software described in Schedule A.
Provider shall deliver monthly status reports to the Client.
3. FEES
Client shall pay all invoices within thirty days of receipt.
Late payments accrue interest at two percent per month.
4. TERM
This Agreement continues for twelve months unless terminated earlier.
The Client waives all rights to any remedy whatsoever, including for gross negligence, forever and in every jurisdiction.
5. LAW
This Agreement is governed by the laws of the State of Delaware.`

func main() {
	fmt.Println("=== Clause Risk Detection Test ===")
	fmt.Println()

	cfg := model.DefaultConfig()
	cfg.Embedding.Provider = "hash"
	cfg.Cache.Enabled = false
	cfg.Output.Color = false

	provider, err := embed.NewHashProvider(cfg.Embedding.Dimensions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "provider: %v\n", err)
		os.Exit(1)
	}

	p, err := pipeline.New(cfg, provider)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipeline: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := p.Analyze(ctx, sampleContract)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clauses: %d\n", result.ClauseCount)
	fmt.Println(strings.Repeat("-", 60))

	fmt.Println("Key clauses:")
	for i, rc := range result.TopClauses {
		fmt.Printf("  %d. (%.3f) %s\n", i+1, rc.Score, rc.Clause.Text)
	}
	fmt.Println()

	fmt.Printf("Flagged clauses: %d\n", result.AnomalousCount())
	for _, c := range result.Clauses {
		if c.Match == nil {
			continue
		}
		fmt.Printf("  ⚠️  %s\n", c.Clause.Text)
		fmt.Printf("     - Anomaly score: %.3f\n", c.AnomalyScore)
		fmt.Printf("     - Category: %s (similarity %.3f)\n", c.Match.Category, c.Match.Similarity)
		fmt.Printf("     - Suggestion: %s\n", c.Match.Remediation)
	}

	fmt.Println("\n=== Test Complete ===")
	fmt.Println("\nNote: the hash embedder captures word overlap only.")
	fmt.Println("Use --provider ollama or openai for semantic results.")
}
