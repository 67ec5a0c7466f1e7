package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/clauserisk/internal/model"
)

// Renderer writes analysis results as JSON, Markdown and a terminal summary
type Renderer struct {
	includeFooter bool
	out           io.Writer
	high          lipgloss.Style
	low           lipgloss.Style
	heading       lipgloss.Style
}

// NewRenderer creates a renderer printing summaries to stdout
func NewRenderer(includeFooter, color bool) *Renderer {
	return NewRendererTo(os.Stdout, includeFooter, color)
}

// NewRendererTo creates a renderer printing summaries to out.
// Colors are only emitted when color is set and out is a color-capable terminal.
func NewRendererTo(out io.Writer, includeFooter, color bool) *Renderer {
	r := &Renderer{
		includeFooter: includeFooter,
		out:           out,
		high:          lipgloss.NewStyle(),
		low:           lipgloss.NewStyle(),
		heading:       lipgloss.NewStyle(),
	}
	if color {
		term := lipgloss.NewRenderer(out)
		r.high = term.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
		r.low = term.NewStyle().Foreground(lipgloss.Color("10"))
		r.heading = term.NewStyle().Bold(true)
	}
	return r
}

// RenderReport writes the requested report files and prints the summary
func (r *Renderer) RenderReport(result *model.AnalysisResult, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := r.RenderJSON(result, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := r.RenderMarkdown(result, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	r.RenderSummary(result)
	return nil
}

// RenderJSON writes the result as indented JSON to path
func (r *Renderer) RenderJSON(result *model.AnalysisResult, path string) error {
	data, err := MarshalJSON(result)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MarshalJSON encodes a result the way report files are written
func MarshalJSON(result *model.AnalysisResult) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return append(data, '\n'), nil
}

// RenderMarkdown writes the Markdown report to path
func (r *Renderer) RenderMarkdown(result *model.AnalysisResult, path string) error {
	return os.WriteFile(path, []byte(r.Markdown(result)), 0644)
}

// Markdown builds the Markdown report
func (r *Renderer) Markdown(result *model.AnalysisResult) string {
	var b strings.Builder

	b.WriteString("# Clause Risk Report\n\n")
	if result.Source != "" {
		fmt.Fprintf(&b, "- **Document:** %s\n", result.Source)
	}
	fmt.Fprintf(&b, "- **Run ID:** `%s`\n", result.ID)
	fmt.Fprintf(&b, "- **Analyzed:** %s\n", result.AnalyzedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Embedding:** %s\n", result.Provider.Embedding)
	fmt.Fprintf(&b, "- **Clauses:** %d (%d high risk)\n\n", result.ClauseCount, result.AnomalousCount())

	if result.Preview != "" {
		b.WriteString("## Preview\n\n")
		for _, line := range strings.Split(result.Preview, "\n") {
			fmt.Fprintf(&b, "> %s\n", line)
		}
		b.WriteString("\n")
	}

	if result.IsEmpty() {
		b.WriteString("_No clauses found._\n")
		r.writeFooter(&b, result)
		return b.String()
	}

	b.WriteString("## Key Clauses\n\n")
	b.WriteString("| Rank | Clause | Score | Text |\n")
	b.WriteString("|---:|---:|---:|---|\n")
	for i, rc := range result.TopClauses {
		fmt.Fprintf(&b, "| %d | %d | %.3f | %s |\n", i+1, rc.Clause.Index+1, rc.Score, escapeCell(rc.Clause.Text))
	}
	b.WriteString("\n")

	b.WriteString("## Risk Assessment\n\n")
	for _, c := range result.Clauses {
		if c.Label.IsHighRisk() {
			fmt.Fprintf(&b, "### [HIGH RISK] Clause %d\n\n", c.Clause.Index+1)
			fmt.Fprintf(&b, "%s\n\n", c.Clause.Text)
			if c.Match != nil {
				fmt.Fprintf(&b, "**Suggestion** (%s, similarity %.2f): %s\n\n", c.Match.Category, c.Match.Similarity, c.Match.Remediation)
			}
		}
	}

	b.WriteString("### Low risk\n\n")
	for _, c := range result.Clauses {
		if !c.Label.IsHighRisk() {
			fmt.Fprintf(&b, "- [LOW RISK] %d. %s\n", c.Clause.Index+1, c.Clause.Text)
		}
	}

	r.writeFooter(&b, result)
	return b.String()
}

func (r *Renderer) writeFooter(b *strings.Builder, result *model.AnalysisResult) {
	if !r.includeFooter {
		return
	}
	fmt.Fprintf(b, "\n---\n\n_High risk means semantically unusual within this document (isolation forest, %d trees, contamination %.2f, seed %d). It is not legal advice._\n",
		result.Provider.Trees, result.Provider.Contamination, result.Provider.Seed)
}

// RenderSummary prints the terminal summary
func (r *Renderer) RenderSummary(result *model.AnalysisResult) {
	w := r.out

	name := result.Source
	if name == "" {
		name = "document"
	}
	fmt.Fprintln(w, r.heading.Render(fmt.Sprintf("%s: %d clauses, %d high risk", name, result.ClauseCount, result.AnomalousCount())))

	if result.Preview != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, r.heading.Render("Document Preview:"))
		fmt.Fprintln(w, result.Preview)
	}

	if result.IsEmpty() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "No clauses found.")
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, r.heading.Render("Key Clauses:"))
	for i, rc := range result.TopClauses {
		fmt.Fprintf(w, "  %d. %s (score %.3f)\n", i+1, rc.Clause.Text, rc.Score)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, r.heading.Render("Risk Assessment:"))
	for _, c := range result.Clauses {
		fmt.Fprintln(w, r.riskLine(c))
	}
}

// riskLine formats one clause as a [HIGH RISK] or [LOW RISK] line
func (r *Renderer) riskLine(c model.ClauseRisk) string {
	if !c.Label.IsHighRisk() {
		return r.low.Render("[LOW RISK] " + c.Clause.Text)
	}
	line := "[HIGH RISK] " + c.Clause.Text
	if c.Match != nil {
		line += " - Suggestion: " + c.Match.Remediation
	}
	return r.high.Render(line)
}

// escapeCell makes text safe inside a Markdown table cell
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
