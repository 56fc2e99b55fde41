// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SubQuestion is one focused aspect of the caller's question, produced by the
// Orient phase and answered independently during Decide.
type SubQuestion struct {
	// Index is the position in decomposition order, starting at 0.
	// Insights are emitted in Index order regardless of how Decide ran.
	Index int `json:"index" yaml:"index"`

	// Text is the sub-question itself.
	Text string `json:"text" yaml:"text"`

	// PersonaID names the persona assigned to answer this sub-question.
	PersonaID string `json:"persona_id" yaml:"persona_id"`
}

// EvidenceSnippet is a shortened knowledge-base excerpt returned by a lookup.
// Each retrieval produces fresh copies; snippets are never shared or mutated.
type EvidenceSnippet struct {
	// Text is the excerpt, shortened to a word boundary.
	Text string `json:"text" yaml:"text"`

	// Source identifies the origin entry for citation
	// (e.g. "local://raft_consensus").
	Source string `json:"source" yaml:"source"`
}

// Insight is one persona's answer to one sub-question.
type Insight struct {
	// Text is the insight body with citation markers stripped.
	Text string `json:"text" yaml:"text"`

	// Citations are 1-based indices into the run's global citation sequence.
	// They reference only snippets that were actually retrieved for the
	// sub-question this insight answers.
	Citations []int `json:"citations,omitempty" yaml:"citations,omitempty"`

	// Confidence is the persona's confidence estimate in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// PersonaID names the persona that produced the insight.
	PersonaID string `json:"persona_id" yaml:"persona_id"`

	// Degraded marks an insight produced by the heuristic fallback path
	// after a backend failure or an unusable reply.
	Degraded bool `json:"degraded,omitempty" yaml:"degraded,omitempty"`
}

// RunMetrics accumulates performance counters for one analysis run.
type RunMetrics struct {
	// Duration is the wall-clock time of the whole run.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// ToolCalls counts invocations by tool name (e.g. "search", "completion").
	ToolCalls map[string]int `json:"tool_calls" yaml:"tool_calls"`

	// Errors counts absorbed internal failures. The run itself still
	// succeeds; callers detect degradation here.
	Errors int `json:"errors" yaml:"errors"`

	// TokensIn and TokensOut are whitespace-word estimates of prompt and
	// reply sizes across all backend calls.
	TokensIn  int `json:"tokens_in" yaml:"tokens_in"`
	TokensOut int `json:"tokens_out" yaml:"tokens_out"`
}

// Summary renders the metrics line, e.g.
//
//	Duration: 1.24s | Tools: {completion: 2, search: 3} | Errors: 0
//
// Tool names are sorted so the rendering is deterministic.
func (m RunMetrics) Summary() string {
	names := make([]string, 0, len(m.ToolCalls))
	for name := range m.ToolCalls {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %d", name, m.ToolCalls[name]))
	}

	return fmt.Sprintf("Duration: %.2fs | Tools: {%s} | Errors: %d",
		m.Duration.Seconds(), strings.Join(parts, ", "), m.Errors)
}

// AnalysisResult is the terminal artifact of one analysis run. It is
// immutable once returned.
type AnalysisResult struct {
	// Question is the trimmed input question.
	Question string `json:"question" yaml:"question"`

	// Insights are the surviving insights in sub-question order.
	// Never empty for a valid question.
	Insights []Insight `json:"insights" yaml:"insights"`

	// Confidence is the evidence-weighted mean of insight confidences.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Rendered is the bulleted, citation-annotated answer text,
	// terminated by a DONE marker line.
	Rendered string `json:"rendered" yaml:"rendered"`

	// Metrics holds the run's performance counters.
	Metrics RunMetrics `json:"metrics" yaml:"metrics"`

	// Log is the ordered execution log, one "[  1.23s] PHASE: message"
	// entry per recorded event.
	Log []string `json:"log" yaml:"log"`
}
