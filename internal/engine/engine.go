// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine runs the OODA analysis loop: observe the question, orient
// by decomposing it into persona-assigned sub-questions, decide by gathering
// evidence and consulting personas, and act by synthesizing the insights
// into a cited answer.
// Implements: prd001-ooda (R1-R5);
//
//	docs/ARCHITECTURE § Engine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/advisor-engine/internal/completion"
	"github.com/pdiddy/advisor-engine/internal/evidence"
	"github.com/pdiddy/advisor-engine/internal/persona"
	"github.com/pdiddy/advisor-engine/internal/textutil"
	"github.com/pdiddy/advisor-engine/pkg/types"
)

// ErrInvalidInput rejects empty or whitespace-only questions. It is the
// only error Analyze returns; every other failure degrades the result
// instead (R1.2).
var ErrInvalidInput = errors.New("question is empty")

// DefaultMaxSubQuestions caps the Orient decomposition when the config
// leaves it unset.
const DefaultMaxSubQuestions = 4

// EvidenceSource retrieves evidence snippets for a sub-question.
// *evidence.Store is the standard implementation.
type EvidenceSource interface {
	Lookup(text string, k int) []types.EvidenceSnippet
}

// Engine orchestrates analysis runs. Safe for concurrent use: runs share
// only read-only state.
type Engine struct {
	cfg    types.EngineConfig
	store  EvidenceSource
	roster *persona.Roster
	client completion.Client
}

// New assembles an engine. A nil store falls back to the built-in knowledge
// table, a nil roster to the default professors.
func New(cfg types.EngineConfig, store EvidenceSource, roster *persona.Roster, client completion.Client) *Engine {
	if cfg.MaxSubQuestions <= 0 {
		cfg.MaxSubQuestions = DefaultMaxSubQuestions
	}
	if store == nil {
		store = evidence.NewStore(evidence.BuiltinEntries(), cfg.Evidence.StubWeb)
	}
	if roster == nil {
		roster = persona.DefaultRoster()
	}
	return &Engine{cfg: cfg, store: store, roster: roster, client: client}
}

// Analyze runs one OODA cycle over question and returns the synthesized
// result. The result is always usable for a non-empty question: backend
// and retrieval failures surface as degraded insights and an elevated
// error count in the metrics, never as a returned error.
func (e *Engine) Analyze(ctx context.Context, question string) (*types.AnalysisResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("validating question: %w", ErrInvalidInput)
	}

	rec := newRecorder(time.Now())
	rec.logf(phaseObserve, "Question received and analyzed")

	subqs := e.decompose(question)
	rec.logf(phaseOrient, "Strategic planning and decomposition (%d sub-questions)", len(subqs))

	rec.logf(phaseDecide, "Evidence gathering and expert consultation")
	results := e.decide(ctx, rec, subqs)

	rec.logf(phaseAct, "Synthesis and quality validation")
	insights, confidence := synthesize(results)
	rendered := render(insights)
	rec.logf(labelComplete, "OODA cycle completed: %d insights, confidence %.2f", len(insights), confidence)

	metrics, log := rec.snapshot()
	return &types.AnalysisResult{
		Question:   question,
		Insights:   insights,
		Confidence: confidence,
		Rendered:   rendered,
		Metrics:    metrics,
		Log:        log,
	}, nil
}

// countingClient wraps the completion backend with per-run accounting: one
// "completion" tool call and a word-count token estimate per Generate.
type countingClient struct {
	inner completion.Client
	rec   *recorder
}

func (c *countingClient) Generate(ctx context.Context, prompt string) (string, error) {
	c.rec.incrTool(toolCompletion)
	c.rec.addTokens(estimateTokens(prompt), 0)

	reply, err := c.inner.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	c.rec.addTokens(0, estimateTokens(reply))
	return reply, nil
}

// estimateTokens approximates token usage as a word count, minimum one.
func estimateTokens(s string) int {
	return max(1, len(textutil.Tokens(s)))
}
