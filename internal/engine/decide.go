// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/advisor-engine/internal/persona"
	"github.com/pdiddy/advisor-engine/pkg/types"
)

// maxConcurrentConsults bounds the parallel Decide fan-out.
const maxConcurrentConsults = 4

// subResult pairs an insight with the evidence that backed it, so local
// citation indices stay resolvable during synthesis.
type subResult struct {
	insight  types.Insight
	evidence []types.EvidenceSnippet
}

// decide answers every sub-question, sequentially in Index order or
// concurrently when configured. Results land in an index-addressed slice,
// so they reach Act in Index order either way.
func (e *Engine) decide(ctx context.Context, rec *recorder, subqs []types.SubQuestion) []subResult {
	answerer := persona.NewAnswerer(&countingClient{inner: e.client, rec: rec})
	results := make([]subResult, len(subqs))

	if !e.cfg.Parallel {
		for i, sq := range subqs {
			results[i] = e.consult(ctx, rec, answerer, sq)
		}
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentConsults)
	for i, sq := range subqs {
		i, sq := i, sq
		g.Go(func() error {
			results[i] = e.consult(gctx, rec, answerer, sq)
			return nil
		})
	}
	_ = g.Wait() // consult absorbs failures into degraded insights

	return results
}

// consult runs one sub-question: evidence lookup, then the persona answer.
// A degraded answer increments the error counter; nothing aborts the run.
// A dead context skips the lookup — the persona call then degrades on its
// own fast-failing backend call.
func (e *Engine) consult(ctx context.Context, rec *recorder, answerer *persona.Answerer, sq types.SubQuestion) subResult {
	p, ok := e.roster.Get(sq.PersonaID)
	if !ok {
		p = e.roster.Generalist()
	}

	var snippets []types.EvidenceSnippet
	if ctx.Err() == nil {
		rec.incrTool(toolSearch)
		snippets = e.store.Lookup(sq.Text, e.cfg.Evidence.TopK)
		rec.logf(labelEvidence, "Retrieved %d snippets for sub-question %d", len(snippets), sq.Index+1)
	}

	insight := answerer.Answer(ctx, p, sq.Text, snippets)
	if insight.Degraded {
		rec.incrErrors()
		rec.logf(labelPersona, "%s fell back to an evidence-only answer for sub-question %d", p.Name, sq.Index+1)
	} else {
		rec.logf(labelPersona, "%s answered sub-question %d", p.Name, sq.Index+1)
	}
	return subResult{insight: insight, evidence: snippets}
}
