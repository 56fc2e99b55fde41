// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/advisor-engine/internal/persona"
	"github.com/pdiddy/advisor-engine/internal/textutil"
	"github.com/pdiddy/advisor-engine/pkg/types"
)

// dedupOverlap is the keyword-set similarity at or above which two insights
// are treated as the same finding.
const dedupOverlap = 0.8

// synthesize turns raw sub-question results into the final insight list:
// near-duplicates collapse (first occurrence wins), local citation indices
// renumber into one global sequence, and the aggregate confidence is the
// evidence-weighted mean (R4). The insight list is never empty.
func synthesize(results []subResult) ([]types.Insight, float64) {
	insights := renumber(dedupe(results))
	if len(insights) == 0 {
		insights = []types.Insight{{
			Text:      "Analysis produced no usable insights for this question.",
			PersonaID: persona.GeneralistID,
			Degraded:  true,
		}}
	}
	return insights, aggregateConfidence(insights)
}

// dedupe drops insights whose text near-duplicates an earlier one, either
// case-insensitively equal or by keyword overlap.
func dedupe(results []subResult) []subResult {
	kept := make([]subResult, 0, len(results))
	keys := make([]map[string]bool, 0, len(results))

	for _, r := range results {
		key := textutil.KeywordSet(r.insight.Text)
		dup := false
		for i := range kept {
			if sameFinding(r.insight.Text, key, kept[i].insight.Text, keys[i]) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		kept = append(kept, r)
		keys = append(keys, key)
	}
	return kept
}

// sameFinding reports whether two insight texts state the same finding.
func sameFinding(aText string, a map[string]bool, bText string, b map[string]bool) bool {
	if strings.EqualFold(strings.TrimSpace(aText), strings.TrimSpace(bText)) {
		return true
	}
	return jaccard(a, b) >= dedupOverlap
}

// jaccard returns the keyword-set similarity of a and b in [0,1]. Two
// empty sets count as identical.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// renumber maps each insight's local citation indices (1-based into its own
// evidence slice) onto one global sequence numbered by first reference, so
// every rendered index names exactly one source and the sequence is
// contiguous from 1.
func renumber(kept []subResult) []types.Insight {
	global := make(map[string]int)
	insights := make([]types.Insight, 0, len(kept))

	for _, r := range kept {
		in := r.insight
		var cites []int
		for _, local := range in.Citations {
			if local < 1 || local > len(r.evidence) {
				continue
			}
			src := r.evidence[local-1].Source
			n, ok := global[src]
			if !ok {
				n = len(global) + 1
				global[src] = n
			}
			cites = append(cites, n)
		}
		sort.Ints(cites)
		in.Citations = cites
		insights = append(insights, in)
	}
	return insights
}

// aggregateConfidence is the mean insight confidence weighted by evidence
// used (weight 1 + citations), so better-grounded insights pull harder.
func aggregateConfidence(insights []types.Insight) float64 {
	var sum, weight float64
	for _, in := range insights {
		w := 1 + float64(len(in.Citations))
		sum += w * in.Confidence
		weight += w
	}
	if weight == 0 {
		return 0
	}
	return sum / weight
}

// render produces the bulleted answer text: one "• <text> [n]" line per
// insight, closed by a final DONE marker line.
func render(insights []types.Insight) string {
	var b strings.Builder
	for _, in := range insights {
		b.WriteString("• ")
		b.WriteString(in.Text)
		if len(in.Citations) > 0 {
			b.WriteString(" ")
			for _, n := range in.Citations {
				fmt.Fprintf(&b, "[%d]", n)
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("DONE")
	return b.String()
}
