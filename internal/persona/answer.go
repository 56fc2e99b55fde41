// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package persona

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/advisor-engine/internal/completion"
	"github.com/pdiddy/advisor-engine/internal/textutil"
	"github.com/pdiddy/advisor-engine/pkg/types"
)

// Confidence heuristic (R3): start from a base, credit cited evidence up
// to a cap, debit hedging language, clamp to a sane band.
const (
	confidenceBase     = 0.4
	evidenceBonus      = 0.1
	maxCountedEvidence = 4
	hedgePenalty       = 0.05
	minConfidence      = 0.05
	maxConfidence      = 0.95

	// FallbackConfidence is assigned to evidence-only insights produced
	// when the completion backend fails or replies unusably (R4).
	FallbackConfidence = 0.3

	// minReplyChars is the shortest completion reply (after citation
	// markers are stripped) accepted as an answer.
	minReplyChars = 20
)

// hedgeWords debit confidence when they appear in a reply.
var hedgeWords = []string{"may", "might", "possibly", "unclear", "perhaps", "uncertain"}

var (
	citationRe  = regexp.MustCompile(`\[(\d+)\]`)
	orphanPunct = regexp.MustCompile(`\s+([.,;:!?])`)
)

// Answerer produces insights by asking a completion backend on behalf of
// a persona.
type Answerer struct {
	client completion.Client
}

// NewAnswerer returns an Answerer backed by client.
func NewAnswerer(client completion.Client) *Answerer {
	return &Answerer{client: client}
}

// Answer has persona p answer question using the supplied evidence. It
// always returns a usable insight: backend failures and unusable replies
// degrade to an evidence-derived fallback with Degraded set (R4), never
// to an error.
//
// Citations in the returned insight are 1-based indices into evidence.
func (a *Answerer) Answer(ctx context.Context, p Persona, question string, evidence []types.EvidenceSnippet) types.Insight {
	prompt, err := buildPrompt(p, question, evidence)
	if err != nil {
		return fallbackInsight(p, evidence)
	}

	reply, err := a.client.Generate(ctx, prompt)
	if err != nil {
		return fallbackInsight(p, evidence)
	}

	text, citations, ok := parseReply(reply, len(evidence))
	if !ok {
		return fallbackInsight(p, evidence)
	}

	return types.Insight{
		Text:       text,
		Citations:  citations,
		Confidence: estimateConfidence(text, len(citations)),
		PersonaID:  p.ID,
	}
}

// parseReply extracts citation indices from reply, strips the [n] markers
// and normalizes whitespace. ok is false when the remaining text is too
// short to stand as an answer.
func parseReply(reply string, nEvidence int) (text string, citations []int, ok bool) {
	seen := make(map[int]bool)
	for _, m := range citationRe.FindAllStringSubmatch(reply, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > nEvidence {
			continue
		}
		seen[n] = true
	}
	for n := range seen {
		citations = append(citations, n)
	}
	sort.Ints(citations)

	text = citationRe.ReplaceAllString(reply, " ")
	text = strings.Join(strings.Fields(text), " ")
	text = orphanPunct.ReplaceAllString(text, "$1")
	if len(text) < minReplyChars {
		return "", nil, false
	}
	return text, citations, true
}

// estimateConfidence scores an answer from how much evidence it cited and
// how much it hedges. Monotone non-decreasing in evidenceUsed.
func estimateConfidence(text string, evidenceUsed int) float64 {
	counted := evidenceUsed
	if counted > maxCountedEvidence {
		counted = maxCountedEvidence
	}
	conf := confidenceBase + evidenceBonus*float64(counted)

	tokens := textutil.Tokens(text)
	for _, tok := range tokens {
		for _, hedge := range hedgeWords {
			if tok == hedge {
				conf -= hedgePenalty
				break
			}
		}
	}

	if conf < minConfidence {
		conf = minConfidence
	}
	if conf > maxConfidence {
		conf = maxConfidence
	}
	return conf
}

// fallbackInsight builds a degraded, evidence-only insight. With evidence
// on hand it summarizes the top snippet and cites everything supplied;
// with none it reports the gap at zero confidence. Either way the insight
// text is never empty.
func fallbackInsight(p Persona, evidence []types.EvidenceSnippet) types.Insight {
	if len(evidence) == 0 {
		return types.Insight{
			Text:      fmt.Sprintf("No evidence available for a %s assessment of this question.", strings.ToLower(p.Specialty)),
			PersonaID: p.ID,
			Degraded:  true,
		}
	}

	citations := make([]int, len(evidence))
	for i := range evidence {
		citations[i] = i + 1
	}
	return types.Insight{
		Text:       fmt.Sprintf("%s assessment from available evidence: %s", p.Specialty, textutil.Shorten(evidence[0].Text, 140)),
		Citations:  citations,
		Confidence: FallbackConfidence,
		PersonaID:  p.ID,
		Degraded:   true,
	}
}
