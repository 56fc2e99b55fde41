// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"fmt"

	"github.com/pdiddy/advisor-engine/pkg/types"
)

// decompose breaks the question into at most MaxSubQuestions sub-questions,
// one per matching specialist in score order, each framed by that
// specialist's aspect template (R2). When no specialist matches, the whole
// question goes to the generalist unchanged.
func (e *Engine) decompose(question string) []types.SubQuestion {
	matches := e.roster.Matches(question)
	if len(matches) > e.cfg.MaxSubQuestions {
		matches = matches[:e.cfg.MaxSubQuestions]
	}

	if len(matches) == 0 {
		return []types.SubQuestion{{
			Index:     0,
			Text:      question,
			PersonaID: e.roster.Generalist().ID,
		}}
	}

	subqs := make([]types.SubQuestion, len(matches))
	for i, m := range matches {
		subqs[i] = types.SubQuestion{
			Index:     i,
			Text:      fmt.Sprintf(m.Persona.AspectTemplate, question),
			PersonaID: m.Persona.ID,
		}
	}
	return subqs
}
