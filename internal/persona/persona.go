// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package persona defines the reasoning roles that answer sub-questions.
// A persona is data — id, expertise keywords, prompt wording, priority —
// rather than a type per role; adding a persona is adding a row.
// Implements: prd002-personas (R1-R4);
//
//	docs/ARCHITECTURE § Personas.
package persona

import (
	"sort"

	"github.com/pdiddy/advisor-engine/internal/textutil"
)

// GeneralistID names the fallback persona used when no specialist matches
// a sub-question strongly enough.
const GeneralistID = "generalist"

// matchThreshold is the minimum keyword-hit count for a specialist to
// qualify during routing (R2.2).
const matchThreshold = 1

// Persona is one reasoning role.
type Persona struct {
	// ID is the stable role identifier carried on insights.
	ID string `json:"id" yaml:"id"`

	// Name is the display name (e.g. "Prof. Algorithms").
	Name string `json:"name" yaml:"name"`

	// Specialty is a short expertise description used in prompts.
	Specialty string `json:"specialty" yaml:"specialty"`

	// Keywords route sub-questions: the routing score is the number of
	// keywords present as whole tokens in the text.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Priority breaks routing-score ties; lower wins.
	Priority int `json:"priority" yaml:"priority"`

	// AspectTemplate frames the sub-question this persona receives from
	// the question decomposition. One %s slot for the question.
	AspectTemplate string `json:"aspect_template" yaml:"aspect_template"`
}

// Roster is the fixed persona set for a deployment. Read-only after
// construction; safe for concurrent use.
type Roster struct {
	specialists []Persona
	generalist  Persona
	byID        map[string]Persona
}

// NewRoster builds a roster from specialists plus a generalist fallback.
// Specialists are kept in priority order.
func NewRoster(specialists []Persona, generalist Persona) *Roster {
	sorted := make([]Persona, len(specialists))
	copy(sorted, specialists)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})

	byID := make(map[string]Persona, len(sorted)+1)
	for _, p := range sorted {
		byID[p.ID] = p
	}
	byID[generalist.ID] = generalist

	return &Roster{specialists: sorted, generalist: generalist, byID: byID}
}

// DefaultRoster returns the built-in professors.
func DefaultRoster() *Roster {
	return NewRoster([]Persona{
		{
			ID:             "systems",
			Name:           "Prof. Systems",
			Specialty:      "Performance & Systems",
			Keywords:       []string{"latency", "performance", "system", "network", "throughput"},
			Priority:       1,
			AspectTemplate: "Analyze the performance and systems characteristics of: %s",
		},
		{
			ID:             "algorithms",
			Name:           "Prof. Algorithms",
			Specialty:      "Consensus Algorithms",
			Keywords:       []string{"raft", "pbft", "consensus", "distributed", "algorithm"},
			Priority:       2,
			AspectTemplate: "Compare the algorithmic approaches relevant to: %s",
		},
		{
			ID:             "security",
			Name:           "Prof. Security",
			Specialty:      "Byzantine Fault Tolerance",
			Keywords:       []string{"byzantine", "fault", "security", "tolerance", "adversarial"},
			Priority:       3,
			AspectTemplate: "Evaluate the security and fault-tolerance implications of: %s",
		},
		{
			ID:             "finance",
			Name:           "Prof. Finance",
			Specialty:      "Financial Systems",
			Keywords:       []string{"trading", "financial", "cost", "economic", "market"},
			Priority:       4,
			AspectTemplate: "Assess the financial and market considerations of: %s",
		},
	}, Persona{
		ID:             GeneralistID,
		Name:           "Prof. Generalist",
		Specialty:      "General Analysis",
		Priority:       99,
		AspectTemplate: "%s",
	})
}

// Match holds a persona and its routing score for some text.
type Match struct {
	Persona Persona
	Score   int
}

// Matches scores every specialist against text and returns those meeting
// the match threshold, best score first, ties in priority order (R2.1).
func (r *Roster) Matches(text string) []Match {
	words := textutil.KeywordSet(text)

	var out []Match
	for _, p := range r.specialists {
		score := 0
		for _, kw := range p.Keywords {
			if words[kw] {
				score++
			}
		}
		if score >= matchThreshold {
			out = append(out, Match{Persona: p, Score: score})
		}
	}

	// Specialists are pre-sorted by priority, so a stable sort on score
	// keeps the priority order within ties.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Route returns the best-matching persona for text, or the generalist
// when no specialist qualifies (R2.3).
func (r *Roster) Route(text string) Persona {
	if m := r.Matches(text); len(m) > 0 {
		return m[0].Persona
	}
	return r.generalist
}

// Get looks a persona up by ID, including the generalist.
func (r *Roster) Get(id string) (Persona, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// Generalist returns the fallback persona.
func (r *Roster) Generalist() Persona {
	return r.generalist
}

// Specialists returns the specialist personas in priority order.
func (r *Roster) Specialists() []Persona {
	out := make([]Persona, len(r.specialists))
	copy(out, r.specialists)
	return out
}
