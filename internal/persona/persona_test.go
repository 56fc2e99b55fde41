// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package persona

import (
	"testing"
)

func matchIDs(matches []Match) []string {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.Persona.ID
	}
	return ids
}

func TestMatches(t *testing.T) {
	roster := DefaultRoster()

	tests := []struct {
		name    string
		text    string
		wantIDs []string
	}{
		{
			name:    "consensus question routes to algorithms then finance",
			text:    "Compare Raft vs PBFT consensus for trading systems",
			wantIDs: []string{"algorithms", "finance"},
		},
		{
			name:    "performance question routes to systems",
			text:    "Reduce latency and raise throughput across the network",
			wantIDs: []string{"systems"},
		},
		{
			name:    "security terms route to security",
			text:    "byzantine fault tolerance under adversarial conditions",
			wantIDs: []string{"security"},
		},
		{
			name:    "score tie falls back to priority order",
			text:    "consensus latency",
			wantIDs: []string{"systems", "algorithms"},
		},
		{
			name:    "keywords match whole tokens only",
			text:    "trading systems",
			wantIDs: []string{"finance"},
		},
		{
			name:    "no specialist matches",
			text:    "How do plants convert sunlight into sugar?",
			wantIDs: nil,
		},
		{
			name:    "empty text",
			text:    "",
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchIDs(roster.Matches(tt.text))
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Matches(%q) = %v, want %v", tt.text, got, tt.wantIDs)
			}
			for i := range got {
				if got[i] != tt.wantIDs[i] {
					t.Errorf("Matches(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.wantIDs[i])
				}
			}
		})
	}
}

func TestMatches_ScoresDistinctKeywords(t *testing.T) {
	roster := DefaultRoster()

	matches := roster.Matches("Compare Raft vs PBFT consensus for trading systems")
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Score != 3 {
		t.Errorf("algorithms score = %d, want 3 (raft, pbft, consensus)", matches[0].Score)
	}
	if matches[1].Score != 1 {
		t.Errorf("finance score = %d, want 1 (trading)", matches[1].Score)
	}
}

func TestMatches_RepeatedKeywordCountsOnce(t *testing.T) {
	roster := DefaultRoster()

	matches := roster.Matches("raft raft raft")
	if len(matches) != 1 || matches[0].Persona.ID != "algorithms" {
		t.Fatalf("got %v, want single algorithms match", matchIDs(matches))
	}
	if matches[0].Score != 1 {
		t.Errorf("score = %d, want 1", matches[0].Score)
	}
}

func TestRoute(t *testing.T) {
	roster := DefaultRoster()

	tests := []struct {
		text   string
		wantID string
	}{
		{"Compare Raft vs PBFT consensus for trading systems", "algorithms"},
		{"What is the latency budget for this network?", "systems"},
		{"Is the market cost of this economic?", "finance"},
		{"How do plants convert sunlight into sugar?", GeneralistID},
		{"", GeneralistID},
	}

	for _, tt := range tests {
		if got := roster.Route(tt.text); got.ID != tt.wantID {
			t.Errorf("Route(%q) = %q, want %q", tt.text, got.ID, tt.wantID)
		}
	}
}

func TestNewRoster_SortsByPriority(t *testing.T) {
	roster := NewRoster([]Persona{
		{ID: "c", Priority: 3},
		{ID: "a", Priority: 1},
		{ID: "b", Priority: 2},
	}, Persona{ID: GeneralistID, Priority: 99})

	got := roster.Specialists()
	want := []string{"a", "b", "c"}
	for i, p := range got {
		if p.ID != want[i] {
			t.Errorf("specialists[%d] = %q, want %q", i, p.ID, want[i])
		}
	}
}

func TestGet(t *testing.T) {
	roster := DefaultRoster()

	if p, ok := roster.Get("algorithms"); !ok || p.Name != "Prof. Algorithms" {
		t.Errorf("Get(algorithms) = %+v, %v", p, ok)
	}
	if p, ok := roster.Get(GeneralistID); !ok || p.ID != GeneralistID {
		t.Errorf("Get(generalist) = %+v, %v", p, ok)
	}
	if _, ok := roster.Get("astrology"); ok {
		t.Error("Get(astrology) found a persona, want none")
	}
}

func TestDefaultRoster_Shape(t *testing.T) {
	roster := DefaultRoster()

	specialists := roster.Specialists()
	if len(specialists) != 4 {
		t.Fatalf("got %d specialists, want 4", len(specialists))
	}

	wantOrder := []string{"systems", "algorithms", "security", "finance"}
	for i, p := range specialists {
		if p.ID != wantOrder[i] {
			t.Errorf("specialists[%d] = %q, want %q", i, p.ID, wantOrder[i])
		}
		if len(p.Keywords) == 0 {
			t.Errorf("specialist %q has no keywords", p.ID)
		}
		if p.AspectTemplate == "" {
			t.Errorf("specialist %q has no aspect template", p.ID)
		}
	}

	if g := roster.Generalist(); g.ID != GeneralistID || g.AspectTemplate != "%s" {
		t.Errorf("generalist = %+v, want id %q with passthrough template", g, GeneralistID)
	}
}
