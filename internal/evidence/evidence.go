// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evidence provides keyword-overlap lookup over a fixed knowledge
// table. Implements: prd003-evidence (R1-R4);
//
//	docs/ARCHITECTURE § Evidence Store.
package evidence

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/advisor-engine/internal/textutil"
	"github.com/pdiddy/advisor-engine/pkg/types"
)

// DefaultTopK is the lookup window used when k is not positive.
const DefaultTopK = 3

// snippetWidth bounds snippet text; longer entries are cut on a word
// boundary (R2.4).
const snippetWidth = 200

// minScore is the relevance threshold: entries sharing fewer significant
// keywords with the query are not returned (R2.2).
const minScore = 1

// localScheme prefixes citation sources for table entries.
const localScheme = "local://"

// Entry is one knowledge-base record.
type Entry struct {
	// ID is the stable identifier; the citation source for the entry is
	// "local://<ID>".
	ID string `json:"id" yaml:"id"`

	// Text is the entry body.
	Text string `json:"text" yaml:"text"`

	// Tags are extra index terms that participate in keyword scoring.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Store answers keyword-overlap lookups over a fixed entry table. The
// table is read-only after construction, so concurrent lookups need no
// synchronization (R3.1).
type Store struct {
	entries  []Entry
	keywords []map[string]bool // per-entry index, in insertion order
	stubWeb  bool
}

// NewStore indexes entries in the given order; insertion order breaks
// score ties. When stubWeb is set, every lookup that matched at least one
// entry also carries a canned web-research snippet within the top-k window.
func NewStore(entries []Entry, stubWeb bool) *Store {
	s := &Store{
		entries:  entries,
		keywords: make([]map[string]bool, len(entries)),
		stubWeb:  stubWeb,
	}
	for i, e := range entries {
		s.keywords[i] = textutil.KeywordSet(e.Text + " " + strings.Join(e.Tags, " "))
	}
	return s
}

// FromConfig builds a store from the configured entry source: a YAML
// entries file, a research knowledge base (SQLite), or the built-in table
// when neither is set.
func FromConfig(cfg types.EvidenceConfig) (*Store, error) {
	switch {
	case cfg.EntriesFile != "":
		entries, err := LoadYAML(cfg.EntriesFile)
		if err != nil {
			return nil, fmt.Errorf("loading entries file: %w", err)
		}
		return NewStore(entries, cfg.StubWeb), nil
	case cfg.SQLitePath != "":
		entries, err := LoadSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("loading knowledge base: %w", err)
		}
		return NewStore(entries, cfg.StubWeb), nil
	default:
		return NewStore(BuiltinEntries(), cfg.StubWeb), nil
	}
}

// Len returns the number of indexed entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the indexed entries in insertion order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Lookup returns up to k snippets for entries sharing significant keywords
// with text, best score first, ties in insertion order. It never fails:
// no match yields an empty slice (R2.1-R2.3). Each call returns fresh
// snippet copies.
func (s *Store) Lookup(text string, k int) []types.EvidenceSnippet {
	if k <= 0 {
		k = DefaultTopK
	}

	query := textutil.KeywordSet(text)
	if len(query) == 0 {
		return nil
	}

	type match struct {
		idx   int
		score int
	}
	var matches []match
	for i, kw := range s.keywords {
		if score := textutil.Overlap(query, kw); score >= minScore {
			matches = append(matches, match{idx: i, score: score})
		}
	}
	if len(matches) == 0 {
		return nil
	}

	// Stable keeps insertion order within equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > k {
		matches = matches[:k]
	}

	snippets := make([]types.EvidenceSnippet, 0, len(matches)+1)
	for _, m := range matches {
		entry := s.entries[m.idx]
		snippets = append(snippets, types.EvidenceSnippet{
			Text:   textutil.Shorten(entry.Text, snippetWidth),
			Source: localScheme + entry.ID,
		})
	}

	if s.stubWeb && len(snippets) < k {
		snippets = append(snippets, stubWebSnippet(text))
	}

	return snippets
}

// FormatTable writes entries as a human-readable table to w.
func FormatTable(entries []Entry, w io.Writer) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries.")
		return
	}

	fmt.Fprintf(w, "%-24s  %-60s  %s\n", "ID", "Text", "Tags")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, e := range entries {
		text := e.Text
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		fmt.Fprintf(w, "%-24s  %-60s  %s\n", e.ID, text, strings.Join(e.Tags, ","))
	}

	fmt.Fprintf(w, "\n%d entries\n", len(entries))
}
