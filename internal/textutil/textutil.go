// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil provides keyword extraction and text shortening shared
// by the evidence store, persona routing, and synthesis.
package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// stopwords are excluded from keyword extraction. Lowercase.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "nor": true, "but": true,
	"with": true, "from": true, "into": true, "over": true, "under": true,
	"about": true, "between": true, "through": true, "during": true,
	"are": true, "was": true, "were": true, "been": true, "being": true,
	"have": true, "has": true, "had": true, "does": true, "did": true,
	"can": true, "could": true, "will": true, "would": true, "should": true,
	"may": true, "might": true, "must": true, "shall": true,
	"this": true, "that": true, "these": true, "those": true, "there": true,
	"here": true, "where": true, "when": true, "which": true, "what": true,
	"while": true, "whose": true, "whom": true, "who": true, "why": true,
	"how": true, "all": true, "any": true, "both": true, "each": true,
	"few": true, "more": true, "most": true, "other": true, "some": true,
	"such": true, "not": true, "only": true, "own": true, "same": true,
	"than": true, "then": true, "too": true, "very": true, "just": true,
	"its": true, "his": true, "her": true, "their": true, "our": true,
	"your": true, "they": true, "them": true, "you": true, "also": true,
}

// minKeywordLen drops tokens too short to carry meaning (articles,
// pronouns, stray letters).
const minKeywordLen = 3

// KeywordSet extracts the significant keywords of s: lowercased,
// punctuation-split, stopwords and short tokens removed.
func KeywordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range tokenize(s) {
		if len(tok) < minKeywordLen || stopwords[tok] {
			continue
		}
		set[tok] = true
	}
	return set
}

// Keywords returns the significant keywords of s in first-occurrence order.
func Keywords(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range tokenize(s) {
		if len(tok) < minKeywordLen || stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// Tokens returns every alphanumeric token of s, lowercased, including
// stopwords and short tokens. Use KeywordSet for significance filtering.
func Tokens(s string) []string {
	return tokenize(s)
}

// Overlap counts the keywords present in both sets.
func Overlap(a, b map[string]bool) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if b[k] {
			n++
		}
	}
	return n
}

// tokenize lowercases s and splits on any non-alphanumeric rune.
func tokenize(s string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

// shortenPlaceholder terminates shortened text.
const shortenPlaceholder = "..."

// Shorten collapses whitespace and truncates s to at most width runes on a
// word boundary, appending "..." when anything was cut.
func Shorten(s string, width int) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(collapsed) <= width {
		return collapsed
	}

	budget := width - len(shortenPlaceholder)
	var kept []string
	used := 0
	for _, word := range strings.Fields(collapsed) {
		n := utf8.RuneCountInString(word)
		if len(kept) > 0 {
			n++ // joining space
		}
		if used+n > budget {
			break
		}
		kept = append(kept, word)
		used += n
	}

	return strings.Join(kept, " ") + shortenPlaceholder
}
