// Package highlight locates search-term occurrences in note content and
// returns decoration spans for the editor. Offsets are rune positions:
// JavaScript indexes strings by character, Go by byte, and the conversion
// matters as soon as content carries smart quotes or accents.
package highlight

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/coregx/ahocorasick"
	"github.com/orsinium-labs/stopwords"
)

// Span marks one matched range in the original text, in rune offsets.
type Span struct {
	From int    `json:"from"`
	To   int    `json:"to"`
	Term string `json:"term"`
}

// Highlighter matches a fixed query against arbitrary text.
type Highlighter struct {
	ac    *ahocorasick.Automaton
	terms []string
}

var english = stopwords.MustGet("en")

// Terms splits a search query into the words worth highlighting. Multi-word
// queries drop English stopwords so "the meeting notes" highlights "meeting"
// and "notes"; if every word is a stopword, all of them are kept.
func Terms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	if len(fields) <= 1 {
		return fields
	}

	var kept []string
	seen := make(map[string]bool)
	for _, f := range fields {
		if english.Contains(f) || seen[f] {
			continue
		}
		seen[f] = true
		kept = append(kept, f)
	}
	if len(kept) == 0 {
		return fields[:1]
	}
	return kept
}

// New compiles a highlighter for a search query. A query with no usable
// terms yields a highlighter that matches nothing.
func New(query string) (*Highlighter, error) {
	terms := Terms(query)
	if len(terms) == 0 {
		return &Highlighter{}, nil
	}

	ac, err := ahocorasick.NewBuilder().
		AddStrings(terms).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, err
	}

	return &Highlighter{ac: ac, terms: terms}, nil
}

// Spans finds all term occurrences in text, case-insensitively, resolving
// overlaps leftmost-longest. Matching runs against a lowercased copy with an
// offset map back to the original, since lowercasing can change byte widths.
func (h *Highlighter) Spans(text string) []Span {
	if h.ac == nil || text == "" {
		return nil
	}

	haystack, lowerToOrig := lowerWithOffsets(text)
	matches := h.ac.FindAllOverlapping([]byte(haystack))
	if len(matches) == 0 {
		return nil
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Start != matches[j].Start {
			return matches[i].Start < matches[j].Start
		}
		return matches[i].End > matches[j].End
	})

	spans := make([]Span, 0, len(matches))
	lastEnd := -1
	for _, m := range matches {
		origStart := mapOffset(m.Start, lowerToOrig, len(text))
		origEnd := mapOffset(m.End, lowerToOrig, len(text))
		if origStart >= origEnd || origStart < lastEnd {
			continue
		}
		lastEnd = origEnd

		spans = append(spans, Span{
			From: utf8.RuneCountInString(text[:origStart]),
			To:   utf8.RuneCountInString(text[:origEnd]),
			Term: strings.ToLower(text[origStart:origEnd]),
		})
	}

	return spans
}

// lowerWithOffsets lowercases text rune by rune and records, for each byte
// of the lowered form, the byte position it came from in the original.
func lowerWithOffsets(text string) (string, []int) {
	var b strings.Builder
	b.Grow(len(text))
	mapping := make([]int, 0, len(text)+1)

	origPos := 0
	for _, r := range text {
		lower := unicode.ToLower(r)
		for i := 0; i < utf8.RuneLen(lower); i++ {
			mapping = append(mapping, origPos)
		}
		b.WriteRune(lower)
		origPos += utf8.RuneLen(r)
	}
	mapping = append(mapping, origPos)

	return b.String(), mapping
}

// mapOffset converts a lowered-text byte offset to an original byte offset.
func mapOffset(off int, mapping []int, originalLen int) int {
	if off >= len(mapping) {
		return originalLen
	}
	if off < 0 {
		return 0
	}
	return mapping[off]
}
