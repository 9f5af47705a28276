package topics

import (
	"regexp"
	"sort"
	"strings"
)

// Extractor pulls frequency-ranked candidate terms out of retrieved text.
// Candidates are capitalized phrases, acronyms, and colon-prefixed labels,
// the patterns under which slide decks and reports introduce their topics.
// The ranked terms seed the topic-listing and question-generation prompts so
// the model works from concrete document vocabulary.
type Extractor struct {
	maxTerms  int
	stopwords map[string]struct{}
}

var (
	capitalizedRe = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,3})\b`)
	acronymRe     = regexp.MustCompile(`\b([A-Z]{2,})\b`)
	colonLabelRe  = regexp.MustCompile(`(?m)^\s*([A-Za-z][A-Za-z\s-]{3,40}):`)
)

func New(maxTerms int) *Extractor {
	if maxTerms <= 0 {
		maxTerms = 20
	}
	return &Extractor{maxTerms: maxTerms, stopwords: defaultStopwords()}
}

// Extract returns the top candidate terms across the given texts, most
// frequent first. Case-insensitive duplicates collapse onto their first
// spelling; terms shorter than 4 or longer than 40 characters are dropped.
func (e *Extractor) Extract(texts []string) []string {
	type entry struct {
		spelling string
		count    int
		order    int
	}
	counts := map[string]*entry{}
	seen := 0
	add := func(raw string) {
		term := strings.TrimSpace(raw)
		if len(term) < 4 || len(term) > 40 {
			return
		}
		key := strings.ToLower(term)
		if _, stop := e.stopwords[key]; stop {
			return
		}
		if en, ok := counts[key]; ok {
			en.count++
			return
		}
		counts[key] = &entry{spelling: term, count: 1, order: seen}
		seen++
	}
	for _, text := range texts {
		for _, m := range capitalizedRe.FindAllString(text, -1) {
			add(m)
		}
		for _, m := range acronymRe.FindAllString(text, -1) {
			add(m)
		}
		for _, m := range colonLabelRe.FindAllStringSubmatch(text, -1) {
			add(m[1])
		}
	}
	entries := make([]*entry, 0, len(counts))
	for _, en := range counts {
		entries = append(entries, en)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].order < entries[j].order
	})
	if len(entries) > e.maxTerms {
		entries = entries[:e.maxTerms]
	}
	out := make([]string, len(entries))
	for i, en := range entries {
		out[i] = en.spelling
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"this", "that", "these", "those", "the", "with", "from", "into",
		"about", "between", "through", "during", "before", "after", "above",
		"below", "page", "chapter", "figure", "table", "section", "note",
		"example", "also", "such", "than", "then", "when", "where", "which",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
