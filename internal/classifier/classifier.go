package classifier

import (
	"regexp"
	"strings"

	"docrag/internal/domain"
)

// Classifier maps free query text to one of the supported intents. Rules are
// evaluated in a fixed order: definition, explain-topics, topics, questions,
// summary, and finally a catch-all regular query. Definition goes first
// because its pattern is the most specific; explain-topics precedes topics so
// "explain the main topics" asks for explanations rather than a listing;
// summary comes last among the keyword rules because its trigger words are
// the most generic.
type Classifier struct {
	rules []rule
}

type rule struct {
	match func(q string) (domain.Command, bool)
}

var defineRe = regexp.MustCompile(`(?:define|definition of)\s+([a-z][a-z0-9\s-]*)`)

// Default retrieval limits per intent. Broad intents search wider so a
// single page cannot dominate the context.
const (
	regularLimit = 5
	focusedLimit = 7
	broadLimit   = 12
)

func New() *Classifier {
	return &Classifier{rules: []rule{
		{matchDefinition},
		{matchExplainTopics},
		{matchTopics},
		{matchQuestions},
		{matchSummary},
	}}
}

// Classify returns the command for a raw query. Queries matching no rule
// become regular lookups with the literal text as retrieval query.
func (c *Classifier) Classify(query string) domain.Command {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, r := range c.rules {
		if cmd, ok := r.match(q); ok {
			return cmd
		}
	}
	return domain.Command{
		Intent:         domain.IntentRegular,
		RetrievalQuery: strings.TrimSpace(query),
		Limit:          regularLimit,
	}
}

func matchDefinition(q string) (domain.Command, bool) {
	m := defineRe.FindStringSubmatch(q)
	if m == nil {
		return domain.Command{}, false
	}
	term := strings.TrimSpace(m[1])
	if term == "" {
		return domain.Command{}, false
	}
	return domain.Command{
		Intent:         domain.IntentDefinition,
		Term:           term,
		RetrievalQuery: "definition of " + term,
		Limit:          focusedLimit,
	}, true
}

func matchExplainTopics(q string) (domain.Command, bool) {
	if !containsAny(q, "explain each topic", "explain all topics", "explain the topics", "explain the main topics") {
		return domain.Command{}, false
	}
	return domain.Command{
		Intent:         domain.IntentExplainTopics,
		RetrievalQuery: "main topics explained in detail",
		Limit:          broadLimit,
	}, true
}

func matchTopics(q string) (domain.Command, bool) {
	if !containsAny(q, "list topics", "main topics", "key topics", "list the topics") {
		return domain.Command{}, false
	}
	return domain.Command{
		Intent:         domain.IntentTopics,
		RetrievalQuery: "main topics key concepts",
		Limit:          broadLimit,
	}, true
}

func matchQuestions(q string) (domain.Command, bool) {
	if !containsAny(q, "create questions", "sample questions", "generate questions", "practice questions") {
		return domain.Command{}, false
	}
	return domain.Command{
		Intent:         domain.IntentQuestions,
		RetrievalQuery: "key concepts important topics",
		Limit:          broadLimit,
	}, true
}

func matchSummary(q string) (domain.Command, bool) {
	if !containsAny(q, "summarize", "summarise", "summary", "overview of the document") {
		return domain.Command{}, false
	}
	return domain.Command{
		Intent:         domain.IntentSummary,
		RetrievalQuery: "document overview main points",
		Limit:          broadLimit,
	}, true
}

func containsAny(q string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(q, t) {
			return true
		}
	}
	return false
}
