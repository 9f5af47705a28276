package domain

// Intent is the classified purpose of a user query.
type Intent int

const (
	IntentRegular Intent = iota
	IntentSummary
	IntentDefinition
	IntentQuestions
	IntentTopics
	IntentExplainTopics
)

func (i Intent) String() string {
	switch i {
	case IntentSummary:
		return "summary"
	case IntentDefinition:
		return "definition"
	case IntentQuestions:
		return "questions"
	case IntentTopics:
		return "topics"
	case IntentExplainTopics:
		return "explain_topics"
	default:
		return "regular"
	}
}

// Command is the classified query plus the retrieval parameters derived from
// its intent. RetrievalQuery may differ from the user's literal text: broad
// intents rewrite it to bias retrieval toward document-wide coverage.
type Command struct {
	Intent         Intent
	Term           string // definition target, empty otherwise
	RetrievalQuery string
	Limit          int
}
