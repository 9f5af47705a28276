package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/domain"
)

func turn(user, assistant string) domain.ConversationTurn {
	return domain.ConversationTurn{User: user, Assistant: assistant}
}

func TestTrimHistoryKeepsMostRecent(t *testing.T) {
	b := New(10)

	history := []domain.ConversationTurn{
		turn("one two three four five", "six seven eight nine ten"), // 10 words
		turn("a b c", "d e"), // 5 words
	}
	trimmed := b.TrimHistory(history)
	require.Len(t, trimmed, 1)
	assert.Equal(t, "a b c", trimmed[0].User)
}

func TestTrimHistoryIncludesAllWhenUnderBudget(t *testing.T) {
	b := New(500)

	history := []domain.ConversationTurn{
		turn("hello", "hi"),
		turn("what is this", "a document"),
	}
	assert.Len(t, b.TrimHistory(history), 2)
}

func TestTrimHistoryDropsOversizedSingleTurn(t *testing.T) {
	b := New(3)

	history := []domain.ConversationTurn{turn("one two three", "four five six")}
	assert.Empty(t, b.TrimHistory(history))
}

func TestTrimHistorySingleTurnThatFits(t *testing.T) {
	b := New(6)

	history := []domain.ConversationTurn{turn("one two three", "four five six")}
	assert.Len(t, b.TrimHistory(history), 1)
}

func TestTrimHistoryEmpty(t *testing.T) {
	b := New(500)

	assert.Nil(t, b.TrimHistory(nil))
}

func TestBuildLayout(t *testing.T) {
	b := New(500)

	cmd := domain.Command{Intent: domain.IntentRegular, RetrievalQuery: "capacity"}
	p := b.Build(cmd, "SOURCE 1: document=r.pdf, page=2, score=0.900, content=500 cubic meters",
		[]domain.ConversationTurn{turn("hi", "hello")}, "What is the capacity?", nil)

	assert.Contains(t, p, "Previous conversation:\nUser: hi\nAssistant: hello")
	assert.Contains(t, p, "Context:\nSOURCE 1:")
	assert.Contains(t, p, "Question: What is the capacity?")
	assert.True(t, strings.HasSuffix(p, "Answer:"))
	assert.Contains(t, p, "Cite every contributing source")
}

func TestBuildDefinitionInstruction(t *testing.T) {
	b := New(500)

	cmd := domain.Command{Intent: domain.IntentDefinition, Term: "coupling"}
	p := b.Build(cmd, "ctx", nil, "define coupling", nil)
	assert.Contains(t, p, `Define the term "coupling"`)
}

func TestBuildTermsOnlyForTopicIntents(t *testing.T) {
	b := New(500)

	terms := []string{"COCOMO", "Risk Management"}

	topics := b.Build(domain.Command{Intent: domain.IntentTopics}, "ctx", nil, "list topics", terms)
	assert.Contains(t, topics, "Candidate terms from the document: COCOMO, Risk Management")

	regular := b.Build(domain.Command{Intent: domain.IntentRegular}, "ctx", nil, "what?", terms)
	assert.NotContains(t, regular, "Candidate terms")
}

func TestBuildOmitsHistoryBlockWhenEmpty(t *testing.T) {
	b := New(500)

	p := b.Build(domain.Command{Intent: domain.IntentSummary}, "ctx", nil, "summarize", nil)
	assert.NotContains(t, p, "Previous conversation:")
}
