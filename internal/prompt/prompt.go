package prompt

import (
	"fmt"
	"strings"

	"docrag/internal/domain"
)

// Builder merges trimmed conversation history, the intent-specific
// instruction, the assembled context and the user question into one
// generation prompt. History is budgeted in whitespace-separated words and
// trimmed oldest-first, so the window stays anchored at the present.
type Builder struct {
	historyBudget int
}

const defaultHistoryBudget = 500

// groundingClause is shared by every instruction template: the model must
// stay inside the provided context, admit insufficiency, and cite ordinals.
const groundingClause = "Use only the numbered SOURCE blocks above the question. " +
	"If they do not contain the information needed, say so explicitly instead of guessing. " +
	"Cite every contributing source by its number in brackets, for example [1] or [2][3]."

func New(historyBudget int) *Builder {
	if historyBudget <= 0 {
		historyBudget = defaultHistoryBudget
	}
	return &Builder{historyBudget: historyBudget}
}

// Build produces the full prompt for one query. terms carries candidate
// document vocabulary for the topic and question intents; it is ignored for
// the others.
func (b *Builder) Build(cmd domain.Command, context string, history []domain.ConversationTurn, question string, terms []string) string {
	var sb strings.Builder
	sb.WriteString("You are an assistant answering questions about a single document.\n\n")

	if trimmed := b.TrimHistory(history); len(trimmed) > 0 {
		sb.WriteString("Previous conversation:\n")
		for _, turn := range trimmed {
			sb.WriteString("User: " + turn.User + "\n")
			sb.WriteString("Assistant: " + turn.Assistant + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(instructionFor(cmd))
	sb.WriteString(" ")
	sb.WriteString(groundingClause)
	sb.WriteString("\n\nContext:\n")
	sb.WriteString(context)
	sb.WriteString("\n")

	if len(terms) > 0 && (cmd.Intent == domain.IntentTopics || cmd.Intent == domain.IntentExplainTopics || cmd.Intent == domain.IntentQuestions) {
		sb.WriteString("\nCandidate terms from the document: ")
		sb.WriteString(strings.Join(terms, ", "))
		sb.WriteString("\n")
	}

	sb.WriteString("\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}

// TrimHistory keeps the most recent turns whose cumulative word count fits
// the budget. A turn is never partially included; walking stops at the first
// older turn that would overflow.
func (b *Builder) TrimHistory(history []domain.ConversationTurn) []domain.ConversationTurn {
	if len(history) == 0 {
		return nil
	}
	total := 0
	keepFrom := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		words := countWords(history[i].User) + countWords(history[i].Assistant)
		if total+words > b.historyBudget {
			break
		}
		total += words
		keepFrom = i
	}
	if keepFrom == len(history) {
		return nil
	}
	return history[keepFrom:]
}

func countWords(s string) int {
	return len(strings.Fields(s))
}

func instructionFor(cmd domain.Command) string {
	switch cmd.Intent {
	case domain.IntentSummary:
		return "Write a concise summary of the document, organized by theme, covering the main points across all pages present in the context."
	case domain.IntentDefinition:
		return fmt.Sprintf("Define the term %q as it is used in the document, then add any closely related detail the context provides.", cmd.Term)
	case domain.IntentQuestions:
		return "Write a numbered list of study questions a reader should be able to answer after reading the document. Base every question on material present in the context."
	case domain.IntentTopics:
		return "List the main topics covered by the document as a numbered list, with the pages where each topic appears."
	case domain.IntentExplainTopics:
		return "List the main topics of the document and explain each one in a short paragraph."
	default:
		return "Answer the question."
	}
}
