package generator

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"docrag/internal/domain"
)

// Generator drives the language-model service and cleans its raw completion
// into a well-formed answer. Connectivity failures and empty completions
// surface as errors; the caller substitutes the fixed apology so nothing
// propagates to the end user.
type Generator struct {
	llm    domain.Generator
	logger *slog.Logger
}

// Apology is the fixed fallback answer for a failed generation call.
const Apology = "I'm sorry, I couldn't generate a response right now. Please try asking again."

// ErrEmptyCompletion marks a generation call that returned no usable text.
var ErrEmptyCompletion = errors.New("empty completion")

const maxTokens = 1024

func New(llm domain.Generator, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{llm: llm, logger: logger}
}

// OptionsFor picks sampling options per intent: low temperature for factual
// lookups, a freer one for generative intents like question writing.
func OptionsFor(intent domain.Intent) domain.GenerateOptions {
	switch intent {
	case domain.IntentQuestions, domain.IntentExplainTopics:
		return domain.GenerateOptions{Temperature: 0.7, MaxTokens: maxTokens}
	default:
		return domain.GenerateOptions{Temperature: 0.3, MaxTokens: maxTokens}
	}
}

// Respond sends the prompt and returns the cleaned answer.
func (g *Generator) Respond(ctx context.Context, prompt string, intent domain.Intent) (string, error) {
	raw, err := g.llm.Generate(ctx, prompt, OptionsFor(intent))
	if err != nil {
		g.logger.Error("generation call failed", "intent", intent.String(), "err", err)
		return "", err
	}
	answer := Clean(raw)
	if answer == "" {
		g.logger.Warn("generation returned empty completion", "intent", intent.String())
		return "", ErrEmptyCompletion
	}
	return answer, nil
}

var sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)

// Clean post-processes a raw completion: drops an echoed prompt preamble
// (text before a literal "Answer:" marker), drops hallucinated follow-up
// turns (text after "User:"/"Human:" markers), normalizes bullets, and
// reflows long single-paragraph answers without altering wording.
func Clean(raw string) string {
	text := strings.TrimSpace(raw)
	if i := strings.Index(text, "Answer:"); i >= 0 {
		text = strings.TrimSpace(text[i+len("Answer:"):])
	}
	for _, marker := range []string{"\nUser:", "\nHuman:"} {
		if i := strings.Index(text, marker); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
	}
	text = normalizeBullets(text)
	return reflow(text)
}

func normalizeBullets(text string) string {
	text = strings.ReplaceAll(text, "●", "•")
	text = strings.ReplaceAll(text, "○", "  •")
	return text
}

// reflow groups sentences of a long break-less answer into paragraphs of
// three. Answers that already contain paragraph breaks, bullets or short
// answers pass through untouched.
func reflow(text string) string {
	if len(text) < 400 || strings.Contains(text, "\n\n") || strings.Contains(text, "•") {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) < 4 {
		return text
	}
	var paragraphs []string
	for i := 0; i < len(sentences); i += 3 {
		end := i + 3
		if end > len(sentences) {
			end = len(sentences)
		}
		var parts []string
		for _, s := range sentences[i:end] {
			parts = append(parts, strings.TrimSpace(s))
		}
		paragraphs = append(paragraphs, strings.Join(parts, " "))
	}
	return strings.Join(paragraphs, "\n\n")
}
