package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/domain"
)

type fakeLLM struct {
	completion string
	err        error
	gotPrompt  string
	gotOpts    domain.GenerateOptions
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	f.gotPrompt = prompt
	f.gotOpts = opts
	return f.completion, f.err
}

func TestCleanStripsEchoedPreamble(t *testing.T) {
	raw := "Context:\nSOURCE 1: ...\n\nQuestion: capacity?\n\nAnswer: The capacity is 500 cubic meters [1]."
	assert.Equal(t, "The capacity is 500 cubic meters [1].", Clean(raw))
}

func TestCleanStripsHallucinatedTurns(t *testing.T) {
	raw := "The capacity is 500 cubic meters [1].\nUser: and the depth?\nAssistant: ..."
	assert.Equal(t, "The capacity is 500 cubic meters [1].", Clean(raw))

	raw = "It holds 500 cubic meters.\nHuman: thanks"
	assert.Equal(t, "It holds 500 cubic meters.", Clean(raw))
}

func TestCleanNormalizesBullets(t *testing.T) {
	assert.Equal(t, "• first\n  • second", Clean("● first\n○ second"))
}

func TestCleanReflowsLongSingleParagraph(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 9; i++ {
		b.WriteString("This sentence pads the answer with enough words to cross the reflow threshold. ")
	}
	out := Clean(b.String())
	assert.Contains(t, out, "\n\n")
	// Wording is untouched, only whitespace changes.
	assert.Equal(t,
		strings.ReplaceAll(strings.TrimSpace(b.String()), " ", ""),
		strings.ReplaceAll(strings.ReplaceAll(out, "\n", ""), " ", ""))
}

func TestCleanKeepsExistingParagraphs(t *testing.T) {
	raw := strings.Repeat("First paragraph sentence. ", 10) + "\n\n" + strings.Repeat("Second one here. ", 10)
	assert.Equal(t, strings.TrimSpace(raw), Clean(raw))
}

func TestRespondPassesOptionsPerIntent(t *testing.T) {
	llm := &fakeLLM{completion: "fine answer"}
	g := New(llm, nil)

	_, err := g.Respond(context.Background(), "p", domain.IntentRegular)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, llm.gotOpts.Temperature, 1e-9)

	_, err = g.Respond(context.Background(), "p", domain.IntentQuestions)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, llm.gotOpts.Temperature, 1e-9)
	assert.Equal(t, 1024, llm.gotOpts.MaxTokens)
}

func TestRespondErrorsOnFailure(t *testing.T) {
	g := New(&fakeLLM{err: errors.New("connection refused")}, nil)

	_, err := g.Respond(context.Background(), "p", domain.IntentRegular)
	assert.Error(t, err)
}

func TestRespondErrorsOnEmptyCompletion(t *testing.T) {
	g := New(&fakeLLM{completion: "   "}, nil)

	_, err := g.Respond(context.Background(), "p", domain.IntentRegular)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}
