package topics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRanksByFrequency(t *testing.T) {
	e := New(10)

	texts := []string{
		"Software Estimation is hard. The COCOMO model helps with Software Estimation.",
		"COCOMO uses effort multipliers. Software Estimation depends on size.",
	}
	terms := e.Extract(texts)
	require.NotEmpty(t, terms)
	assert.Equal(t, "Software Estimation", terms[0])
	assert.Contains(t, terms, "COCOMO")
}

func TestExtractColonLabels(t *testing.T) {
	e := New(10)

	terms := e.Extract([]string{"Risk Management: identify risks early.\nMitigation Plan: respond to them."})
	assert.Contains(t, terms, "Risk Management")
	assert.Contains(t, terms, "Mitigation Plan")
}

func TestExtractFiltersNoise(t *testing.T) {
	e := New(10)

	terms := e.Extract([]string{"The This That abc XY"})
	for _, term := range terms {
		assert.GreaterOrEqual(t, len(term), 4)
		assert.NotEqual(t, "This", term)
		assert.NotEqual(t, "That", term)
	}
}

func TestExtractCapsAtMaxTerms(t *testing.T) {
	e := New(3)

	terms := e.Extract([]string{
		"Alpha Beta. Gamma Delta. Epsilon Zeta. Theta Iota. Kappa Lambda.",
	})
	assert.LessOrEqual(t, len(terms), 3)
}

func TestExtractEmptyInput(t *testing.T) {
	e := New(5)

	assert.Empty(t, e.Extract(nil))
	assert.Empty(t, e.Extract([]string{""}))
}
