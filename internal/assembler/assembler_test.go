package assembler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/domain"
)

func hit(page int, score float64, text string) domain.SearchHit {
	return domain.SearchHit{
		Chunk: domain.Chunk{
			DocumentID:   "doc-1",
			DocumentName: "report.pdf",
			Page:         page,
			ContentType:  domain.ContentText,
			Text:         text,
		},
		Score: score,
	}
}

func TestAssembleEmpty(t *testing.T) {
	a := New(4096)

	ctx, sources := a.Assemble(nil)
	assert.Equal(t, "", ctx)
	assert.Empty(t, sources)
}

func TestAssembleOrdersByScore(t *testing.T) {
	a := New(4096)

	ctx, sources := a.Assemble([]domain.SearchHit{
		hit(1, 0.4, "low"),
		hit(2, 0.9, "high"),
		hit(3, 0.6, "mid"),
	})
	require.Len(t, sources, 3)
	assert.Equal(t, 2, sources[0].Page)
	assert.Equal(t, 3, sources[1].Page)
	assert.Equal(t, 1, sources[2].Page)
	assert.True(t, strings.HasPrefix(ctx, "SOURCE 1: document=report.pdf, page=2"))
	assert.Contains(t, ctx, "SOURCE 2: document=report.pdf, page=3")
	assert.Contains(t, ctx, "SOURCE 3: document=report.pdf, page=1")
}

func TestAssembleSourcesMatchOrdinals(t *testing.T) {
	a := New(4096)

	_, sources := a.Assemble([]domain.SearchHit{hit(5, 0.8, "a"), hit(7, 0.7, "b")})
	require.Len(t, sources, 2)
	assert.Equal(t, 1, sources[0].Ordinal)
	assert.Equal(t, 2, sources[1].Ordinal)
	assert.Equal(t, "report.pdf", sources[0].Document)
	assert.InDelta(t, 0.8, sources[0].Score, 1e-9)
}

func TestAssembleBudgetKeepsWholeBlocks(t *testing.T) {
	long := strings.Repeat("x", 300)
	a := New(400)

	ctx, sources := a.Assemble([]domain.SearchHit{
		hit(1, 0.9, long),
		hit(2, 0.8, long),
		hit(3, 0.7, long),
	})
	assert.LessOrEqual(t, len(ctx), 400)
	require.Len(t, sources, 1)
	// The kept block is complete, content included in full.
	assert.True(t, strings.HasSuffix(ctx, long))
}

func TestAssembleNeverExceedsBudget(t *testing.T) {
	a := New(1000)

	var hits []domain.SearchHit
	for i := 0; i < 20; i++ {
		hits = append(hits, hit(i+1, 1.0-float64(i)*0.01, strings.Repeat("y", 120)))
	}
	ctx, sources := a.Assemble(hits)
	assert.LessOrEqual(t, len(ctx), 1000)
	assert.NotEmpty(t, sources)
	for _, block := range strings.Split(ctx, "\n\n") {
		assert.True(t, strings.HasPrefix(block, "SOURCE "))
		assert.True(t, strings.HasSuffix(block, strings.Repeat("y", 120)))
	}
}

func TestAssembleImageHit(t *testing.T) {
	a := New(4096)

	h := domain.SearchHit{
		Chunk: domain.Chunk{
			DocumentName: "deck.pdf",
			Page:         4,
			ContentType:  domain.ContentImage,
			ImagePath:    "images/deck_4_1.png",
		},
		Score: 0.5,
	}
	ctx, sources := a.Assemble([]domain.SearchHit{h})
	assert.Contains(t, ctx, "[image] images/deck_4_1.png")
	require.Len(t, sources, 1)
	assert.Equal(t, 4, sources[0].Page)
}
