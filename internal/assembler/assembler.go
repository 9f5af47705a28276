package assembler

import (
	"fmt"
	"sort"
	"strings"

	"docrag/internal/domain"
)

// Assembler turns retrieved hits into a labeled context block and the
// matching citation records. Each hit becomes one "SOURCE i" block; the
// ordinal i is what the model is instructed to cite. The concatenated output
// stays within a character budget by dropping whole blocks from the tail,
// never cutting a block mid-way.
type Assembler struct {
	budget int
}

const (
	defaultBudget  = 4096
	blockSeparator = "\n\n"
)

func New(budget int) *Assembler {
	if budget <= 0 {
		budget = defaultBudget
	}
	return &Assembler{budget: budget}
}

// Assemble returns the context string and its parallel source list. No hits
// yields an empty string and no sources; callers treat that as "no relevant
// context", not an error.
func (a *Assembler) Assemble(hits []domain.SearchHit) (string, []domain.Source) {
	if len(hits) == 0 {
		return "", nil
	}
	ordered := make([]domain.SearchHit, len(hits))
	copy(ordered, hits)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Score > ordered[j].Score })

	var blocks []string
	var sources []domain.Source
	total := 0
	for _, hit := range ordered {
		ordinal := len(blocks) + 1
		block := formatBlock(ordinal, hit)
		cost := len(block)
		if len(blocks) > 0 {
			cost += len(blockSeparator)
		}
		if total+cost > a.budget {
			break
		}
		total += cost
		blocks = append(blocks, block)
		sources = append(sources, domain.Source{
			Ordinal:  ordinal,
			Page:     hit.Chunk.Page,
			Document: hit.Chunk.DocumentName,
			Score:    hit.Score,
		})
	}
	return strings.Join(blocks, blockSeparator), sources
}

func formatBlock(ordinal int, hit domain.SearchHit) string {
	content := hit.Chunk.Text
	if hit.Chunk.ContentType == domain.ContentImage {
		content = "[image] " + hit.Chunk.ImagePath
	}
	return fmt.Sprintf("SOURCE %d: document=%s, page=%d, score=%.3f, content=%s",
		ordinal, hit.Chunk.DocumentName, hit.Chunk.Page, hit.Score, content)
}
